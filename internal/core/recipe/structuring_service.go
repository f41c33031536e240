package recipe

import (
	"context"
	"errors"
	"strings"
	"time"

	"recipe-sheet/internal/core/ai/cache"
	"recipe-sheet/internal/core/ai/provider"
	"recipe-sheet/internal/pkg/common"

	"go.uber.org/zap"
)

// StructuringService 將食譜文字轉為 StructuredRecipe
type StructuringService struct {
	provider     provider.Provider
	cache        cache.Store
	systemPrompt string
	maxTokens    int
}

// NewStructuringService 創建結構化服務，store 可為 nil
func NewStructuringService(p provider.Provider, store cache.Store, systemPrompt string, maxTokens int) *StructuringService {
	return &StructuringService{
		provider:     p,
		cache:        store,
		systemPrompt: systemPrompt,
		maxTokens:    maxTokens,
	}
}

// Structure 送出結構化請求並解析回覆中的 JSON 物件
func (s *StructuringService) Structure(ctx context.Context, content string) (*common.StructuredRecipe, error) {
	if cached, ok := s.fromCache(ctx, content); ok {
		return cached, nil
	}

	start := time.Now()
	resp, err := s.provider.Complete(ctx, &provider.Request{
		System:    s.systemPrompt,
		MaxTokens: s.maxTokens,
		Messages:  []provider.Message{provider.TextMessage(BuildUserPrompt(content))},
	})
	common.LogAICall("structuring", time.Since(start), err,
		zap.String("model", s.provider.GetModel()),
		zap.Int("content_length", len(content)),
	)
	if err != nil {
		return nil, err
	}

	text, ok := resp.FirstText()
	if !ok {
		return nil, common.ErrMalformedResponse.Wrap(errors.New("no text block in response"))
	}

	raw, recipe, err := ParseStructuredRecipe(text)
	if err != nil {
		common.LogWarn("Failed to parse structured recipe",
			zap.Error(err),
			zap.Int("response_length", len(text)),
			zap.String("stop_reason", resp.StopReason),
		)
		return nil, err
	}

	s.toCache(ctx, content, raw)

	common.LogInfo("Successfully structured recipe",
		zap.String("recipe_name", recipe.Name),
		zap.Int("ingredients_count", len(recipe.Ingredients)),
		zap.Int("warnings_count", len(recipe.Warnings)),
	)
	return recipe, nil
}

// ParseStructuredRecipe 依序嘗試回覆中的每個完整 JSON 物件，返回第一個有效的食譜，
// 同時返回原始 JSON 以便緩存；全部失敗時返回第一個物件的錯誤
func ParseStructuredRecipe(text string) (string, *common.StructuredRecipe, error) {
	candidates := common.ExtractJSONObjects(text)
	if len(candidates) == 0 {
		return "", nil, common.ErrMalformedResponse
	}

	var firstErr error
	for _, raw := range candidates {
		recipe, err := decodeStructuredRecipe(raw)
		if err == nil {
			return raw, recipe, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", nil, firstErr
}

func decodeStructuredRecipe(raw string) (*common.StructuredRecipe, error) {
	var recipe common.StructuredRecipe
	if err := common.ParseJSON(raw, &recipe); err != nil {
		return nil, common.ErrJSONParse.Wrap(err)
	}

	if strings.TrimSpace(recipe.Name) == "" {
		return nil, common.ErrMalformedResponse.Wrap(errors.New("nomeReceita is empty"))
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []common.Ingredient{}
	}
	if recipe.Warnings == nil {
		recipe.Warnings = []string{}
	}
	return &recipe, nil
}

// fromCache 緩存錯誤只記錄，不影響流程
func (s *StructuringService) fromCache(ctx context.Context, content string) (*common.StructuredRecipe, bool) {
	if s.cache == nil {
		return nil, false
	}

	val, err := s.cache.Get(ctx, content)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			common.LogWarn("Cache lookup failed", zap.Error(err))
		}
		return nil, false
	}

	_, recipe, err := ParseStructuredRecipe(val)
	if err != nil {
		common.LogWarn("Discarding invalid cache entry", zap.Error(err))
		return nil, false
	}

	common.LogInfo("快取命中", zap.String("類型", "structured_recipe"))
	return recipe, true
}

func (s *StructuringService) toCache(ctx context.Context, content, raw string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, content, raw); err != nil {
		common.LogWarn("Cache store failed", zap.Error(err))
	}
}
