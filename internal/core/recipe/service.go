package recipe

import (
	"context"
	"time"

	"recipe-sheet/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 食譜處理流程：解析來源、結構化、填表
type Service struct {
	resolver   *Resolver
	structurer Structurer
	filler     SheetFiller
	uploads    UploadReader
}

// NewService 創建食譜處理服務
func NewService(resolver *Resolver, structurer Structurer, filler SheetFiller, uploads UploadReader) *Service {
	return &Service{
		resolver:   resolver,
		structurer: structurer,
		filler:     filler,
		uploads:    uploads,
	}
}

// Process 依序執行三個階段，任一階段失敗即中止；暫存圖片無論成敗都會刪除
func (s *Service) Process(ctx context.Context, src Source) (*Result, error) {
	if src.Image != nil && src.Image.Path != "" {
		defer s.uploads.Remove(src.Image.Path)
	}

	start := time.Now()
	kind := src.Kind()

	content, err := s.resolver.Resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	recipe, err := s.structurer.Structure(ctx, content)
	if err != nil {
		return nil, err
	}

	file, err := s.filler.Fill(ctx, recipe)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Recipe processed",
		zap.String("kind", string(kind)),
		zap.String("recipe_name", recipe.Name),
		zap.String("file_name", file.FileName),
		zap.Duration("latency", time.Since(start)),
	)

	return &Result{
		Recipe: recipe,
		File:   file,
		Kind:   kind,
	}, nil
}
