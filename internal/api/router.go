package api

import (
	"fmt"
	"time"

	"recipe-sheet/internal/api/handlers/health"
	recipeHandler "recipe-sheet/internal/api/handlers/recipe"
	"recipe-sheet/internal/api/middleware"
	"recipe-sheet/internal/core/ai/anthropic"
	"recipe-sheet/internal/core/ai/cache"
	"recipe-sheet/internal/core/ai/image"
	recipeService "recipe-sheet/internal/core/recipe"
	"recipe-sheet/internal/core/sheet"
	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/infrastructure/storage"
	"recipe-sheet/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Dependencies 路由使用的服務
type Dependencies struct {
	Processor recipeHandler.Processor
	Uploads   recipeHandler.UploadSaver
	Ready     health.ReadyFunc

	closers []func() error
}

// Close 釋放連線等資源
func (d *Dependencies) Close() {
	for _, closeFn := range d.closers {
		if err := closeFn(); err != nil {
			common.LogWarn("Failed to release resource", zap.Error(err))
		}
	}
}

// NewDependencies 依設定組裝處理流程，store 可為 nil
func NewDependencies(cfg *config.Config, fs afero.Fs, store cache.Store) (*Dependencies, error) {
	common.LogInfo("Initializing services",
		zap.String("model", cfg.Anthropic.Model),
		zap.Bool("cache_enabled", store != nil),
		zap.String("template", cfg.Sheet.TemplatePath),
		zap.Duration("request_timeout", cfg.Server.RequestTimeout),
	)

	systemPrompt, err := recipeService.LoadSystemPrompt(fs, cfg.Prompt.SystemPromptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load system prompt: %w", err)
	}

	aiClient := anthropic.NewClient(&cfg.Anthropic)
	fetcher := recipeService.NewHTTPFetcher(&cfg.Fetch)

	uploads := storage.NewUploadStore(fs, cfg.Upload.Dir, cfg.Upload.MaxSizeBytes)
	outputs := storage.NewOutputStore(fs, cfg.Sheet.OutputDir)

	extractor := recipeService.NewExtractionService(aiClient, image.NewProcessor(cfg.Upload.MaxSizeBytes), cfg.Anthropic.ExtractionMaxTokens)
	structurer := recipeService.NewStructuringService(aiClient, store, systemPrompt, cfg.Anthropic.StructuringMaxTokens)
	filler := sheet.NewFiller(fs, &cfg.Sheet, outputs)

	processor := recipeService.NewService(
		recipeService.NewResolver(fetcher, extractor, uploads),
		structurer,
		filler,
		uploads,
	)

	templatePath := cfg.Sheet.TemplatePath
	ready := func() error {
		if _, err := fs.Stat(templatePath); err != nil {
			return common.ErrFileSystem.Wrapf(err, "template %s not readable", templatePath)
		}
		return nil
	}

	return &Dependencies{
		Processor: processor,
		Uploads:   uploads,
		Ready:     ready,
		closers: []func() error{
			aiClient.Close,
			func() error { fetcher.Close(); return nil },
		},
	}, nil
}

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, deps *Dependencies) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New())
	router.Use(middleware.Logger())

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:   []string{"Content-Length", "X-Request-ID"},
		MaxAge:          12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))

	healthHandler := health.NewHandler(cfg.App.Version, deps.Ready)
	processHandler := recipeHandler.NewHandler(deps.Processor, deps.Uploads)

	api := router.Group("/api")
	{
		api.GET("/health", healthHandler.HealthCheck)
		api.GET("/ready", healthHandler.ReadinessCheck)

		processing := api.Group("")
		if cfg.RateLimit.Enabled {
			processing.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
		}
		processing.Use(middleware.Timeout(cfg.Server.RequestTimeout))
		processing.POST("/processar-receita", processHandler.HandleProcessRecipe)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router
}
