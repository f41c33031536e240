package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-sheet/internal/api"
	"recipe-sheet/internal/core/ai/cache"
	"recipe-sheet/internal/infrastructure/config"
	"recipe-sheet/internal/pkg/common"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("anthropic_api_key", common.MaskSecret(cfg.Anthropic.APIKey)),
		zap.String("anthropic_model", cfg.Anthropic.Model),
		zap.String("template", cfg.Sheet.TemplatePath),
	)

	// 初始化快取（關閉時為 nil）
	store, err := cache.NewStore(&cfg.Cache)
	if err != nil {
		common.LogFatal("Failed to initialize cache", zap.Error(err))
	}
	if store != nil {
		defer store.Close()
	}

	fs := afero.NewOsFs()
	deps, err := api.NewDependencies(cfg, fs, store)
	if err != nil {
		common.LogFatal("Failed to initialize services", zap.Error(err))
	}
	defer deps.Close()

	if err := deps.Ready(); err != nil {
		common.LogWarn("Template not available yet", zap.Error(err))
	}

	router := api.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
