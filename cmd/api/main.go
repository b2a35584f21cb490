package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"ecovision/internal/app"
	"ecovision/internal/config"
	apihttp "ecovision/internal/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open stores", zap.Error(err))
	}
	defer stores.Close()

	svcs, err := app.NewServices(cfg, stores, logger)
	if err != nil {
		logger.Fatal("build services", zap.Error(err))
	}

	pageHandler, err := apihttp.NewPageHandler(logger, apihttp.PageServices{
		Languages: svcs.Languages,
		Chat:      svcs.Chat,
		Analysis:  svcs.Analysis,
		History:   svcs.History,
		Weather:   svcs.Weather,
		Dashboard: svcs.Dashboard,
	}, cfg.DetectionURL, cfg.MaxUploadBytes)
	if err != nil {
		logger.Fatal("parse templates", zap.Error(err))
	}
	socketHandler := apihttp.NewChatSocketHandler(logger, svcs.Chat, stores.Redis)
	defer socketHandler.Close()

	router := apihttp.NewRouter(logger, apihttp.Handlers{
		Pages:      pageHandler,
		Language:   apihttp.NewLanguageHandler(logger, svcs.Languages),
		Chat:       apihttp.NewChatHandler(logger, svcs.Chat),
		ChatSocket: socketHandler,
		Analysis:   apihttp.NewAnalysisHandler(logger, svcs.Analysis, svcs.Languages, cfg.MaxUploadBytes),
		History:    apihttp.NewHistoryHandler(logger, svcs.History),
		Weather:    apihttp.NewWeatherHandler(logger, svcs.Weather, svcs.Languages),
		Dashboard:  apihttp.NewDashboardHandler(logger, svcs.Dashboard),
		Treatments: apihttp.NewTreatmentHandler(svcs.Treatments),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("history_backend", cfg.HistoryBackend),
		zap.String("default_language", cfg.DefaultLanguage),
	)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
}
