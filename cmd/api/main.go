package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/qbadvisory/hr-analytics-go/internal/config"
	appHTTP "github.com/qbadvisory/hr-analytics-go/internal/handler/http"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/cron"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/hrapi"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/jwt"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/storage"
	analyticsService "github.com/qbadvisory/hr-analytics-go/internal/service/analytics"
	authService "github.com/qbadvisory/hr-analytics-go/internal/service/auth"
	"github.com/qbadvisory/hr-analytics-go/internal/service/dataset"
	pipelineService "github.com/qbadvisory/hr-analytics-go/internal/service/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load configuration:", err)
		os.Exit(1)
	}

	store, err := storage.NewLocalStore(cfg.Dataset.DataDir)
	if err != nil {
		fmt.Println("Failed to initialize dataset store:", err)
		os.Exit(1)
	}

	holder := dataset.NewHolder()
	loader := dataset.NewLoader(store, holder)

	// Without an HR API base URL the service runs offline: refresh reprocesses
	// whatever raw payloads are already staged on disk.
	var fetcher pipelineService.Fetcher
	if cfg.HRAPI.BaseURL != "" {
		fetcher = hrapi.NewClient(cfg.HRAPI.BaseURL, cfg.HRAPI.Token)
	}
	pipelineSvc := pipelineService.NewPipelineService(fetcher, store, cfg.Dataset.OptionalHolidayList, loader)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authSvc := authService.NewAuthService(cfg.Dashboard.Email, cfg.Dashboard.PasswordHash, jwtService)
	analyticsSvc := analyticsService.NewAnalyticsService(holder)

	authHandler := appHTTP.NewAuthHandler(authSvc)
	analyticsHandler := appHTTP.NewAnalyticsHandler(analyticsSvc)
	pipelineHandler := appHTTP.NewPipelineHandler(pipelineSvc)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Env:         cfg.App.Env,
		CORSOrigins: cfg.App.CORSOrigins,
	}, jwtService, authHandler, analyticsHandler, pipelineHandler)

	// Warm the snapshot from previously persisted tables so queries work
	// before the first refresh completes.
	if _, err := loader.Reload(context.Background()); err != nil {
		fmt.Println("No dataset snapshot available at startup:", err)
	}

	if cfg.Dataset.RefreshOnStart {
		go func() {
			if _, err := pipelineSvc.Run(context.Background()); err != nil {
				fmt.Println("Startup refresh failed:", err)
			}
		}()
	}

	scheduler := cron.NewScheduler()
	scheduler.AddJob("dataset-refresh", cfg.Dataset.RefreshInterval, func(ctx context.Context) error {
		_, err := pipelineSvc.Run(ctx)
		return err
	})
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Println("Server starting on port", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server failed to start:", err)
		os.Exit(1)
	}
}
