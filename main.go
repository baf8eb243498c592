package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/patrickmn/go-cache"

	"github.com/username/mejoravivienda/backend/src/config"
	"github.com/username/mejoravivienda/backend/src/datasource"
	"github.com/username/mejoravivienda/backend/src/handlers"
	"github.com/username/mejoravivienda/backend/src/logger"
	"github.com/username/mejoravivienda/backend/src/models"
	"github.com/username/mejoravivienda/backend/src/services"
)

func buildSources(datasets map[string]models.Dataset) map[string]datasource.Source {
	sources := make(map[string]datasource.Source, len(datasets))
	for name, ds := range datasets {
		if config.Cfg.DataMode == "rowstore" {
			sources[name] = datasource.NewRowStoreSource(
				config.Cfg.RowStoreURL,
				config.Cfg.RowStoreAPIKey,
				ds.Table,
				config.Cfg.FetchTimeout,
			)
			continue
		}

		fixturePath := filepath.Join(config.Cfg.FixturesDir, ds.Table+".json")
		src, err := datasource.NewFixtureSource(fixturePath)
		if err != nil {
			stdlog.Fatalf("failed to create fixture source for dataset %s: %v", name, err)
		}
		sources[name] = src
	}
	return sources
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)

	logger.L.Info("MejoraVivienda backend server starting...")

	datasets, err := config.LoadDatasets(config.Cfg.DatasetsPath)
	if err != nil {
		logger.L.Error("Failed to load dataset registry", "path", config.Cfg.DatasetsPath, "error", err)
		stdlog.Fatalf("failed to load dataset registry: %v", err)
	}
	logger.L.Info("Dataset registry loaded", "datasets", len(datasets), "mode", config.Cfg.DataMode)

	sources := buildSources(datasets)

	// Initial load for remote sources; fixtures load themselves on creation.
	// A failed fetch is not fatal: views stay empty and carry the failed
	// state until a manual refresh succeeds.
	if config.Cfg.DataMode == "rowstore" {
		for name, src := range sources {
			ctx, cancel := context.WithTimeout(context.Background(), config.Cfg.FetchTimeout)
			if err := src.Refresh(ctx); err != nil {
				logger.L.Warn("Initial fetch failed", "dataset", name, "error", err)
			}
			cancel()
		}
	}

	viewMemo := cache.New(config.Cfg.ViewCacheTTL, services.CacheCleanupInterval)
	viewService := services.NewViewService(datasets, sources, viewMemo)

	viewHandler := handlers.NewViewHandler(viewService)
	dashboardHandler := handlers.NewDashboardHandler(viewService)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(handlers.ContextualLoggerMiddleware)
	r.Use(handlers.CORSMiddleware(config.Cfg.AllowedOrigins))
	r.Use(handlers.RateLimitMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "MejoraVivienda Backend is running"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", viewHandler.HandleListDatasets)
		r.Get("/datasets/{name}/view", viewHandler.HandleGetView)
		r.Get("/datasets/{name}/export", viewHandler.HandleExportCSV)
		r.Post("/datasets/{name}/refresh", viewHandler.HandleRefresh)
		r.Get("/dashboard/stats", dashboardHandler.HandleGetStats)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}
