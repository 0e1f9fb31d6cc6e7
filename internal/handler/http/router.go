package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/qbadvisory/hr-analytics-go/internal/handler/http/middleware"
	"github.com/qbadvisory/hr-analytics-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Env         string
	CORSOrigins []string
}

func NewRouter(cfg RouterConfig, jwtService jwt.Service,
	authHandler AuthHandler, analyticsHandler AnalyticsHandler, pipelineHandler PipelineHandler) *chi.Mux {

	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hr-analytics"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Get("/status", analyticsHandler.Status)
			r.Post("/refresh", pipelineHandler.Refresh)

			r.Route("/meta", func(r chi.Router) {
				r.Get("/periods", analyticsHandler.Periods)
				r.Get("/filters", analyticsHandler.Filters)
			})

			r.Get("/tables/{name}", analyticsHandler.Table)
			r.Get("/aggregates/{view}", analyticsHandler.Aggregate)
			r.Get("/drill/{chart}", analyticsHandler.Drill)
		})
	})

	return r
}
