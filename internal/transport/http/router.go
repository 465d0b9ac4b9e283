package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-verify-api/internal/application/verification"
	"github.com/go-verify-api/internal/config"
	"github.com/go-verify-api/internal/transport/http/handler"
	appmiddleware "github.com/go-verify-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — both verification endpoints are
	// public and abusable.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verifySvc := verification.NewService(verification.ServiceDeps{
		Store:     deps.Store,
		Generator: deps.Generator,
		Gateway:   deps.Gateway,
		TTL:       cfg.OTPTTL,
		EchoCode:  cfg.DebugEchoCode && cfg.AppEnv != "production",
	})

	healthH := handler.NewHealthHandler()
	verifyH := handler.NewVerificationHandler(verifySvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(sensitiveRL.Limit).Post("/verification/{action}", verifyH.Action)
	})

	return r
}
