// Package subscriptionmanager собирает HTTP-приложение: маршруты, middleware и зависимости.
package subscriptionmanager

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/subscription-manager/internal/config"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/analytics/renewals"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/analytics/suggestions"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/analytics/summary"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/auth/users"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/create"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/read"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/remove"
	"github.com/magabrotheeeer/subscription-manager/internal/http/handlers/subscription/update"
	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
	subservice "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
)

// Deps зависимости, из которых собираются маршруты.
type Deps struct {
	Logger              *slog.Logger
	SubscriptionService *subservice.SubscriptionService
	AuthService         *authservice.AuthService
	HealthCheckers      map[string]health.Checker
	Registry            *prometheus.Registry
	HTTP                config.HTTPServer
	Now                 func() time.Time
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	metrics := middlewarectx.NewMetrics(d.Registry)

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		metrics.Middleware,
	)

	r.Get("/health", health.New(d.Logger, d.HealthCheckers).ServeHTTP)
	r.Handle("/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(d.Logger, d.HTTP.RateLimit, d.HTTP.RateBurst))

		// Открытые конечные точки
		r.Post("/auth/register", register.New(d.Logger, d.AuthService).ServeHTTP)
		r.Post("/auth/login", login.New(d.Logger, d.AuthService).ServeHTTP)
		r.Post("/auth/refresh", refresh.New(d.Logger, d.AuthService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.AuthService, d.Logger))

			r.Get("/auth/users", users.New(d.Logger, d.AuthService).ServeHTTP)

			r.Get("/subscriptions", list.New(d.Logger, d.SubscriptionService).ServeHTTP)
			r.Post("/subscriptions", create.New(d.Logger, d.SubscriptionService).ServeHTTP)
			r.Get("/subscriptions/{id}", read.New(d.Logger, d.SubscriptionService).ServeHTTP)
			updateHandler := update.New(d.Logger, d.SubscriptionService)
			r.Put("/subscriptions/{id}", updateHandler.ServeHTTP)
			r.Patch("/subscriptions/{id}", updateHandler.ServeHTTP)
			r.Delete("/subscriptions/{id}", remove.New(d.Logger, d.SubscriptionService).ServeHTTP)

			r.Get("/analytics/upcoming-renewals", renewals.New(d.Logger, d.SubscriptionService, d.Now).ServeHTTP)
			r.Get("/analytics/summary", summary.New(d.Logger, d.SubscriptionService).ServeHTTP)
			r.Get("/analytics/ai-suggestions", suggestions.New(d.Logger, d.SubscriptionService).ServeHTTP)
		})
	})
}
