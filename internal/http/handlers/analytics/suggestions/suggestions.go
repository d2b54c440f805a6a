// Package suggestions реализует HTTP-обработчик рекомендаций по оптимизации расходов.
//
// Рекомендации строятся по всем подпискам, которые видит пользователь. Если таких
// подписок нет, вместо списка возвращается строка "No subscriptions found.".
package suggestions

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Handler обрабатывает запросы на рекомендации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики рекомендаций.
type Service interface {
	Suggestions(ctx context.Context, actor models.Actor) (models.SuggestionReport, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Рекомендации по подпискам
// @Tags Analytics
// @Produce  json
// @Success 200 {object} response.Response "Рекомендации или сообщение об их отсутствии"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /analytics/ai-suggestions [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.suggestions"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.ActorFrom(r.Context())
	if !ok {
		log.Error("actor not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	report, err := h.service.Suggestions(r.Context(), actor)
	if err != nil {
		log.Error("failed to build suggestions", sl.Err(err))
		status, resp := response.FromServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("suggestions built", slog.Int("count", len(report.Items)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"suggestions": report,
	}))
}
