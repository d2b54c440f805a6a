// Package renewals реализует HTTP-обработчик списка продлений собственных подписок
// пользователя в ближайшие семь дней.
package renewals

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
)

// Handler обрабатывает запросы на список ближайших продлений.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time // Источник текущей даты
}

// Service описывает интерфейс бизнес-логики ближайших продлений.
type Service interface {
	UpcomingRenewals(ctx context.Context, actor models.Actor, today models.Date) ([]models.Renewal, error)
}

// New создает новый Handler. Текущая дата берётся из now.
func New(log *slog.Logger, service Service, now func() time.Time) *Handler {
	return &Handler{
		log:     log,
		service: service,
		now:     now,
	}
}

// ServeHTTP godoc
// @Summary Ближайшие продления
// @Description Возвращает собственные подписки пользователя с датой продления от сегодня до сегодня плюс 7 дней включительно.
// @Tags Analytics
// @Produce  json
// @Success 200 {object} response.Response "Список продлений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /analytics/upcoming-renewals [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.renewals"
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

	renewals, err := h.service.UpcomingRenewals(r.Context(), actor, models.NewDate(h.now()))
	if err != nil {
		log.Error("failed to get upcoming renewals", sl.Err(err))
		status, resp := response.FromServiceError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(renewals))
}
