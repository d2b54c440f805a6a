// Package refresh реализует HTTP-обработчик обмена refresh токена на новую пару токенов.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-manager/internal/http/response"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-manager/internal/lib/validate"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	services "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
)

// Handler обрабатывает запросы на обновление токенов.
type Handler struct {
	log         *slog.Logger
	authService Service
	validate    *validator.Validate
}

// Service описывает интерфейс обновления пары токенов.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*models.Session, error)
}

// New создает новый Handler.
func New(log *slog.Logger, authService Service) *Handler {
	return &Handler{
		log:         log,
		authService: authService,
		validate:    validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление токенов
// @Description Принимает refresh токен и возвращает новую пару access/refresh.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyRefresh true "Refresh токен"
// @Success 200 {object} response.Response "Новая пара токенов"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ошибка валидации"
// @Failure 401 {object} response.ErrorResponse "Недействительный refresh токен"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRefresh
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.authService.Refresh(r.Context(), req.Refresh)
	if errors.Is(err, services.ErrInvalidToken) {
		log.Warn("invalid refresh token")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid refresh token"))
		return
	}
	if err != nil {
		log.Error("refresh failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("tokens refreshed", slog.String("uid", session.User.UUID))
	render.JSON(w, r, response.StatusOKWithData(session))
}
