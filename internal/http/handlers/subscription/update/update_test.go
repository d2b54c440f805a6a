package update

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-manager/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-manager/internal/models"
	services "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
)

// MockService реализует интерфейс update.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Update(ctx context.Context, actor models.Actor, id int, req models.DummySubscriptionPatch) (*models.Subscription, error) {
	args := m.Called(ctx, actor, id, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestUpdateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	actor := models.Actor{ID: "uid-1", Username: "testuser"}

	tests := []struct {
		name           string
		id             string
		body           string
		withActor      bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:      "успешное обновление подписки",
			id:        "123",
			body:      `{"cost":"20.00"}`,
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, 123, mock.MatchedBy(func(p models.DummySubscriptionPatch) bool {
					return p.Cost.Present() && p.Cost.Value.Equal(decimal.NewFromInt(20)) && !p.ServiceName.Set
				})).Return(&models.Subscription{ID: 123, Cost: decimal.NewFromInt(20)}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"cost":"20"`,
		},
		{
			name:           "некорректный JSON",
			id:             "123",
			body:           `not a json`,
			withActor:      true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:      "ошибка валидации",
			id:        "123",
			body:      `{"billing_cycle":"daily"}`,
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, 123, mock.Anything).Return(nil, &services.ValidationError{
					Errors: []services.FieldError{{Field: "billing_cycle", Message: "must be one of weekly, monthly, yearly"}},
				}).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"fields":[{"field":"billing_cycle","message":"must be one of weekly, monthly, yearly"}]`,
		},
		{
			name:      "чужая подписка с некорректным телом",
			id:        "7",
			body:      `{"billing_cycle":"daily","service_name":""}`,
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, 7, mock.Anything).Return(nil, services.ErrPermissionDenied).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"permission denied"}`,
		},
		{
			name:      "null очищает заметку",
			id:        "123",
			body:      `{"notes":null}`,
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, 123, mock.MatchedBy(func(p models.DummySubscriptionPatch) bool {
					return p.Notes.Set && p.Notes.Null && !p.Cost.Set
				})).Return(&models.Subscription{ID: 123}, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"notes":null`,
		},
		{
			name:           "отсутствует авторизация",
			id:             "123",
			body:           `{"cost":"20"}`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:      "общая чужая подписка",
			id:        "7",
			body:      `{"notes":"mine now"}`,
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, 7, mock.Anything).Return(nil, services.ErrPermissionDenied).Once()
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"permission denied"}`,
		},
		{
			name:      "подписка не найдена",
			id:        "8",
			body:      `{"notes":"x"}`,
			withActor: true,
			setupMock: func(m *MockService) {
				m.On("Update", mock.Anything, actor, 8, mock.Anything).Return(nil, services.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"subscription not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPatch, "/subscriptions/"+tt.id, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			if tt.withActor {
				ctx = middlewarectx.WithActor(ctx, actor)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
