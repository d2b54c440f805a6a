package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-manager/internal/models"
	services "github.com/magabrotheeeer/subscription-manager/internal/services/auth"
)

type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, email, password string) (*models.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		setupMock      func(m *AuthServiceMock)
		wantStatusCode int
		wantData       map[string]any
		wantError      string
	}{
		{
			name:        "valid login",
			requestBody: map[string]string{"email": "user@example.com", "password": "password123"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user@example.com", "password123").Return(&models.Session{
					Access:  "tok",
					Refresh: "ref",
					User: &models.User{
						UUID: "uid-1", Email: "user@example.com", Username: "user",
						PasswordHash: "hash", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
					},
				}, nil).Once()
			},
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"access":  "tok",
				"refresh": "ref",
				"user": map[string]any{
					"uid":        "uid-1",
					"email":      "user@example.com",
					"username":   "user",
					"role":       "user",
					"created_at": "2024-01-02T03:04:05Z",
				},
			},
		},
		{
			name:           "invalid JSON",
			requestBody:    "{invalid json",
			setupMock:      func(_ *AuthServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "validation error",
			requestBody:    map[string]string{"email": "not-an-email"},
			setupMock:      func(_ *AuthServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "field email must be a valid email, field password is a required field",
		},
		{
			name:        "invalid credentials",
			requestBody: map[string]string{"email": "user@example.com", "password": "wrong"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user@example.com", "wrong").Return(nil, services.ErrInvalidCredentials).Once()
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid credentials",
		},
		{
			name:        "service failure",
			requestBody: map[string]string{"email": "user@example.com", "password": "password123"},
			setupMock: func(m *AuthServiceMock) {
				m.On("Login", mock.Anything, "user@example.com", "password123").Return(nil, errors.New("db down")).Once()
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock := new(AuthServiceMock)
			tt.setupMock(authMock)
			handler := New(newNoopLogger(), authMock)

			var body []byte
			if s, ok := tt.requestBody.(string); ok {
				body = []byte(s)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-req-id"))
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatusCode, rr.Code)

			var resp map[string]any
			assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			if tt.wantError != "" {
				assert.Equal(t, "Error", resp["status"])
				assert.Equal(t, tt.wantError, resp["error"])
			} else {
				assert.Equal(t, "OK", resp["status"])
				assert.Equal(t, tt.wantData, resp["data"])
			}
			authMock.AssertExpectations(t)
		})
	}
}
