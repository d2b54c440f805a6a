package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	services "github.com/magabrotheeeer/subscription-manager/internal/services/subscription"
)

func TestStatusOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := StatusOKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	msg := "something went wrong"
	resp := Error(msg)

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, msg, resp.Error)
	assert.Nil(t, resp.Data)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Email string `validate:"required,email"`
		Cycle string `validate:"oneof=weekly monthly yearly"`
		Name  string `validate:"max=3"`
	}

	err := validator.New().Struct(TestStruct{Email: "not-an-email", Cycle: "daily", Name: "toolong"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Email must be a valid email")
	assert.Contains(t, resp.Error, "field Cycle must be one of weekly, monthly, yearly")
	assert.Contains(t, resp.Error, "field Name must be at most 3 characters")
	assert.Len(t, resp.Fields, 3)
}

func TestValidationErrorRequired(t *testing.T) {
	type TestStruct struct {
		Name string `validate:"required"`
	}

	err := validator.New().Struct(TestStruct{})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Equal(t, "field Name is a required field", resp.Error)
}

func TestFromServiceError(t *testing.T) {
	vErr := &services.ValidationError{Errors: []services.FieldError{{Field: "cost", Message: "must not be negative"}}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"permission", fmt.Errorf("wrap: %w", services.ErrPermissionDenied), http.StatusForbidden, "permission denied"},
		{"not found", services.ErrNotFound, http.StatusNotFound, "subscription not found"},
		{"validation", vErr, http.StatusBadRequest, "field cost must not be negative"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := FromServiceError(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}

	_, resp := FromServiceError(vErr)
	assert.Equal(t, vErr.Errors, resp.Fields)
}
