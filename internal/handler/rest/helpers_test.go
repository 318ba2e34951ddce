package rest

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"settlement-service/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInsufficientFunds, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		respondError(rec, tt.err)

		assert.Equal(t, tt.wantStatus, rec.Code, "error %v", tt.err)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"message":"`+tt.err.Error()+`"}`, rec.Body.String())
	}
}
