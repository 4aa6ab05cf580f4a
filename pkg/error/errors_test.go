package error

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ticketstats/ticketstats/internal/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"app error passes through", ErrRateLimited, "RATE_LIMITED", http.StatusTooManyRequests},
		{"fetch error", &domain.FetchError{URL: "http://upstream", StatusCode: 503}, "UPSTREAM_UNAVAILABLE", http.StatusBadGateway},
		{"wrapped fetch error", fmt.Errorf("get snapshot: %w", &domain.FetchError{Err: errors.New("refused")}), "UPSTREAM_UNAVAILABLE", http.StatusBadGateway},
		{"auth error", &domain.AuthError{Err: errors.New("no secret")}, "UPSTREAM_AUTH_FAILED", http.StatusBadGateway},
		{"data shape error", &domain.DataShapeError{Index: 2, Field: "statusId", Reason: "missing"}, "INVALID_TICKET_DATA", http.StatusBadGateway},
		{"invalid window", domain.ErrInvalidWindow, "BAD_REQUEST", http.StatusBadRequest},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := MapError(tt.err)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.status, appErr.Status)
		})
	}
}
