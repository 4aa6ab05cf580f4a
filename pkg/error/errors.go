package error

import (
	"errors"
	"net/http"

	"github.com/ticketstats/ticketstats/internal/domain"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest          = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrNotFound            = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrRateLimited         = &AppError{Code: "RATE_LIMITED", Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests}
	ErrUpstreamUnavailable = &AppError{Code: "UPSTREAM_UNAVAILABLE", Message: "Ticket service is unavailable", Status: http.StatusBadGateway}
	ErrUpstreamAuth        = &AppError{Code: "UPSTREAM_AUTH_FAILED", Message: "Could not authenticate against the ticket service", Status: http.StatusBadGateway}
	ErrInvalidTicketData   = &AppError{Code: "INVALID_TICKET_DATA", Message: "Ticket service returned malformed data", Status: http.StatusBadGateway}
	ErrInternalServer      = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

// MapError translates an error from the statistics pipeline into an HTTP-facing AppError
func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var domainErr *domain.DomainError
	switch {
	case errors.Is(err, domain.ErrAuth):
		return ErrUpstreamAuth
	case errors.Is(err, domain.ErrFetch):
		return ErrUpstreamUnavailable
	case errors.Is(err, domain.ErrDataShape):
		return ErrInvalidTicketData
	case errors.As(err, &domainErr):
		return NewBadRequest(domainErr.Message)
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
