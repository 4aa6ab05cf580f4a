package http

import (
	"encoding/json"
	"net/http"

	apperror "github.com/ticketstats/ticketstats/pkg/error"
)

// Envelope is the body of every error response
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Code    string      `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	writeJSON(w, appErr.Status, Envelope{
		Status:  false,
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}
