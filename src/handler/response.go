package handler

import (
	"encoding/json"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"github.com/psychoder05/chartworm-backend/src/trading"
)

// envelope is the JSON shape every endpoint responds with.
type envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respond(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func respondData(w http.ResponseWriter, status int, message string, data interface{}) {
	respond(w, status, envelope{Success: true, Message: message, Data: data})
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respond(w, status, envelope{Success: status < 400, Message: message})
}

// respondError maps domain error kinds to HTTP status codes. Internal
// error detail is logged, not exposed.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case trading.IsValidation(err):
		respond(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
	case trading.IsNotFound(err):
		respond(w, http.StatusNotFound, envelope{Success: false, Message: "Trade not found."})
	default:
		logger.WithError(err).Error("request failed")
		respond(w, http.StatusInternalServerError, envelope{Success: false, Message: "Server error"})
	}
}
