package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/darianmavgo/tabconv/converters/common"
	"github.com/darianmavgo/tabconv/logging"
)

// apiResponse is the JSON body of health, listing and failure responses.
type apiResponse struct {
	Success bool     `json:"success"`
	Status  int      `json:"status,omitempty"`
	Message string   `json:"message,omitempty"`
	Routes  []string `json:"routes,omitempty"`
}

// writeJSON encodes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// writeInternalError writes the JSON body used for unexpected failures.
func writeInternalError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, apiResponse{
		Success: false,
		Status:  http.StatusInternalServerError,
		Message: message,
	})
}

// writeText writes a plain-text error body.
func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	w.Write([]byte(message))
}

// respondError maps a conversion error to a response. Problems with the
// upload itself are 400 text; parse and serialization failures are 500
// text; anything else is a 500 JSON body.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	switch {
	case common.IsUserError(err):
		logger.Info("rejected upload", "path", r.URL.Path, "error", err.Error())
		writeText(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrMalformedInput), errors.Is(err, common.ErrEncoding):
		logger.Error("conversion failed", "path", r.URL.Path, "error", err.Error())
		writeText(w, http.StatusInternalServerError, err.Error())
	default:
		logger.Error("request error", "path", r.URL.Path, "error", err.Error())
		writeInternalError(w, err.Error())
	}
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, apiResponse{
		Success: false,
		Message: "API route does not exist",
	})
}
