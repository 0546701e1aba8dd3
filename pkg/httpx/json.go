package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmehra2102/pos-backend/pkg/apperr"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func StatusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidArgument, apperr.KindInsufficientStock:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err as {"error": "..."}; internal errors are logged and
// replaced by a generic message.
func WriteError(w http.ResponseWriter, log *slog.Logger, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
		msg = "internal server error"
	}
	WriteJSON(w, status, ErrorResponse{Error: msg, Kind: apperr.KindOf(err).String()})
}

// Decode reads a JSON body into v and reports malformed input as InvalidArgument.
func Decode(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.InvalidArgument("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var syn *json.SyntaxError
		if errors.As(err, &syn) {
			return apperr.InvalidArgument("malformed JSON at offset %d", syn.Offset)
		}
		return apperr.Wrap(apperr.KindInvalidArgument, err, "invalid body")
	}
	return nil
}
