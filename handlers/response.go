package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/jalad-shrimali/cdr-analyzer/geofence"
	"github.com/jalad-shrimali/cdr-analyzer/headers"
	"github.com/jalad-shrimali/cdr-analyzer/pipeline"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

// ErrorResponse is the error envelope for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// errBadRequest marks form validation failures raised by the handlers.
var errBadRequest = errors.New("bad request")

type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }
func (e *requestError) Unwrap() error { return errBadRequest }

func badRequest(msg string) error { return &requestError{msg: msg} }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps pipeline errors to HTTP status codes.
func statusOf(err error) int {
	var (
		tooBig  *http.MaxBytesError
		missing *headers.MissingColumnError
		noMatch *geofence.NoMatchError
	)
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest),
		errors.Is(err, sheet.ErrEmptyFile),
		errors.Is(err, sheet.ErrUnsupportedFormat),
		errors.Is(err, geofence.ErrInvalidWindow),
		errors.Is(err, pipeline.ErrInsufficientData),
		errors.As(err, &missing),
		errors.As(err, &noMatch):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError writes the JSON error for err. Internal errors are logged; the
// cause is echoed unless it came from an upstream HTTP call, whose message
// carries the request URL.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	switch status {
	case http.StatusRequestEntityTooLarge:
		msg = "uploaded file is too large"
	case http.StatusInternalServerError:
		h.log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		msg = "failed to process file"
		var upstream *url.Error
		if !errors.As(err, &upstream) {
			msg += ": " + err.Error()
		}
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}
