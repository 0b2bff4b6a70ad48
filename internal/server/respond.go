package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	cferrors "github.com/certforge/certforge/pkg/errors"
)

type errorBody struct {
	Error string        `json:"error"`
	Code  cferrors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch cferrors.GetCode(err) {
	case cferrors.ErrCodeInvalidInput, cferrors.ErrCodeInvalidImage, cferrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case cferrors.ErrCodeInvalidDesign, cferrors.ErrCodeInvalidCanvasGeometry:
		return http.StatusUnprocessableEntity
	case cferrors.ErrCodeNotFound:
		return http.StatusNotFound
	case cferrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: cferrors.UserMessage(err), Code: cferrors.GetCode(err)}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()), "error", err)
		if body.Code == "" {
			body.Error = "Internal Server Error"
		}
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON body of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return cferrors.New(cferrors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}
