package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/secondmind/internal/common"
	"github.com/go-chi/chi/v5/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation),
		errors.Is(err, common.ErrorAlreadyExists),
		errors.Is(err, common.ErrInvalidOrExpiredToken):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrMissingAuthHeader),
		errors.Is(err, common.ErrMalformedAuthHeader),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidAssertion):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotVerified):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, common.ErrorUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is what the client sees. Server-side failures are reduced
// to a generic text; the detail only goes to the log.
func publicMessage(err error, status int) string {
	switch {
	case status == http.StatusBadGateway:
		return common.ErrorUpstream.Error()
	case status >= http.StatusInternalServerError:
		return common.ErrorInternal.Error()
	case status == http.StatusUnauthorized && errors.Is(err, common.ErrorUnauthorized):
		// hide why the token was rejected
		return common.ErrorUnauthorized.Error()
	default:
		return err.Error()
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}
	writeJSON(w, status, errorResponse{Error: publicMessage(err, status)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}
