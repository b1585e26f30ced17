package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/client/propertyapi"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/validation"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps usecase errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var verr *validation.ValidationError
	var serr *propertyapi.ServerError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: verr.Fields})
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrMissingID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrPropertyNotFound):
		writeError(w, http.StatusNotFound, domain.ErrPropertyNotFound.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "property service timed out")
	case errors.As(err, &serr) && serr.StatusCode >= 400 && serr.StatusCode < 500:
		writeError(w, serr.StatusCode, serr.Message)
	case propertyapi.IsNetworkError(err), propertyapi.IsServerError(err):
		log.Warnw("httpapi: upstream failure", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Errorw("httpapi: unexpected error", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
