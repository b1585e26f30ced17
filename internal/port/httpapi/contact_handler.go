package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

type ContactService interface {
	Submit(ctx context.Context, msg domain.ContactMessage) (*domain.ContactMessage, error)
}

type ContactHandler struct {
	svc    ContactService
	logger logger.Logger
}

func NewContactHandler(svc ContactService, log logger.Logger) *ContactHandler {
	return &ContactHandler{svc: svc, logger: log}
}

func (h *ContactHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var msg domain.ContactMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		h.logger.Infow("ContactHandler.HandleSubmit: failed to decode request body", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := h.svc.Submit(r.Context(), msg)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, saved)
}
