package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/search"
)

const maxBodyBytes = 1 << 20

type PropertyService interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error)
	Get(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id string, in domain.PropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PropertyHandler struct {
	svc    PropertyService
	logger logger.Logger
}

func NewPropertyHandler(svc PropertyService, log logger.Logger) *PropertyHandler {
	return &PropertyHandler{svc: svc, logger: log}
}

// searchResponse is a result page plus what a pager needs to render it.
type searchResponse struct {
	*domain.PagedResult[domain.Property]
	TotalPages int   `json:"totalPages"`
	Pages      []any `json:"pages"`
	First      int   `json:"first"`
	Last       int   `json:"last"`
}

func newSearchResponse(res *domain.PagedResult[domain.Property]) searchResponse {
	seq := search.PageSequence(res.Total, res.PageSize, res.Page)
	pages := make([]any, 0, len(seq))
	for _, item := range seq {
		if item.Gap {
			pages = append(pages, item.String())
		} else {
			pages = append(pages, item.Number)
		}
	}
	first, last := search.ItemRange(res.Total, res.PageSize, res.Page)
	return searchResponse{
		PagedResult: res,
		TotalPages:  res.TotalPages(),
		Pages:       pages,
		First:       first,
		Last:        last,
	}
}

func (h *PropertyHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := domain.ParseSearchQuery(r.URL.Query())
	res, err := h.svc.Search(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, newSearchResponse(res))
}

func (h *PropertyHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.PropertyInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.Header().Set("Location", "/api/properties/"+p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (h *PropertyHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in domain.PropertyInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PropertyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, domain.ErrPropertyNotFound.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PropertyHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		h.logger.Infow("PropertyHandler: failed to decode request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
