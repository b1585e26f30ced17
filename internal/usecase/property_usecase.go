package usecase

import (
	"context"
	"errors"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/client/propertyapi"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/validation"
)

// PropertyAPI is the remote property service.
type PropertyAPI interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error)
	Update(ctx context.Context, id string, in domain.PropertyInput) (*domain.Property, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type PropertyCache interface {
	SearchKey(ctx context.Context, q domain.SearchQuery) string
	GetSearch(ctx context.Context, key string) (*domain.PagedResult[domain.Property], bool)
	SetSearch(ctx context.Context, key string, res *domain.PagedResult[domain.Property])
	GetProperty(ctx context.Context, id string) (*domain.Property, bool)
	SetProperty(ctx context.Context, p *domain.Property)
	InvalidateProperty(ctx context.Context, id string) error
	InvalidateSearches(ctx context.Context) error
}

type EventPublisher interface {
	PublishPropertyCreated(ctx context.Context, p *domain.Property) error
	PublishPropertyUpdated(ctx context.Context, p *domain.Property) error
	PublishPropertyDeleted(ctx context.Context, id string) error
}

type PropertyMetrics interface {
	PropertyCreated()
	PropertyUpdated()
	PropertyDeleted()
	UpstreamError(operation, errorType string)
}

type nopPublisher struct{}

func (nopPublisher) PublishPropertyCreated(context.Context, *domain.Property) error { return nil }
func (nopPublisher) PublishPropertyUpdated(context.Context, *domain.Property) error { return nil }
func (nopPublisher) PublishPropertyDeleted(context.Context, string) error           { return nil }

type nopMetrics struct{}

func (nopMetrics) PropertyCreated()             {}
func (nopMetrics) PropertyUpdated()             {}
func (nopMetrics) PropertyDeleted()             {}
func (nopMetrics) UpstreamError(string, string) {}

type PropertyUsecase struct {
	api       PropertyAPI
	cache     PropertyCache
	validator *validation.Validator
	publisher EventPublisher
	metrics   PropertyMetrics
	logger    logger.Logger
}

// NewPropertyUsecase wires the property operations. publisher and metrics
// may be nil.
func NewPropertyUsecase(api PropertyAPI, cache PropertyCache, v *validation.Validator, publisher EventPublisher, metrics PropertyMetrics, log logger.Logger) *PropertyUsecase {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &PropertyUsecase{
		api:       api,
		cache:     cache,
		validator: v,
		publisher: publisher,
		metrics:   metrics,
		logger:    log,
	}
}

// Search serves a page of properties, from cache when possible.
func (uc *PropertyUsecase) Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	key := uc.cache.SearchKey(ctx, q)
	if res, ok := uc.cache.GetSearch(ctx, key); ok {
		uc.logger.Debugw("PropertyUsecase.Search: cache hit", "query", q.String())
		return res, nil
	}

	res, err := uc.api.Search(ctx, q)
	if err != nil {
		uc.upstreamFailed("search", err)
		return nil, err
	}
	uc.cache.SetSearch(ctx, key, res)
	return res, nil
}

func (uc *PropertyUsecase) Get(ctx context.Context, id string) (*domain.Property, error) {
	if id == "" {
		return nil, domain.ErrMissingID
	}
	if p, ok := uc.cache.GetProperty(ctx, id); ok {
		return p, nil
	}

	p, err := uc.api.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrPropertyNotFound) {
			uc.upstreamFailed("get", err)
		}
		return nil, err
	}
	uc.cache.SetProperty(ctx, p)
	return p, nil
}

func (uc *PropertyUsecase) Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	if err := uc.validator.Property(in); err != nil {
		uc.logger.Infow("PropertyUsecase.Create: rejected input", "error", err)
		return nil, err
	}

	p, err := uc.api.Create(ctx, in)
	if err != nil {
		uc.upstreamFailed("create", err)
		return nil, err
	}
	uc.logger.Infow("PropertyUsecase.Create: property created", "property_id", p.ID, "name", p.Name)
	uc.metrics.PropertyCreated()

	if err := uc.cache.InvalidateSearches(ctx); err != nil {
		uc.logger.Warnw("PropertyUsecase.Create: failed to invalidate search cache", "error", err)
	}
	uc.cache.SetProperty(ctx, p)
	if err := uc.publisher.PublishPropertyCreated(ctx, p); err != nil {
		uc.logger.Errorw("PropertyUsecase.Create: failed to publish event", "property_id", p.ID, "error", err)
	}
	return p, nil
}

func (uc *PropertyUsecase) Update(ctx context.Context, id string, in domain.PropertyInput) (*domain.Property, error) {
	if id == "" {
		return nil, domain.ErrMissingID
	}
	if err := uc.validator.Property(in); err != nil {
		uc.logger.Infow("PropertyUsecase.Update: rejected input", "property_id", id, "error", err)
		return nil, err
	}

	p, err := uc.api.Update(ctx, id, in)
	if err != nil {
		if !errors.Is(err, domain.ErrPropertyNotFound) {
			uc.upstreamFailed("update", err)
		}
		return nil, err
	}
	uc.logger.Infow("PropertyUsecase.Update: property updated", "property_id", id)
	uc.metrics.PropertyUpdated()

	if err := uc.cache.InvalidateProperty(ctx, id); err != nil {
		uc.logger.Warnw("PropertyUsecase.Update: failed to invalidate cache", "property_id", id, "error", err)
	}
	if err := uc.publisher.PublishPropertyUpdated(ctx, p); err != nil {
		uc.logger.Errorw("PropertyUsecase.Update: failed to publish event", "property_id", id, "error", err)
	}
	return p, nil
}

// Delete reports whether the property existed.
func (uc *PropertyUsecase) Delete(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, domain.ErrMissingID
	}

	deleted, err := uc.api.Delete(ctx, id)
	if err != nil {
		uc.upstreamFailed("delete", err)
		return false, err
	}
	if err := uc.cache.InvalidateProperty(ctx, id); err != nil {
		uc.logger.Warnw("PropertyUsecase.Delete: failed to invalidate cache", "property_id", id, "error", err)
	}
	if !deleted {
		uc.logger.Infow("PropertyUsecase.Delete: property not found", "property_id", id)
		return false, nil
	}

	uc.logger.Infow("PropertyUsecase.Delete: property deleted", "property_id", id)
	uc.metrics.PropertyDeleted()
	if err := uc.publisher.PublishPropertyDeleted(ctx, id); err != nil {
		uc.logger.Errorw("PropertyUsecase.Delete: failed to publish event", "property_id", id, "error", err)
	}
	return true, nil
}

func (uc *PropertyUsecase) upstreamFailed(op string, err error) {
	errType := "other"
	switch {
	case propertyapi.IsNetworkError(err):
		errType = "network"
	case propertyapi.IsServerError(err):
		errType = "server"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		errType = "canceled"
	}
	uc.metrics.UpstreamError(op, errType)
	uc.logger.Errorw("PropertyUsecase: property service call failed", "operation", op, "error_type", errType, "error", err)
}
