package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/adapter/email"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

type MockPropertyAPI struct{ mock.Mock }

func (m *MockPropertyAPI) Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PagedResult[domain.Property]), args.Error(1)
}
func (m *MockPropertyAPI) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyAPI) Create(ctx context.Context, in domain.PropertyInput) (*domain.Property, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyAPI) Update(ctx context.Context, id string, in domain.PropertyInput) (*domain.Property, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyAPI) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockPropertyCache struct{ mock.Mock }

func (m *MockPropertyCache) SearchKey(ctx context.Context, q domain.SearchQuery) string {
	args := m.Called(ctx, q)
	return args.String(0)
}
func (m *MockPropertyCache) GetSearch(ctx context.Context, key string) (*domain.PagedResult[domain.Property], bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.PagedResult[domain.Property]), args.Bool(1)
}
func (m *MockPropertyCache) SetSearch(ctx context.Context, key string, res *domain.PagedResult[domain.Property]) {
	m.Called(ctx, key, res)
}
func (m *MockPropertyCache) GetProperty(ctx context.Context, id string) (*domain.Property, bool) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*domain.Property), args.Bool(1)
}
func (m *MockPropertyCache) SetProperty(ctx context.Context, p *domain.Property) {
	m.Called(ctx, p)
}
func (m *MockPropertyCache) InvalidateProperty(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockPropertyCache) InvalidateSearches(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) PublishPropertyCreated(ctx context.Context, p *domain.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishPropertyUpdated(ctx context.Context, p *domain.Property) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
func (m *MockEventPublisher) PublishPropertyDeleted(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) PropertyCreated()                 { m.Called() }
func (m *MockMetrics) PropertyUpdated()                 { m.Called() }
func (m *MockMetrics) PropertyDeleted()                 { m.Called() }
func (m *MockMetrics) UpstreamError(op, errType string) { m.Called(op, errType) }
func (m *MockMetrics) ContactSubmitted(outcome string)  { m.Called(outcome) }

type MockEmailSender struct{ mock.Mock }

func (m *MockEmailSender) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
