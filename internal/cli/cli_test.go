package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/cli/settings"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/search"
)

type fakeClient struct {
	mu       sync.Mutex
	queries  []domain.SearchQuery
	props    map[string]*domain.Property
	created  []domain.PropertyInput
	updated  map[string]domain.PropertyInput
	searchFn func(q domain.SearchQuery) (*domain.PagedResult[domain.Property], error)
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		props:   map[string]*domain.Property{},
		updated: map[string]domain.PropertyInput{},
	}
}

func (f *fakeClient) Search(_ context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	fn := f.searchFn
	f.mu.Unlock()
	if fn != nil {
		return fn(q)
	}
	return &domain.PagedResult[domain.Property]{Items: []domain.Property{}, Page: q.Page, PageSize: q.PageSize}, nil
}

func (f *fakeClient) GetByID(_ context.Context, id string) (*domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.props[id]
	if !ok {
		return nil, domain.ErrPropertyNotFound
	}
	return p, nil
}

func (f *fakeClient) Create(_ context.Context, in domain.PropertyInput) (*domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return &domain.Property{ID: "new-1", Name: in.Name}, nil
}

func (f *fakeClient) Update(_ context.Context, id string, in domain.PropertyInput) (*domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = in
	return &domain.Property{ID: id, Name: in.Name}, nil
}

func (f *fakeClient) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.props[id]
	delete(f.props, id)
	return ok, nil
}

func (f *fakeClient) searchQueries() []domain.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SearchQuery(nil), f.queries...)
}

type cliFixture struct {
	client   *fakeClient
	settings *settings.Settings
	endpoint string
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	s, err := settings.LoadFrom(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	return &cliFixture{client: newFakeClient(), settings: s}
}

func (f *cliFixture) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	rt := &runtime{
		settings: f.settings,
		newClient: func(baseURL string, _ time.Duration, _ logger.Logger) PropertyClient {
			f.endpoint = baseURL
			return f.client
		},
	}
	root := newRootCommand(rt, strings.NewReader(stdin))
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func propertyPage(total, page, size int) *domain.PagedResult[domain.Property] {
	items := []domain.Property{
		{ID: "p1", Name: "Ático en Malasaña", Address: "Calle del Pez 3", Price: 520000},
		{ID: "p2", Name: "Estudio", Address: "Calle Luna 8", Price: 145000.5},
	}
	return &domain.PagedResult[domain.Property]{Items: items, Total: total, Page: page, PageSize: size}
}

func TestSearchCommand(t *testing.T) {
	f := newCLIFixture(t)
	f.client.searchFn = func(q domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
		return propertyPage(95, q.Page, q.PageSize), nil
	}

	out, err := f.run(t, "", "search", "--name", "atico", "--min-price", "100000", "--page", "3", "--page-size", "10")
	require.NoError(t, err)

	queries := f.client.searchQueries()
	require.Len(t, queries, 1)
	q := queries[0]
	require.NotNil(t, q.Name)
	assert.Equal(t, "atico", *q.Name)
	assert.Nil(t, q.Address)
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, 100000.0, *q.MinPrice)
	assert.Nil(t, q.MaxPrice)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, 10, q.PageSize)

	assert.Contains(t, out, "Ático en Malasaña")
	assert.Contains(t, out, "145000.50")
	assert.Contains(t, out, "Showing 21-30 of 95")
	assert.Contains(t, out, "Pages: 1 2 [3] 4 5 ... 10")
}

func TestSearchCommand_UsesSettingsPageSizeAndEndpoint(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.settings.Set(settings.KeyPageSize, "7"))
	require.NoError(t, f.settings.Set(settings.KeyAPIEndpoint, "http://props.internal:5000/api"))

	_, err := f.run(t, "", "search")
	require.NoError(t, err)
	assert.Equal(t, 7, f.client.searchQueries()[0].PageSize)
	assert.Equal(t, "http://props.internal:5000/api", f.endpoint)

	_, err = f.run(t, "", "--endpoint", "http://override:1/api", "search")
	require.NoError(t, err)
	assert.Equal(t, "http://override:1/api", f.endpoint)
}

func TestSearchCommand_Error(t *testing.T) {
	f := newCLIFixture(t)
	f.client.searchFn = func(domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
		return nil, assert.AnError
	}

	_, err := f.run(t, "", "search")
	require.Error(t, err)
	assert.Equal(t, assert.AnError.Error(), err.Error())
}

func TestSearchCommand_EmptyResult(t *testing.T) {
	f := newCLIFixture(t)
	out, err := f.run(t, "", "search")
	require.NoError(t, err)
	assert.Contains(t, out, "No properties found.")
}

func TestPropertyGetAndDelete(t *testing.T) {
	f := newCLIFixture(t)
	f.client.props["p1"] = &domain.Property{ID: "p1", Name: "Casa rural", Address: "Camino Real 1", Price: 99000, Year: 1950}

	out, err := f.run(t, "", "property", "get", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Casa rural")
	assert.Contains(t, out, "1950")

	out, err = f.run(t, "", "property", "delete", "p1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted property p1")

	_, err = f.run(t, "", "property", "delete", "p1")
	assert.ErrorIs(t, err, domain.ErrPropertyNotFound)
}

func TestPropertyCreate_ValidatesLocally(t *testing.T) {
	f := newCLIFixture(t)

	_, err := f.run(t, "", "property", "create", "--name", "Solar", "--address", "Calle Sol 2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPropertyData)
	assert.Empty(t, f.client.created, "no request on invalid input")

	out, err := f.run(t, "", "property", "create",
		"--name", "Solar", "--address", "Calle Sol 2", "--price", "60000",
		"--owner", "o1", "--code", "SOL-2", "--year", "2001", "--type", "House")
	require.NoError(t, err)
	assert.Contains(t, out, "Created property new-1")
	require.Len(t, f.client.created, 1)
	assert.Equal(t, domain.TypeHouse, f.client.created[0].PropertyType)
}

func TestPropertyUpdate_MergesChangedFlags(t *testing.T) {
	f := newCLIFixture(t)
	f.client.props["p1"] = &domain.Property{
		ID: "p1", Name: "Piso", Address: "Calle Mayor 5", Price: 200000,
		OwnerID: "o1", CodeInternal: "MAD-5", Year: 1990, Bedrooms: 3,
	}

	_, err := f.run(t, "", "property", "update", "p1", "--price", "189000")
	require.NoError(t, err)

	got := f.client.updated["p1"]
	assert.Equal(t, 189000.0, got.Price)
	assert.Equal(t, "Piso", got.Name)
	assert.Equal(t, 3, got.Bedrooms)
	assert.Equal(t, "MAD-5", got.CodeInternal)
}

func TestConfigCommands(t *testing.T) {
	f := newCLIFixture(t)

	out, err := f.run(t, "", "config", "set", "search.debounce", "300ms")
	require.NoError(t, err)
	assert.Contains(t, out, "search.debounce = 300ms")

	out, err = f.run(t, "", "config", "get", "search.debounce")
	require.NoError(t, err)
	assert.Equal(t, "300ms\n", out)

	out, err = f.run(t, "", "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "api.endpoint")
	assert.Contains(t, out, "search.page_size")

	_, err = f.run(t, "", "config", "set", "search.page_size", "500")
	assert.Error(t, err)
}

func TestApplyLine(t *testing.T) {
	ctrl := search.NewController(newFakeClient(), search.WithDebounce(0))
	defer ctrl.Close()
	var out bytes.Buffer

	require.NoError(t, applyLine(ctrl, "page 4", &out))
	assert.Equal(t, 4, ctrl.Query().Page)

	require.NoError(t, applyLine(ctrl, "name  casa con jardín ", &out))
	q := ctrl.Query()
	require.NotNil(t, q.Name)
	assert.Equal(t, "casa con jardín", *q.Name)
	assert.Equal(t, 1, q.Page, "filter change resets the page")

	require.NoError(t, applyLine(ctrl, "min 1000.5", &out))
	require.NoError(t, applyLine(ctrl, "max 90000", &out))
	q = ctrl.Query()
	assert.Equal(t, 1000.5, *q.MinPrice)
	assert.Equal(t, 90000.0, *q.MaxPrice)

	require.NoError(t, applyLine(ctrl, "min", &out))
	assert.Nil(t, ctrl.Query().MinPrice)

	require.NoError(t, applyLine(ctrl, "size 50", &out))
	assert.Equal(t, 50, ctrl.Query().PageSize)

	require.NoError(t, applyLine(ctrl, "clear", &out))
	q = ctrl.Query()
	assert.Nil(t, q.Name)
	assert.Nil(t, q.MaxPrice)

	assert.Error(t, applyLine(ctrl, "min cheap", &out))
	assert.Error(t, applyLine(ctrl, "size 0", &out))
	assert.Error(t, applyLine(ctrl, "jump 3", &out))
	assert.ErrorIs(t, applyLine(ctrl, "quit", &out), errQuit)

	require.NoError(t, applyLine(ctrl, "help", &out))
	assert.Contains(t, out.String(), "next, prev")
}

func TestBrowseCommand(t *testing.T) {
	f := newCLIFixture(t)
	require.NoError(t, f.settings.Set(settings.KeyDebounce, "0s"))
	f.client.searchFn = func(q domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
		return propertyPage(2, q.Page, q.PageSize), nil
	}

	out, err := f.run(t, "bogus\nquit\n", "browse")
	require.NoError(t, err)
	assert.Contains(t, out, `unknown command "bogus"`)
	assert.GreaterOrEqual(t, len(f.client.searchQueries()), 1)
}

func TestRenderView(t *testing.T) {
	var buf bytes.Buffer
	renderView(&buf, search.ViewModel{IsLoading: true})
	assert.Equal(t, "Loading...\n", buf.String())

	buf.Reset()
	renderView(&buf, search.ViewModel{Error: "network error: could not reach the property service"})
	assert.Equal(t, "Error: network error: could not reach the property service\n", buf.String())

	buf.Reset()
	renderView(&buf, search.ViewModel{Data: propertyPage(2, 1, 20)})
	assert.Contains(t, buf.String(), "Showing 1-2 of 2")
	assert.NotContains(t, buf.String(), "Pages:", "single page has no strip")
}
