package search

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const waitFor = time.Second

type reply struct {
	res *domain.PagedResult[domain.Property]
	err error
}

type pendingCall struct {
	query domain.SearchQuery
	reply chan reply
}

func (p *pendingCall) succeed(res *domain.PagedResult[domain.Property]) {
	p.reply <- reply{res: res}
}

func (p *pendingCall) fail(err error) {
	p.reply <- reply{err: err}
}

// gatedSearcher hands every call to the test, which decides when and how
// it completes.
type gatedSearcher struct {
	calls chan *pendingCall
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{calls: make(chan *pendingCall, 32)}
}

func (g *gatedSearcher) Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error) {
	call := &pendingCall{query: q, reply: make(chan reply, 1)}
	g.calls <- call
	select {
	case r := <-call.reply:
		return r.res, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *gatedSearcher) expectCall(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-g.calls:
		return call
	case <-time.After(waitFor):
		t.Fatal("expected a search call")
		return nil
	}
}

func (g *gatedSearcher) expectNoCall(t *testing.T) {
	t.Helper()
	select {
	case call := <-g.calls:
		t.Fatalf("unexpected search call for %s", call.query.Key())
	case <-time.After(50 * time.Millisecond):
	}
}

type countingObserver struct {
	started, finished, discarded atomic.Int32
}

func (o *countingObserver) FetchStarted()                      { o.started.Add(1) }
func (o *countingObserver) FetchFinished(error, time.Duration) { o.finished.Add(1) }
func (o *countingObserver) FetchDiscarded()                    { o.discarded.Add(1) }

type viewRecorder struct {
	mu    sync.Mutex
	views []ViewModel
}

func (r *viewRecorder) record(v ViewModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *viewRecorder) snapshot() []ViewModel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ViewModel(nil), r.views...)
}

func page(total, pageNo, size, items int) *domain.PagedResult[domain.Property] {
	res := &domain.PagedResult[domain.Property]{Total: total, Page: pageNo, PageSize: size}
	for i := 0; i < items; i++ {
		res.Items = append(res.Items, domain.Property{ID: string(rune('a' + i)), Name: "Property", Price: 1000})
	}
	return res
}

type fixture struct {
	clock    *clock.Mock
	searcher *gatedSearcher
	observer *countingObserver
	views    *viewRecorder
	ctrl     *Controller
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		clock:    clock.NewMock(),
		searcher: newGatedSearcher(),
		observer: &countingObserver{},
		views:    &viewRecorder{},
	}
	base := []Option{
		WithClock(f.clock),
		WithObserver(f.observer),
		WithListener(f.views.record),
	}
	f.ctrl = NewController(f.searcher, append(base, opts...)...)
	t.Cleanup(f.ctrl.Close)
	return f
}

// started runs the initial fetch to completion with res.
func (f *fixture) started(t *testing.T, res *domain.PagedResult[domain.Property]) {
	t.Helper()
	f.ctrl.Start()
	f.searcher.expectCall(t).succeed(res)
	f.waitIdle(t)
}

func (f *fixture) waitIdle(t *testing.T) {
	t.Helper()
	require.Eventually(t, func() bool { return !f.ctrl.View().IsLoading }, waitFor, time.Millisecond)
}

func TestController_InitialSearch(t *testing.T) {
	f := newFixture(t)

	f.ctrl.Start()
	assert.True(t, f.ctrl.View().IsLoading)

	call := f.searcher.expectCall(t)
	assert.Equal(t, domain.DefaultQuery(), call.query)

	call.succeed(page(3, 1, 20, 3))
	f.waitIdle(t)

	view := f.ctrl.View()
	require.NotNil(t, view.Data)
	assert.Len(t, view.Data.Items, 3)
	assert.Empty(t, view.Error)

	views := f.views.snapshot()
	require.Len(t, views, 2)
	assert.True(t, views[0].IsLoading)
	assert.False(t, views[1].IsLoading)
}

func TestController_StartIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(0, 1, 20, 0))

	f.ctrl.Start()
	f.searcher.expectNoCall(t)
}

func TestController_UpdatesBeforeStartAreFetchedImmediately(t *testing.T) {
	f := newFixture(t)

	f.ctrl.Update(Patch{Name: Set("casa")})
	f.searcher.expectNoCall(t)

	f.ctrl.Start()
	call := f.searcher.expectCall(t)
	require.NotNil(t, call.query.Name)
	assert.Equal(t, "casa", *call.query.Name)
}

func TestController_DebouncesNameBurst(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(0, 1, 20, 0))

	for _, v := range []string{"c", "ca", "cas", "casa"} {
		f.ctrl.Update(Patch{Name: Set(v)})
		f.clock.Add(100 * time.Millisecond)
	}
	f.searcher.expectNoCall(t)
	assert.Nil(t, f.ctrl.Effective().Name)

	f.clock.Add(DefaultDebounce)

	call := f.searcher.expectCall(t)
	require.NotNil(t, call.query.Name)
	assert.Equal(t, "casa", *call.query.Name)
	f.searcher.expectNoCall(t)
}

func TestController_NameAndAddressDebounceIndependently(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(0, 1, 20, 0))

	f.ctrl.Update(Patch{Name: Set("loft")})
	f.clock.Add(300 * time.Millisecond)
	f.ctrl.Update(Patch{Address: Set("Madrid")})
	f.clock.Add(200 * time.Millisecond)

	first := f.searcher.expectCall(t)
	assert.Equal(t, "loft", *first.query.Name)
	assert.Nil(t, first.query.Address)
	first.succeed(page(0, 1, 20, 0))

	f.clock.Add(300 * time.Millisecond)
	second := f.searcher.expectCall(t)
	assert.Equal(t, "loft", *second.query.Name)
	assert.Equal(t, "Madrid", *second.query.Address)
}

func TestController_PricesAndPagingAreNotDebounced(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(100, 1, 20, 20))

	f.ctrl.Update(Patch{MinPrice: Set(150000.0)})
	call := f.searcher.expectCall(t)
	require.NotNil(t, call.query.MinPrice)
	assert.Equal(t, 150000.0, *call.query.MinPrice)
	call.succeed(page(100, 1, 20, 20))
	f.waitIdle(t)

	f.ctrl.GoToPage(3)
	call = f.searcher.expectCall(t)
	assert.Equal(t, 3, call.query.Page)
	assert.Equal(t, 150000.0, *call.query.MinPrice)
}

func TestController_EmptyNameIsNoChange(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(0, 1, 20, 0))

	f.ctrl.Update(Patch{Name: Set("")})
	f.clock.Add(DefaultDebounce)
	f.searcher.expectNoCall(t)
	assert.Equal(t, domain.DefaultQuery(), f.ctrl.Effective())
}

func TestController_LatestFetchWins(t *testing.T) {
	f := newFixture(t)

	f.ctrl.Start()
	a := f.searcher.expectCall(t)

	f.ctrl.Update(Patch{MaxPrice: Set(500000.0)})
	b := f.searcher.expectCall(t)

	b.succeed(page(7, 1, 20, 7))
	require.Eventually(t, func() bool { return f.observer.finished.Load() == 1 }, waitFor, time.Millisecond)

	a.succeed(page(99, 1, 20, 20))
	require.Eventually(t, func() bool { return f.observer.discarded.Load() == 1 }, waitFor, time.Millisecond)

	view := f.ctrl.View()
	require.NotNil(t, view.Data)
	assert.Equal(t, 7, view.Data.Total)
	assert.False(t, view.IsLoading)
}

func TestController_StaleFailureDoesNotOverwrite(t *testing.T) {
	f := newFixture(t)

	f.ctrl.Start()
	a := f.searcher.expectCall(t)
	f.ctrl.GoToPage(2)
	b := f.searcher.expectCall(t)

	a.fail(errors.New("connection refused"))
	require.Eventually(t, func() bool { return f.observer.discarded.Load() == 1 }, waitFor, time.Millisecond)
	assert.True(t, f.ctrl.View().IsLoading, "b is still outstanding")

	b.succeed(page(40, 2, 20, 20))
	f.waitIdle(t)
	assert.Empty(t, f.ctrl.View().Error)
	assert.Equal(t, 2, f.ctrl.View().Data.Page)
}

func TestController_FailureSetsError(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(3, 1, 20, 3))

	f.ctrl.Update(Patch{MinPrice: Set(1.0)})
	f.searcher.expectCall(t).fail(errors.New("server error: 500 Internal Server Error"))
	f.waitIdle(t)

	view := f.ctrl.View()
	assert.Equal(t, "server error: 500 Internal Server Error", view.Error)
	assert.Nil(t, view.Data)
}

func TestController_LoadingKeepsPreviousDataAndClearsError(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	f.searcher.expectCall(t).fail(errors.New("boom"))
	f.waitIdle(t)
	require.Equal(t, "boom", f.ctrl.View().Error)

	f.ctrl.Refetch()
	loading := f.ctrl.View()
	assert.True(t, loading.IsLoading)
	assert.Empty(t, loading.Error)

	f.searcher.expectCall(t).succeed(page(1, 1, 20, 1))
	f.waitIdle(t)
	assert.Empty(t, f.ctrl.View().Error)
	assert.NotNil(t, f.ctrl.View().Data)
}

func TestController_RefetchReissuesSameQuery(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(3, 1, 20, 3))

	f.ctrl.Refetch()
	call := f.searcher.expectCall(t)
	assert.Equal(t, domain.DefaultQuery(), call.query)
}

func TestController_NextAndPrevBoundaries(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(40, 1, 20, 20))

	f.ctrl.PrevPage()
	f.searcher.expectNoCall(t)
	assert.Equal(t, 1, f.ctrl.Query().Page)

	f.ctrl.NextPage()
	call := f.searcher.expectCall(t)
	assert.Equal(t, 2, call.query.Page)
	call.succeed(page(40, 2, 20, 20))
	f.waitIdle(t)

	f.ctrl.NextPage()
	f.searcher.expectNoCall(t)
	assert.Equal(t, 2, f.ctrl.Query().Page)
}

func TestController_NextPageNeedsData(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	f.searcher.expectCall(t).fail(errors.New("down"))
	f.waitIdle(t)

	f.ctrl.NextPage()
	f.searcher.expectNoCall(t)
	assert.Equal(t, 1, f.ctrl.Query().Page)
}

func TestController_FilterChangeReanchorsPage(t *testing.T) {
	f := newFixture(t, WithInitialQuery(domain.SearchQuery{Page: 4, PageSize: 20}))
	f.started(t, page(200, 4, 20, 20))

	f.ctrl.Update(Patch{MaxPrice: Set(300000.0)})
	call := f.searcher.expectCall(t)
	assert.Equal(t, 1, call.query.Page)
}

func TestController_ClearFlushesPendingText(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(0, 1, 20, 0))

	f.ctrl.Update(Patch{Name: Set("villa")})
	f.clock.Add(DefaultDebounce)
	f.searcher.expectCall(t).succeed(page(2, 1, 20, 2))
	f.waitIdle(t)

	f.ctrl.Update(Patch{Address: Set("Sevil")})
	f.ctrl.Clear()

	call := f.searcher.expectCall(t)
	assert.Equal(t, domain.DefaultQuery(), call.query)

	f.clock.Add(DefaultDebounce)
	f.searcher.expectNoCall(t)
}

func TestController_ZeroDebounce(t *testing.T) {
	f := newFixture(t, WithDebounce(0))
	f.started(t, page(0, 1, 20, 0))

	f.ctrl.Update(Patch{Name: Set("duplex")})
	call := f.searcher.expectCall(t)
	assert.Equal(t, "duplex", *call.query.Name)
}

func TestController_CloseSuppressesCompletions(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Start()
	call := f.searcher.expectCall(t)

	f.ctrl.Close()
	before := len(f.views.snapshot())

	call.succeed(page(3, 1, 20, 3))
	assert.Nil(t, f.ctrl.View().Data)
	assert.Len(t, f.views.snapshot(), before)
}

func TestController_CloseStopsTimers(t *testing.T) {
	f := newFixture(t)
	f.started(t, page(0, 1, 20, 0))

	f.ctrl.Update(Patch{Name: Set("atico")})
	f.ctrl.Close()
	f.clock.Add(DefaultDebounce)
	f.searcher.expectNoCall(t)

	f.ctrl.Update(Patch{Name: Set("other")})
	f.ctrl.Refetch()
	f.searcher.expectNoCall(t)
}
