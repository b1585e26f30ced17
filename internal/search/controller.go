package search

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Abdurahmanit/GroupProject/property-portal/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/property-portal/internal/property/domain"
)

const DefaultDebounce = 500 * time.Millisecond

// Searcher is the property search collaborator the controller fetches from.
type Searcher interface {
	Search(ctx context.Context, q domain.SearchQuery) (*domain.PagedResult[domain.Property], error)
}

// ViewModel is what the presentation layer renders. After a fetch settles
// either Data or Error is set, never both.
type ViewModel struct {
	Data      *domain.PagedResult[domain.Property]
	IsLoading bool
	Error     string
}

// Observer receives fetch lifecycle events, typically for metrics.
type Observer interface {
	FetchStarted()
	FetchFinished(err error, elapsed time.Duration)
	FetchDiscarded()
}

type nopObserver struct{}

func (nopObserver) FetchStarted()                      {}
func (nopObserver) FetchFinished(error, time.Duration) {}
func (nopObserver) FetchDiscarded()                    {}

type Option func(*Controller)

func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithDebounce sets the quiescence window for the name and address
// filters. Zero applies text changes immediately.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

func WithInitialQuery(q domain.SearchQuery) Option {
	return func(c *Controller) { c.store = NewQueryStore(q) }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithListener registers fn to receive every view model change. Listeners
// run with the controller locked and must not call back into it.
func WithListener(fn func(ViewModel)) Option {
	return func(c *Controller) { c.listeners = append(c.listeners, fn) }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// debouncer tracks one free-text filter. gen invalidates timers that were
// replaced or stopped but already fired.
type debouncer struct {
	timer *clock.Timer
	gen   uint64
}

func (d *debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Controller drives property searches from a QueryStore. Text filters are
// debounced, every change of the effective query issues one fetch, and
// only the most recently issued fetch may write the view model.
type Controller struct {
	searcher  Searcher
	store     *QueryStore
	clock     clock.Clock
	debounce  time.Duration
	log       logger.Logger
	observer  Observer
	listeners []func(ViewModel)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu         sync.Mutex
	started    bool
	closed     bool
	name       debouncer
	address    debouncer
	effName    *string
	effAddress *string
	seq        uint64
	lastKey    string
	view       ViewModel
}

func NewController(searcher Searcher, opts ...Option) *Controller {
	c := &Controller{
		searcher: searcher,
		clock:    clock.New(),
		debounce: DefaultDebounce,
		log:      logger.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = NewQueryStore(domain.DefaultQuery())
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Start issues the initial fetch for the current query.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started || c.closed {
		return
	}
	c.started = true
	q := c.store.Query()
	c.effName, c.effAddress = q.Name, q.Address
	c.issue(c.effectiveLocked())
}

// Update applies p to the query. Name and address changes reach the
// effective query once their debounce window elapses; everything else is
// applied at once.
func (c *Controller) Update(p Patch) domain.SearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.store.Query()
	}
	prev := c.store.Query()
	next := c.store.Update(p)
	if !c.started {
		return next
	}
	if !sameText(prev.Name, next.Name) {
		c.schedule(&c.name, func() { c.effName = c.store.Query().Name })
	}
	if !sameText(prev.Address, next.Address) {
		c.schedule(&c.address, func() { c.effAddress = c.store.Query().Address })
	}
	c.reconcile()
	return next
}

// NextPage moves forward unless the last loaded result shows the current
// page is the final one. It is a no-op before any data has loaded.
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.view.Data == nil {
		return
	}
	if c.store.NextPage(c.view.Data.Total) {
		c.reconcile()
	}
}

func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.store.PrevPage() {
		c.reconcile()
	}
}

func (c *Controller) GoToPage(n int) {
	c.Update(Page(n))
}

// Clear drops all filters. Pending text debounces are discarded and the
// cleared query is fetched straight away.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.store.Clear()
	if !c.started {
		return
	}
	c.name.stop()
	c.address.stop()
	c.effName, c.effAddress = nil, nil
	c.reconcile()
}

// Refetch re-issues the current effective query even if it is unchanged.
func (c *Controller) Refetch() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.started {
		return
	}
	c.issue(c.effectiveLocked())
}

// Query returns the query as last updated, before debouncing.
func (c *Controller) Query() domain.SearchQuery {
	return c.store.Query()
}

// Effective returns the query the controller fetches with.
func (c *Controller) Effective() domain.SearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effectiveLocked()
}

func (c *Controller) View() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Close stops pending timers and suppresses every later completion. It
// waits for in-flight searches to return.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.name.stop()
	c.address.stop()
	c.cancel()
	c.mu.Unlock()

	c.wg.Wait()
	c.log.Debugw("SearchController.Close: closed", "lastSeq", c.seq)
}

func (c *Controller) effectiveLocked() domain.SearchQuery {
	q := c.store.Query()
	q.Name = c.effName
	q.Address = c.effAddress
	return q
}

func (c *Controller) schedule(d *debouncer, publish func()) {
	d.stop()
	if c.debounce <= 0 {
		publish()
		return
	}
	gen := d.gen
	d.timer = c.clock.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || d.gen != gen {
			return
		}
		d.timer = nil
		publish()
		c.reconcile()
	})
}

// reconcile fetches when the effective query differs from the last one
// issued.
func (c *Controller) reconcile() {
	q := c.effectiveLocked()
	if q.Key() == c.lastKey {
		return
	}
	c.issue(q)
}

func (c *Controller) issue(q domain.SearchQuery) {
	c.seq++
	seq := c.seq
	c.lastKey = q.Key()
	c.setView(ViewModel{Data: c.view.Data, IsLoading: true})
	c.observer.FetchStarted()
	c.log.Debugw("SearchController.issue: fetching", "seq", seq, "query", c.lastKey)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		started := c.clock.Now()
		res, err := c.searcher.Search(c.ctx, q)
		c.settle(seq, q, res, err, c.clock.Now().Sub(started))
	}()
}

func (c *Controller) settle(seq uint64, q domain.SearchQuery, res *domain.PagedResult[domain.Property], err error, elapsed time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		c.observer.FetchDiscarded()
		c.log.Debugw("SearchController.settle: discarding superseded result", "seq", seq, "latest", c.seq, "closed", c.closed)
		return
	}
	c.observer.FetchFinished(err, elapsed)
	if err != nil {
		c.log.Warnw("SearchController.settle: search failed", "seq", seq, "error", err)
		c.setView(ViewModel{Error: err.Error()})
		return
	}
	if res == nil {
		res = &domain.PagedResult[domain.Property]{Page: q.Page, PageSize: q.PageSize}
	}
	c.setView(ViewModel{Data: res})
}

func (c *Controller) setView(v ViewModel) {
	c.view = v
	for _, fn := range c.listeners {
		fn(v)
	}
}

func sameText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
