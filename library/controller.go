// Package library holds the application state: the papers received from
// the store and the filters selected by the user. The controller is the
// only subscriber to the store; everything else reads copies of its state.
package library

import (
	"context"
	"sync"
	"time"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/log"
	"github.com/bobinette/paperlog/stats"
	"github.com/bobinette/paperlog/view"
)

type State struct {
	Papers         []paperlog.Paper
	StatusFilter   string
	CategoryFilter string
	Categories     []string

	// InitialLoad is true until the first snapshot is received.
	InitialLoad bool

	// Version is incremented on every change.
	Version uint64
}

type Controller struct {
	store    paperlog.PaperStore
	logger   log.Logger
	location *time.Location

	mu    sync.RWMutex
	state State

	listenersMu sync.Mutex
	listeners   map[chan uint64]struct{}
	errs        func(error)
}

type Option func(*Controller)

// WithLocation sets the time zone of the statistics.
func WithLocation(loc *time.Location) Option {
	return func(c *Controller) { c.location = loc }
}

// WithErrorHandler sets the function called with every subscription error.
func WithErrorHandler(f func(error)) Option {
	return func(c *Controller) { c.errs = f }
}

func NewController(store paperlog.PaperStore, logger log.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		logger:   logger,
		location: time.Local,
		state: State{
			Papers:         []paperlog.Paper{},
			StatusFilter:   view.All,
			CategoryFilter: view.All,
			Categories:     []string{},
			InitialLoad:    true,
		},
		listeners: make(map[chan uint64]struct{}),
		errs:      func(error) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consumes the store subscription until ctx is done. Every snapshot
// replaces the papers held by the controller.
func (c *Controller) Run(ctx context.Context) error {
	sub := c.store.Subscribe(ctx)
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case papers, ok := <-sub.C:
			if !ok {
				return ctx.Err()
			}
			c.replace(papers)
		case err, ok := <-sub.Err:
			if !ok {
				return ctx.Err()
			}
			// The cache is kept: an error is not an empty library.
			c.logger.Errorf("subscription error: %v", err)
			c.errs(err)
		}
	}
}

func (c *Controller) replace(papers []paperlog.Paper) {
	c.update(func(s *State) {
		s.InitialLoad = false
		s.Papers = papers
		s.Categories = view.CategoryOptions(papers)
		s.CategoryFilter = view.ReconcileCategory(s.CategoryFilter, s.Categories)
	})
}

// update is the only place where the state changes.
func (c *Controller) update(f func(*State)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f(&c.state)
	c.state.Version++
	c.notify(c.state.Version)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := c.state
	s.Papers = append([]paperlog.Paper(nil), c.state.Papers...)
	s.Categories = append([]string(nil), c.state.Categories...)
	return s
}

// SetStatusFilter selects the status shown, or all.
func (c *Controller) SetStatusFilter(status string) error {
	status, err := view.ParseStatusFilter(status)
	if err != nil {
		return err
	}

	c.update(func(s *State) { s.StatusFilter = status })
	return nil
}

// SetCategoryFilter selects the category shown. Unknown categories select
// all of them.
func (c *Controller) SetCategoryFilter(category string) {
	c.update(func(s *State) {
		if category == "" {
			category = view.All
		}
		s.CategoryFilter = view.ReconcileCategory(category, s.Categories)
	})
}

// Page is the projection of the papers for display.
type Page struct {
	Groups         []view.Group `json:"groups"`
	Categories     []string     `json:"categories"`
	StatusFilter   string       `json:"statusFilter"`
	CategoryFilter string       `json:"categoryFilter"`
	Total          int          `json:"total"`
	ShowEmpty      bool         `json:"showEmpty"`
	Loading        bool         `json:"loading"`
}

// View projects the current papers with f. Empty filters take the
// selections of the state.
func (c *Controller) View(f view.Filter) Page {
	s := c.State()
	if f.Status == "" {
		f.Status = s.StatusFilter
	}
	if f.Category == "" {
		f.Category = s.CategoryFilter
	}

	groups := view.Project(s.Papers, f)
	return Page{
		Groups:         groups,
		Categories:     s.Categories,
		StatusFilter:   f.Status,
		CategoryFilter: f.Category,
		Total:          view.Count(groups),
		ShowEmpty:      view.ShowEmpty(groups, s.InitialLoad),
		Loading:        s.InitialLoad,
	}
}

// Overview computes the statistics of the current papers.
func (c *Controller) Overview(now time.Time) stats.Overview {
	return stats.Summarize(c.State().Papers, now, c.location)
}

// Listen returns a channel receiving the state version after each change,
// and a function to stop listening. A slow listener only sees the latest
// version.
func (c *Controller) Listen() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)

	c.listenersMu.Lock()
	c.listeners[ch] = struct{}{}
	c.listenersMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.listenersMu.Lock()
			delete(c.listeners, ch)
			c.listenersMu.Unlock()
		})
	}
}

func (c *Controller) notify(version uint64) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	for ch := range c.listeners {
		select {
		case <-ch:
		default:
		}
		ch <- version
	}
}
