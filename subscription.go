package paperlog

import (
	"context"
	"sync"
)

// Subscription delivers the full ordered set of papers every time it
// changes. C only ever holds the latest snapshot: a slow reader skips the
// intermediate ones. Delivery failures are sent on Err, never as an empty
// snapshot. Both channels are closed when the subscription ends.
//
// Snapshots are shared between subscribers and must not be modified.
type Subscription struct {
	C   <-chan []Paper
	Err <-chan error

	data chan []Paper
	errs chan error
	done chan struct{}
	once sync.Once
}

// Close ends the subscription. It is safe to call it several times.
func (s *Subscription) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription) offer(papers []Paper, err error) {
	if err != nil {
		select {
		case <-s.errs:
		default:
		}
		s.errs <- err
		return
	}

	select {
	case <-s.data:
	default:
	}
	s.data <- papers
}

// Hub fans snapshots out to the subscribers of a store. Stores call Notify
// after every successful write.
type Hub struct {
	load func(context.Context) ([]Paper, error)

	// notifyMu orders load+offer sequences so that an older snapshot is
	// never delivered after a newer one.
	notifyMu sync.Mutex

	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewHub creates a hub that reads the snapshots with load.
func NewHub(load func(context.Context) ([]Paper, error)) *Hub {
	return &Hub{
		load: load,
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber and sends it the current snapshot.
// The subscription ends when ctx is done or when it is closed.
func (h *Hub) Subscribe(ctx context.Context) *Subscription {
	data := make(chan []Paper, 1)
	errs := make(chan error, 1)
	s := &Subscription{
		C:    data,
		Err:  errs,
		data: data,
		errs: errs,
		done: make(chan struct{}),
	}

	h.notifyMu.Lock()
	papers, err := h.load(ctx)
	h.mu.Lock()
	h.subs[s] = struct{}{}
	s.offer(papers, err)
	h.mu.Unlock()
	h.notifyMu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-s.done:
		}
		h.remove(s)
	}()

	return s
}

// Notify loads the current snapshot and offers it to every subscriber.
// The write that triggered it is already saved, so the load outlives the
// cancellation of ctx.
func (h *Hub) Notify(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	h.notifyMu.Lock()
	defer h.notifyMu.Unlock()

	h.mu.Lock()
	empty := len(h.subs) == 0
	h.mu.Unlock()
	if empty {
		return
	}

	papers, err := h.load(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		s.offer(papers, err)
	}
}

// Len returns the number of active subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subs[s]; !ok {
		return
	}
	delete(h.subs, s)
	close(s.data)
	close(s.errs)
}
