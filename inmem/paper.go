// Package inmem holds papers in memory. Nothing survives the process; it
// is used in tests and for throwaway runs.
package inmem

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobinette/paperlog"
)

type entry struct {
	seq   int
	paper paperlog.Paper
}

type PaperStore struct {
	mu     sync.RWMutex
	db     map[string]*entry
	maxSeq int

	hub *paperlog.Hub
}

func NewPaperStore() *PaperStore {
	s := &PaperStore{db: make(map[string]*entry)}
	s.hub = paperlog.NewHub(s.List)
	return s
}

// Add stores a new paper. The id, the creation date and the status are
// set by the store.
func (s *PaperStore) Add(ctx context.Context, paper *paperlog.Paper) error {
	s.mu.Lock()
	paper.ID = uuid.NewString()
	paper.CreatedAt = time.Now()
	paper.Status = paperlog.Unread
	paper.ReadAt = nil
	if paper.Authors == nil {
		paper.Authors = []paperlog.Author{}
	}

	s.maxSeq++
	s.db[paper.ID] = &entry{seq: s.maxSeq, paper: clone(*paper)}
	s.mu.Unlock()

	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Get(ctx context.Context, id string) (paperlog.Paper, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.db[id]
	if !ok {
		return paperlog.Paper{}, paperlog.PaperNotFound(id)
	}
	return clone(e.paper), nil
}

func (s *PaperStore) Update(ctx context.Context, id string, u paperlog.Update) error {
	s.mu.Lock()
	e, ok := s.db[id]
	if !ok {
		s.mu.Unlock()
		return paperlog.PaperNotFound(id)
	}
	u.Apply(&e.paper, time.Now())
	e.paper = clone(e.paper)
	s.mu.Unlock()

	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.db[id]; !ok {
		s.mu.Unlock()
		return paperlog.PaperNotFound(id)
	}
	delete(s.db, id)
	s.mu.Unlock()

	s.hub.Notify(ctx)
	return nil
}

// List returns all the papers, newest first.
func (s *PaperStore) List(ctx context.Context) ([]paperlog.Paper, error) {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.db))
	for _, e := range s.db {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.paper.CreatedAt.Equal(b.paper.CreatedAt) {
			return a.paper.CreatedAt.After(b.paper.CreatedAt)
		}
		return a.seq > b.seq
	})

	papers := make([]paperlog.Paper, len(entries))
	for i, e := range entries {
		papers[i] = clone(e.paper)
	}
	s.mu.RUnlock()

	return papers, nil
}

// Import stores papers as they are, keeping their id and creation date.
// It is used to load exported libraries.
func (s *PaperStore) Import(ctx context.Context, docs []paperlog.Document) error {
	s.mu.Lock()
	for _, doc := range docs {
		p := paperlog.Normalize(doc)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}
		s.maxSeq++
		s.db[p.ID] = &entry{seq: s.maxSeq, paper: p}
	}
	s.mu.Unlock()

	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Subscribe(ctx context.Context) *paperlog.Subscription {
	return s.hub.Subscribe(ctx)
}

// clone copies the slices and pointers of p so that callers never share
// memory with the store.
func clone(p paperlog.Paper) paperlog.Paper {
	p.Authors = append([]paperlog.Author{}, p.Authors...)
	if p.Year != nil {
		y := *p.Year
		p.Year = &y
	}
	if p.CitationCount != nil {
		c := *p.CitationCount
		p.CitationCount = &c
	}
	if p.ReadAt != nil {
		r := *p.ReadAt
		p.ReadAt = &r
	}
	return p
}
