package services

import (
	"context"
	"strings"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
	"github.com/bobinette/paperlog/log"
	"github.com/bobinette/paperlog/lookup"
)

// ErrConfirmationRequired is returned when a paper would leave the read
// status without the caller confirming it.
var ErrConfirmationRequired = errors.New("moving a paper out of read clears its read date and must be confirmed", errors.Conflict())

type Lookuper interface {
	Lookup(ctx context.Context, q string) *lookup.Metadata
}

type PaperService struct {
	store  paperlog.PaperStore
	index  paperlog.PaperIndex
	lookup Lookuper
	logger log.Logger
}

func NewPaperService(
	store paperlog.PaperStore,
	index paperlog.PaperIndex,
	lookup Lookuper,
	logger log.Logger,
) *PaperService {
	return &PaperService{
		store:  store,
		index:  index,
		lookup: lookup,
		logger: logger,
	}
}

func (s *PaperService) Get(ctx context.Context, id string) (paperlog.Paper, error) {
	return s.store.Get(ctx, id)
}

func (s *PaperService) List(ctx context.Context) ([]paperlog.Paper, error) {
	return s.store.List(ctx)
}

// Create adds a new unread paper.
func (s *PaperService) Create(ctx context.Context, paper paperlog.Paper) (paperlog.Paper, error) {
	if paper.ID != "" {
		return paperlog.Paper{}, errors.New("id already set", errors.BadRequest())
	}

	edit, err := clean(paperlog.EditOf(paper))
	if err != nil {
		return paperlog.Paper{}, err
	}

	p := paperlog.Paper{Note: paper.Note}
	paperlog.Update{Edit: &edit}.Apply(&p, p.CreatedAt)

	if err := s.store.Add(ctx, &p); err != nil {
		return paperlog.Paper{}, err
	}

	s.indexPaper(p)
	return p, nil
}

// Edit replaces the editable fields of a paper. The status and the read
// date are not editable.
func (s *PaperService) Edit(ctx context.Context, id string, edit paperlog.Edit) (paperlog.Paper, error) {
	edit, err := clean(edit)
	if err != nil {
		return paperlog.Paper{}, err
	}

	if err := s.store.Update(ctx, id, paperlog.Update{Edit: &edit}); err != nil {
		return paperlog.Paper{}, err
	}
	return s.reindexed(ctx, id)
}

func (s *PaperService) SaveNote(ctx context.Context, id string, note string) (paperlog.Paper, error) {
	if err := s.store.Update(ctx, id, paperlog.Update{Note: &note}); err != nil {
		return paperlog.Paper{}, err
	}
	return s.reindexed(ctx, id)
}

// AdvanceStatus moves the paper to the next status of the cycle and
// returns it. Leaving read needs confirmed to be true.
func (s *PaperService) AdvanceStatus(ctx context.Context, id string, confirmed bool) (paperlog.Status, error) {
	paper, err := s.store.Get(ctx, id)
	if err != nil {
		return "", err
	}

	current := paper.EffectiveStatus()
	if current == paperlog.Read && !confirmed {
		return current, ErrConfirmationRequired
	}

	next, u := paperlog.Transition(current)
	if err := s.store.Update(ctx, id, u); err != nil {
		return "", err
	}
	return next, nil
}

func (s *PaperService) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.index.Delete(id); err != nil {
		s.logger.Errorf("could not remove paper %s from the index: %v", id, err)
	}
	return nil
}

// Search returns the ids of the papers matching q. An empty q matches
// everything and gives nil.
func (s *PaperService) Search(ctx context.Context, q string) ([]string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	ids, err := s.index.Search(q)
	if err != nil {
		return nil, errors.New("could not search papers", errors.WithCause(err))
	}
	return ids, nil
}

// Lookup fetches the metadata of the paper designated by q, an arXiv url
// or identifier or a title. It returns nil when nothing is found.
func (s *PaperService) Lookup(ctx context.Context, q string) *lookup.Metadata {
	if s.lookup == nil {
		return nil
	}
	return s.lookup.Lookup(ctx, q)
}

// Reindex rebuilds the search index from the store and returns the number
// of papers indexed.
func (s *PaperService) Reindex(ctx context.Context) (int, error) {
	papers, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	if err := s.index.Rebuild(papers); err != nil {
		return 0, errors.New("could not rebuild index", errors.WithCause(err))
	}
	return len(papers), nil
}

// RefreshCitations looks every paper up again and updates the citation
// counts that changed. It returns the number of papers updated.
func (s *PaperService) RefreshCitations(ctx context.Context) (int, error) {
	papers, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, p := range papers {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}

		q := p.Title
		if _, ok := lookup.ExtractArxivID(p.URL); ok {
			q = p.URL
		}

		m := s.Lookup(ctx, q)
		if m == nil || m.CitationCount == nil {
			continue
		}
		if p.CitationCount != nil && *p.CitationCount == *m.CitationCount {
			continue
		}

		edit := paperlog.EditOf(p)
		edit.CitationCount = m.CitationCount
		if err := s.store.Update(ctx, p.ID, paperlog.Update{Edit: &edit}); err != nil {
			s.logger.Errorf("could not update citations of %s: %v", p.ID, err)
			continue
		}
		updated++
	}
	return updated, nil
}

func (s *PaperService) reindexed(ctx context.Context, id string) (paperlog.Paper, error) {
	paper, err := s.store.Get(ctx, id)
	if err != nil {
		return paperlog.Paper{}, err
	}

	s.indexPaper(paper)
	return paper, nil
}

// indexPaper updates the index. The index is rebuilt periodically, so a
// failure is only logged.
func (s *PaperService) indexPaper(paper paperlog.Paper) {
	if err := s.index.Index(paper); err != nil {
		s.logger.Errorf("could not index paper %s: %v", paper.ID, err)
	}
}

// clean trims the fields of e and validates them.
func clean(e paperlog.Edit) (paperlog.Edit, error) {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return e, errors.New("title is required", errors.BadRequest())
	}

	e.URL = strings.TrimSpace(e.URL)
	e.Category = strings.TrimSpace(e.Category)

	authors := make([]paperlog.Author, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, paperlog.Author{Name: name})
		}
	}
	e.Authors = authors

	if e.Year != nil && *e.Year < 0 {
		return e, errors.New("year cannot be negative", errors.BadRequest())
	}
	if e.CitationCount != nil && *e.CitationCount < 0 {
		return e, errors.New("citation count cannot be negative", errors.BadRequest())
	}
	return e, nil
}
