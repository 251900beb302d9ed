package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
)

const paperColumns = `id, title, authors, url, year, citation_count, category, note, status, read, read_at, created_at`

// PaperStore stores the papers in the papers table. Dates are stored as
// unix nanoseconds.
type PaperStore struct {
	driver *Driver
	hub    *paperlog.Hub
}

func NewPaperStore(driver *Driver) *PaperStore {
	s := &PaperStore{driver: driver}
	s.hub = paperlog.NewHub(s.List)
	return s
}

// Add inserts a new paper. The id, the creation date and the status are
// set by the store.
func (s *PaperStore) Add(ctx context.Context, paper *paperlog.Paper) error {
	p := *paper
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	p.Status = paperlog.Unread
	p.ReadAt = nil
	if p.Authors == nil {
		p.Authors = []paperlog.Author{}
	}

	if err := insert(ctx, s.driver.db, paperlog.ToDocument(p)); err != nil {
		return errors.New("could not add paper", errors.WithCause(err))
	}

	*paper = p
	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Get(ctx context.Context, id string) (paperlog.Paper, error) {
	row := s.driver.db.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id)
	doc, err := scan(row)
	if err == sql.ErrNoRows {
		return paperlog.Paper{}, paperlog.PaperNotFound(id)
	} else if err != nil {
		return paperlog.Paper{}, errors.New("could not get paper", errors.WithCause(err))
	}
	return paperlog.Normalize(doc), nil
}

// Update applies u to the paper in a single transaction. Read dates are
// stamped with the time of the transaction.
func (s *PaperStore) Update(ctx context.Context, id string, u paperlog.Update) error {
	tx, err := s.driver.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New("could not start transaction", errors.WithCause(err))
	}
	defer tx.Rollback()

	doc, err := scan(tx.QueryRowContext(ctx, `SELECT `+paperColumns+` FROM papers WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return paperlog.PaperNotFound(id)
	} else if err != nil {
		return errors.New("could not get paper", errors.WithCause(err))
	}

	paper := paperlog.Normalize(doc)
	u.Apply(&paper, time.Now())
	doc = paperlog.ToDocument(paper)

	authors, err := json.Marshal(doc.Authors)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE papers
		SET title = ?, authors = ?, url = ?, year = ?, citation_count = ?, category = ?, note = ?,
		    status = ?, read = NULL, read_at = ?
		WHERE id = ?`,
		doc.Title, string(authors), doc.URL, nullInt(doc.Year), nullInt(doc.CitationCount), doc.Category, doc.Note,
		doc.Status, nullTime(doc.ReadAt),
		id,
	)
	if err != nil {
		return errors.New("could not update paper", errors.WithCause(err))
	}

	if err := tx.Commit(); err != nil {
		return errors.New("could not commit update", errors.WithCause(err))
	}

	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Delete(ctx context.Context, id string) error {
	res, err := s.driver.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return errors.New("could not delete paper", errors.WithCause(err))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return paperlog.PaperNotFound(id)
	}

	s.hub.Notify(ctx)
	return nil
}

// List returns all the papers, newest first. Papers created at the same
// time are returned in reverse insertion order.
func (s *PaperStore) List(ctx context.Context) ([]paperlog.Paper, error) {
	rows, err := s.driver.db.QueryContext(ctx, `SELECT `+paperColumns+` FROM papers ORDER BY created_at DESC, seq DESC`)
	if err != nil {
		return nil, errors.New("could not list papers", errors.WithCause(err))
	}
	defer rows.Close()

	papers := make([]paperlog.Paper, 0)
	for rows.Next() {
		doc, err := scan(rows)
		if err != nil {
			return nil, errors.New("could not read paper", errors.WithCause(err))
		}
		papers = append(papers, paperlog.Normalize(doc))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.New("could not list papers", errors.WithCause(err))
	}
	return papers, nil
}

// Import stores documents as they are, replacing the papers with the same
// id. Documents without id or creation date get new ones.
func (s *PaperStore) Import(ctx context.Context, docs []paperlog.Document) error {
	tx, err := s.driver.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.New("could not start transaction", errors.WithCause(err))
	}
	defer tx.Rollback()

	for _, doc := range docs {
		p := paperlog.Normalize(doc)
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now()
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, p.ID); err != nil {
			return errors.New("could not replace paper", errors.WithCause(err))
		}
		if err := insert(ctx, tx, paperlog.ToDocument(p)); err != nil {
			return errors.New("could not import paper", errors.WithCause(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.New("could not commit import", errors.WithCause(err))
	}

	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Subscribe(ctx context.Context) *paperlog.Subscription {
	return s.hub.Subscribe(ctx)
}

// ------------------------------------------------------------------------------------------------
// Helpers
// ------------------------------------------------------------------------------------------------

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func insert(ctx context.Context, db execer, doc paperlog.Document) error {
	authors, err := json.Marshal(doc.Authors)
	if err != nil {
		return err
	}
	if doc.Authors == nil {
		authors = []byte("[]")
	}

	var read sql.NullBool
	if doc.Read != nil {
		read = sql.NullBool{Bool: *doc.Read, Valid: true}
	}

	_, err = db.ExecContext(ctx, `INSERT INTO papers (`+paperColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.Title, string(authors), doc.URL, nullInt(doc.Year), nullInt(doc.CitationCount), doc.Category, doc.Note,
		doc.Status, read, nullTime(doc.ReadAt), doc.CreatedAt.UnixNano(),
	)
	return err
}

func scan(row scanner) (paperlog.Document, error) {
	var (
		doc             paperlog.Document
		authors         string
		year, citations sql.NullInt64
		read            sql.NullBool
		readAt          sql.NullInt64
		createdAt       int64
	)

	err := row.Scan(
		&doc.ID, &doc.Title, &authors, &doc.URL, &year, &citations, &doc.Category, &doc.Note,
		&doc.Status, &read, &readAt, &createdAt,
	)
	if err != nil {
		return doc, err
	}

	if err := json.Unmarshal([]byte(authors), &doc.Authors); err != nil {
		return doc, err
	}
	if year.Valid {
		y := int(year.Int64)
		doc.Year = &y
	}
	if citations.Valid {
		c := int(citations.Int64)
		doc.CitationCount = &c
	}
	if read.Valid {
		r := read.Bool
		doc.Read = &r
	}
	if readAt.Valid {
		t := time.Unix(0, readAt.Int64)
		doc.ReadAt = &t
	}
	doc.CreatedAt = time.Unix(0, createdAt)
	return doc, nil
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}
