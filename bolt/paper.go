package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"

	"github.com/bobinette/paperlog"
	"github.com/bobinette/paperlog/errors"
)

// PaperStore stores the papers in a bolt database. Papers are stored as
// JSON documents keyed by an insertion sequence; a second bucket maps the
// paper ids to their sequence.
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

	err := s.driver.store.Update(func(tx *bolt.Tx) error {
		return put(tx, p)
	})
	if err != nil {
		return errors.New("could not add paper", errors.WithCause(err))
	}

	*paper = p
	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Get(ctx context.Context, id string) (paperlog.Paper, error) {
	var paper paperlog.Paper
	err := s.driver.store.View(func(tx *bolt.Tx) error {
		key := tx.Bucket(idBucket).Get([]byte(id))
		if key == nil {
			return paperlog.PaperNotFound(id)
		}

		var err error
		paper, err = decode(tx.Bucket(paperBucket).Get(key))
		return err
	})
	return paper, err
}

// Update applies u to the paper in a single transaction. Read dates are
// stamped with the time of the transaction.
func (s *PaperStore) Update(ctx context.Context, id string, u paperlog.Update) error {
	err := s.driver.store.Update(func(tx *bolt.Tx) error {
		key := tx.Bucket(idBucket).Get([]byte(id))
		if key == nil {
			return paperlog.PaperNotFound(id)
		}

		bucket := tx.Bucket(paperBucket)
		paper, err := decode(bucket.Get(key))
		if err != nil {
			return err
		}
		u.Apply(&paper, time.Now())

		data, err := json.Marshal(paperlog.ToDocument(paper))
		if err != nil {
			return err
		}
		return bucket.Put(key, data)
	})
	if err != nil {
		return err
	}

	s.hub.Notify(ctx)
	return nil
}

func (s *PaperStore) Delete(ctx context.Context, id string) error {
	err := s.driver.store.Update(func(tx *bolt.Tx) error {
		ids := tx.Bucket(idBucket)
		key := ids.Get([]byte(id))
		if key == nil {
			return paperlog.PaperNotFound(id)
		}

		if err := tx.Bucket(paperBucket).Delete(key); err != nil {
			return err
		}
		return ids.Delete([]byte(id))
	})
	if err != nil {
		return err
	}

	s.hub.Notify(ctx)
	return nil
}

// List returns all the papers, newest first. Papers created at the same
// time are returned in reverse insertion order.
func (s *PaperStore) List(ctx context.Context) ([]paperlog.Paper, error) {
	var papers []paperlog.Paper

	err := s.driver.store.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(paperBucket)
		papers = make([]paperlog.Paper, 0, bucket.Stats().KeyN)

		c := bucket.Cursor()
		for k, data := c.Last(); k != nil; k, data = c.Prev() {
			paper, err := decode(data)
			if err != nil {
				return err
			}
			papers = append(papers, paper)
		}
		return nil
	})
	if err != nil {
		return nil, errors.New("could not list papers", errors.WithCause(err))
	}

	sort.SliceStable(papers, func(i, j int) bool {
		return papers[i].CreatedAt.After(papers[j].CreatedAt)
	})
	return papers, nil
}

// Import stores documents as they are. Documents without id or creation
// date get new ones; documents with a known id replace the stored paper.
func (s *PaperStore) Import(ctx context.Context, docs []paperlog.Document) error {
	err := s.driver.store.Update(func(tx *bolt.Tx) error {
		for _, doc := range docs {
			p := paperlog.Normalize(doc)
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if p.CreatedAt.IsZero() {
				p.CreatedAt = time.Now()
			}

			if key := tx.Bucket(idBucket).Get([]byte(p.ID)); key != nil {
				if err := tx.Bucket(paperBucket).Delete(key); err != nil {
					return err
				}
			}
			if err := put(tx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.New("could not import papers", errors.WithCause(err))
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

// put stores p under a new sequence.
func put(tx *bolt.Tx, p paperlog.Paper) error {
	bucket := tx.Bucket(paperBucket)

	seq, err := bucket.NextSequence()
	if err != nil {
		return fmt.Errorf("error incrementing sequence: %v", err)
	}
	key := itob(seq)

	data, err := json.Marshal(paperlog.ToDocument(p))
	if err != nil {
		return err
	}

	if err := bucket.Put(key, data); err != nil {
		return err
	}
	return tx.Bucket(idBucket).Put([]byte(p.ID), key)
}

// decode reads a stored document. Documents written by older versions are
// normalized here.
func decode(data []byte) (paperlog.Paper, error) {
	var doc paperlog.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return paperlog.Paper{}, err
	}
	return paperlog.Normalize(doc), nil
}

// itob returns an 8-byte big endian representation of v.
func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
