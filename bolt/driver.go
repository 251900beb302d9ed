package bolt

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var (
	paperBucket = []byte("papers")
	idBucket    = []byte("paper_ids")
)

type Driver struct {
	store *bolt.DB
}

// Open opens the connection to the bolt database defined by path and
// creates the buckets.
func (d *Driver) Open(path string) error {
	if d.store != nil {
		return errors.New("store already open")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}

	store, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return err
	}

	err = store.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{paperBucket, idBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		store.Close()
		return err
	}

	d.store = store
	return nil
}

// Close closes the underlying database.
func (d *Driver) Close() error {
	if d.store != nil {
		err := d.store.Close()
		d.store = nil
		return err
	}
	return nil
}
