package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

var sessionBucket = []byte("session")

// Bolt is a file-backed Store on top of bbolt. A single bucket holds all
// keys, so the on-disk layout mirrors the flat key space of the interface.
type Bolt struct {
	db *bolt.DB
}

// OpenBolt opens (or creates) the store file at path.
func OpenBolt(path string) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Get returns the value for key.
func (b *Bolt) Get(key string) (string, bool, error) {
	var val string
	var found bool

	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(sessionBucket).Get([]byte(key))
		if v != nil {
			val = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return val, found, nil
}

// Set writes key to value.
func (b *Bolt) Set(key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys in one transaction.
func (b *Bolt) Delete(keys ...string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sessionBucket)
		for _, k := range keys {
			if err := bucket.Delete([]byte(k)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}

// Close releases the underlying database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
