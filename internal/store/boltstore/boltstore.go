// Package boltstore keeps store.KV entries in a single bbolt bucket.
package boltstore

import (
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const bucketKV = "kv"

const dataFileName = "todos.db"

// ErrNoBucket means the database was opened but the bucket is gone.
var ErrNoBucket = errors.New("kv bucket missing")

// FileName is the database file name used inside the data directory.
func FileName() string { return dataFileName }

type Store struct {
	db *bolt.DB
}

// Open opens or creates the database at path and ensures the bucket exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketKV))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize kv bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketKV))
		if b == nil {
			return ErrNoBucket
		}
		// The slice is only valid inside the transaction.
		if v := b.Get([]byte(key)); v != nil {
			value, found = string(v), true
		}
		return nil
	})
	return value, found, err
}

func (s *Store) Set(key, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketKV))
		if b == nil {
			return ErrNoBucket
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (s *Store) Remove(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketKV))
		if b == nil {
			return ErrNoBucket
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketKV)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketKV))
		return err
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
