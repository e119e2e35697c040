// Package firestore keeps store.KV entries as documents of one Cloud
// Firestore collection: the document ID is the key and the "value" field holds
// the string value.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	DefaultCollection = "todo_kv"
	valueField        = "value"
	opTimeout         = 10 * time.Second
)

type Store struct {
	client     *firestore.Client
	collection string
}

// Open connects to projectID. An empty collection uses DefaultCollection.
func Open(ctx context.Context, projectID, collection string) (*Store, error) {
	if projectID == "" {
		return nil, errors.New("firestore project id is required")
	}
	if collection == "" {
		collection = DefaultCollection
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &Store{client: client, collection: collection}, nil
}

func (s *Store) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	raw, err := snap.DataAt(valueField)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	v, ok := raw.(string)
	if !ok {
		return "", false, fmt.Errorf("read %s: value is %T, want string", key, raw)
	}
	return v, true, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, err := s.client.Collection(s.collection).Doc(key).Set(ctx, map[string]interface{}{
		valueField:  value,
		"updatedAt": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if _, err := s.client.Collection(s.collection).Doc(key).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	iter := s.client.Collection(s.collection).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("list documents: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("delete %s: %w", doc.Ref.ID, err)
		}
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}
