// Package store implements the path-addressed record space backing every
// entity in the system: a single Postgres table of JSONB documents keyed by
// (collection, id), with live change notifications fanned out over Redis.
// In-memory copies handed to subscribers are caches; the table is the only
// source of truth.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Record is a raw document with its server-generated key.
type Record struct {
	ID   string
	Data json.RawMessage
}

type Store struct {
	db       *pgxpool.Pool
	notifier *Notifier
}

func New(db *pgxpool.Pool, notifier *Notifier) *Store {
	return &Store{db: db, notifier: notifier}
}

// Create appends a record under a new server-generated key. It never
// overwrites an existing record.
func (s *Store) Create(ctx context.Context, collection string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.Exec(ctx,
		`INSERT INTO records (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, data)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", collection, err)
	}
	s.notify(ctx, collection)
	return id, nil
}

// Patch merges fields into the record at path ("collection/id"). A missing
// document is created (merge/create semantics).
func (s *Store) Patch(ctx context.Context, path string, fields map[string]any) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal patch: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO records (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET data = records.data || EXCLUDED.data`,
		collection, id, data)
	if err != nil {
		return fmt.Errorf("patch %s: %w", path, err)
	}
	s.notify(ctx, collection)
	return nil
}

// Delete removes the record at path. Deleting a non-existent path is not an
// error.
func (s *Store) Delete(ctx context.Context, path string) error {
	collection, id, err := splitPath(path)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	s.notify(ctx, collection)
	return nil
}

// GetAll returns a point-in-time read of every record under the collection,
// oldest first. An empty collection yields an empty slice.
func (s *Store) GetAll(ctx context.Context, collection string) ([]Record, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, data FROM records WHERE collection = $1 ORDER BY created_at, id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", collection, err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Data); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Subscribe registers a live listener on a collection. The callback is
// invoked with the full current list immediately, then again after every
// change to any record under the collection. The returned func detaches the
// listener; multiple subscriptions to the same collection are independent.
// Callbacks must tolerate overlapping snapshots.
func (s *Store) Subscribe(ctx context.Context, collection string, fn func([]Record)) (func(), error) {
	recs, err := s.GetAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	fn(recs)

	changes, stop := s.notifier.Subscribe(collection)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				recs, err := s.GetAll(context.Background(), collection)
				if err != nil {
					log.Error().Err(err).Str("collection", collection).Msg("refetch on change failed")
					continue
				}
				fn(recs)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			close(done)
		})
	}, nil
}

// notify is best-effort: a lost notification only delays subscribers until
// the next change, it never loses data.
func (s *Store) notify(ctx context.Context, collection string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, collection); err != nil {
		log.Warn().Err(err).Str("collection", collection).Msg("change notification failed")
	}
}

func splitPath(path string) (collection, id string, err error) {
	collection, id, ok := strings.Cut(path, "/")
	if !ok || collection == "" || id == "" || strings.Contains(id, "/") {
		return "", "", fmt.Errorf("invalid record path %q", path)
	}
	return collection, id, nil
}

// Decode unmarshals a record's document into T. The record id is not part of
// the document; callers assign it themselves.
func Decode[T any](rec Record) (T, error) {
	var t T
	if err := json.Unmarshal(rec.Data, &t); err != nil {
		return t, fmt.Errorf("decode record %s: %w", rec.ID, err)
	}
	return t, nil
}

// Flatten turns records into generic JSON objects with the id injected,
// matching the wire shape clients expect from list endpoints and live feeds.
func Flatten(recs []Record) []map[string]any {
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		m := map[string]any{}
		if err := json.Unmarshal(rec.Data, &m); err != nil {
			log.Warn().Err(err).Str("id", rec.ID).Msg("skipping malformed record")
			continue
		}
		m["id"] = rec.ID
		out = append(out, m)
	}
	return out
}
