package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/noah-isme/college-catalog/pkg/cache"
	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

type boltEntry struct {
	ExpiresAt time.Time       `json:"expiresAt"`
	Payload   json.RawMessage `json:"payload"`
}

// BoltSnapshotRepository keeps catalog snapshots in a local bbolt file so the CLI
// can show the last known catalog without a server.
type BoltSnapshotRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBoltSnapshotRepository wraps a database opened with cache.NewBolt.
func NewBoltSnapshotRepository(db *bbolt.DB) *BoltSnapshotRepository {
	return &BoltSnapshotRepository{db: db, now: time.Now}
}

// Get returns ErrCacheMiss for absent or expired keys.
func (r *BoltSnapshotRepository) Get(ctx context.Context, key string, dest interface{}) error {
	var entry boltEntry
	found := false
	err := r.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(cache.SnapshotBucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, &entry)
	})
	if err != nil {
		return fmt.Errorf("bolt get %s: %w", key, err)
	}
	if !found || (!entry.ExpiresAt.IsZero() && r.now().After(entry.ExpiresAt)) {
		return appErrors.ErrCacheMiss
	}
	if err := json.Unmarshal(entry.Payload, dest); err != nil {
		return fmt.Errorf("unmarshal snapshot %s: %w", key, err)
	}
	return nil
}

// Set stores value with an expiry; ttl <= 0 never expires.
func (r *BoltSnapshotRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	entry := boltEntry{Payload: payload}
	if ttl > 0 {
		entry.ExpiresAt = r.now().Add(ttl)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal snapshot entry %s: %w", key, err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(cache.SnapshotBucket)).Put([]byte(key), raw)
	})
}

// DeleteByPrefix removes every snapshot whose key starts with prefix.
func (r *BoltSnapshotRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(cache.SnapshotBucket))
		var keys [][]byte
		c := b.Cursor()
		for k, _ := c.Seek([]byte(prefix)); k != nil && bytes.HasPrefix(k, []byte(prefix)); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return fmt.Errorf("bolt delete %s: %w", k, err)
			}
		}
		return nil
	})
}

// Close closes the bolt file.
func (r *BoltSnapshotRepository) Close() error {
	return r.db.Close()
}
