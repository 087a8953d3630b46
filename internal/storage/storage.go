// Package storage provides an optional embedded audit log of reminder
// dispatch outcomes, backed by BoltDB. Only the outcome of each dispatch
// is recorded; student records themselves are never persisted.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const dispatchBucket = "dispatches"

// DispatchRecord is one audited dispatch attempt.
type DispatchRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Label      string    `json:"label"`
	DelayDays  int       `json:"delay_days"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	MessageSID string    `json:"message_sid,omitempty"`
}

// Store is the BoltDB-backed audit log. Safe for concurrent use.
type Store struct {
	db *bbolt.DB
}

// New opens (or creates) the audit database under dataPath.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "feewatch-audit.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(dispatchBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create dispatch bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// StoreDispatch appends one dispatch outcome. Keys are nanosecond
// timestamps so a cursor walk yields chronological order.
func (s *Store) StoreDispatch(rec DispatchRecord) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(dispatchBucket))

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal dispatch record: %w", err)
		}

		key := fmt.Sprintf("%020d", rec.Timestamp.UnixNano())
		return b.Put([]byte(key), data)
	})
}

// RecentDispatches returns up to limit records, newest first.
func (s *Store) RecentDispatches(limit int) ([]DispatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	var records []DispatchRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(dispatchBucket)).Cursor()
		for k, v := c.Last(); k != nil && len(records) < limit; k, v = c.Prev() {
			var rec DispatchRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			records = append(records, rec)
		}
		return nil
	})
	return records, err
}
