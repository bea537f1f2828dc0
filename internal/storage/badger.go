// ABOUTME: Embedded Badger KV backend for the record store.
// ABOUTME: Keys are record:YYYY-MM-DD so iteration order is date order.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/healthlog/internal/models"
)

// RecordPrefix namespaces record keys in the KV store.
const RecordPrefix = "record:"

// BadgerStore keeps one JSON value per date in a Badger database.
type BadgerStore struct {
	db *badger.DB
}

// Compile-time check that BadgerStore implements Repository.
var _ Repository = (*BadgerStore)(nil)

// OpenBadger opens or creates a Badger database in dir.
func OpenBadger(dir string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return openBadger(badger.DefaultOptions(dir))
}

func openBadger(opts badger.Options) (*BadgerStore, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Close closes the KV database.
func (s *BadgerStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func recordKey(date time.Time) []byte {
	return []byte(RecordPrefix + models.FormatDate(date))
}

// LoadAll iterates the record prefix and decodes every value.
func (s *BadgerStore) LoadAll(_ context.Context) ([]models.Record, error) {
	records := []models.Record{}
	prefix := []byte(RecordPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p RecordPayload
				if err := json.Unmarshal(val, &p); err != nil {
					return err
				}
				r, err := p.Record()
				if err != nil {
					return err
				}
				records = append(records, r)
				return nil
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	sortByDate(records)
	return records, nil
}

// Upsert deletes then sets r's key in one transaction.
func (s *BadgerStore) Upsert(_ context.Context, r models.Record) error {
	data, err := json.Marshal(NewRecordPayload(r))
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	key := recordKey(r.Date)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// DeleteByDate removes date's key. Badger treats missing keys as a no-op.
func (s *BadgerStore) DeleteByDate(_ context.Context, date time.Time) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(recordKey(date))
	})
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}
