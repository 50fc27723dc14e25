package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hbacelar8/tecarius/internal/config"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

const bucketJournal = "journal"

// Store is the transaction journal, a BoltDB file of JSON-encoded
// entries. Keys are the bucket's insertion sequence, so ordering is by
// when an entry was recorded, not by its (possibly equal) timestamps.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the journal at the default data path.
func Open() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return OpenAt(config.HistoryPath())
}

// OpenAt opens or creates a journal at a specific path.
func OpenAt(dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketJournal))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize journal: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the journal file.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends an entry to the journal.
func (s *Store) Record(entry *Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketJournal))
		if bucket == nil {
			return errors.New("journal bucket missing")
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode entry: %w", err)
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		return bucket.Put(seqKey(seq), data)
	})
}

// List returns the most recent entries, newest first. A limit of zero or
// less returns everything.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketJournal))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && (limit <= 0 || len(entries) < limit); k, v = cursor.Prev() {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				continue // skip malformed entries
			}
			entries = append(entries, entry)
		}
		return nil
	})

	return entries, err
}

// Count returns the number of journal entries.
func (s *Store) Count() (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketJournal)); bucket != nil {
			count = bucket.Stats().KeyN
		}
		return nil
	})

	return count, err
}

// Clear removes every entry and resets the sequence.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketJournal)); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketJournal))
		return err
	})
}

// Prune removes entries older than maxAge and reports how many were
// deleted.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	var deleted int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketJournal))
		if bucket == nil {
			return nil
		}

		var stale [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if e.Timestamp.Before(cutoff) {
				stale = append(stale, k)
			}
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})

	return deleted, err
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
