// Package runindex persists metadata about completed collection runs in an
// embedded BoltDB file, so past runs can be listed (Recent) and looked up
// (Get) without rescanning the filesystem. The analyze and compare
// subcommands read result files directly and do not open the index.
package runindex

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// schemaVersion identifies the on-disk layout of the index. Bumped whenever
// the RunRecord shape changes in a way that breaks gob-decoding of older
// records.
const schemaVersion uint32 = 1

var (
	bucketRuns     = []byte("runs")
	bucketMetadata = []byte("metadata")

	keyCreated = []byte("created")
	keyVersion = []byte("version")
)

// Sentinel errors returned by Store operations.
var (
	// ErrNotFound indicates no run record exists for the given key.
	ErrNotFound error = errors.New("runindex: record not found")
)

// RunRecord captures the metadata recorded about a single completed, or
// in-progress, collection run.
type RunRecord struct {
	Dir         string
	StartedAt   time.Time
	EndedAt     time.Time
	SampleCount int64
	ExitReason  string
	OutputFile  string
}

// bufferPool reduces allocation pressure from gob-encoding RunRecords on
// every write.
var bufferPool = sync.Pool{
	New: func() any { return new(bytes.Buffer) },
}

// Store is a BoltDB-backed run index. The zero value is not usable; obtain
// one via Open.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a run index at path and ensures its
// buckets and metadata exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("runindex: opening %s: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return fmt.Errorf("runindex: creating runs bucket: %w", err)
		}
		meta, err := tx.CreateBucketIfNotExists(bucketMetadata)
		if err != nil {
			return fmt.Errorf("runindex: creating metadata bucket: %w", err)
		}
		if meta.Get(keyCreated) == nil {
			if err := meta.Put(keyCreated, timeToBytes(time.Now())); err != nil {
				return err
			}
			if err := meta.Put(keyVersion, uint32ToBytes(schemaVersion)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying BoltDB file handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts or overwrites the record for runDir, keyed by runDir
// itself; Recent sorts records by StartedAt after reading them.
func (s *Store) Record(runDir string, rec RunRecord) error {
	encoded, err := encodeRunRecord(rec)
	if err != nil {
		return fmt.Errorf("runindex: encoding record for %s: %w", runDir, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		return b.Put([]byte(runDir), encoded)
	})
}

// Get returns the record stored for runDir.
func (s *Store) Get(runDir string) (RunRecord, error) {
	var rec RunRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		raw := b.Get([]byte(runDir))
		if raw == nil {
			return ErrNotFound
		}
		decoded, err := decodeRunRecord(raw)
		if err != nil {
			return fmt.Errorf("runindex: decoding record for %s: %w", runDir, err)
		}
		rec = decoded
		return nil
	})
	return rec, err
}

// Recent returns up to limit records ordered by StartedAt descending. A
// limit of zero or less returns every record.
func (s *Store) Recent(limit int) ([]RunRecord, error) {
	var all []RunRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		return b.ForEach(func(_, v []byte) error {
			rec, err := decodeRunRecord(v)
			if err != nil {
				return err
			}
			all = append(all, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("runindex: listing records: %w", err)
	}

	sortRunsDescending(all)
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func sortRunsDescending(recs []RunRecord) {
	for i := 1; i < len(recs); i++ {
		for j := i; j > 0 && recs[j].StartedAt.After(recs[j-1].StartedAt); j-- {
			recs[j], recs[j-1] = recs[j-1], recs[j]
		}
	}
}

// Prune removes every record whose StartedAt is before cutoff, returning the
// number of records removed. It collects keys before deleting them to avoid
// invalidating the cursor mid-iteration.
func (s *Store) Prune(cutoff time.Time) (int, error) {
	var stale [][]byte
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rec, err := decodeRunRecord(v)
			if err != nil {
				return err
			}
			if rec.StartedAt.Before(cutoff) {
				key := make([]byte, len(k))
				copy(key, k)
				stale = append(stale, key)
			}
		}
		for _, key := range stale {
			if err := b.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("runindex: pruning: %w", err)
	}
	return len(stale), nil
}

func encodeRunRecord(rec RunRecord) ([]byte, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	if err := gob.NewEncoder(buf).Encode(rec); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func decodeRunRecord(data []byte) (RunRecord, error) {
	var rec RunRecord
	err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec)
	return rec, err
}

func timeToBytes(t time.Time) []byte {
	out, _ := t.MarshalBinary()
	return out
}

func uint32ToBytes(v uint32) []byte {
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, v)
	return out
}
