// Package report persists blame reports in a bbolt database so a run can be
// inspected after the process exits.
package report

import (
	"encoding/binary"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/nooga/tsblame/pkg/blame"
)

const (
	Perm        = 0600
	OpenTimeout = time.Second
)

// Entry is a stored report.
type Entry struct {
	Seq      uint64    `json:"seq"`
	Label    string    `json:"label"`
	Polarity string    `json:"polarity"`
	Path     string    `json:"path"`
	Source   string    `json:"source"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// String formats the entry the way blame.Report does.
func (e Entry) String() string {
	return "{" + e.Label + "} " + e.Polarity + " " + e.Path + " " + e.Message
}

// Store is a blame.Reporter that appends reports to a bucket.
type Store struct {
	db        *bolt.DB
	namespace []byte
	mux       sync.Mutex
	now       func() time.Time
}

// Open opens or creates the database at path and its namespace bucket.
func Open(path, namespace string) (*Store, error) {
	if namespace == "" {
		return nil, errors.New("report namespace was empty")
	}
	db, err := bolt.Open(path, Perm, &bolt.Options{Timeout: OpenTimeout})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open report store %v", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(namespace))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "failed to create bucket %v", namespace)
	}
	return &Store{db: db, namespace: []byte(namespace), now: time.Now}, nil
}

// Report stores r under the next sequence number.
func (s *Store) Report(r blame.Report) error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(s.namespace)
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		entry := Entry{
			Seq:      seq,
			Label:    r.Label,
			Polarity: r.Polarity.String(),
			Path:     r.Path.Pretty(),
			Source:   string(r.Source),
			Message:  r.Message,
			Time:     s.now().UTC(),
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		return bucket.Put(key(seq), data)
	})
}

// List returns the stored entries in the order they were reported.
func (s *Store) List() ([]Entry, error) {
	var entries []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(s.namespace).ForEach(func(k, v []byte) error {
			var entry Entry
			if err := json.Unmarshal(v, &entry); err != nil {
				return errors.Wrapf(err, "corrupt report %d", binary.BigEndian.Uint64(k))
			}
			entries = append(entries, entry)
			return nil
		})
	})
	return entries, err
}

// Clear drops every stored entry and resets the sequence.
func (s *Store) Clear() error {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(s.namespace); err != nil {
			return err
		}
		_, err := tx.CreateBucket(s.namespace)
		return err
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func key(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
