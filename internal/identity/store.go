package identity

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
)

// The identity lives under one fixed key as a JSON blob, read at session
// start and rewritten on every change.
const currentAuthorKey = "identity/current-author"

// Store persists the current author. With an empty directory it runs
// purely in memory, which is what tests and ephemeral sessions use.
type Store struct {
	db  *badger.DB
	cur *Author
}

// Open opens (or creates) the durable store at dir. An empty dir yields
// an in-memory store.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{}, nil
	}

	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open identity store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Current returns the persisted author, or generates and persists a
// placeholder on first use. Malformed stored data is discarded and
// replaced by a fresh placeholder rather than surfaced as an error.
func (s *Store) Current() Author {
	if s.cur != nil {
		return *s.cur
	}

	if a, ok := s.load(); ok {
		s.cur = &a
		return a
	}

	a := Placeholder()
	if err := s.Set(a); err != nil {
		log.Warn().Err(err).Msg("failed to persist placeholder author")
	}
	return a
}

// Set replaces the current author and persists it.
func (s *Store) Set(a Author) error {
	if a.Initials == "" {
		a.Initials = Initials(a.Name)
	}
	if a.AccentColor == "" {
		a.AccentColor = AccentFor(a.ID)
	}
	s.cur = &a

	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal author: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(currentAuthorKey), data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist author: %w", err)
	}
	return nil
}

// SetName renames the current author, rederiving initials, and persists.
func (s *Store) SetName(name string) (Author, error) {
	a := s.Current()
	a.Name = name
	a.Initials = Initials(name)
	if err := s.Set(a); err != nil {
		return a, err
	}
	return a, nil
}

func (s *Store) load() (Author, bool) {
	if s.db == nil {
		return Author{}, false
	}

	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(currentAuthorKey))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return Author{}, false
	}

	var a Author
	if err := json.Unmarshal(raw, &a); err != nil || a.ID == "" {
		log.Warn().Err(err).Msg("stored author identity unreadable, resetting")
		return Author{}, false
	}
	return a, true
}
