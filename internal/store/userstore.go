package store

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// UserStore is the multi-index coordinator: one PrimaryIndex plus one
// RankedIndex per configured View, kept consistent under a single
// reader/writer lock. Read operations (Get, Rank, Size) take a shared lock;
// writes (Put, Modify, Erase, Clear) take an exclusive lock, so a mutation
// that has updated some indexes but not others is never visible to a
// reader.
type UserStore struct {
	mu      sync.RWMutex
	log     *zap.Logger
	views   []View
	primary *PrimaryIndex
	ranked  map[string]*RankedIndex
}

// New constructs a UserStore with one RankedIndex per view. Views must have
// distinct names.
func New(log *zap.Logger, views ...View) *UserStore {
	if log == nil {
		log = zap.NewNop()
	}
	ranked := make(map[string]*RankedIndex, len(views))
	for _, v := range views {
		ranked[v.Name] = NewRankedIndex()
	}
	return &UserStore{
		log:     log.Named("user_store"),
		views:   views,
		primary: NewPrimaryIndex(),
		ranked:  ranked,
	}
}

// Put inserts rec. Fails with ErrDuplicateUID, leaving the store unchanged,
// if rec.UID is already present.
func (s *UserStore) Put(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.primary.Find(rec.UID); exists {
		return ErrDuplicateUID
	}

	inserted := make([]string, 0, len(s.views))
	for _, v := range s.views {
		key := v.Project(rec)
		if err := s.ranked[v.Name].Insert(key, rec.UID); err != nil {
			// Step 1's precheck guarantees uid uniqueness, so a per-view
			// insert cannot fail in practice; roll back defensively anyway
			// so a partial mutation is never observed.
			var rollbackErr error
			for _, name := range inserted {
				old := s.views[viewIndex(s.views, name)].Project(rec)
				rollbackErr = multierr.Append(rollbackErr, s.ranked[name].Erase(old, rec.UID))
			}
			if rollbackErr != nil {
				s.log.Error("put: rollback after partial index insert failed",
					zap.Uint32("uid", rec.UID), zap.Error(rollbackErr))
			}
			return fmt.Errorf("insert view %q: %w", v.Name, err)
		}
		inserted = append(inserted, v.Name)
	}

	return s.primary.Insert(rec)
}

func viewIndex(views []View, name string) int {
	for i, v := range views {
		if v.Name == name {
			return i
		}
	}
	return -1
}

// Modify replaces the whole attribute tuple for rec.UID, updating every
// ranked index whose projection changed. Fails with ErrUnknownUID if
// rec.UID is absent.
func (s *UserStore) Modify(rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.primary.Find(rec.UID)
	if !ok {
		return ErrUnknownUID
	}

	for _, v := range s.views {
		oldKey, newKey := v.Project(old), v.Project(rec)
		if oldKey == newKey {
			continue
		}
		if err := s.ranked[v.Name].Update(oldKey, newKey, rec.UID); err != nil {
			return fmt.Errorf("update view %q: %w", v.Name, err)
		}
	}

	return s.primary.Replace(rec)
}

// Erase removes the record for uid from every index. Fails with
// ErrUnknownUID if absent.
func (s *UserStore) Erase(uid uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.primary.Find(uid)
	if !ok {
		return ErrUnknownUID
	}

	for _, v := range s.views {
		if err := s.ranked[v.Name].Erase(v.Project(rec), uid); err != nil {
			return fmt.Errorf("erase view %q: %w", v.Name, err)
		}
	}

	return s.primary.Erase(uid)
}

// Get returns a copy of the record for uid, or ErrUnknownUID.
func (s *UserStore) Get(uid uint32) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.primary.Find(uid)
	if !ok {
		return nil, ErrUnknownUID
	}
	return rec.Clone(), nil
}

// Rank looks up uid, projects it through the named view, and returns that
// view's rank. Fails with ErrUnknownUID or ErrUnknownView.
func (s *UserStore) Rank(viewName string, uid uint32) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.ranked[viewName]
	if !ok {
		return 0, ErrUnknownView
	}
	rec, ok := s.primary.Find(uid)
	if !ok {
		return 0, ErrUnknownUID
	}

	var project func(*Record) uint32
	for _, v := range s.views {
		if v.Name == viewName {
			project = v.Project
			break
		}
	}
	return idx.FindRank(project(rec)), nil
}

// Size returns the number of records in the store.
func (s *UserStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary.Size()
}

// Clear removes every record from every index.
func (s *UserStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.primary.Clear()
	for name := range s.ranked {
		s.ranked[name] = NewRankedIndex()
	}
}

// Views returns the names of the configured ranked views, in configuration
// order. Used by the HTTP adapter to decide which rank routes to mount.
func (s *UserStore) Views() []string {
	names := make([]string, len(s.views))
	for i, v := range s.views {
		names[i] = v.Name
	}
	return names
}
