package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"cbthelper/internal/session"
)

// MemStore is an in-memory Store. Snapshots are copied on the way in and out.
type MemStore struct {
	mu    sync.Mutex
	snaps map[string]*session.Snapshot
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{snaps: make(map[string]*session.Snapshot)}
}

func copySnap(s *session.Snapshot) *session.Snapshot {
	cp := *s
	cp.Data = append([]byte(nil), s.Data...)
	return &cp
}

// SaveSession inserts or replaces the snapshot for snap.ID.
func (s *MemStore) SaveSession(snap *session.Snapshot) error {
	if snap == nil || snap.ID == "" {
		return errors.New("snapshot is nil or has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.ID] = copySnap(snap)
	return nil
}

// LoadSession returns the snapshot for id, or nil if absent.
func (s *MemStore) LoadSession(id string) (*session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[id]
	if !ok {
		return nil, nil
	}
	return copySnap(snap), nil
}

// DeleteSession removes id. Deleting a missing id is not an error.
func (s *MemStore) DeleteSession(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, id)
	return nil
}

// ListSessions returns all snapshots ordered by id.
func (s *MemStore) ListSessions() ([]*session.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.Snapshot, 0, len(s.snaps))
	for _, snap := range s.snaps {
		out = append(out, copySnap(snap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListStale returns snapshots last written before the cutoff, ordered by id.
func (s *MemStore) ListStale(before time.Time) ([]*session.Snapshot, error) {
	all, _ := s.ListSessions()
	out := all[:0]
	for _, snap := range all {
		if snap.UpdatedAt.Before(before) {
			out = append(out, snap)
		}
	}
	return out, nil
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
