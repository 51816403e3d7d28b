package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"cbthelper/internal/logging"
)

// DefaultTTL is the idle time after which a session expires.
var DefaultTTL = 30 * time.Minute

// ErrNotFound is returned for ids with no live session.
var ErrNotFound = errors.New("session not found")

// Backend persists snapshots. store.MemStore and store.SqlStore implement it.
type Backend interface {
	SaveSession(snap *Snapshot) error
	LoadSession(id string) (*Snapshot, error)
	DeleteSession(id string) error
	ListSessions() ([]*Snapshot, error)
	// ListStale returns snapshots last written before the cutoff.
	ListStale(before time.Time) ([]*Snapshot, error)
}

// Options configures a Registry.
type Options struct {
	TTL          time.Duration
	HistoryLimit int
	Backend      Backend
	// Now overrides the clock, for tests.
	Now func() time.Time
	// OnExpire is called once per session removed by expiry.
	OnExpire func(id string)
}

type entry struct {
	mu   sync.Mutex
	sess *Session
	gone bool

	// guarded by Registry.mu
	lastAccess time.Time
	pins       int
}

// Registry maps session ids to sessions. The map lock is held only to look
// up, insert or remove entries; each entry has its own lock that serializes
// operations on that session.
type Registry struct {
	opts Options

	mu      sync.Mutex
	entries map[string]*entry
	// removals counts entries taken out of the map, so a pin that loaded
	// from the backend can tell whether its snapshot went stale meanwhile.
	removals uint64
}

// NewRegistry returns an empty registry.
func NewRegistry(opts Options) *Registry {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{opts: opts, entries: make(map[string]*entry)}
}

// TTL is the configured idle time-to-live.
func (r *Registry) TTL() time.Duration { return r.opts.TTL }

// With runs fn with exclusive access to session id. When create is set a
// missing session is created (an empty id gets a generated one); otherwise a
// missing session yields ErrNotFound. A nil error from fn writes the session
// through to the backend. The returned id is the one fn ran against.
func (r *Registry) With(id string, create bool, fn func(*Session) error) (string, bool, error) {
	if id == "" {
		if !create {
			return "", false, fmt.Errorf("%w: empty id", ErrNotFound)
		}
		id = uuid.NewString()
	}
	for {
		e, created, err := r.pin(id, create)
		if err != nil {
			return id, false, err
		}
		ran, err := r.run(e, true, fn)
		if ran {
			return id, created, err
		}
		// Deleted or expired while we waited; start over from the backend.
		if !create {
			return id, false, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}
}

// View runs fn with exclusive read access to an existing session. Nothing is
// persisted; fn must not mutate the session.
func (r *Registry) View(id string, fn func(*Session)) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrNotFound)
	}
	e, _, err := r.pin(id, false)
	if err != nil {
		return err
	}
	ran, _ := r.run(e, false, func(s *Session) error {
		fn(s)
		return nil
	})
	if !ran {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// run locks a pinned entry and applies fn. It reports false when the entry
// was removed before the lock was acquired.
func (r *Registry) run(e *entry, persist bool, fn func(*Session) error) (bool, error) {
	defer r.unpin(e)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gone {
		return false, nil
	}
	e.sess.LastAccess = r.opts.Now()
	if err := fn(e.sess); err != nil {
		return true, err
	}
	if persist {
		r.persist(e.sess)
	}
	return true, nil
}

// pin finds or creates the entry for id and marks it in use so the sweeper
// leaves it alone until unpin.
func (r *Registry) pin(id string, create bool) (*entry, bool, error) {
	for {
		now := r.opts.Now()

		r.mu.Lock()
		e := r.entries[id]
		if e != nil && r.stale(e.lastAccess, now) && r.evictLocked(id, e) {
			r.mu.Unlock()
			r.expire(id, now)
			r.mu.Lock()
			e = r.entries[id]
		}
		if e != nil {
			e.pins++
			e.lastAccess = now
			r.mu.Unlock()
			return e, false, nil
		}
		removals := r.removals
		r.mu.Unlock()

		sess := r.load(id, now)
		created := false
		if sess == nil {
			if !create {
				return nil, false, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			sess = New(id, now, r.opts.HistoryLimit)
			created = true
		}

		r.mu.Lock()
		if existing := r.entries[id]; existing != nil {
			// Lost a race with another caller for the same id.
			existing.pins++
			existing.lastAccess = now
			r.mu.Unlock()
			return existing, false, nil
		}
		if r.removals != removals {
			// A delete or expiry ran while we were loading.
			r.mu.Unlock()
			continue
		}
		e = &entry{sess: sess, lastAccess: now, pins: 1}
		r.entries[id] = e
		r.mu.Unlock()
		if created {
			logging.New("session").Info("session created", "session_id", id)
		}
		return e, created, nil
	}
}

// evictLocked removes an idle entry from the map. The caller holds r.mu. It
// reports false when the entry is pinned or locked.
func (r *Registry) evictLocked(id string, e *entry) bool {
	if e.pins > 0 || !e.mu.TryLock() {
		return false
	}
	e.gone = true
	e.mu.Unlock()
	delete(r.entries, id)
	r.removals++
	return true
}

func (r *Registry) unpin(e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.pins--
	e.lastAccess = r.opts.Now()
}

func (r *Registry) stale(last, now time.Time) bool {
	return now.Sub(last) > r.opts.TTL
}

// load reads id from the backend. A stale persisted session is removed.
func (r *Registry) load(id string, now time.Time) *Session {
	if r.opts.Backend == nil {
		return nil
	}
	logger := logging.New("session")
	snap, err := r.opts.Backend.LoadSession(id)
	if err != nil || snap == nil {
		if err != nil {
			logger.Warn("load session failed", "session_id", id, "error", err)
		}
		return nil
	}
	sess, err := Decode(snap, r.opts.HistoryLimit)
	if err != nil {
		logger.Warn("discarding unreadable session", "session_id", id, "error", err)
		return nil
	}
	if r.stale(sess.LastAccess, now) {
		r.expire(id, now)
		return nil
	}
	logger.Debug("session restored", "session_id", id)
	return sess
}

func (r *Registry) persist(s *Session) {
	if r.opts.Backend == nil {
		return
	}
	snap, err := Encode(s, r.opts.Now())
	if err == nil {
		err = r.opts.Backend.SaveSession(snap)
	}
	if err != nil {
		logging.New("session").Warn("persist session failed", "session_id", s.ID, "error", err)
	}
}

// Delete removes a session. It reports whether one existed. The entry stays
// locked in the map until the backend row is gone, so concurrent callers
// wait and then start from an empty backend.
func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	e := r.entries[id]
	if e == nil {
		e = &entry{gone: true}
		e.mu.Lock()
		r.entries[id] = e
		r.mu.Unlock()
	} else {
		r.mu.Unlock()
		e.mu.Lock()
	}
	defer e.mu.Unlock()

	existed := !e.gone
	e.gone = true
	if r.opts.Backend != nil {
		if !existed {
			if snap, err := r.opts.Backend.LoadSession(id); err == nil && snap != nil {
				existed = true
			}
		}
		if err := r.opts.Backend.DeleteSession(id); err != nil {
			logging.New("session").Warn("delete persisted session failed", "session_id", id, "error", err)
		}
	}

	r.mu.Lock()
	if r.entries[id] == e {
		delete(r.entries, id)
	}
	r.removals++
	r.mu.Unlock()

	if existed {
		logging.New("session").Info("session deleted", "session_id", id)
	}
	return existed
}

// SweepExpired removes sessions idle for longer than the TTL at now. Entries
// in use, or whose lock is held, are skipped. It returns the removed ids.
func (r *Registry) SweepExpired(now time.Time) []string {
	var ids []string
	r.mu.Lock()
	for id, e := range r.entries {
		if r.stale(e.lastAccess, now) && r.evictLocked(id, e) {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	// Persisted sessions that were never loaded in this process.
	if r.opts.Backend != nil {
		snaps, err := r.opts.Backend.ListStale(now.Add(-r.opts.TTL))
		if err != nil {
			logging.New("session").Warn("list stale sessions failed", "error", err)
		}
		for _, snap := range snaps {
			if r.live(snap.ID) || slices.Contains(ids, snap.ID) {
				continue
			}
			ids = append(ids, snap.ID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		r.expire(id, now)
	}
	return ids
}

func (r *Registry) live(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// expire drops the persisted row of a session already out of the map and
// fires OnExpire. The row is kept when a fresh session took the id.
func (r *Registry) expire(id string, now time.Time) {
	logger := logging.New("session")
	if r.opts.Backend != nil && !r.live(id) {
		if err := r.opts.Backend.DeleteSession(id); err != nil {
			logger.Warn("delete expired session failed", "session_id", id, "error", err)
		}
	}
	logger.Info("session expired", "session_id", id, "at", now.Format(time.RFC3339))
	if r.opts.OnExpire != nil {
		r.opts.OnExpire(id)
	}
}

// RunSweeper calls SweepExpired every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.SweepExpired(r.opts.Now())
		}
	}
}

// Info is the listing view of a session.
type Info struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastAccess   time.Time `json:"last_access"`
	Interactions int       `json:"interactions"`
	Thinking     bool      `json:"thinking"`
	Persisted    bool      `json:"persisted"`
}

// List returns live and persisted sessions ordered by id.
func (r *Registry) List() []Info {
	r.mu.Lock()
	entries := make(map[string]*entry, len(r.entries))
	for id, e := range r.entries {
		entries[id] = e
	}
	r.mu.Unlock()

	byID := map[string]Info{}
	for id, e := range entries {
		e.mu.Lock()
		if !e.gone {
			byID[id] = infoOf(e.sess)
		}
		e.mu.Unlock()
	}
	if r.opts.Backend != nil {
		snaps, err := r.opts.Backend.ListSessions()
		if err != nil {
			logging.New("session").Warn("list persisted sessions failed", "error", err)
		}
		for _, snap := range snaps {
			if in, ok := byID[snap.ID]; ok {
				in.Persisted = true
				byID[snap.ID] = in
				continue
			}
			sess, err := Decode(snap, r.opts.HistoryLimit)
			if err != nil {
				continue
			}
			in := infoOf(sess)
			in.Persisted = true
			byID[snap.ID] = in
		}
	}

	out := make([]Info, 0, len(byID))
	for _, in := range byID {
		out = append(out, in)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func infoOf(s *Session) Info {
	return Info{
		ID:           s.ID,
		CreatedAt:    s.CreatedAt,
		LastAccess:   s.LastAccess,
		Interactions: s.Interactions,
		Thinking:     s.Thinking != nil,
	}
}

// Len is the number of sessions held in memory.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
