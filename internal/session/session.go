// Package session holds per-session engine state and the registry that owns
// it. A Session is plain data: it is only mutated while its registry entry
// lock is held, and it serializes to flat JSON for the store backends.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"cbthelper/internal/regulate"
	"cbthelper/internal/taxonomy"
	"cbthelper/internal/thinking"
)

// DefaultHistoryLimit bounds Session.History when no limit is configured.
const DefaultHistoryLimit = 50

// EntryKind tags a history entry with the operation that recorded it.
type EntryKind string

const (
	EntryProblem  EntryKind = "problem"
	EntryThought  EntryKind = "thought"
	EntryGoal     EntryKind = "goal"
	EntryWellness EntryKind = "wellness"
)

// Entry is one recorded problem description.
type Entry struct {
	At   time.Time `json:"at"`
	Kind EntryKind `json:"kind"`
	Text string    `json:"text"`
}

// Note is a progress indicator.
type Note struct {
	At   time.Time `json:"at"`
	Text string    `json:"text"`
}

// Session is the state carried across calls for one session id.
type Session struct {
	ID            string                         `json:"id"`
	CreatedAt     time.Time                      `json:"created_at"`
	LastAccess    time.Time                      `json:"last_access"`
	Interactions  int                            `json:"interactions"`
	History       []Entry                        `json:"history"`
	Frustration   regulate.Trajectory            `json:"frustration"`
	States        map[taxonomy.StateKey]int      `json:"states"`
	Distortions   map[taxonomy.DistortionKey]int `json:"distortions"`
	StrategyUsage map[taxonomy.StrategyKey]int   `json:"strategy_usage"`
	LastUsed      taxonomy.StrategyKey           `json:"last_used,omitempty"`
	Progress      []Note                         `json:"progress"`
	Thinking      *thinking.Protocol             `json:"thinking,omitempty"`

	historyLimit int
}

// New returns an empty session.
func New(id string, now time.Time, historyLimit int) *Session {
	s := &Session{ID: id, CreatedAt: now, LastAccess: now}
	s.init(historyLimit)
	return s
}

func (s *Session) init(historyLimit int) {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	s.historyLimit = historyLimit
	if s.States == nil {
		s.States = map[taxonomy.StateKey]int{}
	}
	if s.Distortions == nil {
		s.Distortions = map[taxonomy.DistortionKey]int{}
	}
	if s.StrategyUsage == nil {
		s.StrategyUsage = map[taxonomy.StrategyKey]int{}
	}
}

// Record appends a history entry, evicting the oldest past the limit.
func (s *Session) Record(kind EntryKind, text string, at time.Time) {
	s.History = append(s.History, Entry{At: at, Kind: kind, Text: text})
	if over := len(s.History) - s.historyLimit; over > 0 {
		s.History = append([]Entry(nil), s.History[over:]...)
	}
}

// AddProgress appends a progress indicator.
func (s *Session) AddProgress(text string, at time.Time) {
	s.Progress = append(s.Progress, Note{At: at, Text: text})
}

// CountStates folds matched agent-states into the session counters.
func (s *Session) CountStates(keys []taxonomy.StateKey) {
	for _, k := range keys {
		s.States[k]++
	}
}

// CountDistortion increments the counter for one distortion kind.
func (s *Session) CountDistortion(k taxonomy.DistortionKey) {
	s.Distortions[k]++
}

// ErrorLoops is how many times error_loop has been detected.
func (s *Session) ErrorLoops() int {
	return s.States[taxonomy.ErrorLoop]
}

// LastStrategy implements strategy.Usage.
func (s *Session) LastStrategy() taxonomy.StrategyKey { return s.LastUsed }

// RecordStrategy implements strategy.Usage.
func (s *Session) RecordStrategy(k taxonomy.StrategyKey) {
	s.StrategyUsage[k]++
	s.LastUsed = k
}

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	ID        string          `json:"id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Data      json.RawMessage `json:"data"`
}

// Encode serializes s into a snapshot.
func Encode(s *Session, at time.Time) (*Snapshot, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", s.ID, err)
	}
	return &Snapshot{ID: s.ID, UpdatedAt: at, Data: data}, nil
}

// Decode restores a session from snap.
func Decode(snap *Snapshot, historyLimit int) (*Session, error) {
	var s Session
	if err := json.Unmarshal(snap.Data, &s); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", snap.ID, err)
	}
	if s.ID == "" {
		s.ID = snap.ID
	}
	s.init(historyLimit)
	return &s, nil
}
