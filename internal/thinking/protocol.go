// Package thinking drives multi-step contemplation protocols: the 7-level
// depth ladder, Socratic dialogues and recursive questioning.
//
// A Protocol is an explicit state machine persisted on its session. Each call
// to Advance produces exactly the next level; levels are never skipped and
// never exceed the target.
package thinking

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"cbthelper/internal/taxonomy"
)

// Kind names the protocol family.
type Kind string

const (
	KindLadder    Kind = "depth_ladder"
	KindSocratic  Kind = "socratic_dialogue"
	KindRecursive Kind = "recursive_questioning"
)

var (
	// ErrOutOfSequence is returned when a caller requests any level other
	// than the next one.
	ErrOutOfSequence = errors.New("level requested out of sequence")
	// ErrBeyondTarget is returned when a caller requests a level past the target.
	ErrBeyondTarget = errors.New("level beyond protocol target")
)

// Phase is one produced step of a protocol.
type Phase struct {
	Level       int       `json:"level"`
	Name        string    `json:"name"`
	Prompt      string    `json:"prompt"`
	Questions   []string  `json:"questions,omitempty"`
	Lens        string    `json:"lens"`
	BuildsOn    string    `json:"builds_on,omitempty"`
	Transition  string    `json:"transition,omitempty"`
	ThinkingFor string    `json:"thinking_for,omitempty"`
	At          time.Time `json:"at"`
}

// Protocol is the per-session thinking state. Visited always equals
// {Start..Current}; Current is Start-1 until the first phase is produced.
type Protocol struct {
	Kind      Kind                 `json:"kind"`
	Topic     string               `json:"topic"`
	Dialogue  taxonomy.DialogueKey `json:"dialogue,omitempty"`
	Start     int                  `json:"start"`
	Target    int                  `json:"target"`
	Current   int                  `json:"current"`
	Phases    []Phase              `json:"phases"`
	Visited   []int                `json:"visited"`
	StartedAt time.Time            `json:"started_at"`
}

// NewLadder starts a depth-ladder protocol that will climb from start to
// target (both 1..taxonomy.MaxDepth, start <= target).
func NewLadder(topic string, target, start int, now time.Time) (*Protocol, error) {
	if err := checkBounds(target, start); err != nil {
		return nil, err
	}
	return &Protocol{
		Kind:      KindLadder,
		Topic:     topic,
		Start:     start,
		Target:    target,
		Current:   start - 1,
		StartedAt: now,
	}, nil
}

// NewSocratic starts a Socratic dialogue of the given type with rounds rounds.
func NewSocratic(topic string, dialogue taxonomy.DialogueKey, rounds int, now time.Time) (*Protocol, error) {
	if _, ok := taxonomy.Dialogue(dialogue); !ok {
		return nil, fmt.Errorf("unknown dialogue type %q", dialogue)
	}
	if err := checkBounds(rounds, 1); err != nil {
		return nil, err
	}
	return &Protocol{
		Kind:      KindSocratic,
		Topic:     topic,
		Dialogue:  dialogue,
		Start:     1,
		Target:    rounds,
		StartedAt: now,
	}, nil
}

// NewRecursive starts recursive questioning of question with rounds rounds.
func NewRecursive(question string, rounds int, now time.Time) (*Protocol, error) {
	if err := checkBounds(rounds, 1); err != nil {
		return nil, err
	}
	return &Protocol{
		Kind:      KindRecursive,
		Topic:     question,
		Start:     1,
		Target:    rounds,
		StartedAt: now,
	}, nil
}

func checkBounds(target, start int) error {
	if target < 1 || target > taxonomy.MaxDepth {
		return fmt.Errorf("target %d outside [1,%d]", target, taxonomy.MaxDepth)
	}
	if start < 1 || start > target {
		return fmt.Errorf("start %d outside [1,%d]", start, target)
	}
	return nil
}

// Done reports whether the target level has been produced.
func (p *Protocol) Done() bool {
	return p.Current >= p.Target
}

// Next is the level the next Advance would produce.
func (p *Protocol) Next() int {
	return p.Current + 1
}

// Advance produces the next phase. When the target has been reached it
// returns ok=false and leaves the protocol unchanged.
func (p *Protocol) Advance(now time.Time) (Phase, bool) {
	next := p.Current + 1
	if next > p.Target {
		return Phase{}, false
	}
	ph := p.build(next, now)
	p.Phases = append(p.Phases, ph)
	p.Visited = append(p.Visited, next)
	p.Current = next
	return ph, true
}

// AdvanceTo is Advance for callers that name the level they expect. Any
// level other than Next is rejected without changing state.
func (p *Protocol) AdvanceTo(level int, now time.Time) (Phase, error) {
	if level > p.Target {
		return Phase{}, fmt.Errorf("%w: level %d, target %d", ErrBeyondTarget, level, p.Target)
	}
	if level != p.Next() {
		return Phase{}, fmt.Errorf("%w: requested %d, next is %d", ErrOutOfSequence, level, p.Next())
	}
	ph, _ := p.Advance(now)
	return ph, nil
}

// Clone returns a deep copy safe to hand outside the session lock.
func (p *Protocol) Clone() *Protocol {
	if p == nil {
		return nil
	}
	c := *p
	c.Phases = make([]Phase, len(p.Phases))
	for i, ph := range p.Phases {
		ph.Questions = append([]string(nil), ph.Questions...)
		c.Phases[i] = ph
	}
	c.Visited = append([]int(nil), p.Visited...)
	return &c
}

func (p *Protocol) build(level int, now time.Time) Phase {
	var prev *Phase
	if len(p.Phases) > 0 {
		prev = &p.Phases[len(p.Phases)-1]
	}
	lens := lensFor(p.Topic, level)
	ph := Phase{Level: level, Lens: lens.Key, At: now}

	switch p.Kind {
	case KindSocratic:
		d, _ := taxonomy.Dialogue(p.Dialogue)
		q := d.Questions[level-1]
		ph.Name = fmt.Sprintf("%s, round %d", d.Label, level)
		ph.Prompt = fmt.Sprintf("Round %d of %d on %q: %s", level, p.Target, p.Topic, q)
		ph.Questions = []string{q, lens.Prompt}
		if prev != nil {
			ph.BuildsOn = prev.Questions[0]
			ph.Prompt += fmt.Sprintf(" Hold on to what you found when asking %q.", prev.Questions[0])
		}
	case KindRecursive:
		step := taxonomy.RecursiveStepAt(level)
		ph.Name = fmt.Sprintf("Recursion level %d", level)
		if prev == nil {
			ph.Prompt = fmt.Sprintf("%s (Initial question: %s)", step.MetaQuestion, p.Topic)
		} else {
			ph.BuildsOn = prev.Prompt
			ph.Prompt = fmt.Sprintf("%s Turn back to your answer at level %d and question it.", step.MetaQuestion, prev.Level)
		}
		ph.Questions = append(append([]string(nil), step.Prompts...), lens.Prompt)
		ph.ThinkingFor = (time.Duration(20*level) * time.Second).String()
	default:
		lv, _ := taxonomy.LevelInfo(level)
		ph.Name = lv.Label
		ph.Prompt = fmt.Sprintf("%s (Regarding: %s)", lv.Theme, p.Topic)
		if prev != nil {
			ph.BuildsOn = fmt.Sprintf("Level %d (%s): %s", prev.Level, prev.Name, prev.Prompt)
			ph.Prompt += fmt.Sprintf(" Carry forward what surfaced at the %s level.", prev.Name)
		}
		ph.Questions = []string{lv.Theme, lens.Prompt}
		ph.ThinkingFor = lv.ThinkingTime.String()
	}
	if level < p.Target {
		ph.Transition = fmt.Sprintf("Now, let's go deeper. Take a breath and ascend to level %d...", level+1)
	}
	return ph
}

// lensFor picks a lens deterministically from the topic and level so that
// successive phases rotate through perspectives.
func lensFor(topic string, level int) taxonomy.Lens {
	all := taxonomy.Lenses()
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(topic)))
	return all[(int(h.Sum32()%uint32(len(all)))+level)%len(all)]
}
