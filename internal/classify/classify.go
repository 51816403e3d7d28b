// Package classify maps free text plus structured hints onto the taxonomy.
//
// Classification is a single generic evaluator over the declarative rule
// tables in package taxonomy: every rule's weighted phrases are tested
// against the lower-cased input, explicit hints add a bonus, and candidates
// are ranked by score with ties broken by declaration order.
package classify

import (
	"sort"
	"strings"

	"cbthelper/internal/taxonomy"
)

// DefaultHintBonus is added when a hint names an entry exactly.
const DefaultHintBonus = 3

// Hints are structured signals supplied next to the free text.
type Hints struct {
	// Pattern is a caller-asserted pattern name, e.g. "perfectionist loop".
	Pattern            string
	ErrorMessages      []string
	AttemptedSolutions []string
}

// Match is one ranked candidate. Rank is 1-based; Confidence is the score
// relative to the best candidate of the same kind.
type Match struct {
	Key        string  `json:"key"`
	Score      int     `json:"score"`
	Rank       int     `json:"rank"`
	Confidence float64 `json:"confidence"`
	Explicit   bool    `json:"explicit,omitempty"`
}

// Result holds ranked state and distortion matches. Either list may be
// empty; an empty Result means no clear pattern.
type Result struct {
	States      []Match `json:"states"`
	Distortions []Match `json:"distortions"`
}

// Empty reports whether nothing matched.
func (r Result) Empty() bool {
	return len(r.States) == 0 && len(r.Distortions) == 0
}

// TopState returns the highest-ranked state.
func (r Result) TopState() (taxonomy.StateKey, bool) {
	if len(r.States) == 0 {
		return "", false
	}
	return taxonomy.StateKey(r.States[0].Key), true
}

// StateKeys returns the matched states in rank order.
func (r Result) StateKeys() []taxonomy.StateKey {
	out := make([]taxonomy.StateKey, len(r.States))
	for i, m := range r.States {
		out[i] = taxonomy.StateKey(m.Key)
	}
	return out
}

// Options tune the evaluator. Extra phrases are appended to the built-in
// keyword tables per key; an extra phrase with Weight 0 counts as 1. States
// and distortions are keyed separately since some keys exist in both.
type Options struct {
	HintBonus        int
	ExtraStates      map[taxonomy.StateKey][]taxonomy.Keyword
	ExtraDistortions map[taxonomy.DistortionKey][]taxonomy.Keyword
}

// Classifier evaluates the taxonomy rule tables. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	states      []taxonomy.Rule
	distortions []taxonomy.Rule
	hintBonus   int
}

// New builds a classifier over the built-in tables plus the extra phrases.
func New(opts Options) *Classifier {
	bonus := opts.HintBonus
	if bonus <= 0 {
		bonus = DefaultHintBonus
	}
	return &Classifier{
		states:      extend(taxonomy.StateRules(), opts.ExtraStates),
		distortions: extend(taxonomy.DistortionRules(), opts.ExtraDistortions),
		hintBonus:   bonus,
	}
}

func extend[K ~string](rules []taxonomy.Rule, extra map[K][]taxonomy.Keyword) []taxonomy.Rule {
	for i := range rules {
		add := extra[K(rules[i].Key)]
		if len(add) == 0 {
			continue
		}
		kws := make([]taxonomy.Keyword, 0, len(rules[i].Keywords)+len(add))
		kws = append(kws, rules[i].Keywords...)
		for _, k := range add {
			if k.Weight <= 0 {
				k.Weight = 1
			}
			k.Phrase = strings.ToLower(k.Phrase)
			kws = append(kws, k)
		}
		rules[i].Keywords = kws
	}
	return rules
}

// Classify ranks agent-states and distortions for text and hints.
func (c *Classifier) Classify(text string, hints Hints) Result {
	corpus := buildCorpus(text, hints)
	pattern := taxonomy.Normalize(hints.Pattern)

	states := c.evaluate(c.states, corpus, pattern)
	for _, sig := range signals {
		if sig.fires(hints) {
			states = addBonus(states, c.states, sig.key, sig.bonus)
		}
	}
	return Result{
		States:      rank(states),
		Distortions: rank(c.evaluate(c.distortions, corpus, pattern)),
	}
}

// Distortions ranks only distortion matches for text.
func (c *Classifier) Distortions(text string) []Match {
	return rank(c.evaluate(c.distortions, strings.ToLower(text), ""))
}

type candidate struct {
	Match
	order int
}

func (c *Classifier) evaluate(rules []taxonomy.Rule, corpus, pattern string) []candidate {
	var out []candidate
	for i, r := range rules {
		score := 0
		for _, kw := range r.Keywords {
			if kw.Phrase != "" && strings.Contains(corpus, kw.Phrase) {
				score += kw.Weight
			}
		}
		explicit := pattern != "" && namesRule(pattern, r)
		if explicit {
			score += c.hintBonus
		}
		if score > 0 {
			out = append(out, candidate{Match: Match{Key: r.Key, Score: score, Explicit: explicit}, order: i})
		}
	}
	return out
}

func namesRule(pattern string, r taxonomy.Rule) bool {
	if pattern == taxonomy.Normalize(r.Key) {
		return true
	}
	for _, a := range r.Aliases {
		if pattern == taxonomy.Normalize(a) {
			return true
		}
	}
	return false
}

func addBonus(cands []candidate, rules []taxonomy.Rule, key string, bonus int) []candidate {
	for i := range cands {
		if cands[i].Key == key {
			cands[i].Score += bonus
			return cands
		}
	}
	for i, r := range rules {
		if r.Key == key {
			return append(cands, candidate{Match: Match{Key: key, Score: bonus}, order: i})
		}
	}
	return cands
}

func rank(cands []candidate) []Match {
	if len(cands) == 0 {
		return nil
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].order < cands[j].order
	})
	top := float64(cands[0].Score)
	out := make([]Match, len(cands))
	for i, c := range cands {
		m := c.Match
		m.Rank = i + 1
		m.Confidence = float64(m.Score) / top
		out[i] = m
	}
	return out
}

func buildCorpus(text string, hints Hints) string {
	parts := make([]string, 0, 2+len(hints.ErrorMessages)+len(hints.AttemptedSolutions))
	parts = append(parts, text, hints.Pattern)
	parts = append(parts, hints.ErrorMessages...)
	parts = append(parts, hints.AttemptedSolutions...)
	return strings.ToLower(strings.Join(parts, "\n"))
}
