package thinking

import (
	"hash/fnv"
	"strings"

	"cbthelper/internal/taxonomy"
)

// Contemplation is a one-shot guided contemplation of a topic.
type Contemplation struct {
	Topic           string                        `json:"topic"`
	Style           string                        `json:"style"`
	TotalDuration   string                        `json:"total_duration"`
	Opening         string                        `json:"opening"`
	Phases          []taxonomy.ContemplationPhase `json:"phases"`
	Closing         string                        `json:"closing"`
	MetaInstruction string                        `json:"meta_instruction"`
}

// ContemplationFor fills the named style with topic. Unknown styles use the
// philosophical structure.
func ContemplationFor(topic, style string) Contemplation {
	s, _ := taxonomy.Contemplation(style)
	r := strings.NewReplacer("{topic}", topic)
	phases := make([]taxonomy.ContemplationPhase, len(s.Phases))
	for i, ph := range s.Phases {
		ph.Prompt = r.Replace(ph.Prompt)
		phases[i] = ph
	}
	return Contemplation{
		Topic:           topic,
		Style:           s.Key,
		TotalDuration:   "4-6 minutes",
		Opening:         r.Replace(s.Opening),
		Phases:          phases,
		Closing:         "Having contemplated " + topic + " deeply, what understanding will you carry forward?",
		MetaInstruction: "Between each phase, pause for 10-15 seconds to let thoughts settle.",
	}
}

// ThoughtExperiment is one filled-in experiment template.
type ThoughtExperiment struct {
	Number       int      `json:"number"`
	Name         string   `json:"name"`
	Concept      string   `json:"concept"`
	Setup        string   `json:"setup"`
	Questions    []string `json:"questions"`
	Instruction  string   `json:"instruction"`
	DeeperPrompt string   `json:"deeper_prompt"`
}

// ThoughtExperiments returns count experiments for concept. The selection
// rotates through the templates starting at a position derived from the
// concept, so the same concept always yields the same experiments.
func ThoughtExperiments(concept string, count int) []ThoughtExperiment {
	all := taxonomy.Experiments()
	if count < 1 {
		count = 1
	}
	if count > len(all) {
		count = len(all)
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(concept)))
	start := int(h.Sum32() % uint32(len(all)))

	r := strings.NewReplacer("{concept}", concept)
	out := make([]ThoughtExperiment, 0, count)
	for i := 0; i < count; i++ {
		tpl := all[(start+i)%len(all)]
		qs := make([]string, len(tpl.Questions))
		for j, q := range tpl.Questions {
			qs[j] = r.Replace(q)
		}
		out = append(out, ThoughtExperiment{
			Number:       i + 1,
			Name:         tpl.Name,
			Concept:      concept,
			Setup:        r.Replace(tpl.Setup),
			Questions:    qs,
			Instruction:  "Don't rush to answers. Live in the experiment for a while.",
			DeeperPrompt: "What does this experiment reveal that straightforward analysis wouldn't?",
		})
	}
	return out
}
