package classify

import (
	"strings"

	"cbthelper/internal/taxonomy"
)

// signal is a structural rule over hints rather than text.
type signal struct {
	key   string
	bonus int
	fires func(Hints) bool
}

var signals = []signal{
	{string(taxonomy.ErrorLoop), 2, repeatedErrors},
	{string(taxonomy.Stuck), 1, func(h Hints) bool { return len(h.AttemptedSolutions) >= 3 }},
	{string(taxonomy.Looping), 1, func(h Hints) bool { return len(h.AttemptedSolutions) >= 4 }},
}

// repeatedErrors fires when the same error text appears more than once.
func repeatedErrors(h Hints) bool {
	seen := make(map[string]bool, len(h.ErrorMessages))
	for _, e := range h.ErrorMessages {
		k := strings.ToLower(strings.TrimSpace(e))
		if k == "" {
			continue
		}
		if seen[k] {
			return true
		}
		seen[k] = true
	}
	return false
}
