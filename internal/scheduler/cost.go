package scheduler

import (
	"fmt"
	"maps"
	"unicode/utf8"

	"github.com/Iron-Ham/stepsched/internal/errors"
	"github.com/Iron-Ham/stepsched/internal/taskqueue"
)

// CostFunc returns the processing duration of a step, not counting the
// run's TimeOffset.
type CostFunc = taskqueue.CostFunc

// Cost model names accepted by NamedCost.
const (
	CostAlphabet = "alphabet"
	CostUnit     = "unit"
	CostTable    = "table"
)

// CostModels returns the names accepted by NamedCost.
func CostModels() []string {
	return []string{CostAlphabet, CostUnit, CostTable}
}

// AlphabetCost charges a step by the position of its first letter in the
// alphabet: A (or a) costs 1 and Z costs 26. Labels that do not start with
// an ASCII letter have no cost.
func AlphabetCost(label string) (int, error) {
	r, _ := utf8.DecodeRuneInString(label)
	switch {
	case r >= 'A' && r <= 'Z':
		return int(r-'A') + 1, nil
	case r >= 'a' && r <= 'z':
		return int(r-'a') + 1, nil
	}
	return 0, fmt.Errorf("%w: %q does not start with a letter", errors.ErrUnknownCost, label)
}

// UnitCost charges every step 1.
func UnitCost(string) (int, error) {
	return 1, nil
}

// TableCost looks each step up in table. Steps missing from the table are
// priced by fallback, or rejected with ErrUnknownCost when fallback is nil.
// The table is copied.
func TableCost(table map[string]int, fallback CostFunc) CostFunc {
	durations := maps.Clone(table)
	return func(label string) (int, error) {
		if d, ok := durations[label]; ok {
			return d, nil
		}
		if fallback != nil {
			return fallback(label)
		}
		return 0, fmt.Errorf("%w: no duration for step %q", errors.ErrUnknownCost, label)
	}
}

// NamedCost resolves a cost model by name. Explicit durations, when given,
// always take precedence; the "table" model requires every step to have one.
func NamedCost(name string, durations map[string]int) (CostFunc, error) {
	var base CostFunc
	switch name {
	case CostAlphabet, "":
		base = AlphabetCost
	case CostUnit:
		base = UnitCost
	case CostTable:
		return TableCost(durations, nil), nil
	default:
		return nil, errors.NewValidationError(fmt.Sprintf("unknown cost model, expected one of %v", CostModels())).
			WithField("cost").
			WithValue(name)
	}
	if len(durations) == 0 {
		return base, nil
	}
	return TableCost(durations, base), nil
}
