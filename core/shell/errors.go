package shell

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	// ErrCommandNotFound is matched by every *LookupError.
	ErrCommandNotFound = errors.New("command not found")

	// ErrUndefinedVariable is matched by expansion errors caused by a missing
	// variable.
	ErrUndefinedVariable = errors.New("undefined variable")
)

// maxSuggestions bounds the "did you mean" list of a LookupError.
const maxSuggestions = 3

// LookupError is returned when a command name can't be resolved. No stage of
// the pipeline has been started when it's returned.
type LookupError struct {
	Name string
	// Suggestions holds similar known names, closest first.
	Suggestions []string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("%s: command not found", e.Name)
}

// Unwrap allows errors.Is(err, ErrCommandNotFound).
func (e *LookupError) Unwrap() error {
	return ErrCommandNotFound
}

// Hint renders the suggestions for a user, or the empty string.
func (e *LookupError) Hint() string {
	if len(e.Suggestions) == 0 {
		return ""
	}
	return fmt.Sprintf("did you mean: %s?", strings.Join(e.Suggestions, ", "))
}

// newLookupError ranks candidates by edit distance to name.
func newLookupError(name string, candidates []string) *LookupError {
	ranks := fuzzy.RankFindFold(name, candidates)

	// RankFindFold only matches subsequences, fall back to edit distance
	// for typos like transpositions.
	seen := make(map[string]bool)
	for _, r := range ranks {
		seen[r.Target] = true
	}
	for i, c := range candidates {
		if seen[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)); d <= 2 {
			ranks = append(ranks, fuzzy.Rank{Source: name, Target: c, Distance: d, OriginalIndex: i})
			seen[c] = true
		}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})

	out := &LookupError{Name: name}
	for _, r := range ranks {
		if len(out.Suggestions) == maxSuggestions {
			break
		}
		out.Suggestions = append(out.Suggestions, r.Target)
	}
	return out
}

// ExpansionError is returned when a pipeline can't be expanded.
type ExpansionError struct {
	// Source is the text of the argument that failed.
	Source string
	Err    error
}

func (e *ExpansionError) Error() string {
	if e.Source == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ExpansionError) Unwrap() error {
	return e.Err
}

// StageError describes a failure inside a running stage. Stage errors are
// reported on the error stream rather than returned.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
