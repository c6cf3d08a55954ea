package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"finledger/internal/core"
)

// IdentityProblem describes an ambiguous identity within one category.
type IdentityProblem struct {
	Category core.Category `json:"category"`
	Identity string        `json:"identity"`
	Absent   bool          `json:"absent"`
	Count    int           `json:"count"`
}

// IdentityError lists the identities that Reconcile would collapse.
type IdentityError struct {
	Field    string            `json:"field"`
	Problems []IdentityProblem `json:"problems"`
}

func (e *IdentityError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Absent {
			parts = append(parts, fmt.Sprintf("%s: %d items without %s", p.Category, p.Count, e.Field))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %q appears %d times", p.Category, p.Identity, p.Count))
	}
	return "ambiguous identities: " + strings.Join(parts, "; ")
}

// CheckIdentities rejects snapshots in which an identity repeats within a
// category or an item lacks its identity. A single item without identity is
// accepted; it can still be matched unambiguously.
func CheckIdentities(s core.Snapshot, opts ...Option) error {
	o := newOptions(opts)
	var problems []IdentityProblem

	cats := make([]core.Category, 0, len(s))
	for c := range s {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })

	for _, c := range cats {
		counts := make(map[identity]int)
		var order []identity
		for _, it := range s[c] {
			id := identityOf(it, o.identityField)
			if counts[id] == 0 {
				order = append(order, id)
			}
			counts[id]++
		}
		for _, id := range order {
			if counts[id] < 2 {
				continue
			}
			problems = append(problems, IdentityProblem{
				Category: c,
				Identity: id.value,
				Absent:   !id.present,
				Count:    counts[id],
			})
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return &IdentityError{Field: o.identityField, Problems: problems}
}
