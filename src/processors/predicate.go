package processors

import (
	"strings"

	"github.com/username/mejoravivienda/backend/src/models"
)

// Predicate evaluates a Query against one Record. All sub-predicates combine
// conjunctively; a constraint with an empty needle is vacuously true.
type Predicate struct {
	dataset models.Dataset
}

func NewPredicate(dataset models.Dataset) *Predicate {
	return &Predicate{dataset: dataset}
}

// Matches reports whether the record satisfies every constraint of the query.
func (p *Predicate) Matches(rec models.Record, q models.Query) bool {
	for field, needle := range q.Filters {
		if !p.matchesField(rec, field, needle) {
			return false
		}
	}

	// Only-negative toggle: the normalized amount must be strictly below
	// zero. Unparseable amounts normalize to zero and never qualify.
	if q.OnlyNegative && !rec.Amount.IsNegative() {
		return false
	}

	if !q.From.IsZero() || !q.To.IsZero() {
		// Records with an unknown date never match an active range.
		if !rec.DateKnown {
			return false
		}
		if !q.From.IsZero() && rec.Date.Before(q.From) {
			return false
		}
		if !q.To.IsZero() && rec.Date.After(q.To) {
			return false
		}
	}

	return p.matchesSearch(rec, q.Search)
}

func (p *Predicate) matchesField(rec models.Record, field, needle string) bool {
	folded := Fold(needle)
	if folded == "" {
		return true
	}
	policy, declared := p.dataset.Filters[field]
	if !declared {
		policy = models.FilterContains
	}
	value := rec.Folded(field)
	if policy == models.FilterEquals {
		return value == folded
	}
	return strings.Contains(value, folded)
}

// matchesSearch checks the free-text needle against the concatenation of the
// dataset's display-relevant fields.
func (p *Predicate) matchesSearch(rec models.Record, needle string) bool {
	folded := Fold(needle)
	if folded == "" {
		return true
	}
	var sb strings.Builder
	for i, field := range p.dataset.SearchFields {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(rec.Folded(field))
	}
	return strings.Contains(sb.String(), folded)
}
