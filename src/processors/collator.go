package processors

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/username/mejoravivienda/backend/src/models"
)

// Collator provides the strict total order used for sorting: a primary
// comparison on the sort key (locale-aware for text, numeric for amounts,
// epoch for dates) and a deterministic ascending-identifier tie-break.
//
// collate.Collator keeps internal buffers and is not safe for concurrent
// use, so callers construct one Collator per sort.
type Collator struct {
	dataset models.Dataset
	coll    *collate.Collator
}

func NewCollator(dataset models.Dataset) *Collator {
	return &Collator{
		dataset: dataset,
		// Spanish collation, insensitive to case and diacritics, so that
		// "lopez", "López" and "LÓPEZ" sort together.
		coll: collate.New(language.Spanish, collate.IgnoreCase, collate.IgnoreDiacritics),
	}
}

// Compare returns -1, 0 or +1 ordering a before/with/after b on the given
// key and direction. The identifier tie-break is always ascending, so equal
// sort keys keep a stable order regardless of direction.
func (c *Collator) Compare(a, b models.Record, key string, dir models.SortDir) int {
	primary := c.comparePrimary(a, b, key)
	if dir == models.SortDesc {
		primary = -primary
	}
	if primary != 0 {
		return primary
	}
	return strings.Compare(a.Key, b.Key)
}

func (c *Collator) comparePrimary(a, b models.Record, key string) int {
	switch c.dataset.KindOf(key) {
	case models.FieldNumeric:
		return a.Amount.Cmp(b.Amount)
	case models.FieldDate:
		return compareDates(a, b)
	default:
		return c.coll.CompareString(strings.TrimSpace(a.Raw[key]), strings.TrimSpace(b.Raw[key]))
	}
}

// compareDates orders the unknown-date sentinel before every known date.
func compareDates(a, b models.Record) int {
	switch {
	case !a.DateKnown && !b.DateKnown:
		return 0
	case !a.DateKnown:
		return -1
	case !b.DateKnown:
		return 1
	}
	return a.Date.Compare(b.Date)
}

// Sort orders records in place by key and direction.
func (c *Collator) Sort(records []models.Record, key string, dir models.SortDir) {
	sort.Slice(records, func(i, j int) bool {
		return c.Compare(records[i], records[j], key, dir) < 0
	})
}
