package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawRow is one untyped row as delivered by a data source: field name to
// display value. A missing key means the field was absent in the source row,
// which is a different state from an explicit empty string.
type RawRow map[string]string

// Record is the normalized form of a RawRow. Raw values are kept unmodified
// for display and export; the typed fields are what filtering, sorting and
// aggregation operate on.
type Record struct {
	Key   string `json:"key"`    // identifier value, or a positional fallback used only for rendering
	HasID bool   `json:"has_id"` // false when the identifier field was absent and Key is positional

	Raw RawRow `json:"raw"` // original values, untouched

	// folded holds trimmed, lowercased copies of every raw field. All
	// matching and grouping goes through these, never through Raw.
	folded map[string]string

	Date      time.Time       `json:"date"`       // UTC midnight; zero value when DateKnown is false
	DateKnown bool            `json:"date_known"` // false marks the "unknown date" sentinel
	Amount    decimal.Decimal `json:"amount"`     // zero when the raw amount was unparseable
	AmountRaw string          `json:"amount_raw"` // original amount text, kept for display/export
}

// NewRecord builds a Record with its folded field index. The normalizer is
// the only producer; tests construct records through it as well.
func NewRecord(key string, hasID bool, raw RawRow, folded map[string]string, date time.Time, dateKnown bool, amount decimal.Decimal, amountRaw string) Record {
	return Record{
		Key:       key,
		HasID:     hasID,
		Raw:       raw,
		folded:    folded,
		Date:      date,
		DateKnown: dateKnown,
		Amount:    amount,
		AmountRaw: amountRaw,
	}
}

// Field returns the raw value of a field and whether it was present in the
// source row.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.Raw[name]
	return v, ok
}

// Folded returns the trimmed lowercase form of a field used for matching and
// grouping. Absent fields fold to the empty string.
func (r Record) Folded(name string) string {
	return r.folded[name]
}

// FieldAbsent reports whether a field was truly missing from the source row,
// as opposed to present with an empty value.
func (r Record) FieldAbsent(name string) bool {
	_, ok := r.Raw[name]
	return !ok
}
