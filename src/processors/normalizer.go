package processors

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/mejoravivienda/backend/src/models"
)

const dateLayout = "2006-01-02"

// Normalizer coerces the untyped rows of one dataset into Records. It is a
// total function: every raw row yields exactly one Record, with coercion
// failures resolved to documented neutral values instead of errors.
type Normalizer struct {
	dataset models.Dataset
}

func NewNormalizer(dataset models.Dataset) *Normalizer {
	return &Normalizer{dataset: dataset}
}

// Normalize converts a full collection of raw rows, preserving order. The
// slice index is the positional fallback key for rows without an identifier.
func (n *Normalizer) Normalize(rows []models.RawRow) []models.Record {
	records := make([]models.Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, n.normalizeOne(row, i))
	}
	return records
}

func (n *Normalizer) normalizeOne(row models.RawRow, pos int) models.Record {
	folded := make(map[string]string, len(row))
	for field, value := range row {
		folded[field] = Fold(value)
	}

	key := fmt.Sprintf("row-%d", pos)
	hasID := false
	if id, ok := row[n.dataset.IDField]; ok && strings.TrimSpace(id) != "" {
		key = strings.TrimSpace(id)
		hasID = true
	}

	var date time.Time
	dateKnown := false
	if raw, ok := row[n.dataset.DateField]; ok {
		date, dateKnown = ParseDate(raw)
	}

	amountRaw := row[n.dataset.AmountField]
	amount, _ := ParseAmount(amountRaw)

	return models.NewRecord(key, hasID, row, folded, date, dateKnown, amount, amountRaw)
}

// Fold is the canonical comparison form of a text value: trimmed and
// lowercased. Matching and grouping always go through Fold; the stored raw
// value stays untouched for display.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseAmount parses a decimal amount from its display text. It tolerates
// currency symbols, spaces and Latin-style separators ("1.234.567,89").
// Anything unparseable yields zero with ok=false; the caller keeps the raw
// text for display.
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.Trim(cleaned, "\"")
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return decimal.Zero, false
	}

	// With both separators present the dots are thousands marks and the
	// comma is the decimal point; a lone comma is a decimal point.
	if strings.Contains(cleaned, ".") && strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	cleaned = strings.ReplaceAll(cleaned, ",", ".")

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseDate parses a calendar date ("YYYY-MM-DD", or any string starting
// with one, e.g. an RFC 3339 timestamp) at UTC midnight so comparisons are
// stable regardless of the viewer's timezone. Unparseable input yields the
// unknown-date sentinel (zero time, ok=false), which sorts before every
// known date.
func ParseDate(s string) (time.Time, bool) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > len(dateLayout) {
		trimmed = trimmed[:len(dateLayout)]
	}
	t, err := time.ParseInLocation(dateLayout, trimmed, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
