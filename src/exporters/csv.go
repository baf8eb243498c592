package exporters

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/username/mejoravivienda/backend/src/models"
)

// EncodeCSV writes an ordered record sequence as an RFC 4180 CSV document:
// one header row with the field names in the given order, then one row per
// record. Cells carry the raw (pre-normalization) display value, or the
// empty string for absent fields. Quoting and quote-doubling are handled by
// encoding/csv.
func EncodeCSV(w io.Writer, records []models.Record, fields []string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(fields); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	row := make([]string, len(fields))
	for i, rec := range records {
		for j, field := range fields {
			row[j] = rec.Raw[field]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// Filename builds the export attachment name from the dataset label and the
// export date, e.g. "caja_2024" + 2024-03-15 -> "caja_2024_2024-03-15.csv".
func Filename(label string, now time.Time) string {
	slug := strings.ToLower(strings.TrimSpace(label))
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, slug)
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "export"
	}
	return fmt.Sprintf("%s_%s.csv", slug, now.Format("2006-01-02"))
}
