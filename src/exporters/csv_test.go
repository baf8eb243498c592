package exporters

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mejoravivienda/backend/src/models"
)

func record(raw models.RawRow) models.Record {
	folded := make(map[string]string, len(raw))
	for k, v := range raw {
		folded[k] = strings.ToLower(strings.TrimSpace(v))
	}
	return models.NewRecord(raw["registro_id"], true, raw, folded, time.Time{}, false, decimal.Zero, raw["valor_num"])
}

func TestEncodeCSV_RoundTrip(t *testing.T) {
	fields := []string{"registro_id", "fecha", "pagado_a", "valor_num"}
	records := []models.Record{
		record(models.RawRow{"registro_id": "1", "fecha": "2024-03-01", "pagado_a": "Alcaldía Municipal", "valor_num": "25000000"}),
		record(models.RawRow{"registro_id": "2", "fecha": "2024-03-05", "pagado_a": "Ferretería \"El Tornillo\", S.A.S", "valor_num": "-7500000"}),
		// Absent fecha exports as an empty cell.
		record(models.RawRow{"registro_id": "3", "pagado_a": "Transportes\nLa Sabana", "valor_num": "-420000"}),
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, records, fields))

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, fields, rows[0])
	assert.Equal(t, []string{"1", "2024-03-01", "Alcaldía Municipal", "25000000"}, rows[1])
	// Quotes, commas and newlines survive the trip intact.
	assert.Equal(t, `Ferretería "El Tornillo", S.A.S`, rows[2][2])
	assert.Equal(t, "Transportes\nLa Sabana", rows[3][2])
	assert.Equal(t, "", rows[3][1])
}

func TestEncodeCSV_EmptyCollection(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCSV(&buf, nil, []string{"registro_id", "fecha"}))
	assert.Equal(t, "registro_id,fecha\n", buf.String())
}

func TestFilename(t *testing.T) {
	day := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	assert.Equal(t, "caja_2024-03-15.csv", Filename("Caja", day))
	assert.Equal(t, "caja_2024_2024-03-15.csv", Filename("Caja 2024", day))
	assert.Equal(t, "giros_a_contratistas_2024-03-15.csv", Filename("  Giros a Contratistas  ", day))
	assert.Equal(t, "export_2024-03-15.csv", Filename("¡¡¡", day))
}
