package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mejoravivienda/backend/src/models"
)

func writeDatasets(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const validDatasets = `
datasets:
  caja:
    table: caja_consorcio
    label: Caja
    idField: registro_id
    dateField: fecha
    amountField: valor_num
    searchFields: [registro_id, fecha, pagado_a, concepto]
    filters:
      negocio: equals
      concepto: contains
    categoryField: tipo_gasto
    counterpartyField: pagado_a
    exportFields: [registro_id, fecha, pagado_a, concepto, valor_num]
    defaultSortKey: fecha
  giros:
    table: ${GIROS_TABLE}
    label: Giros
    idField: id
    dateField: fecha_giro
    amountField: monto
    searchFields: [id, contratista_nombre]
    exportFields: [id, fecha_giro, monto]
    defaultSortKey: fecha_giro
    defaultSortDir: asc
    topN: 3
`

func TestLoadDatasets(t *testing.T) {
	t.Setenv("GIROS_TABLE", "giros_contratistas")
	path := writeDatasets(t, validDatasets)

	datasets, err := LoadDatasets(path)
	require.NoError(t, err)
	require.Len(t, datasets, 2)

	caja := datasets["caja"]
	assert.Equal(t, "caja", caja.Name)
	assert.Equal(t, "caja_consorcio", caja.Table)
	assert.Equal(t, models.FilterEquals, caja.Filters["negocio"])
	assert.Equal(t, models.FilterContains, caja.Filters["concepto"])
	// Omitted fields pick up the registry defaults.
	assert.Equal(t, models.SortDesc, caja.DefaultSortDir)
	assert.Equal(t, 5, caja.TopN)

	giros := datasets["giros"]
	assert.Equal(t, "giros_contratistas", giros.Table)
	assert.Equal(t, models.SortAsc, giros.DefaultSortDir)
	assert.Equal(t, 3, giros.TopN)

	assert.Equal(t, []string{"caja", "giros"}, DatasetNames(datasets))
}

func TestLoadDatasets_MissingFile(t *testing.T) {
	_, err := LoadDatasets(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read datasets config")
}

func TestLoadDatasets_Empty(t *testing.T) {
	path := writeDatasets(t, "datasets: {}\n")
	_, err := LoadDatasets(path)
	assert.ErrorContains(t, err, "defines no datasets")
}

func TestLoadDatasets_InvalidEntry(t *testing.T) {
	path := writeDatasets(t, `
datasets:
  roto:
    label: Roto
    idField: id
    dateField: fecha
    amountField: monto
    searchFields: [id]
    exportFields: [id]
    defaultSortKey: fecha
`)
	_, err := LoadDatasets(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, `dataset "roto"`)
	assert.ErrorContains(t, err, "table")
}

func TestLoadDatasets_BadFilterPolicy(t *testing.T) {
	path := writeDatasets(t, `
datasets:
  caja:
    table: caja_consorcio
    label: Caja
    idField: registro_id
    dateField: fecha
    amountField: valor_num
    searchFields: [registro_id]
    filters:
      negocio: fuzzy
    exportFields: [registro_id]
    defaultSortKey: fecha
`)
	_, err := LoadDatasets(path)
	require.Error(t, err)
	assert.ErrorContains(t, err, "negocio")
}
