package processors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/username/mejoravivienda/backend/src/models"
)

func cajaRecords(t *testing.T) []models.Record {
	t.Helper()
	rows := []models.RawRow{
		{"registro_id": "1", "fecha": "2024-03-01", "valor_num": "25000000", "pagado_a": "Alcaldía Municipal", "concepto": "Transferencia convenio", "negocio": "Administración"},
		{"registro_id": "2", "fecha": "2024-03-05", "valor_num": "-7500000", "pagado_a": "Construcciones López S.A.S", "concepto": "Pago contratista", "negocio": "Obra"},
		{"registro_id": "3", "fecha": "n/a", "valor_num": "-420000", "pagado_a": "Transportes La Sabana", "concepto": "Flete materiales", "negocio": "Obra"},
	}
	return NewNormalizer(testDataset()).Normalize(rows)
}

func TestMatches_EmptyQueryMatchesAll(t *testing.T) {
	p := NewPredicate(testDataset())
	q := models.NewQuery("fecha", models.SortDesc, 50)
	for _, rec := range cajaRecords(t) {
		require.True(t, p.Matches(rec, q), "record %s", rec.Key)
	}
}

func TestMatches_FreeTextSearch(t *testing.T) {
	p := NewPredicate(testDataset())
	recs := cajaRecords(t)
	q := models.NewQuery("fecha", models.SortDesc, 50)

	require.True(t, p.Matches(recs[1], q.WithSearch("lópez")))
	require.True(t, p.Matches(recs[1], q.WithSearch("LÓPEZ")))
	require.False(t, p.Matches(recs[0], q.WithSearch("lópez")))
	// The amount's text participates in the haystack.
	require.True(t, p.Matches(recs[0], q.WithSearch("25000000")))
}

func TestMatches_FieldPolicies(t *testing.T) {
	p := NewPredicate(testDataset())
	recs := cajaRecords(t)
	q := models.NewQuery("fecha", models.SortDesc, 50)

	// negocio is an enumerated field: exact, case-insensitive.
	require.True(t, p.Matches(recs[1], q.WithFilter("negocio", "obra")))
	require.False(t, p.Matches(recs[1], q.WithFilter("negocio", "ob")))

	// concepto is free-form: substring containment.
	require.True(t, p.Matches(recs[1], q.WithFilter("concepto", "contratista")))
	require.True(t, p.Matches(recs[1], q.WithFilter("concepto", "PAGO CONTRA")))
	require.False(t, p.Matches(recs[0], q.WithFilter("concepto", "contratista")))

	// A blank needle is vacuously true.
	require.True(t, p.Matches(recs[0], q.WithFilter("negocio", "   ")))
}

func TestMatches_OnlyNegative(t *testing.T) {
	p := NewPredicate(testDataset())
	recs := cajaRecords(t)
	q := models.NewQuery("fecha", models.SortDesc, 50).WithOnlyNegative(true)

	require.False(t, p.Matches(recs[0], q))
	require.True(t, p.Matches(recs[1], q))

	// Unparseable amounts normalize to zero and never count as negative.
	zero := NewNormalizer(testDataset()).Normalize([]models.RawRow{
		{"registro_id": "9", "fecha": "2024-03-09", "valor_num": "???"},
	})[0]
	require.False(t, p.Matches(zero, q))
}

func TestMatches_DateRange(t *testing.T) {
	p := NewPredicate(testDataset())
	recs := cajaRecords(t)
	q := models.NewQuery("fecha", models.SortDesc, 50)

	ranged := q.WithDateRange(utcDate(2024, 1, 1), utcDate(2024, 12, 31))
	require.True(t, p.Matches(recs[0], ranged))
	// Bounds are inclusive.
	exact := q.WithDateRange(utcDate(2024, 3, 1), utcDate(2024, 3, 1))
	require.True(t, p.Matches(recs[0], exact))
	require.False(t, p.Matches(recs[1], exact))

	// An unknown date never matches an active range, however wide.
	require.False(t, p.Matches(recs[2], ranged))
	// Without bounds it passes.
	require.True(t, p.Matches(recs[2], q))
}
