package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/mejoravivienda/backend/src/datasource"
	"github.com/username/mejoravivienda/backend/src/models"
	"github.com/username/mejoravivienda/backend/src/services"
)

func proyectosDataset() models.Dataset {
	return models.Dataset{
		Name:           "proyectos",
		Table:          "viviendas",
		Label:          "Proyectos",
		IDField:        "id",
		DateField:      "fecha_inicio",
		AmountField:    "presupuesto",
		SearchFields:   []string{"codigo", "beneficiario_nombre"},
		Filters:        map[string]models.FilterPolicy{"estado": models.FilterEquals},
		ExportFields:   []string{"id", "codigo", "estado"},
		DefaultSortKey: "fecha_inicio",
		DefaultSortDir: models.SortDesc,
		TopN:           5,
	}
}

func girosDataset() models.Dataset {
	return models.Dataset{
		Name:           "giros",
		Table:          "giros_contratistas",
		Label:          "Giros",
		IDField:        "id",
		DateField:      "fecha_giro",
		AmountField:    "monto",
		SearchFields:   []string{"id", "contratista_nombre"},
		Filters:        map[string]models.FilterPolicy{"estado": models.FilterEquals},
		ExportFields:   []string{"id", "fecha_giro", "monto"},
		DefaultSortKey: "fecha_giro",
		DefaultSortDir: models.SortDesc,
		TopN:           5,
	}
}

func stubReady(rows []models.RawRow) *stubSource {
	return &stubSource{snap: datasource.Snapshot{
		ID:    "snap-1",
		State: datasource.StateReady,
		Rows:  rows,
	}}
}

func TestHandleGetStats(t *testing.T) {
	proyectos := stubReady([]models.RawRow{
		{"id": "1", "estado": "EN_EJECUCION", "fecha_inicio": "2024-01-15", "presupuesto": "25000000"},
		{"id": "2", "estado": "TERMINADO", "fecha_inicio": "2023-10-01", "presupuesto": "30000000"},
		{"id": "3", "estado": "EN_EJECUCION", "fecha_inicio": "2024-02-01", "presupuesto": "22000000"},
		{"id": "4", "estado": "PENDIENTE", "fecha_inicio": "2024-04-01", "presupuesto": "28000000"},
		{"id": "5", "estado": "SUSPENDIDO", "fecha_inicio": "2024-01-10", "presupuesto": "26000000"},
	})
	giros := stubReady([]models.RawRow{
		{"id": "G-1", "estado": "PROCESADO", "fecha_giro": "2024-02-10", "monto": "5000000"},
		{"id": "G-2", "estado": "PROCESADO", "fecha_giro": "2024-03-05", "monto": "8000000"},
		{"id": "G-3", "estado": "PENDIENTE", "fecha_giro": "2024-03-12", "monto": "4000000"},
		{"id": "G-4", "estado": "RECHAZADO", "fecha_giro": "2024-03-15", "monto": "2000000"},
	})

	svc := services.NewViewService(
		map[string]models.Dataset{
			"proyectos": proyectosDataset(),
			"giros":     girosDataset(),
		},
		map[string]datasource.Source{
			"proyectos": proyectos,
			"giros":     giros,
		},
		nil,
	)

	r := chi.NewRouter()
	r.Use(ContextualLoggerMiddleware)
	r.Get("/api/dashboard/stats", NewDashboardHandler(svc).HandleGetStats)

	rec := doRequest(t, r, http.MethodGet, "/api/dashboard/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Proyectos struct {
			Total       int `json:"total"`
			EnEjecucion int `json:"en_ejecucion"`
			Terminados  int `json:"terminados"`
			Pendientes  int `json:"pendientes"`
			Suspendidos int `json:"suspendidos"`
		} `json:"proyectos"`
		TotalGirado     string `json:"total_girado"`
		InventarioValor string `json:"inventario_valor"`
		SaldoCaja       string `json:"saldo_caja"`
		GirosPorMes     []struct {
			Period string `json:"period"`
			Inflow string `json:"inflow"`
		} `json:"giros_por_mes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))

	assert.Equal(t, 5, stats.Proyectos.Total)
	assert.Equal(t, 2, stats.Proyectos.EnEjecucion)
	assert.Equal(t, 1, stats.Proyectos.Terminados)
	assert.Equal(t, 1, stats.Proyectos.Pendientes)
	assert.Equal(t, 1, stats.Proyectos.Suspendidos)

	// Only processed disbursements count toward the total and the series.
	assert.Equal(t, "13000000", stats.TotalGirado)
	require.Len(t, stats.GirosPorMes, 2)
	assert.Equal(t, "2024-02", stats.GirosPorMes[0].Period)
	assert.Equal(t, "5000000", stats.GirosPorMes[0].Inflow)
	assert.Equal(t, "2024-03", stats.GirosPorMes[1].Period)
	assert.Equal(t, "8000000", stats.GirosPorMes[1].Inflow)

	// Unregistered datasets read as zero, never as an error.
	assert.Equal(t, "0", stats.InventarioValor)
	assert.Equal(t, "0", stats.SaldoCaja)
}
