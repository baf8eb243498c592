package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/username/mejoravivienda/backend/src/logger"
	"github.com/username/mejoravivienda/backend/src/models"
	"github.com/username/mejoravivienda/backend/src/services"
	"github.com/username/mejoravivienda/backend/src/utils"
)

// Dataset registry names the dashboard composes its stats from. A deployment
// that does not register one of them simply gets zeroes for that block.
const (
	datasetProyectos  = "proyectos"
	datasetGiros      = "giros"
	datasetInventario = "inventario"
	datasetCaja       = "caja"
)

// DashboardHandler serves the aggregated front-page stats. Everything is
// derived from the real record collections through the view engine; nothing
// is randomized or hard-coded.
type DashboardHandler struct {
	viewService *services.ViewService
}

func NewDashboardHandler(viewService *services.ViewService) *DashboardHandler {
	return &DashboardHandler{viewService: viewService}
}

type projectCounts struct {
	Total       int `json:"total"`
	EnEjecucion int `json:"en_ejecucion"`
	Terminados  int `json:"terminados"`
	Pendientes  int `json:"pendientes"`
	Suspendidos int `json:"suspendidos"`
}

type dashboardStats struct {
	Proyectos       projectCounts         `json:"proyectos"`
	TotalGirado     decimal.Decimal       `json:"total_girado"`
	InventarioValor decimal.Decimal       `json:"inventario_valor"`
	SaldoCaja       decimal.Decimal       `json:"saldo_caja"`
	GirosPorMes     []models.PeriodBucket `json:"giros_por_mes"`
}

// HandleGetStats computes the dashboard summary across datasets.
func (h *DashboardHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	stats := dashboardStats{
		TotalGirado:     decimal.Zero,
		InventarioValor: decimal.Zero,
		SaldoCaja:       decimal.Zero,
	}

	if ds, ok := h.viewService.Dataset(datasetProyectos); ok {
		stats.Proyectos = projectCounts{
			Total:       h.countWhere(ds, "", ""),
			EnEjecucion: h.countWhere(ds, "estado", "EN_EJECUCION"),
			Terminados:  h.countWhere(ds, "estado", "TERMINADO"),
			Pendientes:  h.countWhere(ds, "estado", "PENDIENTE"),
			Suspendidos: h.countWhere(ds, "estado", "SUSPENDIDO"),
		}
	}

	if ds, ok := h.viewService.Dataset(datasetGiros); ok {
		q := h.viewService.DefaultQuery(ds).WithFilter("estado", "PROCESADO")
		if view, _, err := h.viewService.GetView(ds.Name, q); err == nil {
			stats.TotalGirado = view.Summary.Inflow
			stats.GirosPorMes = view.Summary.Series
		} else {
			ctxLogger.Error("Dashboard giros aggregation failed", "error", err)
		}
	}

	if ds, ok := h.viewService.Dataset(datasetInventario); ok {
		// Entries are positive and exits negative, so the running balance
		// of the movement ledger is the current inventory value.
		if view, _, err := h.viewService.GetView(ds.Name, h.viewService.DefaultQuery(ds)); err == nil {
			stats.InventarioValor = view.Summary.Balance
		} else {
			ctxLogger.Error("Dashboard inventario aggregation failed", "error", err)
		}
	}

	if ds, ok := h.viewService.Dataset(datasetCaja); ok {
		if view, _, err := h.viewService.GetView(ds.Name, h.viewService.DefaultQuery(ds)); err == nil {
			stats.SaldoCaja = view.Summary.Balance
		} else {
			ctxLogger.Error("Dashboard caja aggregation failed", "error", err)
		}
	}

	utils.SendJSONResponse(w, stats, http.StatusOK)
}

func (h *DashboardHandler) countWhere(ds models.Dataset, field, value string) int {
	q := h.viewService.DefaultQuery(ds)
	if field != "" {
		q = q.WithFilter(field, value)
	}
	view, _, err := h.viewService.GetView(ds.Name, q)
	if err != nil {
		logger.L.Error("Dashboard count failed", "dataset", ds.Name, "field", field, "error", err)
		return 0
	}
	return view.TotalCount
}
