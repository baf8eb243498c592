package models

import "github.com/shopspring/decimal"

// View is the computed result of applying a Query to a record collection.
// It is derived output, recomputed on every query or collection change, and
// holds no state of its own.
type View struct {
	Filtered   []Record `json:"-"`     // full filtered+sorted sequence (feeds aggregation and export)
	Rows       []Record `json:"rows"`  // current page slice of Filtered
	Page       int      `json:"page"`  // safe page actually served
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
	Summary    Summary  `json:"summary"`
}

// PeriodFlows holds the signed flow totals of one calendar period.
type PeriodFlows struct {
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// PeriodComparison compares the latest period present in the filtered set
// against the one immediately before it.
type PeriodComparison struct {
	Current       string      `json:"current"`  // period key, e.g. "2024-03"
	Previous      string      `json:"previous"` // period key of the month before Current
	CurrentFlows  PeriodFlows `json:"current_flows"`
	PreviousFlows PeriodFlows `json:"previous_flows"`
	InflowPct     float64     `json:"inflow_pct"`
	OutflowPct    float64     `json:"outflow_pct"`
	NetPct        float64     `json:"net_pct"`
}

// GroupTotal is one bucket of a group-by breakdown.
type GroupTotal struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"` // summed |amount|
	Count int             `json:"count"`
}

// PeriodBucket is one slot of the monthly time series, in ascending period
// order, with a running cumulative net.
type PeriodBucket struct {
	Period     string          `json:"period"` // "YYYY-MM"
	Inflow     decimal.Decimal `json:"inflow"`
	Outflow    decimal.Decimal `json:"outflow"`
	Net        decimal.Decimal `json:"net"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

// Summary is the aggregate block computed over the filtered (not paged) set.
type Summary struct {
	Count          int              `json:"count"`
	Inflow         decimal.Decimal  `json:"inflow"`
	Outflow        decimal.Decimal  `json:"outflow"`
	Balance        decimal.Decimal  `json:"balance"`
	Periods        PeriodComparison `json:"periods"`
	Categories     []GroupTotal     `json:"categories"`     // outflow-only, by category field, top-N
	Counterparties []GroupTotal     `json:"counterparties"` // outflow-only, by counterparty field, top-N
	Series         []PeriodBucket   `json:"series"`
}
