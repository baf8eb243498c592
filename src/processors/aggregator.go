package processors

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/username/mejoravivienda/backend/src/models"
)

const periodLayout = "2006-01"

var hundred = decimal.NewFromInt(100)

// Aggregator computes the summary block over a filtered (never paged) record
// set: flow totals, a current-vs-previous month comparison, outflow
// breakdowns by category and counterparty, and a monthly time series.
// Everything is recomputed in full on every call; collections are small and
// correctness dominates.
type Aggregator struct {
	dataset models.Dataset
}

func NewAggregator(dataset models.Dataset) *Aggregator {
	return &Aggregator{dataset: dataset}
}

// Summarize aggregates the filtered set.
func (a *Aggregator) Summarize(filtered []models.Record) models.Summary {
	summary := models.Summary{Count: len(filtered)}

	for _, rec := range filtered {
		if rec.Amount.IsNegative() {
			summary.Outflow = summary.Outflow.Add(rec.Amount)
		} else {
			summary.Inflow = summary.Inflow.Add(rec.Amount)
		}
	}
	// Outflow is negative by convention, so this is a true net.
	summary.Balance = summary.Inflow.Add(summary.Outflow)

	summary.Periods = a.comparePeriods(filtered)
	summary.Categories = a.groupOutflow(filtered, a.dataset.CategoryField)
	summary.Counterparties = a.groupOutflow(filtered, a.dataset.CounterpartyField)
	summary.Series = a.monthlySeries(filtered)

	return summary
}

// comparePeriods contrasts the calendar month of the latest known date in
// the filtered set against the month immediately before it.
func (a *Aggregator) comparePeriods(filtered []models.Record) models.PeriodComparison {
	var latest time.Time
	found := false
	for _, rec := range filtered {
		if rec.DateKnown && (!found || rec.Date.After(latest)) {
			latest = rec.Date
			found = true
		}
	}
	if !found {
		return models.PeriodComparison{}
	}

	currentStart := time.Date(latest.Year(), latest.Month(), 1, 0, 0, 0, 0, time.UTC)
	previousStart := currentStart.AddDate(0, -1, 0)
	currentKey := currentStart.Format(periodLayout)
	previousKey := previousStart.Format(periodLayout)

	var current, previous models.PeriodFlows
	for _, rec := range filtered {
		if !rec.DateKnown {
			continue
		}
		var flows *models.PeriodFlows
		switch rec.Date.Format(periodLayout) {
		case currentKey:
			flows = &current
		case previousKey:
			flows = &previous
		default:
			continue
		}
		if rec.Amount.IsNegative() {
			flows.Outflow = flows.Outflow.Add(rec.Amount)
		} else {
			flows.Inflow = flows.Inflow.Add(rec.Amount)
		}
	}
	current.Net = current.Inflow.Add(current.Outflow)
	previous.Net = previous.Inflow.Add(previous.Outflow)

	return models.PeriodComparison{
		Current:       currentKey,
		Previous:      previousKey,
		CurrentFlows:  current,
		PreviousFlows: previous,
		InflowPct:     percentChange(current.Inflow, previous.Inflow),
		OutflowPct:    percentChange(current.Outflow, previous.Outflow),
		NetPct:        percentChange(current.Net, previous.Net),
	}
}

// percentChange is (current - previous) / |previous| * 100. A previous value
// of exactly zero yields 100 when current is nonzero (new activity) and 0
// otherwise, avoiding a division by zero.
func percentChange(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous.Abs()).Mul(hundred).Float64()
	return pct
}

// groupOutflow sums |amount| of outflow records grouped by a field's trimmed
// value, descending by magnitude, truncated to the dataset's top-N. Records
// whose field is absent or blank land in the pending-classification bucket.
func (a *Aggregator) groupOutflow(filtered []models.Record, field string) []models.GroupTotal {
	if field == "" {
		return nil
	}

	totals := make(map[string]*models.GroupTotal)
	for _, rec := range filtered {
		if !rec.Amount.IsNegative() {
			continue
		}
		key := rec.Folded(field)
		label := strings.TrimSpace(rec.Raw[field])
		if key == "" {
			key = models.PendingLabel
			label = models.PendingLabel
		}
		group, ok := totals[key]
		if !ok {
			group = &models.GroupTotal{Label: label}
			totals[key] = group
		}
		group.Total = group.Total.Add(rec.Amount.Abs())
		group.Count++
	}
	if len(totals) == 0 {
		return nil
	}

	groups := make([]models.GroupTotal, 0, len(totals))
	for _, g := range totals {
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool {
		if cmp := groups[i].Total.Cmp(groups[j].Total); cmp != 0 {
			return cmp > 0
		}
		return groups[i].Label < groups[j].Label
	})

	topN := a.dataset.TopN
	if topN > 0 && len(groups) > topN {
		groups = groups[:topN]
	}
	return groups
}

// monthlySeries buckets known-date records by calendar month in ascending
// order, with inflow/outflow sums, per-bucket net, and a running cumulative
// net across buckets.
func (a *Aggregator) monthlySeries(filtered []models.Record) []models.PeriodBucket {
	buckets := make(map[string]*models.PeriodBucket)
	for _, rec := range filtered {
		if !rec.DateKnown {
			continue
		}
		key := rec.Date.Format(periodLayout)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &models.PeriodBucket{Period: key}
			buckets[key] = bucket
		}
		if rec.Amount.IsNegative() {
			bucket.Outflow = bucket.Outflow.Add(rec.Amount)
		} else {
			bucket.Inflow = bucket.Inflow.Add(rec.Amount)
		}
	}
	if len(buckets) == 0 {
		return nil
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	series := make([]models.PeriodBucket, 0, len(keys))
	cumulative := decimal.Zero
	for _, key := range keys {
		bucket := *buckets[key]
		bucket.Net = bucket.Inflow.Add(bucket.Outflow)
		cumulative = cumulative.Add(bucket.Net)
		bucket.Cumulative = cumulative
		series = append(series, bucket)
	}
	return series
}
