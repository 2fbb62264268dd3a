// Package catalog holds the static metric catalog and tolerance matrix.
package catalog

import (
	"sort"
	"strings"

	"github.com/ppiankov/earningscheck/internal/model"
)

// Computation is how a metric's actual value is derived from facts
type Computation string

const (
	ComputeDirect Computation = "direct" // One fact field
	ComputeRatio  Computation = "ratio"  // Numerator / denominator, as a percentage
)

// Statement is the financial statement a metric comes from
type Statement string

const (
	StatementIncome   Statement = "income_statement"
	StatementCashFlow Statement = "cash_flow"
	StatementBalance  Statement = "balance_sheet"
)

// Entry describes one verifiable metric.
type Entry struct {
	Metric      string
	Field       string // Fact field for direct metrics
	Numerator   string // Fact fields for ratio metrics
	Denominator string
	Statement   Statement
	Unit        model.Unit
	Computation Computation
}

// Fields returns the fact fields the entry reads.
func (e Entry) Fields() []string {
	if e.Computation == ComputeRatio {
		return []string{e.Numerator, e.Denominator}
	}
	return []string{e.Field}
}

func direct(metric string, st Statement, unit model.Unit) Entry {
	return Entry{Metric: metric, Field: metric, Statement: st, Unit: unit, Computation: ComputeDirect}
}

func ratio(metric, num, den string) Entry {
	return Entry{
		Metric:      metric,
		Numerator:   num,
		Denominator: den,
		Statement:   StatementIncome,
		Unit:        model.UnitPercent,
		Computation: ComputeRatio,
	}
}

var entries = map[string]Entry{
	"revenue":                        direct("revenue", StatementIncome, model.UnitDollars),
	"eps_basic":                      direct("eps_basic", StatementIncome, model.UnitPerShare),
	"eps_diluted":                    direct("eps_diluted", StatementIncome, model.UnitPerShare),
	"gross_profit":                   direct("gross_profit", StatementIncome, model.UnitDollars),
	"gross_margin":                   ratio("gross_margin", "gross_profit", "revenue"),
	"operating_income":               direct("operating_income", StatementIncome, model.UnitDollars),
	"operating_margin":               ratio("operating_margin", "operating_income", "revenue"),
	"net_income":                     direct("net_income", StatementIncome, model.UnitDollars),
	"ebitda":                         direct("ebitda", StatementIncome, model.UnitDollars),
	"free_cash_flow":                 direct("free_cash_flow", StatementCashFlow, model.UnitDollars),
	"operating_cash_flow":            direct("operating_cash_flow", StatementCashFlow, model.UnitDollars),
	"cost_of_revenue":                direct("cost_of_revenue", StatementIncome, model.UnitDollars),
	"capital_expenditures":           direct("capital_expenditures", StatementCashFlow, model.UnitDollars),
	"operating_expenses":             direct("operating_expenses", StatementIncome, model.UnitDollars),
	"research_and_development":       direct("research_and_development", StatementIncome, model.UnitDollars),
	"cash_and_marketable_securities": direct("cash_and_marketable_securities", StatementBalance, model.UnitDollars),
	"total_debt":                     direct("total_debt", StatementBalance, model.UnitDollars),
	"net_cash":                       direct("net_cash", StatementBalance, model.UnitDollars),
}

// Lookup returns the catalog entry for metric.
func Lookup(metric string) (Entry, bool) {
	e, ok := entries[metric]
	return e, ok
}

// Metrics returns every catalogued metric name, sorted.
func Metrics() []string {
	out := make([]string, 0, len(entries))
	for m := range entries {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// Flow metrics can be added across quarters; balances and ratios cannot.
var summable = map[string]bool{
	"revenue":                  true,
	"net_income":               true,
	"gross_profit":             true,
	"operating_income":         true,
	"ebitda":                   true,
	"free_cash_flow":           true,
	"operating_cash_flow":      true,
	"cost_of_revenue":          true,
	"capital_expenditures":     true,
	"operating_expenses":       true,
	"research_and_development": true,
}

// Summable reports whether metric may be aggregated across quarters.
func Summable(metric string) bool {
	return summable[metric]
}

// Metrics for which the fact store only carries total-company figures.
var segmentable = map[string]bool{
	"revenue":                  true,
	"cost_of_revenue":          true,
	"gross_profit":             true,
	"operating_income":         true,
	"net_income":               true,
	"operating_expenses":       true,
	"research_and_development": true,
}

// Segmentable reports whether metric is commonly broken out by segment on calls.
func Segmentable(metric string) bool {
	return segmentable[metric]
}

// BalanceSheet reports whether metric is a point-in-time balance.
func BalanceSheet(metric string) bool {
	e, ok := entries[metric]
	return ok && e.Statement == StatementBalance
}

// PerShare reports whether metric is an EPS figure.
func PerShare(metric string) bool {
	return metric == "eps_basic" || metric == "eps_diluted"
}

type remap struct {
	phrases []string
	metric  string
}

// Checked in order; the first phrase found wins.
var otherRemaps = []remap{
	{[]string{"net cash"}, "net_cash"},
	{[]string{"cash and marketable securities", "cash and investments", "cash and cash equivalents"}, "cash_and_marketable_securities"},
	{[]string{"total debt", " in debt"}, "total_debt"},
	{[]string{"free cash flow"}, "free_cash_flow"},
	{[]string{"operating cash flow", "cash flow from operations"}, "operating_cash_flow"},
	{[]string{"capital expenditures", "capital expenditure", "capex"}, "capital_expenditures"},
	{[]string{"research and development", "r&d"}, "research_and_development"},
}

// Resolve returns the metric a claim should be verified as. Claims extracted
// as "other" are remapped when the quote names a catalogued metric, and
// free_cash_flow claims that quote operating cash flow are corrected.
func Resolve(metric, quote string) string {
	q := strings.ToLower(quote)
	if metric == "free_cash_flow" && strings.Contains(q, "operating cash flow") {
		return "operating_cash_flow"
	}
	if metric != "other" {
		return metric
	}
	for _, r := range otherRemaps {
		for _, p := range r.phrases {
			if strings.Contains(q, p) {
				return r.metric
			}
		}
	}
	return metric
}

// Normalize converts a claimed value into the units facts are stored in.
// Percentages, per-share amounts and ratios pass through; basis points become
// percentage points; dollar amounts are multiplied out by their scale.
func Normalize(value float64, unit model.Unit, scale model.Scale) float64 {
	switch unit {
	case model.UnitPercent, model.UnitPerShare, model.UnitRatio:
		return value
	case model.UnitBasisPoints:
		return value / 100
	default:
		return value * scale.Multiplier()
	}
}
