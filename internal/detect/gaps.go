package detect

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/earningscheck/internal/catalog"
)

// Gap is a definition or scope mismatch inferred from how far a claimed
// value sits from the reported one.
type Gap struct {
	Flag        string
	Explanation string
}

// Flags raised by value-ratio checks.
const (
	FlagBalanceSheetGap    = "balance_sheet_definition_gap"
	FlagSegmentByValue     = "segment_claim_by_value"
	FlagBankNetRevenue     = "bank_net_vs_gross_revenue"
	FlagRevenueDefinition  = "revenue_definition_mismatch"
	FlagValueExceedsActual = "value_exceeds_actual"
	FlagCapexGap           = "capex_definition_gap"
	FlagFCFGap             = "fcf_definition_gap"
)

// Metrics where a claimed value under half the total is read as a segment,
// subset or incremental amount.
var valueCheckMetrics = map[string]bool{
	"revenue":              true,
	"cost_of_revenue":      true,
	"gross_profit":         true,
	"operating_income":     true,
	"operating_expenses":   true,
	"capital_expenditures": true,
	"net_income":           true,
	"free_cash_flow":       true,
	"operating_cash_flow":  true,
}

type ratioBand struct {
	flag    string
	metric  func(string) bool
	match   func(ratio float64, quote string) bool
	explain func(metric string, claimed, actual, ratio float64) string
}

func only(metrics ...string) func(string) bool {
	return func(m string) bool {
		for _, x := range metrics {
			if x == m {
				return true
			}
		}
		return false
	}
}

func anyMetric(string) bool { return true }

func between(lo, hi float64) func(float64, string) bool {
	return func(r float64, _ string) bool { return lo < r && r < hi }
}

func billions(v float64) string {
	return fmt.Sprintf("$%.1fB", v/1e9)
}

func humanMetric(m string) string {
	return strings.ReplaceAll(m, "_", " ")
}

// Evaluated in order against claimed/actual when actual is positive.
var ratioBands = []ratioBand{
	{
		flag:   FlagSegmentByValue,
		metric: func(m string) bool { return valueCheckMetrics[m] },
		match:  func(r float64, _ string) bool { return r < 0.50 },
		explain: func(m string, c, a, _ float64) string {
			return fmt.Sprintf("Claimed %.0f is much less than total %s %.0f, likely a segment, subset, or incremental amount.",
				c, humanMetric(m), a)
		},
	},
	{
		flag:   FlagBankNetRevenue,
		metric: only("revenue"),
		match:  func(r float64, q string) bool { return 0.50 < r && r < 0.80 && BankNetRevenue(q) },
		explain: func(_ string, c, a, _ float64) string {
			return fmt.Sprintf("This claim references net revenue (%s) which excludes provisions and interest expense. "+
				"Our data source reports gross revenue (%s). Net and gross revenue are different measures for financial institutions.",
				billions(c), billions(a))
		},
	},
	{
		flag:   FlagRevenueDefinition,
		metric: only("revenue"),
		match:  between(0.50, 0.80),
		explain: func(_ string, c, a, r float64) string {
			return fmt.Sprintf("Claimed revenue (%s) is %.0f%% of data source revenue (%s). "+
				"This likely reflects a difference in revenue definition (e.g., net revenue vs gross revenue for financial institutions).",
				billions(c), r*100, billions(a))
		},
	},
	{
		flag:   FlagValueExceedsActual,
		metric: anyMetric,
		match:  func(r float64, _ string) bool { return r > 1.30 },
		explain: func(m string, c, a, r float64) string {
			return fmt.Sprintf("Claimed value (%.0f) is %.1fx the reported %s (%.0f). This likely reflects a different "+
				"time period (TTM, annual, or fiscal year offset) or includes items beyond this metric.",
				c, r, humanMetric(m), a)
		},
	},
	{
		flag:   FlagCapexGap,
		metric: only("capital_expenditures"),
		match:  between(1.05, 1.50),
		explain: func(_ string, c, a, r float64) string {
			return fmt.Sprintf("Claimed CapEx (%s) exceeds reported cash CapEx (%s) by %.0f%%. Companies often report "+
				"CapEx including finance leases on calls, while data sources report cash CapEx only.",
				billions(c), billions(a), (r-1)*100)
		},
	},
	{
		flag:   FlagCapexGap,
		metric: only("capital_expenditures"),
		match:  between(0.70, 0.95),
		explain: func(_ string, c, a, r float64) string {
			return fmt.Sprintf("Claimed CapEx (%s) is %.0f%% below reported CapEx (%s). This likely reflects a definition "+
				"difference (for example, net vs gross presentation or inclusion/exclusion of specific asset classes).",
				billions(c), (1-r)*100, billions(a))
		},
	},
	{
		flag:   FlagFCFGap,
		metric: only("free_cash_flow"),
		match:  between(0.80, 0.96),
		explain: func(_ string, c, a, r float64) string {
			return fmt.Sprintf("Claimed FCF (%s) is %.0f%% below reported FCF (%s). Companies sometimes report FCF net of "+
				"finance lease principal payments, resulting in a lower figure than the standard definition.",
				billions(c), (1-r)*100, billions(a))
		},
	},
}

// ValueGap checks a claimed level against the reported one for known
// definition and scope gaps. claimed and actual are in the same raw units.
func ValueGap(metric string, claimed, actual float64, quote string) (Gap, bool) {
	if catalog.BalanceSheet(metric) {
		if actual == 0 {
			return Gap{}, false
		}
		diff := math.Abs(claimed-actual) / math.Abs(actual)
		if diff > 0.05 {
			return Gap{
				Flag: FlagBalanceSheetGap,
				Explanation: fmt.Sprintf("Claimed %s (%.0f) differs from available data (%.0f) by %.1f%%. Companies may use "+
					"definitions that include or exclude items (for example, marketable securities classes, short-term "+
					"borrowings, or lease-related obligations) not aligned with this dataset.",
					humanMetric(metric), claimed, actual, diff*100),
			}, true
		}
		return Gap{}, false
	}

	// Ratio bands are meaningless against a zero or negative base.
	if actual <= 0 {
		return Gap{}, false
	}
	r := claimed / actual
	for _, b := range ratioBands {
		if b.metric(metric) && b.match(r, quote) {
			return Gap{Flag: b.flag, Explanation: b.explain(metric, claimed, actual, r)}, true
		}
	}
	return Gap{}, false
}

// FlagRevenueGrowthDefinition marks a bank revenue growth claim computed on
// net rather than gross revenue.
const FlagRevenueGrowthDefinition = "revenue_growth_definition_mismatch"

// RevenueGrowthGap flags revenue growth claims quoted on a net-revenue basis
// that miss the gross-revenue growth rate by more than 3pp.
func RevenueGrowthGap(metric string, claimedPct, actualPct float64, quote string) (Gap, bool) {
	if metric != "revenue" || math.Abs(claimedPct-actualPct) <= 3.0 || !BankNetRevenue(quote) {
		return Gap{}, false
	}
	return Gap{
		Flag: FlagRevenueGrowthDefinition,
		Explanation: fmt.Sprintf("Revenue growth mismatch (%.1f%% claimed vs %.1f%% computed). This likely reflects a "+
			"difference in revenue definition (e.g., net vs gross revenue for financial institutions) which affects "+
			"the growth rate calculation.", claimedPct, actualPct),
	}, true
}
