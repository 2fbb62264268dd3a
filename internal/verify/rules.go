package verify

import (
	"fmt"
	"strings"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// rule is one step of the decision waterfall. Rules are tried in order and
// the first whose match returns true produces the verdict.
type rule struct {
	name  string
	match func(ev *evaluation) bool
	apply func(ev *evaluation) model.Verdict
}

var rules = []rule{
	{name: "non_gaap", match: isNonGAAP, apply: nonGAAP},
	{name: "guidance", match: isGuidance, apply: guidance},
	{name: "incomplete", match: isIncomplete, apply: incomplete},
	{name: "multi_period", match: isMultiPeriod, apply: multiPeriod},
	{name: "capex_leases", match: isCapexWithLeases, apply: capexWithLeases},
	{name: "dollar_growth", match: isDollarGrowth, apply: dollarGrowth},
	{name: "unknown_metric", match: isUnknownMetric, apply: unknownMetric},
	{name: "segment", match: isSegment, apply: segment},
	{name: "total_expenses", match: isTotalExpenses, apply: totalExpenses},
	{name: "full_year", match: isFullYear, apply: fullYear},
	{name: "bps_margin_change", match: isBPSMarginChange, apply: bpsMarginChange},
	{name: "absolute", match: kindIs(model.KindAbsolute), apply: absolute},
	{name: "growth", match: isGrowth, apply: growth},
	{name: "margin", match: kindIs(model.KindMargin), apply: margin},
	{name: "unsupported", match: always, apply: unsupported},
}

func kindIs(k model.ClaimKind) func(*evaluation) bool {
	return func(ev *evaluation) bool { return ev.claim.Kind == k }
}

func always(*evaluation) bool { return true }

// numeric reports whether the claim kind is one the engine computes.
func numeric(k model.ClaimKind) bool {
	return k == model.KindAbsolute || k == model.KindMargin || k.IsGrowth()
}

func isNonGAAP(ev *evaluation) bool {
	return ev.claim.Basis.Normalize() == model.BasisNonGAAP
}

func nonGAAP(ev *evaluation) model.Verdict {
	return ev.unverifiable("This claim references a non-GAAP metric. Our data sources contain GAAP figures only. "+
		"Non-GAAP metrics exclude items like stock-based compensation or restructuring charges.", FlagNonGAAP)
}

func isGuidance(ev *evaluation) bool { return ev.claim.Kind == model.KindGuidance }

func guidance(ev *evaluation) model.Verdict {
	return ev.unverifiable("Forward-looking guidance claims cannot be verified against historical data.", FlagGuidance)
}

func isIncomplete(ev *evaluation) bool {
	return ev.claim.ClaimedValue == nil && numeric(ev.claim.Kind)
}

func incomplete(ev *evaluation) model.Verdict {
	return ev.unverifiable("Claim has no numeric value to verify.", FlagIncomplete)
}

func isMultiPeriod(ev *evaluation) bool {
	return ev.claim.Kind == model.KindAbsolute && detect.MultiPeriod(ev.quote)
}

func multiPeriod(ev *evaluation) model.Verdict {
	if !ev.known || !catalog.Summable(ev.metric) {
		return ev.unverifiable("This multi-period claim references a metric that is not supported for "+
			"deterministic aggregation.", FlagMultiPeriod)
	}

	anchor := ev.res.Target
	if anchor.FullYear() {
		anchor = period.Key{Year: anchor.Year, Quarter: ev.transcript.Quarter}
	}
	w, ok := detect.Window(ev.quote, anchor)
	if !ok || len(w.Periods) == 0 {
		return ev.unverifiable("This claim references a trailing twelve-month (TTM), year-to-date, or multi-period "+
			"figure. Could not determine exact aggregation window.", FlagMultiPeriod)
	}

	label := strings.ToUpper(strings.ReplaceAll(w.Name, "_", " "))
	return ev.compareAggregate(w, label+" aggregation",
		fmt.Sprintf("%s claim verified by summing quarterly %s over %d quarters.", label, ev.human(), len(w.Periods)),
		label+" "+ev.human(), FlagMultiPeriod)
}

func isCapexWithLeases(ev *evaluation) bool {
	return ev.metric == "capital_expenditures" && detect.FinanceLease(ev.quote)
}

func capexWithLeases(ev *evaluation) model.Verdict {
	return ev.unverifiable("This CapEx claim includes finance leases. Our financial data reports cash capital "+
		"expenditures only, excluding finance lease obligations.", FlagCapexLeases)
}

func isDollarGrowth(ev *evaluation) bool {
	return ev.claim.Kind.IsGrowth() && ev.claim.Unit == model.UnitDollars
}

func dollarGrowth(ev *evaluation) model.Verdict {
	return ev.unverifiable("This growth claim appears to use a dollar amount rather than a percentage. "+
		"Dollar-amount changes cannot be compared against percentage growth computations.", FlagDollarGrowth)
}

func isUnknownMetric(ev *evaluation) bool {
	return numeric(ev.claim.Kind) && !ev.known
}

func unknownMetric(ev *evaluation) model.Verdict {
	return ev.unverifiable(fmt.Sprintf("Metric '%s' not in verification catalog.", ev.metric), FlagUnknownMetric)
}

// isSegment applies to segmentable level and growth claims, and to any margin
// claim, because product margins are never in the fact store.
func isSegment(ev *evaluation) bool {
	switch {
	case ev.claim.Kind == model.KindMargin:
	case ev.claim.Kind == model.KindAbsolute || ev.claim.Kind.IsGrowth():
		if !catalog.Segmentable(ev.metric) {
			return false
		}
	default:
		return false
	}
	_, ok := ev.segments.Classify(ev.claim)
	return ok
}

func segment(ev *evaluation) model.Verdict {
	ctx, _ := ev.segments.Classify(ev.claim)
	kind := ""
	if ev.claim.Kind.IsGrowth() {
		kind = "growth "
	}
	return ev.unverifiable(fmt.Sprintf("This is a %s %s %sclaim. Our data only includes total company-level figures.",
		ctx, ev.human(), kind), FlagSegment)
}

func isTotalExpenses(ev *evaluation) bool {
	if ev.claim.Kind != model.KindAbsolute || ev.metric != "operating_expenses" || ev.res.Target.FullYear() {
		return false
	}
	cogs, ok := ev.lookup("cost_of_revenue", ev.res.Target)
	if !ok {
		return false
	}
	opex, ok := ev.lookup("operating_expenses", ev.res.Target)
	if !ok {
		return false
	}
	if detect.TotalExpenses(ev.quote) {
		return true
	}
	total := cogs.Value + opex.Value
	if total <= 0 || ev.value <= opex.Value*1.2 {
		return false
	}
	r := ev.value / total
	return 0.90 < r && r < 1.10
}

func totalExpenses(ev *evaluation) model.Verdict {
	k := ev.res.Target
	cogs, _ := ev.lookup("cost_of_revenue", k)
	opex, _ := ev.lookup("operating_expenses", k)
	total := cogs.Value + opex.Value

	ev.v.ActualValue = model.Float(total)
	ev.v.EvidenceSource = "fmp (cost_of_revenue + operating_expenses)"
	ev.useFact("cost_of_revenue", k, cogs.Value)
	ev.useFact("operating_expenses", k, opex.Value)
	ev.step(model.ComputationStep{
		Step:    "Total expenses = COGS + OpEx",
		Formula: fmt.Sprintf("%s + %s = %s", whole(cogs.Value), whole(opex.Value), whole(total)),
		Result:  total,
	})

	v, ok := ev.compareLevel(total)
	if !ok {
		return v
	}
	ev.v.ComputationDetail = fmt.Sprintf("Total expenses (COGS + OpEx): claimed %s vs actual %s (%s + %s). Diff: %s (threshold: %.1f%%)",
		num(ev.value), num(total), whole(cogs.Value), whole(opex.Value), pct(*ev.v.DifferencePct), *ev.v.ToleranceUsed*100)
	ev.v.Explanation = fmt.Sprintf("Total expenses claim verified against sum of cost of revenue + operating expenses: "+
		"claimed %s vs actual %s.", num(ev.value), num(total))
	return ev.v
}

func isFullYear(ev *evaluation) bool {
	return ev.res.Target.FullYear() && numeric(ev.claim.Kind)
}

func fullYear(ev *evaluation) model.Verdict {
	switch {
	case ev.claim.Kind == model.KindAbsolute:
		return fullYearAbsolute(ev)
	case ev.claim.Kind.IsGrowth():
		return fullYearGrowth(ev)
	default:
		return fullYearMargin(ev)
	}
}

func isBPSMarginChange(ev *evaluation) bool {
	return ev.claim.Kind == model.KindMargin && detect.BPSChange(ev.quote)
}

func isGrowth(ev *evaluation) bool { return ev.claim.Kind.IsGrowth() }

func unsupported(ev *evaluation) model.Verdict {
	kind := string(ev.claim.Kind)
	if kind == "" {
		kind = "unknown"
	}
	return ev.unverifiable(fmt.Sprintf("Claim type '%s' is not verifiable in the current system.", kind),
		FlagUnsupportedKindPrefix+kind)
}
