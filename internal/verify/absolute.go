package verify

import (
	"fmt"
	"math"

	"golang.org/x/text/language"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/compute"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// absolute checks a level claim for a single quarter.
func absolute(ev *evaluation) model.Verdict {
	if ev.entry.Computation == catalog.ComputeRatio {
		return margin(ev)
	}

	k := ev.res.Target
	actual, ok := ev.lookup(ev.entry.Field, k)
	if !ok {
		return ev.unverifiable(fmt.Sprintf("No %s data found for %s %s.", ev.metric, ev.ticker, k), FlagMissingData)
	}
	ev.v.ActualValue = model.Float(actual.Value)
	ev.v.EvidenceSource = actual.Source
	ev.useFact(ev.entry.Field, k, actual.Value)

	if gap, ok := detect.ValueGap(ev.metric, ev.value, actual.Value, ev.quote); ok {
		return ev.unverifiable(gap.Explanation, gap.Flag)
	}

	// EPS is quoted to the cent, so a fixed dollar tolerance is checked
	// before the percentage bands.
	if catalog.PerShare(ev.metric) {
		diff := ev.value - actual.Value
		if math.Abs(diff) <= catalog.PerShareAbs {
			return perShareMatch(ev, actual.Value, diff)
		}
	}

	v, ok := ev.compareLevel(actual.Value)
	if !ok {
		return v
	}
	frac := *ev.v.DifferencePct / 100
	ev.v.ComputationDetail = fmt.Sprintf("Claimed %s vs Actual %s. Diff: %s (threshold: %.1f%%)",
		num(ev.value), num(actual.Value), pct(*ev.v.DifferencePct), *ev.v.ToleranceUsed*100)
	ev.step(model.ComputationStep{
		Step:      "Absolute comparison",
		Formula:   fmt.Sprintf("|%s - %s| / |%s|", num(ev.value), num(actual.Value), num(actual.Value)),
		Result:    frac,
		Threshold: model.Float(*ev.v.ToleranceUsed),
	})
	ev.v.Explanation = fmt.Sprintf("%s: claimed %s vs actual %s from %s.",
		ev.v.Label.Title(language.English), num(ev.value), num(actual.Value), actual.Source)
	return ev.v
}

func perShareMatch(ev *evaluation, actual, diff float64) model.Verdict {
	abs := math.Abs(diff)
	diffPct := 0.0
	if actual != 0 {
		diffPct = abs / math.Abs(actual) * 100
	}
	ev.v.Label = model.LabelVerified
	ev.v.Difference = model.Float(diff)
	ev.v.DifferencePct = model.Float(diffPct)
	ev.v.ToleranceUsed = model.Float(catalog.PerShareAbs)
	ev.v.ComputationDetail = fmt.Sprintf("EPS: claimed $%.2f vs actual $%.2f. Diff $%.3f within $%.3f tolerance.",
		ev.value, actual, abs, catalog.PerShareAbs)
	ev.step(model.ComputationStep{
		Step:      "EPS absolute comparison",
		Formula:   fmt.Sprintf("|%.2f - %.2f| = %.3f", ev.value, actual, abs),
		Result:    abs,
		Threshold: model.Float(catalog.PerShareAbs),
	})
	ev.v.Explanation = fmt.Sprintf("Verified: claimed $%.2f matches actual $%.2f.", ev.value, actual)
	return ev.v
}

// compareLevel classifies the normalized claimed value against actual with
// the metric's fractional band. It returns false, with the final verdict,
// when the relative difference is undefined.
func (ev *evaluation) compareLevel(actual float64) (model.Verdict, bool) {
	c := compute.AbsCompare(ev.value, actual)
	if c.Undefined {
		return ev.zeroDenominator(fmt.Sprintf("Reported %s is zero, so the relative difference to the claimed %s is undefined.",
			ev.human(), num(ev.value))), false
	}
	band := catalog.For(ev.metric, ev.approx)
	ev.v.Label = band.Classify(c.Fraction())
	ev.v.Difference = model.Float(c.Difference)
	ev.v.DifferencePct = model.Float(c.DifferencePct)
	ev.v.ToleranceUsed = model.Float(band.Tight)
	return ev.v, true
}

// compareAggregate sums the metric over w and compares the claim to the
// total. missingFlags are added when a quarter of the window is absent.
func (ev *evaluation) compareAggregate(w period.Window, stepName, explanation, detailLabel string, missingFlags ...string) model.Verdict {
	agg := ev.store.Sum(ev.entry.Field, w.Periods, ev.alias)
	if !agg.Complete() {
		return ev.missing(agg.Missing, missingFlags...)
	}

	ev.v.ActualValue = model.Float(agg.Total)
	ev.sources(agg.Sources...)
	ev.v.FactsUsed = append(ev.v.FactsUsed, agg.Facts...)

	if gap, ok := detect.ValueGap(ev.metric, ev.value, agg.Total, ev.quote); ok {
		return ev.unverifiable(gap.Explanation, gap.Flag)
	}

	ev.step(model.ComputationStep{Step: stepName, Formula: w.Label(), Result: agg.Total})
	v, ok := ev.compareLevel(agg.Total)
	if !ok {
		return v
	}
	ev.v.ComputationDetail = fmt.Sprintf("%s: claimed %s vs actual %s. Diff: %s (threshold: %.1f%%).",
		detailLabel, num(ev.value), num(agg.Total), pct(*ev.v.DifferencePct), *ev.v.ToleranceUsed*100)
	ev.v.Explanation = explanation
	return ev.v
}

func fullYearAbsolute(ev *evaluation) model.Verdict {
	if ev.entry.Computation == catalog.ComputeRatio {
		return fullYearMargin(ev)
	}
	if !catalog.Summable(ev.metric) {
		return ev.unverifiable(fmt.Sprintf("Full-year verification is not supported for metric '%s'.", ev.metric),
			FlagFullYearUnsupported)
	}
	year := ev.res.Target.Year
	return ev.compareAggregate(period.FullYearWindow(year), "Full-year aggregation",
		fmt.Sprintf("Full-year claim verified against sum of Q1-Q4 %d %s.", year, ev.human()),
		"Full-year "+ev.human())
}
