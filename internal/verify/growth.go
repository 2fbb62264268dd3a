package verify

import (
	"fmt"
	"math"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/compute"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

func growthLabel(k model.ClaimKind) string {
	if k == model.KindYoYGrowth {
		return "YoY"
	}
	return "QoQ"
}

// growth checks a quarterly yoy or qoq percentage claim.
func growth(ev *evaluation) model.Verdict {
	if !ev.res.HasBaseline {
		return ev.unverifiable("Cannot determine baseline period for growth comparison.", FlagBaselineUnavailable)
	}
	if ev.entry.Computation == catalog.ComputeRatio {
		return ev.unverifiable(fmt.Sprintf("Growth of ratio metric '%s' is not supported; margin changes are "+
			"checked in basis points.", ev.metric), FlagGrowthUnsupported)
	}

	field := ev.entry.Field
	cur, base := ev.res.Target, ev.res.Baseline
	current, okCur := ev.lookup(field, cur)
	prior, okPrior := ev.lookup(field, base)
	if !okCur || !okPrior {
		var miss []string
		if !okCur {
			miss = append(miss, cur.String())
		}
		if !okPrior {
			miss = append(miss, base.String())
		}
		return ev.missing(miss)
	}

	ev.v.ActualValue = model.Float(current.Value)
	ev.v.EvidenceSource = fmt.Sprintf("%s (current), %s (prior)", current.Source, prior.Source)
	ev.useFact(field, cur, current.Value)
	ev.useFact(field, base, prior.Value)

	g, err := compute.CompareGrowth(ev.claim.Value(), current.Value, prior.Value)
	if err != nil {
		return ev.zeroDenominator("Prior period value is zero, cannot compute growth.")
	}
	if gap, ok := detect.RevenueGrowthGap(ev.metric, g.ClaimedPct, g.ActualPct, ev.quote); ok {
		return ev.unverifiable(gap.Explanation, gap.Flag)
	}

	ev.classifyGrowth(g)
	label := growthLabel(ev.claim.Kind)
	ev.v.ComputationDetail = fmt.Sprintf("Claimed %.1f%% %s growth. Actual: (%s - %s) / %s = %.2f%%. Diff: %.2f pp (threshold: %.1f pp)",
		g.ClaimedPct, label, whole(current.Value), whole(prior.Value), whole(math.Abs(prior.Value)),
		g.ActualPct, g.AbsDifferencePP(), *ev.v.ToleranceUsed)
	ev.step(model.ComputationStep{
		Step:         label + " growth",
		Formula:      fmt.Sprintf("(%s - %s) / |%s| * 100", whole(current.Value), whole(prior.Value), whole(prior.Value)),
		Result:       g.ActualPct,
		Claimed:      model.Float(g.ClaimedPct),
		DifferencePP: model.Float(g.DifferencePP),
	})
	ev.v.Explanation = fmt.Sprintf("Growth claim: %.1f%% claimed. Computed from %s (%s) vs %s (%s) = %.2f%% actual.",
		g.ClaimedPct, cur, whole(current.Value), base, whole(prior.Value), g.ActualPct)

	if ev.claim.Kind == model.KindYoYGrowth {
		ev.supplementalQoQ(field, cur, current.Value, g.ClaimedPct)
	}
	return ev.v
}

// supplementalQoQ records the sequential growth rate next to a yoy claim so
// a reader can tell when the speaker quoted the wrong comparison. It never
// changes the label.
func (ev *evaluation) supplementalQoQ(field string, cur period.Key, current, claimed float64) {
	prev := cur.Previous()
	p, ok := ev.lookup(field, prev)
	if !ok {
		return
	}
	qoq, err := compute.GrowthPct(current, p.Value)
	if err != nil {
		return
	}
	ev.step(model.ComputationStep{
		Step:         "Supplemental QoQ discrepancy",
		Formula:      fmt.Sprintf("(%s - %s) / |%s| * 100", whole(current), whole(p.Value), whole(p.Value)),
		Result:       qoq,
		Claimed:      model.Float(claimed),
		DifferencePP: model.Float(claimed - qoq),
	})
	ev.v.Explanation += fmt.Sprintf(" Quarter-over-quarter reference: %s vs %s = %.2f%% (%.2f pp from claimed growth).",
		cur, prev, qoq, math.Abs(claimed-qoq))
}

func (ev *evaluation) classifyGrowth(g compute.Growth) {
	band := catalog.Growth(ev.approx)
	ev.v.Label = band.Classify(g.AbsDifferencePP())
	ev.v.Difference = model.Float(g.DifferencePP)
	ev.v.DifferencePct = model.Float(g.AbsDifferencePP())
	ev.v.ToleranceUsed = model.Float(band.Tight)
}

// fullYearGrowth compares FY totals. Only yoy claims against another full
// year are supported.
func fullYearGrowth(ev *evaluation) model.Verdict {
	if ev.entry.Computation == catalog.ComputeRatio || !catalog.Summable(ev.metric) {
		return ev.unverifiable(fmt.Sprintf("Full-year growth verification is not supported for metric '%s'.", ev.metric),
			FlagFullYearUnsupported)
	}
	if !ev.res.HasBaseline || !ev.res.Baseline.FullYear() {
		return ev.unverifiable("Full-year growth requires a full-year baseline period.", FlagBaselineUnavailable)
	}

	year, baseYear := ev.res.Target.Year, ev.res.Baseline.Year
	cur := ev.store.Sum(ev.entry.Field, period.FullYearWindow(year).Periods, ev.alias)
	prior := ev.store.Sum(ev.entry.Field, period.FullYearWindow(baseYear).Periods, ev.alias)
	if !cur.Complete() || !prior.Complete() {
		return ev.missing(append(append([]string{}, cur.Missing...), prior.Missing...))
	}

	ev.v.ActualValue = model.Float(cur.Total)
	ev.sources(append(append([]string{}, cur.Sources...), prior.Sources...)...)
	ev.v.FactsUsed = append(ev.v.FactsUsed, cur.Facts...)
	ev.v.FactsUsed = append(ev.v.FactsUsed, prior.Facts...)

	g, err := compute.CompareGrowth(ev.claim.Value(), cur.Total, prior.Total)
	if err != nil {
		return ev.zeroDenominator("Prior full-year value is zero, cannot compute growth.")
	}
	if gap, ok := detect.RevenueGrowthGap(ev.metric, g.ClaimedPct, g.ActualPct, ev.quote); ok {
		return ev.unverifiable(gap.Explanation, gap.Flag)
	}

	ev.classifyGrowth(g)
	ev.v.ComputationDetail = fmt.Sprintf("Claimed %.1f%% full-year YoY growth. Actual: (FY %d %s - FY %d %s) / |%s| = %.2f%%. "+
		"Diff: %.2f pp (threshold: %.1f pp).",
		g.ClaimedPct, year, whole(cur.Total), baseYear, whole(prior.Total), whole(prior.Total),
		g.ActualPct, g.AbsDifferencePP(), *ev.v.ToleranceUsed)
	ev.step(model.ComputationStep{
		Step:         "Full-year YoY growth",
		Formula:      fmt.Sprintf("(SUM(Q1-Q4 %d) - SUM(Q1-Q4 %d)) / |SUM(Q1-Q4 %d)| * 100", year, baseYear, baseYear),
		Result:       g.ActualPct,
		Claimed:      model.Float(g.ClaimedPct),
		DifferencePP: model.Float(g.DifferencePP),
	})
	ev.v.Explanation = fmt.Sprintf("Full-year growth claim: %.1f%% claimed vs %.2f%% computed from FY %d and FY %d totals.",
		g.ClaimedPct, g.ActualPct, year, baseYear)
	return ev.v
}
