package verify

import (
	"fmt"
	"math"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/compute"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

const (
	fieldSGA  = "sga_expenses"
	fieldOpex = "operating_expenses"
)

// marginFields picks the numerator and denominator fields for a margin claim
// and the metric whose tolerance applies. Operating-expense claims are read
// as an expense ratio to revenue.
func marginFields(ev *evaluation) (numField, denField, tolMetric string, ok bool) {
	if ev.metric == fieldOpex {
		numField = fieldOpex
		if detect.SGA(ev.quote) {
			numField = fieldSGA
		}
		return numField, "revenue", "operating_margin", true
	}
	if ev.entry.Computation != catalog.ComputeRatio {
		return "", "", "", false
	}
	return ev.entry.Numerator, ev.entry.Denominator, ev.metric, true
}

func (ev *evaluation) marginUnsupported() model.Verdict {
	return ev.unverifiable(fmt.Sprintf("Cannot compute margin for metric: %s", ev.metric), FlagMarginUnsupported)
}

// numerator looks up a margin numerator, falling back from SG&A to total
// operating expenses. The field actually read is returned.
func (ev *evaluation) numerator(field string, k period.Key) (facts.Value, string, bool) {
	if v, ok := ev.lookup(field, k); ok {
		return v, field, true
	}
	if field == fieldSGA {
		if v, ok := ev.lookup(fieldOpex, k); ok {
			return v, fieldOpex, true
		}
	}
	return facts.Value{}, field, false
}

func (ev *evaluation) classifyMargin(diffPP float64, tolMetric string) {
	band := catalog.MarginPP(tolMetric, ev.approx)
	abs := math.Abs(diffPP)
	ev.v.Label = band.Classify(abs)
	ev.v.Difference = model.Float(diffPP)
	ev.v.DifferencePct = model.Float(abs)
	ev.v.ToleranceUsed = model.Float(band.Tight)
}

// margin checks a claimed margin level for a single quarter.
func margin(ev *evaluation) model.Verdict {
	numField, denField, tolMetric, ok := marginFields(ev)
	if !ok {
		return ev.marginUnsupported()
	}

	k := ev.res.Target
	n, numRead, okNum := ev.numerator(numField, k)
	d, okDen := ev.lookup(denField, k)
	if !okNum || !okDen {
		return ev.unverifiable(fmt.Sprintf("Missing %s or %s data for %s.", numField, denField, k), FlagMissingData)
	}

	ev.v.EvidenceSource = fmt.Sprintf("%s (%s), %s (%s)", n.Source, numRead, d.Source, denField)
	ev.useFact(numRead, k, n.Value)
	ev.useFact(denField, k, d.Value)

	m, err := compute.CompareMargin(ev.claim.Value(), n.Value, d.Value)
	if err != nil {
		return ev.zeroDenominator("Denominator is zero.")
	}

	ev.classifyMargin(m.DifferencePP, tolMetric)
	ev.v.ActualValue = model.Float(m.ActualPct)
	ev.v.ComputationDetail = fmt.Sprintf("Claimed %.1f%%. Actual: %s / %s = %.2f%%. Diff: %.2f pp (threshold: %.1f pp)",
		m.ClaimedPct, whole(n.Value), whole(d.Value), m.ActualPct, m.AbsDifferencePP(), *ev.v.ToleranceUsed)
	ev.step(model.ComputationStep{
		Step:    "Compute " + ev.metric,
		Formula: fmt.Sprintf("%s / %s * 100", whole(n.Value), whole(d.Value)),
		Result:  m.ActualPct,
	})
	ev.v.Explanation = fmt.Sprintf("Margin claim: %.1f%% claimed. Computed: %s / %s = %.2f%%.",
		m.ClaimedPct, whole(n.Value), whole(d.Value), m.ActualPct)
	return ev.v
}

// fullYearMargin checks a margin against Q1-Q4 sums of numerator and
// denominator.
func fullYearMargin(ev *evaluation) model.Verdict {
	if detect.BPSChange(ev.quote) {
		return ev.unverifiable("This claim describes a full-year margin change in basis points. Only quarterly "+
			"margin changes can be computed.", FlagMarginChangeBPS)
	}
	numField, denField, tolMetric, ok := marginFields(ev)
	if !ok {
		return ev.marginUnsupported()
	}

	year := ev.res.Target.Year
	w := period.FullYearWindow(year)
	n := ev.store.Sum(numField, w.Periods, ev.alias)
	if !n.Complete() && numField == fieldSGA {
		numField = fieldOpex
		n = ev.store.Sum(numField, w.Periods, ev.alias)
	}
	d := ev.store.Sum(denField, w.Periods, ev.alias)
	if !n.Complete() || !d.Complete() {
		return ev.missing(append(append([]string{}, n.Missing...), d.Missing...))
	}

	m, err := compute.CompareMargin(ev.claim.Value(), n.Total, d.Total)
	if err != nil {
		return ev.zeroDenominator("Denominator is zero.")
	}

	ev.classifyMargin(m.DifferencePP, tolMetric)
	ev.v.ActualValue = model.Float(m.ActualPct)
	ev.sources(append(append([]string{}, n.Sources...), d.Sources...)...)
	ev.v.FactsUsed = append(ev.v.FactsUsed, n.Facts...)
	ev.v.FactsUsed = append(ev.v.FactsUsed, d.Facts...)
	ev.v.ComputationDetail = fmt.Sprintf("Claimed %.1f%% full-year margin. Actual: SUM(%s) / SUM(%s) = %s / %s = %.2f%%. "+
		"Diff: %.2f pp (threshold: %.1f pp).",
		m.ClaimedPct, numField, denField, whole(n.Total), whole(d.Total), m.ActualPct, m.AbsDifferencePP(), *ev.v.ToleranceUsed)
	ev.step(model.ComputationStep{
		Step:    "Full-year margin",
		Formula: fmt.Sprintf("SUM(Q1-Q4 %d %s) / SUM(Q1-Q4 %d %s) * 100", year, numField, year, denField),
		Result:  m.ActualPct,
	})
	ev.v.Explanation = fmt.Sprintf("Full-year margin claim: %.1f%% claimed vs %.2f%% computed.", m.ClaimedPct, m.ActualPct)
	return ev.v
}

// bpsMarginChange checks a claimed change in margin, in basis points, against
// the change between the target quarter and its baseline quarter.
func bpsMarginChange(ev *evaluation) model.Verdict {
	numField, denField, _, ok := marginFields(ev)
	if !ok {
		return ev.marginUnsupported()
	}

	cur := ev.res.Target
	base, basis, ok := detect.MarginChangeBaseline(ev.claim, cur)
	if !ok {
		return ev.unverifiable("This claim describes a margin change in basis points, but baseline period "+
			"could not be determined.", FlagMarginChangeBPS)
	}

	curNum, curNumField, ok1 := ev.numerator(numField, cur)
	curDen, ok2 := ev.lookup(denField, cur)
	prevNum, prevNumField, ok3 := ev.numerator(numField, base)
	prevDen, ok4 := ev.lookup(denField, base)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		var miss []string
		if !ok1 || !ok2 {
			miss = append(miss, cur.String())
		}
		if !ok3 || !ok4 {
			miss = append(miss, base.String())
		}
		return ev.missing(miss, FlagMarginChangeBPS)
	}

	curMargin, err1 := compute.MarginPct(curNum.Value, curDen.Value)
	prevMargin, err2 := compute.MarginPct(prevNum.Value, prevDen.Value)
	if err1 != nil || err2 != nil {
		return ev.zeroDenominator("Denominator is zero.", FlagMarginChangeBPS)
	}

	actual := compute.MarginChangeBPS(curMargin, prevMargin)
	claimed := detect.SignedBPS(ev.claim.Value(), ev.quote)
	diff := claimed - actual
	band := catalog.BPS(ev.approx)

	ev.v.Label = band.Classify(math.Abs(diff))
	ev.v.ActualValue = model.Float(actual)
	ev.v.Difference = model.Float(diff)
	ev.v.DifferencePct = model.Float(math.Abs(diff))
	ev.v.ToleranceUsed = model.Float(band.Tight)
	ev.sources(curNum.Source, curDen.Source, prevNum.Source, prevDen.Source)
	ev.useFact(curNumField, cur, curNum.Value)
	ev.useFact(denField, cur, curDen.Value)
	ev.useFact(prevNumField, base, prevNum.Value)
	ev.useFact(denField, base, prevDen.Value)

	ev.v.ComputationDetail = fmt.Sprintf("Claimed %.1f bps change. Actual: (%.2f%% - %.2f%%) * 100 = %.1f bps. "+
		"Diff: %.1f bps (threshold: %.0f bps).", claimed, curMargin, prevMargin, actual, math.Abs(diff), band.Tight)
	ev.step(model.ComputationStep{
		Step:    fmt.Sprintf("Baseline %s (%s)", base, basis),
		Formula: fmt.Sprintf("%s / %s * 100", whole(prevNum.Value), whole(prevDen.Value)),
		Result:  prevMargin,
	})
	ev.step(model.ComputationStep{
		Step:          "Margin change in bps",
		Formula:       fmt.Sprintf("(%.2f - %.2f) * 100", curMargin, prevMargin),
		Result:        actual,
		Claimed:       model.Float(claimed),
		DifferenceBPS: model.Float(diff),
	})
	ev.v.Explanation = fmt.Sprintf("Margin change claim: %.1f bps claimed vs %.1f bps computed from baseline quarter %s.",
		claimed, actual, base)
	return ev.v
}
