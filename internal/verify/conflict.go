package verify

import (
	"fmt"
	"math"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// conflictMinPct is the smallest mismatch, in percent, treated as a
// contradiction rather than rounding.
const conflictMinPct = 3.0

type conflictKey struct {
	metric string
	period period.Key
}

// DowngradeConflicts resolves contradictions inside one transcript. Total
// company absolute claims are grouped by resolved metric and period; when a
// group has a passing claim, every mismatch in it off by at least 3% becomes
// unverifiable and points at the passing claim. Groups without a passing
// claim are left alone. It must run after all verdicts of the transcript
// are final.
func DowngradeConflicts(items []model.ClaimVerdict) {
	groups := make(map[conflictKey][]int)
	var order []conflictKey

	for i, it := range items {
		c, v := it.Claim, it.Verification
		if c.Kind != model.KindAbsolute || !c.IsTotal() {
			continue
		}
		if !v.Label.Passing() && v.Label != model.LabelMismatch {
			continue
		}
		k, ok := period.Parse(c.Period)
		if !ok {
			continue
		}
		// Group on the metric the claim was checked against.
		key := conflictKey{metric: catalog.Resolve(c.Metric, c.QuoteText), period: k}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range order {
		idx := groups[key]
		ref := -1
		for _, i := range idx {
			if items[i].Verification.Label.Passing() {
				ref = i
				break
			}
		}
		if ref < 0 {
			continue
		}

		for _, i := range idx {
			v := &items[i].Verification
			if v.Label != model.LabelMismatch || v.DifferencePct == nil || math.Abs(*v.DifferencePct) < conflictMinPct {
				continue
			}
			v.AddFlag(FlagConflicting)
			v.Label = model.LabelUnverifiable
			v.Explanation = fmt.Sprintf("Transcript contains conflicting values for this same metric and period. "+
				"Another claim (%s) aligns with financial data, so this value is likely a transcript/source artifact.",
				items[ref].Claim.ClaimID)
		}
	}
}
