package detect

import (
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// Window picks the quarters a multi-period quote refers to. anchor is the
// last quarter of the window for TTM and YTD phrasing.
func Window(quote string, anchor period.Key) (period.Window, bool) {
	switch {
	case ttmWindow.MatchString(quote):
		return period.TTMWindow(anchor), true
	case firstHalf.MatchString(quote):
		return period.FirstHalfWindow(anchor.Year), true
	case firstNine.MatchString(quote):
		return period.FirstNineMonthsWindow(anchor.Year), true
	case yearToDate.MatchString(quote) && !anchor.FullYear():
		return period.YTDWindow(anchor), true
	default:
		return period.Window{}, false
	}
}

// AliasAllowed reports whether a claim may be resolved through the calendar
// alias table. Only claims that name a period other than the transcript's own
// and spell out a month-named quarter qualify; ordinary fiscal-quarter claims
// are never reinterpreted as calendar quarters.
func AliasAllowed(claim model.Claim, transcript period.Key) bool {
	k, ok := period.Parse(claim.Period)
	if !ok || k == transcript {
		return false
	}
	return MonthQuarter(claim.QuoteText)
}

// Baseline basis names, recorded in the computation trace.
const (
	BasisComparisonPeriod = "comparison period"
	BasisYearOverYear     = "year over year"
	BasisSequential       = "sequential"
	BasisDefault          = "sequential (default)"
)

// MarginChangeBaseline resolves the quarter a bps margin change is measured
// from: an explicit comparison quarter, else the prior year when the quote
// says year over year, else the previous quarter.
func MarginChangeBaseline(claim model.Claim, target period.Key) (period.Key, string, bool) {
	if k, ok := period.Parse(claim.ComparisonPeriod); ok && !k.FullYear() {
		return k, BasisComparisonPeriod, true
	}
	if target.FullYear() {
		return period.Key{}, "", false
	}
	switch {
	case YearOverYear(claim.QuoteText):
		return target.PriorYear(), BasisYearOverYear, true
	case Sequential(claim.QuoteText):
		return target.Previous(), BasisSequential, true
	default:
		return target.Previous(), BasisDefault, true
	}
}
