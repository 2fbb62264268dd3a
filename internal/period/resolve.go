package period

import "github.com/ppiankov/earningscheck/internal/model"

// Resolution is the target period of a claim and, for growth claims, the
// period it is compared against.
type Resolution struct {
	Target      Key
	Baseline    Key
	HasBaseline bool
	// Parsed is false when the claim's period text was unreadable and the
	// transcript's own period was used instead.
	Parsed bool
}

// Resolve determines the target and baseline periods for a claim made on the
// transcript for period transcript.
//
// yoy_growth compares against an explicit comparison period when it parses,
// otherwise the same period one year earlier. qoq_growth compares against the
// previous quarter; a full-year target has no previous quarter.
func Resolve(c model.Claim, transcript Key) Resolution {
	res := Resolution{Target: transcript}
	if k, ok := Parse(c.Period); ok {
		res.Target = k
		res.Parsed = true
	}

	switch c.Kind {
	case model.KindYoYGrowth:
		if k, ok := Parse(c.ComparisonPeriod); ok {
			res.Baseline, res.HasBaseline = k, true
			return res
		}
		res.Baseline, res.HasBaseline = res.Target.PriorYear(), true
	case model.KindQoQGrowth:
		if !res.Target.FullYear() {
			res.Baseline, res.HasBaseline = res.Target.Previous(), true
		}
	}
	return res
}

// Window is a named list of quarters that a multi-quarter figure is summed over
type Window struct {
	Name    string
	Periods []Key
}

// Label renders the periods joined with " + ", e.g. "Q1 2024 + Q2 2024".
func (w Window) Label() string {
	out := ""
	for i, k := range w.Periods {
		if i > 0 {
			out += " + "
		}
		out += k.String()
	}
	return out
}

// FullYearWindow covers Q1..Q4 of year.
func FullYearWindow(year int) Window {
	return Window{Name: "full_year", Periods: []Key{{year, 1}, {year, 2}, {year, 3}, {year, 4}}}
}

// TTMWindow covers the target quarter and the three quarters before it.
func TTMWindow(target Key) Window {
	periods := []Key{target}
	k := target
	for i := 0; i < 3; i++ {
		k = k.Previous()
		periods = append(periods, k)
	}
	return Window{Name: "ttm", Periods: periods}
}

// YTDWindow covers Q1 through the target quarter of the same year.
func YTDWindow(target Key) Window {
	var periods []Key
	for q := 1; q <= target.Quarter; q++ {
		periods = append(periods, Key{target.Year, q})
	}
	return Window{Name: "ytd", Periods: periods}
}

// FirstHalfWindow covers Q1 and Q2 of year.
func FirstHalfWindow(year int) Window {
	return Window{Name: "first_half", Periods: []Key{{year, 1}, {year, 2}}}
}

// FirstNineMonthsWindow covers Q1..Q3 of year.
func FirstNineMonthsWindow(year int) Window {
	return Window{Name: "first_nine_months", Periods: []Key{{year, 1}, {year, 2}, {year, 3}}}
}
