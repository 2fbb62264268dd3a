package catalog

import (
	"strings"

	"github.com/ppiankov/earningscheck/internal/model"
)

// Band is a pair of thresholds: within Tight is verified, within Loose is a
// close match. Units depend on the comparison (fraction, pp or bps).
type Band struct {
	Tight float64
	Loose float64
}

// Classify labels an absolute deviation against the band. Both edges are
// inclusive.
func (b Band) Classify(deviation float64) model.Label {
	switch {
	case deviation <= b.Tight:
		return model.LabelVerified
	case deviation <= b.Loose:
		return model.LabelCloseMatch
	default:
		return model.LabelMismatch
	}
}

// Spec holds the fractional thresholds for one metric. Margin metrics are
// stored as decimal points-per-hundred (0.003 = 0.3pp).
type Spec struct {
	Tight  float64
	Loose  float64
	Approx float64
}

const (
	// PerShareAbs is the absolute EPS tolerance in dollars, checked before
	// the percentage bands.
	PerShareAbs = 0.015

	GrowthTightPP = 1.0
	GrowthLoosePP = 2.0

	BPSTight       = 25.0
	BPSLoose       = 75.0
	BPSApproxTight = 50.0
	BPSApproxLoose = 100.0
)

var tolerances = map[string]Spec{
	"revenue":                  {Tight: 0.005, Loose: 0.02, Approx: 0.05},
	"net_income":               {Tight: 0.01, Loose: 0.03, Approx: 0.05},
	"eps_basic":                {Tight: 0.01, Loose: 0.02, Approx: 0.05},
	"eps_diluted":              {Tight: 0.01, Loose: 0.02, Approx: 0.05},
	"gross_profit":             {Tight: 0.005, Loose: 0.02, Approx: 0.05},
	"gross_margin":             {Tight: 0.003, Loose: 0.01, Approx: 0.02},
	"operating_income":         {Tight: 0.01, Loose: 0.03, Approx: 0.05},
	"operating_margin":         {Tight: 0.003, Loose: 0.01, Approx: 0.02},
	"ebitda":                   {Tight: 0.01, Loose: 0.03, Approx: 0.05},
	"free_cash_flow":           {Tight: 0.02, Loose: 0.05, Approx: 0.10},
	"operating_cash_flow":      {Tight: 0.01, Loose: 0.03, Approx: 0.05},
	"cost_of_revenue":          {Tight: 0.005, Loose: 0.02, Approx: 0.05},
	"capital_expenditures":     {Tight: 0.02, Loose: 0.05, Approx: 0.10},
	"operating_expenses":       {Tight: 0.01, Loose: 0.03, Approx: 0.05},
	"research_and_development": {Tight: 0.01, Loose: 0.03, Approx: 0.05},
	"other":                    {Tight: 0.02, Loose: 0.05, Approx: 0.10},
}

// SpecFor returns the tolerance spec for metric, falling back to "other".
func SpecFor(metric string) Spec {
	if s, ok := tolerances[metric]; ok {
		return s
	}
	return tolerances["other"]
}

// For returns the fractional band for metric. Approximate claims use the
// approximate threshold as the tight band and 1.5x it as the loose band.
func For(metric string, approx bool) Band {
	s := SpecFor(metric)
	if approx {
		return Band{Tight: s.Approx, Loose: s.Approx * 1.5}
	}
	return Band{Tight: s.Tight, Loose: s.Loose}
}

// MarginPP returns the band for metric in percentage points.
func MarginPP(metric string, approx bool) Band {
	b := For(metric, approx)
	return Band{Tight: b.Tight * 100, Loose: b.Loose * 100}
}

// Growth returns the percentage-point band for growth claims.
func Growth(approx bool) Band {
	if approx {
		return Band{Tight: GrowthTightPP * 2, Loose: GrowthLoosePP * 2}
	}
	return Band{Tight: GrowthTightPP, Loose: GrowthLoosePP}
}

// BPS returns the basis-point band for margin-change claims.
func BPS(approx bool) Band {
	if approx {
		return Band{Tight: BPSApproxTight, Loose: BPSApproxLoose}
	}
	return Band{Tight: BPSTight, Loose: BPSLoose}
}

var approximateQualifiers = map[string]bool{
	"approximately": true,
	"about":         true,
	"roughly":       true,
	"nearly":        true,
	"around":        true,
	"close to":      true,
}

// IsApproximate reports whether any qualifier hedges the claimed figure.
func IsApproximate(qualifiers []string) bool {
	for _, q := range qualifiers {
		if approximateQualifiers[strings.ToLower(strings.TrimSpace(q))] {
			return true
		}
	}
	return false
}
