// Package compute holds the arithmetic used to check claims. Undefined
// results are reported through ErrZeroDenominator, never as NaN or Inf.
package compute

import (
	"errors"
	"math"
)

// ErrZeroDenominator is returned when a ratio or growth rate has a zero base
var ErrZeroDenominator = errors.New("zero denominator")

// GrowthPct returns (current-prior)/|prior|*100.
func GrowthPct(current, prior float64) (float64, error) {
	if prior == 0 {
		return 0, ErrZeroDenominator
	}
	return (current - prior) / math.Abs(prior) * 100, nil
}

// MarginPct returns num/den*100.
func MarginPct(num, den float64) (float64, error) {
	if den == 0 {
		return 0, ErrZeroDenominator
	}
	return num / den * 100, nil
}

// Comparison is the result of comparing a claimed level to an actual one.
type Comparison struct {
	Claimed    float64
	Actual     float64
	Difference float64 // claimed - actual
	// DifferencePct is |difference|/|actual|*100. It is meaningless when
	// Undefined is set.
	DifferencePct float64
	// Undefined is set when actual is zero and claimed is not.
	Undefined bool
}

// Fraction returns |difference|/|actual|, the unit tolerance bands use.
func (c Comparison) Fraction() float64 {
	return c.DifferencePct / 100
}

// AbsCompare compares claimed against actual.
func AbsCompare(claimed, actual float64) Comparison {
	c := Comparison{Claimed: claimed, Actual: actual, Difference: claimed - actual}
	switch {
	case actual != 0:
		c.DifferencePct = math.Abs(c.Difference/actual) * 100
	case claimed != 0:
		c.Undefined = true
	}
	return c
}

// Growth is a claimed growth rate checked against the computed one.
type Growth struct {
	ClaimedPct   float64
	ActualPct    float64
	Current      float64
	Prior        float64
	DifferencePP float64 // claimed - actual
}

// AbsDifferencePP returns the unsigned delta in percentage points.
func (g Growth) AbsDifferencePP() float64 {
	return math.Abs(g.DifferencePP)
}

// CompareGrowth computes actual growth from current and prior and compares it
// to the claimed percentage.
func CompareGrowth(claimedPct, current, prior float64) (Growth, error) {
	actual, err := GrowthPct(current, prior)
	if err != nil {
		return Growth{}, err
	}
	return Growth{
		ClaimedPct:   claimedPct,
		ActualPct:    actual,
		Current:      current,
		Prior:        prior,
		DifferencePP: claimedPct - actual,
	}, nil
}

// Margin is a claimed margin checked against the computed one.
type Margin struct {
	ClaimedPct   float64
	ActualPct    float64
	Numerator    float64
	Denominator  float64
	DifferencePP float64
}

// AbsDifferencePP returns the unsigned delta in percentage points.
func (m Margin) AbsDifferencePP() float64 {
	return math.Abs(m.DifferencePP)
}

// CompareMargin computes num/den as a percentage and compares it to the
// claimed margin.
func CompareMargin(claimedPct, num, den float64) (Margin, error) {
	actual, err := MarginPct(num, den)
	if err != nil {
		return Margin{}, err
	}
	return Margin{
		ClaimedPct:   claimedPct,
		ActualPct:    actual,
		Numerator:    num,
		Denominator:  den,
		DifferencePP: claimedPct - actual,
	}, nil
}

// MarginChangeBPS returns the change between two margins in basis points.
func MarginChangeBPS(currentPct, priorPct float64) float64 {
	return (currentPct - priorPct) * 100
}
