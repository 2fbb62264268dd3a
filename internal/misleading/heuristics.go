// Package misleading flags claims that are numerically right but framed in a
// way that overstates performance.
package misleading

import (
	"fmt"
	"math"

	"github.com/ppiankov/earningscheck/internal/compute"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// Flags raised by the heuristics.
const (
	FlagCherryPicking = "cherry_picking_timeframe"
	FlagGAAPMixing    = "gaap_nongaap_mixing"
	FlagLowBase       = "low_base_exaggeration"
)

// Thresholds
const (
	cherryPickYoYFloor = -5.0 // YoY growth (%) below which a positive QoQ claim is flagged
	nonGAAPExcess      = 0.15 // Claimed over GAAP, as a fraction
	lowBaseGrowthPct   = 50.0 // Growth claims at least this large are checked
	lowBaseShare       = 0.01 // Baseline as a share of revenue
)

// Finding is one heuristic hit with the data that produced it
type Finding struct {
	Flag   string                 `json:"flag"`
	Reason string                 `json:"reason"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

// Input is what every heuristic sees. Value is the claimed value in the
// units facts are stored in.
type Input struct {
	Claim    model.Claim
	Metric   string
	Value    float64
	Target   period.Key
	Baseline period.Key
	// HasBaseline is false when the claim's baseline could not be resolved.
	HasBaseline bool
	Store       *facts.Store
}

// Checker runs the misleading-framing heuristics
type Checker struct{}

// NewChecker creates a new checker
func NewChecker() *Checker {
	return &Checker{}
}

// Check runs every heuristic and returns all findings in a fixed order.
func (c *Checker) Check(in Input) []Finding {
	var findings []Finding

	// 1. Cherry-picked timeframe
	if f, ok := c.cherryPicking(in); ok {
		findings = append(findings, f)
	}

	// 2. Undisclosed non-GAAP basis
	if f, ok := c.undisclosedNonGAAP(in); ok {
		findings = append(findings, f)
	}

	// 3. Low-base exaggeration
	if f, ok := c.lowBase(in); ok {
		findings = append(findings, f)
	}

	return findings
}

// cherryPicking flags a positive QoQ claim while the same quarter is down
// more than 5% year over year.
func (c *Checker) cherryPicking(in Input) (Finding, bool) {
	if in.Claim.Kind != model.KindQoQGrowth || in.Value <= 0 || in.Target.FullYear() {
		return Finding{}, false
	}

	current, ok := in.Store.Get(in.Target, in.Metric)
	if !ok {
		return Finding{}, false
	}
	prior, ok := in.Store.Get(in.Target.PriorYear(), in.Metric)
	if !ok {
		return Finding{}, false
	}
	yoy, err := compute.GrowthPct(current, prior)
	if err != nil || yoy >= cherryPickYoYFloor {
		return Finding{}, false
	}

	return Finding{
		Flag: FlagCherryPicking,
		Reason: fmt.Sprintf("Cited positive QoQ growth (%.1f%%) while YoY %s declined %.1f%%. "+
			"May be selectively highlighting favorable comparison.", in.Value, in.Metric, yoy),
		Data: map[string]interface{}{
			"claimed_qoq": in.Value,
			"actual_yoy":  yoy,
			"threshold":   cherryPickYoYFloor,
			"formula":     "qoq_claimed > 0 && (current - prior_year) / |prior_year| * 100 < -5",
		},
	}, true
}

var nonGAAPProne = map[string]bool{
	"eps_basic":   true,
	"eps_diluted": true,
	"ebitda":      true,
}

// undisclosedNonGAAP flags absolute EPS or EBITDA claims of unknown basis
// that exceed GAAP by more than 15% with no adjusted-figure language.
func (c *Checker) undisclosedNonGAAP(in Input) (Finding, bool) {
	if in.Claim.Basis.Normalize() != model.BasisUnknown || in.Claim.Kind != model.KindAbsolute {
		return Finding{}, false
	}
	if !nonGAAPProne[in.Metric] || in.Claim.ClaimedValue == nil || in.Target.FullYear() {
		return Finding{}, false
	}

	gaap, ok := in.Store.Get(in.Target, in.Metric)
	if !ok || gaap == 0 {
		return Finding{}, false
	}
	excess := (in.Value - gaap) / math.Abs(gaap)
	if excess <= nonGAAPExcess || detect.NonGAAPDisclosed(in.Claim.QuoteText) {
		return Finding{}, false
	}

	return Finding{
		Flag: FlagGAAPMixing,
		Reason: fmt.Sprintf("Claimed %s value (%.2f) is %.0f%% higher than GAAP (%.2f) without non-GAAP disclosure in quote.",
			in.Metric, in.Value, excess*100, gaap),
		Data: map[string]interface{}{
			"claimed":   in.Value,
			"gaap":      gaap,
			"excess":    excess,
			"threshold": nonGAAPExcess,
			"formula":   "(claimed - gaap) / |gaap| > 0.15",
		},
	}, true
}

// lowBase flags growth claims of 50% or more on a baseline smaller than 1%
// of the target period's revenue.
func (c *Checker) lowBase(in Input) (Finding, bool) {
	if !in.Claim.Kind.IsGrowth() || math.Abs(in.Value) < lowBaseGrowthPct || !in.HasBaseline {
		return Finding{}, false
	}
	if in.Target.FullYear() || in.Baseline.FullYear() {
		return Finding{}, false
	}

	base, ok := in.Store.Get(in.Baseline, in.Metric)
	if !ok {
		return Finding{}, false
	}
	revenue, ok := in.Store.Get(in.Target, "revenue")
	if !ok || revenue == 0 {
		return Finding{}, false
	}
	share := math.Abs(base) / math.Abs(revenue)
	if share >= lowBaseShare {
		return Finding{}, false
	}

	return Finding{
		Flag: FlagLowBase,
		Reason: fmt.Sprintf("%.0f%% growth on base of %.0f which is <1%% of revenue (%.0f). "+
			"Small denominator exaggerates significance.", math.Abs(in.Value), base, revenue),
		Data: map[string]interface{}{
			"baseline":  base,
			"revenue":   revenue,
			"share":     share,
			"threshold": lowBaseShare,
			"formula":   "|baseline| / |revenue| < 0.01",
		},
	}, true
}

// Flags returns the flag of each finding.
func Flags(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Flag
	}
	return out
}

// Reasons returns the reason of each finding.
func Reasons(findings []Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Reason
	}
	return out
}

// Has reports whether any finding carries flag.
func Has(findings []Finding, flag string) bool {
	for _, f := range findings {
		if f.Flag == flag {
			return true
		}
	}
	return false
}
