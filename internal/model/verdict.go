package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Label is the outcome of verifying one claim
type Label string

const (
	LabelVerified     Label = "verified"     // Within the tight band
	LabelCloseMatch   Label = "close_match"  // Within the loose band
	LabelMismatch     Label = "mismatch"     // Outside both bands
	LabelMisleading   Label = "misleading"   // Numerically acceptable but framed misleadingly
	LabelUnverifiable Label = "unverifiable" // Could not be checked; terminal
)

// Labels lists every label in report order.
var Labels = []Label{LabelVerified, LabelCloseMatch, LabelMismatch, LabelMisleading, LabelUnverifiable}

// Valid reports whether l is one of the five labels.
func (l Label) Valid() bool {
	switch l {
	case LabelVerified, LabelCloseMatch, LabelMismatch, LabelMisleading, LabelUnverifiable:
		return true
	default:
		return false
	}
}

// Passing reports whether l is a numeric match that misleading checks may escalate.
func (l Label) Passing() bool {
	return l == LabelVerified || l == LabelCloseMatch
}

// Title renders l for people to read, e.g. "Close Match".
func (l Label) Title(tag language.Tag) string {
	return cases.Title(tag).String(strings.ReplaceAll(string(l), "_", " "))
}

// Verdict is the explainable result of verifying one claim.
// JSON names are read by the dashboard and must not change.
type Verdict struct {
	ClaimID           string            `json:"claim_id"`
	ClaimedValue      *float64          `json:"claimed_value"`
	Label             Label             `json:"verdict"`
	ActualValue       *float64          `json:"actual_value"`
	Difference        *float64          `json:"difference"`
	DifferencePct     *float64          `json:"difference_pct"`
	ToleranceUsed     *float64          `json:"tolerance_used"`
	ComputationDetail string            `json:"computation_detail"`
	ComputationSteps  []ComputationStep `json:"computation_steps"`
	FactsUsed         []FinancialFact   `json:"financial_facts_used"`
	EvidenceSource    string            `json:"evidence_source"`
	Flags             []string          `json:"flags"`
	MisleadingFlags   []string          `json:"misleading_flags"`
	MisleadingReasons []string          `json:"misleading_reasons"`
	Explanation       string            `json:"explanation"`
}

// NewVerdict returns an empty verdict for the claim with non-nil slices so that
// JSON output always carries arrays.
func NewVerdict(c Claim) Verdict {
	return Verdict{
		ClaimID:           c.ClaimID,
		ClaimedValue:      c.ClaimedValue,
		ComputationSteps:  []ComputationStep{},
		FactsUsed:         []FinancialFact{},
		Flags:             []string{},
		MisleadingFlags:   []string{},
		MisleadingReasons: []string{},
	}
}

// HasFlag reports whether the verdict carries flag.
func (v *Verdict) HasFlag(flag string) bool {
	for _, f := range v.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag appends flag once.
func (v *Verdict) AddFlag(flag string) {
	if !v.HasFlag(flag) {
		v.Flags = append(v.Flags, flag)
	}
}

// Clone returns a deep copy so callers can mutate without aliasing slices.
func (v Verdict) Clone() Verdict {
	out := v
	out.ComputationSteps = append([]ComputationStep{}, v.ComputationSteps...)
	out.FactsUsed = append([]FinancialFact{}, v.FactsUsed...)
	out.Flags = append([]string{}, v.Flags...)
	out.MisleadingFlags = append([]string{}, v.MisleadingFlags...)
	out.MisleadingReasons = append([]string{}, v.MisleadingReasons...)
	return out
}

// ComputationStep is one human-auditable line of the verification trace
type ComputationStep struct {
	Step          string   `json:"step"`
	Formula       string   `json:"formula"`
	Result        float64  `json:"result"`
	Threshold     *float64 `json:"threshold,omitempty"`
	Claimed       *float64 `json:"claimed,omitempty"`
	DifferencePP  *float64 `json:"difference_pp,omitempty"`
	DifferenceBPS *float64 `json:"difference_bps,omitempty"`
}

// FinancialFact is a single fact-store value consulted for a verdict
type FinancialFact struct {
	Field   string  `json:"field"`
	Year    int     `json:"fy"`
	Quarter int     `json:"fq"`
	Value   float64 `json:"value"`
}

// Float returns a pointer to f, for optional numeric fields.
func Float(f float64) *float64 {
	return &f
}
