package model

import "strings"

// Claim is a quantitative statement extracted from an earnings call transcript.
// Field names follow the extraction output so claim files decode directly.
type Claim struct {
	ClaimID          string    `json:"claim_id"`
	QuoteText        string    `json:"quote_text"`
	Speaker          string    `json:"speaker,omitempty"`
	SpeakerRole      string    `json:"speaker_role,omitempty"`
	Metric           string    `json:"metric_type"`
	Kind             ClaimKind `json:"claim_type"`
	ClaimedValue     *float64  `json:"claimed_value"`
	ClaimedValueRaw  string    `json:"claimed_value_raw,omitempty"`
	Unit             Unit      `json:"unit"`
	Scale            Scale     `json:"scale,omitempty"`
	Period           string    `json:"period"`
	ComparisonPeriod string    `json:"comparison_period,omitempty"`
	Basis            GAAPBasis `json:"gaap_classification"`
	IsApproximate    bool      `json:"is_approximate"`
	Qualifiers       []string  `json:"qualifiers,omitempty"`
	Confidence       float64   `json:"confidence,omitempty"`
	MetricContext    string    `json:"metric_context,omitempty"`
}

// Value returns the claimed value, or 0 when the claim carries none.
func (c Claim) Value() float64 {
	if c.ClaimedValue == nil {
		return 0
	}
	return *c.ClaimedValue
}

// IsTotal reports whether the claim's metric context names the whole company.
func (c Claim) IsTotal() bool {
	switch strings.ToLower(strings.TrimSpace(c.MetricContext)) {
	case "", "total", "company", "overall", "consolidated":
		return true
	default:
		return false
	}
}

// ClaimKind is the form a claim takes
type ClaimKind string

const (
	KindAbsolute   ClaimKind = "absolute"   // A level, e.g. "revenue was $94.9 billion"
	KindYoYGrowth  ClaimKind = "yoy_growth" // Year-over-year percentage change
	KindQoQGrowth  ClaimKind = "qoq_growth" // Quarter-over-quarter percentage change
	KindMargin     ClaimKind = "margin"     // A ratio to revenue, or a change of one in bps
	KindGuidance   ClaimKind = "guidance"   // Forward-looking
	KindComparison ClaimKind = "comparison" // Superlatives ("record revenue")
	KindOther      ClaimKind = "other"
)

// Valid reports whether k is one of the known claim kinds.
func (k ClaimKind) Valid() bool {
	switch k {
	case KindAbsolute, KindYoYGrowth, KindQoQGrowth, KindMargin, KindGuidance, KindComparison, KindOther:
		return true
	default:
		return false
	}
}

// IsGrowth reports whether k is a percentage-change kind.
func (k ClaimKind) IsGrowth() bool {
	return k == KindYoYGrowth || k == KindQoQGrowth
}

// Unit of the claimed value
type Unit string

const (
	UnitDollars     Unit = "dollars"
	UnitPercent     Unit = "percent"
	UnitBasisPoints Unit = "basis_points"
	UnitPerShare    Unit = "per_share"
	UnitRatio       Unit = "ratio"
	UnitCount       Unit = "count"
	UnitOther       Unit = "other"
)

// Scale is the magnitude word attached to a dollar amount
type Scale string

const (
	ScaleOnes      Scale = "ones"
	ScaleThousands Scale = "thousands"
	ScaleMillions  Scale = "millions"
	ScaleBillions  Scale = "billions"
	ScaleTrillions Scale = "trillions"
)

// Multiplier returns the factor that converts a scaled value to raw units.
// Unknown or empty scales multiply by one.
func (s Scale) Multiplier() float64 {
	switch s {
	case ScaleThousands:
		return 1e3
	case ScaleMillions:
		return 1e6
	case ScaleBillions:
		return 1e9
	case ScaleTrillions:
		return 1e12
	default:
		return 1
	}
}

// GAAPBasis is the accounting basis the speaker used
type GAAPBasis string

const (
	BasisGAAP    GAAPBasis = "gaap"
	BasisNonGAAP GAAPBasis = "non_gaap"
	BasisUnknown GAAPBasis = "unknown"
)

// Normalize maps an empty or unrecognized basis to unknown.
func (b GAAPBasis) Normalize() GAAPBasis {
	switch b {
	case BasisGAAP, BasisNonGAAP:
		return b
	default:
		return BasisUnknown
	}
}
