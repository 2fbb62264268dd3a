package misleading

import (
	"testing"

	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

func value(f float64) *float64 { return &f }

func TestChecker_CherryPicking(t *testing.T) {
	store := facts.NewStore("TEST")
	store.Set(period.Key{Year: 2025, Quarter: 2}, "revenue", 90, "")
	store.Set(period.Key{Year: 2025, Quarter: 1}, "revenue", 85, "")
	store.Set(period.Key{Year: 2024, Quarter: 2}, "revenue", 100, "")

	claim := model.Claim{Kind: model.KindQoQGrowth, ClaimedValue: value(5.9), Metric: "revenue"}
	findings := NewChecker().Check(Input{
		Claim:       claim,
		Metric:      "revenue",
		Value:       5.9,
		Target:      period.Key{Year: 2025, Quarter: 2},
		Baseline:    period.Key{Year: 2025, Quarter: 1},
		HasBaseline: true,
		Store:       store,
	})

	if !Has(findings, FlagCherryPicking) {
		t.Fatalf("Expected %s, got %v", FlagCherryPicking, Flags(findings))
	}
	if findings[0].Data["formula"] == nil {
		t.Error("Expected finding to carry its formula")
	}
}

func TestChecker_CherryPicking_NotTriggered(t *testing.T) {
	store := facts.NewStore("TEST")
	store.Set(period.Key{Year: 2025, Quarter: 2}, "revenue", 98, "")
	store.Set(period.Key{Year: 2024, Quarter: 2}, "revenue", 100, "")

	tests := []struct {
		kind  model.ClaimKind
		value float64
		desc  string
	}{
		{kind: model.KindQoQGrowth, value: 3, desc: "yoy decline under 5%"},
		{kind: model.KindQoQGrowth, value: -3, desc: "negative qoq claim"},
		{kind: model.KindYoYGrowth, value: 3, desc: "not a qoq claim"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			findings := NewChecker().Check(Input{
				Claim:  model.Claim{Kind: tt.kind, ClaimedValue: value(tt.value)},
				Metric: "revenue",
				Value:  tt.value,
				Target: period.Key{Year: 2025, Quarter: 2},
				Store:  store,
			})
			if Has(findings, FlagCherryPicking) {
				t.Errorf("Did not expect %s", FlagCherryPicking)
			}
		})
	}
}

func TestChecker_UndisclosedNonGAAP(t *testing.T) {
	store := facts.NewStore("TEST")
	store.Set(period.Key{Year: 2025, Quarter: 1}, "eps_diluted", 1.00, "")

	tests := []struct {
		basis  model.GAAPBasis
		quote  string
		value  float64
		expect bool
		desc   string
	}{
		{basis: model.BasisUnknown, quote: "EPS was $1.25", value: 1.25, expect: true, desc: "undisclosed"},
		{basis: "", quote: "EPS was $1.25", value: 1.25, expect: true, desc: "empty basis treated as unknown"},
		{basis: model.BasisUnknown, quote: "Adjusted EPS was $1.25", value: 1.25, expect: false, desc: "disclosed as adjusted"},
		{basis: model.BasisGAAP, quote: "EPS was $1.25", value: 1.25, expect: false, desc: "known basis"},
		{basis: model.BasisUnknown, quote: "EPS was $1.10", value: 1.10, expect: false, desc: "within 15%"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			claim := model.Claim{
				Kind:         model.KindAbsolute,
				Metric:       "eps_diluted",
				ClaimedValue: value(tt.value),
				Basis:        tt.basis,
				QuoteText:    tt.quote,
			}
			findings := NewChecker().Check(Input{
				Claim:  claim,
				Metric: "eps_diluted",
				Value:  tt.value,
				Target: period.Key{Year: 2025, Quarter: 1},
				Store:  store,
			})
			if got := Has(findings, FlagGAAPMixing); got != tt.expect {
				t.Errorf("Has(%s) = %v, want %v", FlagGAAPMixing, got, tt.expect)
			}
		})
	}
}

func TestChecker_LowBase(t *testing.T) {
	store := facts.NewStore("TEST")
	store.Set(period.Key{Year: 2025, Quarter: 2}, "revenue", 10000, "")
	store.Set(period.Key{Year: 2025, Quarter: 2}, "net_income", 80, "")
	store.Set(period.Key{Year: 2024, Quarter: 2}, "net_income", 40, "")

	in := Input{
		Claim:       model.Claim{Kind: model.KindYoYGrowth, ClaimedValue: value(100)},
		Metric:      "net_income",
		Value:       100,
		Target:      period.Key{Year: 2025, Quarter: 2},
		Baseline:    period.Key{Year: 2024, Quarter: 2},
		HasBaseline: true,
		Store:       store,
	}

	findings := NewChecker().Check(in)
	if !Has(findings, FlagLowBase) {
		t.Fatalf("Expected %s, got %v", FlagLowBase, Flags(findings))
	}

	in.Value = 30
	if Has(NewChecker().Check(in), FlagLowBase) {
		t.Error("Growth under 50% should not be checked")
	}
}

func TestFlagsAndReasons(t *testing.T) {
	findings := []Finding{{Flag: "a", Reason: "ra"}, {Flag: "b", Reason: "rb"}}
	if got := Flags(findings); len(got) != 2 || got[1] != "b" {
		t.Errorf("Flags() = %v", got)
	}
	if got := Reasons(findings); len(got) != 2 || got[0] != "ra" {
		t.Errorf("Reasons() = %v", got)
	}
}
