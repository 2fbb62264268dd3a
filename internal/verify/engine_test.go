package verify

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/misleading"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

var (
	q1 = period.Key{Year: 2025, Quarter: 1}
	q2 = period.Key{Year: 2025, Quarter: 2}
)

func value(f float64) *float64 { return &f }

func storeWith(values map[period.Key]map[string]float64) *facts.Store {
	s := facts.NewStore("TEST")
	for k, fields := range values {
		for f, v := range fields {
			s.Set(k, f, v, "")
		}
	}
	return s
}

func level(metric string, v float64, quote string) model.Claim {
	return model.Claim{
		ClaimID:      "c1",
		QuoteText:    quote,
		Metric:       metric,
		Kind:         model.KindAbsolute,
		ClaimedValue: value(v),
		Unit:         model.UnitDollars,
		Period:       "Q2 2025",
		Basis:        model.BasisGAAP,
	}
}

func TestVerify_Absolute(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"revenue": 100}})

	tests := []struct {
		claimed float64
		label   model.Label
		prefix  string
		desc    string
	}{
		{claimed: 100.3, label: model.LabelVerified, prefix: "Verified: ", desc: "within tight band"},
		{claimed: 101.5, label: model.LabelCloseMatch, prefix: "Close Match: ", desc: "within loose band"},
		{claimed: 120, label: model.LabelMismatch, prefix: "Mismatch: ", desc: "outside both bands"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v := New().Verify(level("revenue", tt.claimed, "Revenue was a record"), "TEST", 2025, 2, store)
			assert.Equal(t, tt.label, v.Label)
			assert.True(t, strings.HasPrefix(v.Explanation, tt.prefix), v.Explanation)
			require.NotNil(t, v.ActualValue)
			assert.Equal(t, 100.0, *v.ActualValue)
			require.NotNil(t, v.ToleranceUsed)
			assert.Equal(t, 0.005, *v.ToleranceUsed)
			require.Len(t, v.ComputationSteps, 1)
			assert.Equal(t, "Absolute comparison", v.ComputationSteps[0].Step)
			assert.Equal(t, facts.DefaultSource, v.EvidenceSource)
		})
	}
}

func TestVerify_Idempotent(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"revenue": 110}, q1: {"revenue": 100}, {Year: 2024, Quarter: 2}: {"revenue": 100}})
	c := model.Claim{ClaimID: "g", Metric: "revenue", Kind: model.KindYoYGrowth, ClaimedValue: value(10),
		Unit: model.UnitPercent, Period: "Q2 2025", Basis: model.BasisGAAP, QuoteText: "Revenue grew 10% year over year"}

	e := New()
	first := e.Verify(c, "TEST", 2025, 2, store)
	second := e.Verify(c, "TEST", 2025, 2, store)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("Verify is not idempotent (-first +second):\n%s", diff)
	}
}

func TestVerify_GrowthZeroPrior(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"revenue": 100}, {Year: 2024, Quarter: 2}: {"revenue": 0}})
	c := model.Claim{Metric: "revenue", Kind: model.KindYoYGrowth, ClaimedValue: value(10), Unit: model.UnitPercent,
		Period: "Q2 2025", Basis: model.BasisGAAP, QuoteText: "Revenue grew 10%"}

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelUnverifiable, v.Label)
	assert.True(t, v.HasFlag(FlagZeroDenominator))
	assert.Nil(t, v.Difference)
}

func TestVerify_PerShareAbsoluteTolerance(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"eps_diluted": 1.61}})
	c := level("eps_diluted", 1.62, "Diluted EPS was $1.62")
	c.Unit = model.UnitPerShare

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	require.NotNil(t, v.ToleranceUsed)
	assert.Equal(t, 0.015, *v.ToleranceUsed)
	require.Len(t, v.ComputationSteps, 1)
	assert.Equal(t, "EPS absolute comparison", v.ComputationSteps[0].Step)
}

func TestVerify_UndisclosedNonGAAPEscalates(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"eps_diluted": 1.00}})
	c := level("eps_diluted", 1.25, "EPS was $1.25")
	c.Unit = model.UnitPerShare
	c.Basis = model.BasisUnknown

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelMisleading, v.Label)
	assert.Contains(t, v.MisleadingFlags, misleading.FlagGAAPMixing)
	assert.Contains(t, v.Explanation, "HOWEVER: ")
}

func TestVerify_MisleadingEscalation(t *testing.T) {
	prior := period.Key{Year: 2024, Quarter: 2}
	store := storeWith(map[period.Key]map[string]float64{
		q2:    {"revenue": 10000, "net_income": 100},
		q1:    {"revenue": 9090.91},
		prior: {"revenue": 18181.82, "net_income": 50},
	})

	growthClaim := func(metric string, kind model.ClaimKind, v float64, quote string) model.Claim {
		return model.Claim{Metric: metric, Kind: kind, ClaimedValue: value(v), Unit: model.UnitPercent,
			Period: "Q2 2025", Basis: model.BasisGAAP, QuoteText: quote}
	}

	tests := []struct {
		claim model.Claim
		label model.Label
		flag  string
		desc  string
	}{
		{
			claim: growthClaim("revenue", model.KindQoQGrowth, 10, "Revenue grew 10% sequentially"),
			label: model.LabelMisleading,
			flag:  misleading.FlagCherryPicking,
			desc:  "accurate qoq while yoy is down",
		},
		{
			claim: growthClaim("revenue", model.KindQoQGrowth, 30, "Revenue grew 30% sequentially"),
			label: model.LabelMismatch,
			flag:  misleading.FlagCherryPicking,
			desc:  "inaccurate qoq keeps mismatch",
		},
		{
			claim: growthClaim("net_income", model.KindYoYGrowth, 100, "Net income doubled year over year"),
			label: model.LabelMisleading,
			flag:  misleading.FlagLowBase,
			desc:  "large growth on a tiny base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v := New().Verify(tt.claim, "TEST", 2025, 2, store)
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, []string{tt.flag}, v.MisleadingFlags)
			require.Len(t, v.MisleadingReasons, 1)
			if tt.label == model.LabelMisleading {
				assert.Contains(t, v.Explanation, "HOWEVER: ")
			} else {
				assert.NotContains(t, v.Explanation, "HOWEVER: ")
			}
		})
	}
}

func TestVerify_Detectors(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{
		q2: {"revenue": 100e9, "capital_expenditures": 100, "research_and_development": 3.5e9,
			"cash_and_marketable_securities": 156e9},
	})

	iphone := level("revenue", 46, "Revenue was $46 billion")
	iphone.Scale = model.ScaleBillions
	iphone.MetricContext = "iPhone"

	nonGAAP := level("revenue", 100, "Adjusted revenue was 100")
	nonGAAP.Basis = model.BasisNonGAAP

	guidance := level("revenue", 100, "We expect revenue of 100")
	guidance.Kind = model.KindGuidance

	missingValue := level("revenue", 0, "Revenue grew")
	missingValue.ClaimedValue = nil

	leases := level("capital_expenditures", 120, "CapEx including finance leases was 120")

	dollarGrowth := level("revenue", 5e9, "Revenue grew by $5 billion")
	dollarGrowth.Kind = model.KindYoYGrowth

	unknown := level("backlog", 10, "Backlog was 10")

	capex := level("capital_expenditures", 84, "Capital expenditures were $84")

	comparison := level("revenue", 100, "Record revenue")
	comparison.Kind = model.KindComparison

	tests := []struct {
		claim model.Claim
		flag  string
		desc  string
	}{
		{claim: iphone, flag: FlagSegment, desc: "segment by context"},
		{claim: nonGAAP, flag: FlagNonGAAP, desc: "non-gaap basis"},
		{claim: guidance, flag: FlagGuidance, desc: "guidance"},
		{claim: missingValue, flag: FlagIncomplete, desc: "no claimed value"},
		{claim: leases, flag: FlagCapexLeases, desc: "capex with finance leases"},
		{claim: dollarGrowth, flag: FlagDollarGrowth, desc: "dollar growth"},
		{claim: unknown, flag: FlagUnknownMetric, desc: "unknown metric"},
		{claim: capex, flag: detect.FlagCapexGap, desc: "capex definition gap"},
		{claim: comparison, flag: "unsupported_claim_type_comparison", desc: "comparison kind"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v := New().Verify(tt.claim, "TEST", 2025, 2, store)
			assert.Equal(t, model.LabelUnverifiable, v.Label)
			assert.Contains(t, v.Flags, tt.flag)
			assert.NotEmpty(t, v.Explanation)
		})
	}
}

func TestVerify_ResearchIsNotSegment(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"research_and_development": 3.5e9}})
	c := level("research_and_development", 3.5, "We invested 3.5 billion in research and development.")
	c.Scale = model.ScaleBillions

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	assert.NotContains(t, v.Flags, FlagSegment)
}

func TestVerify_OtherMetricRemap(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"cash_and_marketable_securities": 156e9}})
	c := level("other", 156, "We ended the quarter with $156 billion in cash and marketable securities.")
	c.Scale = model.ScaleBillions

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	require.Len(t, v.FactsUsed, 1)
	assert.Equal(t, "cash_and_marketable_securities", v.FactsUsed[0].Field)
}

func TestVerify_FullYear(t *testing.T) {
	values := map[period.Key]map[string]float64{}
	for q := 1; q <= 4; q++ {
		values[period.Key{Year: 2024, Quarter: q}] = map[string]float64{"revenue": 100}
		values[period.Key{Year: 2023, Quarter: q}] = map[string]float64{"revenue": 80}
	}
	store := storeWith(values)

	t.Run("absolute", func(t *testing.T) {
		c := level("revenue", 400, "Full year revenue was $400")
		c.Period = "FY 2024"
		v := New().Verify(c, "TEST", 2025, 1, store)
		assert.Equal(t, model.LabelVerified, v.Label)
		require.NotNil(t, v.ActualValue)
		assert.Equal(t, 400.0, *v.ActualValue)
		assert.Len(t, v.FactsUsed, 4)
	})

	t.Run("growth", func(t *testing.T) {
		c := model.Claim{Metric: "revenue", Kind: model.KindYoYGrowth, ClaimedValue: value(25), Unit: model.UnitPercent,
			Period: "FY 2024", Basis: model.BasisGAAP, QuoteText: "Full year revenue grew 25%"}
		v := New().Verify(c, "TEST", 2025, 1, store)
		assert.Equal(t, model.LabelVerified, v.Label)
		require.Len(t, v.ComputationSteps, 1)
		assert.InDelta(t, 25.0, v.ComputationSteps[0].Result, 1e-9)
	})

	t.Run("qoq growth has no full-year baseline", func(t *testing.T) {
		c := model.Claim{Metric: "revenue", Kind: model.KindQoQGrowth, ClaimedValue: value(25), Unit: model.UnitPercent,
			Period: "FY 2024", Basis: model.BasisGAAP, QuoteText: "Revenue grew 25%"}
		v := New().Verify(c, "TEST", 2025, 1, store)
		assert.True(t, v.HasFlag(FlagBaselineUnavailable))
	})

	t.Run("missing quarter", func(t *testing.T) {
		c := level("revenue", 400, "Full year revenue was $400")
		c.Period = "FY 2022"
		v := New().Verify(c, "TEST", 2025, 1, store)
		assert.Equal(t, model.LabelUnverifiable, v.Label)
		assert.True(t, v.HasFlag(FlagMissingData))
		assert.Contains(t, v.Explanation, "Q1 2022, Q2 2022, Q3 2022, Q4 2022")
	})
}

func TestVerify_TrailingTwelveMonths(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{
		q2:                       {"free_cash_flow": 40},
		q1:                       {"free_cash_flow": 30},
		{Year: 2024, Quarter: 4}: {"free_cash_flow": 20},
		{Year: 2024, Quarter: 3}: {"free_cash_flow": 10},
	})
	c := level("free_cash_flow", 100, "Trailing twelve month free cash flow was $100")

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	require.NotNil(t, v.ActualValue)
	assert.Equal(t, 100.0, *v.ActualValue)
	require.Len(t, v.ComputationSteps, 1)
	assert.Equal(t, "Q2 2025 + Q1 2025 + Q4 2024 + Q3 2024", v.ComputationSteps[0].Formula)

	partial := storeWith(map[period.Key]map[string]float64{q2: {"free_cash_flow": 40}})
	v = New().Verify(c, "TEST", 2025, 2, partial)
	assert.Equal(t, model.LabelUnverifiable, v.Label)
	assert.True(t, v.HasFlag(FlagMultiPeriod))
	assert.True(t, v.HasFlag(FlagMissingData))
	assert.Nil(t, v.ActualValue, "partial sums are never reported")
}

func TestVerify_YoYGrowthWithSupplementalQoQ(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{
		q2:                       {"revenue": 110},
		q1:                       {"revenue": 100},
		{Year: 2024, Quarter: 2}: {"revenue": 100},
	})
	c := model.Claim{Metric: "revenue", Kind: model.KindYoYGrowth, ClaimedValue: value(10), Unit: model.UnitPercent,
		Period: "Q2 2025", Basis: model.BasisGAAP, QuoteText: "Revenue grew 10% year over year"}

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	require.Len(t, v.ComputationSteps, 2)
	assert.Equal(t, "YoY growth", v.ComputationSteps[0].Step)
	assert.Equal(t, "Supplemental QoQ discrepancy", v.ComputationSteps[1].Step)
	assert.InDelta(t, 10.0, v.ComputationSteps[1].Result, 1e-9)
	assert.Contains(t, v.Explanation, "Quarter-over-quarter reference")
	assert.Equal(t, "fmp (current), fmp (prior)", v.EvidenceSource)
}

func TestVerify_MarginLevel(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"gross_profit": 46.5, "revenue": 100}})
	c := model.Claim{Metric: "gross_margin", Kind: model.KindMargin, ClaimedValue: value(46.6), Unit: model.UnitPercent,
		Period: "Q2 2025", Basis: model.BasisGAAP, QuoteText: "Gross margin was 46.6%"}

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	require.NotNil(t, v.ActualValue)
	assert.InDelta(t, 46.5, *v.ActualValue, 1e-9)
	require.NotNil(t, v.ToleranceUsed)
	assert.InDelta(t, 0.3, *v.ToleranceUsed, 1e-9)
}

func TestVerify_BPSMarginChange(t *testing.T) {
	t.Run("gross margin sequential expansion", func(t *testing.T) {
		store := storeWith(map[period.Key]map[string]float64{
			q2: {"gross_profit": 53, "revenue": 100},
			q1: {"gross_profit": 52.3, "revenue": 100},
		})
		c := model.Claim{Metric: "gross_margin", Kind: model.KindMargin, ClaimedValue: value(70), Unit: model.UnitBasisPoints,
			Period: "Q2 2025", Basis: model.BasisGAAP, QuoteText: "Gross margin expanded 70 basis points sequentially"}

		v := New().Verify(c, "TEST", 2025, 2, store)
		assert.Equal(t, model.LabelVerified, v.Label)
		require.NotNil(t, v.ActualValue)
		assert.InDelta(t, 70.0, *v.ActualValue, 1e-6)
		assert.Len(t, v.FactsUsed, 4)
	})

	t.Run("sga against explicit comparison quarter", func(t *testing.T) {
		store := storeWith(map[period.Key]map[string]float64{
			q1:                       {"sga_expenses": 20.46, "revenue": 100},
			{Year: 2024, Quarter: 4}: {"sga_expenses": 20, "revenue": 100},
		})
		c := model.Claim{Metric: "operating_expenses", Kind: model.KindMargin, ClaimedValue: value(46),
			Unit: model.UnitBasisPoints, Period: "Q1 2025", ComparisonPeriod: "Q4 2024", Basis: model.BasisGAAP,
			QuoteText: "SG&A expenses deleveraged 46 basis points"}

		v := New().Verify(c, "TEST", 2025, 1, store)
		assert.Equal(t, model.LabelVerified, v.Label)
		require.NotNil(t, v.ActualValue)
		assert.InDelta(t, 46.0, *v.ActualValue, 1e-6)
		assert.Equal(t, "sga_expenses", v.FactsUsed[0].Field)
	})

	t.Run("falls back to operating expenses", func(t *testing.T) {
		store := storeWith(map[period.Key]map[string]float64{
			q1:                       {"operating_expenses": 20.46, "revenue": 100},
			{Year: 2024, Quarter: 4}: {"operating_expenses": 20, "revenue": 100},
		})
		c := model.Claim{Metric: "operating_expenses", Kind: model.KindMargin, ClaimedValue: value(46),
			Unit: model.UnitBasisPoints, Period: "Q1 2025", ComparisonPeriod: "Q4 2024", Basis: model.BasisGAAP,
			QuoteText: "SG&A expenses deleveraged 46 basis points"}

		v := New().Verify(c, "TEST", 2025, 1, store)
		assert.Equal(t, model.LabelVerified, v.Label)
		assert.Equal(t, "operating_expenses", v.FactsUsed[0].Field)
	})

	t.Run("approximate claims use the doubled tight band", func(t *testing.T) {
		store := storeWith(map[period.Key]map[string]float64{
			q2: {"gross_profit": 53, "revenue": 100},
			q1: {"gross_profit": 53, "revenue": 100},
		})
		tests := []struct {
			claimed float64
			label   model.Label
		}{
			{claimed: 40, label: model.LabelVerified},
			{claimed: 90, label: model.LabelCloseMatch},
			{claimed: 120, label: model.LabelMismatch},
		}
		for _, tt := range tests {
			c := model.Claim{Metric: "gross_margin", Kind: model.KindMargin, ClaimedValue: value(tt.claimed),
				Unit: model.UnitBasisPoints, Period: "Q2 2025", Basis: model.BasisGAAP, IsApproximate: true,
				QuoteText: fmt.Sprintf("Gross margin expanded %.0f basis points sequentially", tt.claimed)}

			v := New().Verify(c, "TEST", 2025, 2, store)
			assert.Equal(t, tt.label, v.Label, "claimed %v bps", tt.claimed)
			require.NotNil(t, v.ToleranceUsed)
			assert.Equal(t, 50.0, *v.ToleranceUsed)
		}
	})

	t.Run("direction word flips sign", func(t *testing.T) {
		store := storeWith(map[period.Key]map[string]float64{
			q2: {"operating_income": 30, "revenue": 100},
			q1: {"operating_income": 30.5, "revenue": 100},
		})
		c := model.Claim{Metric: "operating_margin", Kind: model.KindMargin, ClaimedValue: value(50),
			Unit: model.UnitBasisPoints, Period: "Q2 2025", Basis: model.BasisGAAP,
			QuoteText: "Operating margin declined 50 basis points sequentially"}

		v := New().Verify(c, "TEST", 2025, 2, store)
		assert.Equal(t, model.LabelVerified, v.Label)
		require.NotNil(t, v.ActualValue)
		assert.InDelta(t, -50.0, *v.ActualValue, 1e-6)
	})
}

func TestVerify_TotalExpenses(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"cost_of_revenue": 60, "operating_expenses": 30}})
	c := level("operating_expenses", 90, "Total costs and expenses were $90")

	v := New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, model.LabelVerified, v.Label)
	require.NotNil(t, v.ActualValue)
	assert.Equal(t, 90.0, *v.ActualValue)

	// No keyword, but the value only makes sense as COGS + OpEx.
	c = level("operating_expenses", 91, "Expenses were $91")
	v = New().Verify(c, "TEST", 2025, 2, store)
	assert.Equal(t, 90.0, *v.ActualValue)
}

func TestVerify_RecoversPanics(t *testing.T) {
	e := &Engine{logger: zap.NewNop()}
	v := e.Verify(level("revenue", 100, "Revenue was 100"), "TEST", 2025, 2, facts.NewStore("TEST"))
	assert.Equal(t, model.LabelUnverifiable, v.Label)
	assert.True(t, v.HasFlag(FlagInternalError))
}

func TestVerify_NilStore(t *testing.T) {
	v := New().Verify(level("revenue", 100, "Revenue was 100"), "TEST", 2025, 2, nil)
	assert.Equal(t, model.LabelUnverifiable, v.Label)
	assert.True(t, v.HasFlag(FlagMissingData))
}

func TestVerifyAll(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{q2: {"revenue": 100, "net_income": 20}})

	good := level("revenue", 100.2, "Revenue was $100.2")
	good.ClaimID = "good"
	bad := level("revenue", 120, "Revenue was $120")
	bad.ClaimID = "bad"
	other := level("net_income", 25, "Net income was $25")
	other.ClaimID = "other"

	out, summary, err := New(WithWorkers(2)).VerifyAll(context.Background(), []model.Claim{good, bad, other}, "TEST", 2025, 2, store)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "good", out[0].Claim.ClaimID)
	assert.Equal(t, "bad", out[1].Claim.ClaimID)
	assert.Equal(t, "other", out[2].Claim.ClaimID)

	assert.Equal(t, model.LabelVerified, out[0].Verification.Label)
	assert.Equal(t, model.LabelUnverifiable, out[1].Verification.Label)
	assert.True(t, out[1].Verification.HasFlag(FlagConflicting))
	assert.Contains(t, out[1].Verification.Explanation, "(good)")
	assert.Equal(t, model.LabelMismatch, out[2].Verification.Label, "no passing sibling, not downgraded")

	assert.Equal(t, model.Summary{Total: 3, Verified: 1, Mismatch: 1, Unverifiable: 1}, summary)
}

func TestVerifyAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := New().VerifyAll(ctx, []model.Claim{level("revenue", 1, "")}, "TEST", 2025, 2, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestVerifyAll_GroupsOnResolvedMetric(t *testing.T) {
	store := storeWith(map[period.Key]map[string]float64{
		q2: {"research_and_development": 10, "capital_expenditures": 10},
	})

	rnd := level("other", 10, "R&D was $10")
	rnd.ClaimID = "rnd"
	capex := level("other", 6, "Capex was $6")
	capex.ClaimID = "capex"

	out, _, err := New().VerifyAll(context.Background(), []model.Claim{rnd, capex}, "TEST", 2025, 2, store)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, model.LabelVerified, out[0].Verification.Label)
	assert.Equal(t, model.LabelMismatch, out[1].Verification.Label, "a different metric is not a sibling")
	assert.False(t, out[1].Verification.HasFlag(FlagConflicting))
}
