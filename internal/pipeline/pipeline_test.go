package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/earningscheck/internal/cache"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

const factsDoc = `{
  "ticker": "AAPL",
  "periods": [
    {"fiscal_year": 2025, "fiscal_quarter": 1, "metrics": {"revenue": 94930000000}},
    {"fiscal_year": 2024, "fiscal_quarter": 1, "metrics": {"revenue": 90753000000}}
  ]
}`

const claimsDoc = `{
  "claims": [
    {"claim_id": "rev", "quote_text": "Revenue was $94.9 billion.", "metric_type": "revenue",
     "claim_type": "absolute", "claimed_value": 94.9, "unit": "dollars", "scale": "billions",
     "period": "Q1 2025", "gaap_classification": "gaap"},
    {"quote_text": "Revenue grew 5% year over year.", "metric_type": "revenue",
     "claim_type": "yoy_growth", "claimed_value": 5, "unit": "percent",
     "period": "Q1 2025", "comparison_period": "Q1 2024", "gaap_classification": "gaap"}
  ]
}`

type fixture struct {
	cfg  *model.Config
	root string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := model.DefaultConfig()
	cfg.Data.ClaimsDir = filepath.Join(root, "claims")
	cfg.Data.FinancialsDir = filepath.Join(root, "financials")
	cfg.Data.TranscriptsDir = filepath.Join(root, "transcripts")
	cfg.Data.VerdictsDir = filepath.Join(root, "verdicts")
	cfg.Cache.Enabled = false
	cfg.Concurrency.ClaimWorkers = 2
	for _, d := range []string{cfg.Data.ClaimsDir, cfg.Data.FinancialsDir, cfg.Data.TranscriptsDir} {
		require.NoError(t, os.MkdirAll(d, 0o755))
	}
	return &fixture{cfg: cfg, root: root}
}

func (f *fixture) write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (f *fixture) ref(t *testing.T, name, content string) TranscriptRef {
	t.Helper()
	ref, ok := ParseClaimsFilename(f.write(t, f.cfg.Data.ClaimsDir, name, content))
	require.True(t, ok)
	return ref
}

func TestRunTranscript(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.cfg.Data.FinancialsDir, "AAPL_facts.json", factsDoc)
	ref := f.ref(t, "AAPL_Q1_2025_claims.json", claimsDoc)

	r := NewRunner(f.cfg)
	r.now = func() time.Time { return time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC) }

	res, err := r.RunTranscript(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, "AAPL_Q1_2025", res.Key)
	assert.Equal(t, "2025-02-01T12:00:00Z", res.VerifiedAt)
	require.Len(t, res.ClaimsWithVerdicts, 2)
	assert.Equal(t, model.Summary{Total: 2, Verified: 2}, res.Summary)

	generated := res.ClaimsWithVerdicts[1].Claim.ClaimID
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, res.ClaimsWithVerdicts[1].Verification.ClaimID)

	jsonPath, mdPath := VerdictPaths(f.cfg.Data.VerdictsDir, res.Key)
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var onDisk model.TranscriptResult
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, res.Summary, onDisk.Summary)
	assert.Equal(t, jsonPath, r.OutputPath(ref))

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# AAPL Q1 2025 Claim Verification")
	assert.Contains(t, string(md), "| Close Match | 0 |")
	assert.Contains(t, string(md), "> Revenue was $94.9 billion.")

	again, err := NewRunner(f.cfg).RunTranscript(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, generated, again.ClaimsWithVerdicts[1].Claim.ClaimID, "generated IDs are stable")
}

func TestRunTranscript_FiscalPeriodOverride(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.cfg.Data.FinancialsDir, "AAPL_facts.json", factsDoc)
	f.write(t, f.cfg.Data.TranscriptsDir, "AAPL_Q4_2024.json",
		`{"source_url": "https://www.fool.com/earnings/call-transcripts/2025/01/30/apple-aapl-q1-2025-earnings-call-transcript/"}`)

	claims := `{"claims": [{"claim_id": "rev", "quote_text": "Revenue was $94.9 billion.", "metric_type": "revenue",
	  "claim_type": "absolute", "claimed_value": 94.9, "unit": "dollars", "scale": "billions",
	  "period": "Q1 2024", "gaap_classification": "gaap"}]}`
	ref := f.ref(t, "AAPL_Q4_2024_claims.json", claims)

	res, err := NewRunner(f.cfg).RunTranscript(context.Background(), ref)
	require.NoError(t, err)

	assert.Equal(t, 2024, res.Year)
	assert.Equal(t, 4, res.Quarter)
	item := res.ClaimsWithVerdicts[0]
	assert.Equal(t, "Q1 2024", item.Claim.Period, "stored claim keeps its extracted period")
	assert.Equal(t, model.LabelVerified, item.Verification.Label)
}

func TestRunTranscript_RepairsMalformedClaims(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.cfg.Data.FinancialsDir, "AAPL_facts.json", factsDoc)
	broken := strings.Replace(claimsDoc, `"gaap"}`+"\n  ]", `"gaap"},`+"\n  ]", 1)
	require.NotEqual(t, claimsDoc, broken)
	ref := f.ref(t, "AAPL_Q1_2025_claims.json", broken)

	res, err := NewRunner(f.cfg).RunTranscript(context.Background(), ref)
	require.NoError(t, err)
	assert.Len(t, res.ClaimsWithVerdicts, 2)
}

func TestRunTranscript_NoClaims(t *testing.T) {
	f := newFixture(t)
	ref := f.ref(t, "AAPL_Q1_2025_claims.json", `{"claims": []}`)

	_, err := NewRunner(f.cfg).RunTranscript(context.Background(), ref)
	assert.ErrorIs(t, err, ErrNoClaims)
}

func TestRunTranscript_MissingFacts(t *testing.T) {
	f := newFixture(t)
	ref := f.ref(t, "MSFT_Q1_2025_claims.json", claimsDoc)

	res, err := NewRunner(f.cfg).RunTranscript(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Summary.Unverifiable)
}

func TestRunTranscript_ResultCache(t *testing.T) {
	f := newFixture(t)
	factsPath := f.write(t, f.cfg.Data.FinancialsDir, "AAPL_facts.json", factsDoc)
	ref := f.ref(t, "AAPL_Q1_2025_claims.json", claimsDoc)

	results := cache.NewResults(cache.NewLayeredCache(time.Minute, "", 0))
	r := NewRunner(f.cfg, WithResultCache(results))
	clock := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return clock }

	first, err := r.RunTranscript(context.Background(), ref)
	require.NoError(t, err)

	clock = clock.Add(time.Hour)
	second, err := r.RunTranscript(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, first.VerifiedAt, second.VerifiedAt, "unchanged inputs are served from cache")

	updated := strings.Replace(factsDoc, "94930000000", "94931000000.0", 1)
	require.NoError(t, os.WriteFile(factsPath, []byte(updated), 0o644))
	third, err := r.RunTranscript(context.Background(), ref)
	require.NoError(t, err)
	assert.NotEqual(t, first.VerifiedAt, third.VerifiedAt, "changed facts invalidate the entry")
}

func TestRunTranscript_Cancelled(t *testing.T) {
	f := newFixture(t)
	f.write(t, f.cfg.Data.FinancialsDir, "AAPL_facts.json", factsDoc)
	ref := f.ref(t, "AAPL_Q1_2025_claims.json", claimsDoc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(f.cfg).RunTranscript(ctx, ref)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"MSFT_Q2_2025_claims.json",
		"AAPL_Q4_2024_claims.json",
		"AAPL_Q1_2025_claims.json",
		"AAPL_Q1_2025.json",
		"notes.txt",
		"BRK.B_Q3_2024_claims.json",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "XOM_Q1_2025_claims.json"), 0o755))

	refs, err := Discover(dir)
	require.NoError(t, err)

	var keys []string
	for _, r := range refs {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{"AAPL_Q4_2024", "AAPL_Q1_2025", "BRK.B_Q3_2024", "MSFT_Q2_2025"}, keys)
	assert.Equal(t, filepath.Join(dir, "AAPL_Q4_2024_claims.json"), refs[0].ClaimsPath)

	assert.Len(t, Filter(refs, "aapl"), 2)
	assert.Len(t, Filter(refs), 4)

	_, err = Discover(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestFiscalPeriod(t *testing.T) {
	ref := TranscriptRef{Ticker: "NVDA", Year: 2024, Quarter: 4}
	tests := []struct {
		meta string
		want period.Key
		desc string
	}{
		{meta: "", want: period.Key{Year: 2024, Quarter: 4}, desc: "no metadata"},
		{meta: `{"source_url": "https://www.fool.com/x/nvidia-nvda-q3-2025-earnings-call-transcript/"}`,
			want: period.Key{Year: 2025, Quarter: 3}, desc: "url carries fiscal period"},
		{meta: `{"source_url": "https://www.fool.com/x/NVIDIA-NVDA-Q3-2025-Earnings-Call-Transcript"}`,
			want: period.Key{Year: 2025, Quarter: 3}, desc: "case insensitive without trailing slash"},
		{meta: `{"source_url": "https://example.com/nvda/q3"}`, want: period.Key{Year: 2024, Quarter: 4}, desc: "unrelated url"},
		{meta: `{"source_url": 42}`, want: period.Key{Year: 2024, Quarter: 4}, desc: "non-string url"},
		{meta: `not json`, want: period.Key{Year: 2024, Quarter: 4}, desc: "corrupt metadata"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, FiscalPeriod([]byte(tt.meta), ref))
		})
	}
}

func TestShiftClaims(t *testing.T) {
	in := []model.Claim{{Period: "Q1 2024", ComparisonPeriod: "FY 2023"}, {Period: "next year"}}
	out := ShiftClaims(in, 1)

	assert.Equal(t, "Q1 2025", out[0].Period)
	assert.Equal(t, "FY 2024", out[0].ComparisonPeriod)
	assert.Equal(t, "next year", out[1].Period)
	assert.Equal(t, "Q1 2024", in[0].Period, "input is not modified")
}
