package verify

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ppiankov/earningscheck/internal/catalog"
	"github.com/ppiankov/earningscheck/internal/detect"
	"github.com/ppiankov/earningscheck/internal/facts"
	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// Flags set by the engine itself. Detector-specific flags live in detect.
const (
	FlagIncomplete          = "incomplete_claim"
	FlagNonGAAP             = "non_gaap_claim"
	FlagGuidance            = "guidance_claim"
	FlagMultiPeriod         = "ttm_or_multiperiod"
	FlagCapexLeases         = "capex_includes_leases"
	FlagDollarGrowth        = "dollar_amount_growth"
	FlagUnknownMetric       = "unknown_metric"
	FlagSegment             = "segment_claim"
	FlagFullYearUnsupported = "full_year_unsupported"
	FlagMarginChangeBPS     = "margin_change_bps"
	FlagMarginUnsupported   = "margin_unsupported"
	FlagGrowthUnsupported   = "growth_unsupported"
	FlagBaselineUnavailable = "baseline_unavailable"
	FlagMissingData         = "missing_financial_data"
	FlagZeroDenominator     = "zero_denominator"
	FlagInternalError       = "internal_error"
	FlagConflicting         = "conflicting_transcript_claim"

	// FlagUnsupportedKindPrefix is followed by the claim kind.
	FlagUnsupportedKindPrefix = "unsupported_claim_type_"
)

// evaluation is the per-claim working state shared by the rules. It is
// created fresh for every Verify call and never shared between goroutines.
type evaluation struct {
	claim      model.Claim
	ticker     string
	metric     string // After catalog remapping
	quote      string // Lower-cased quote text
	approx     bool
	value      float64 // Claimed value in fact units
	transcript period.Key
	res        period.Resolution
	alias      bool
	entry      catalog.Entry
	known      bool
	store      *facts.Store
	segments   *detect.SegmentClassifier
	v          model.Verdict
}

func (ev *evaluation) unverifiable(explanation string, flags ...string) model.Verdict {
	ev.v.Label = model.LabelUnverifiable
	ev.v.Explanation = explanation
	for _, f := range flags {
		ev.v.AddFlag(f)
	}
	return ev.v
}

func (ev *evaluation) missing(labels []string, flags ...string) model.Verdict {
	return ev.unverifiable("Missing data for period(s): "+strings.Join(dedupe(labels), ", "),
		append([]string{FlagMissingData}, flags...)...)
}

func (ev *evaluation) zeroDenominator(explanation string, flags ...string) model.Verdict {
	return ev.unverifiable(explanation, append([]string{FlagZeroDenominator}, flags...)...)
}

func (ev *evaluation) lookup(field string, k period.Key) (facts.Value, bool) {
	return ev.store.Lookup(field, k, ev.alias)
}

func (ev *evaluation) useFact(field string, k period.Key, value float64) {
	ev.v.FactsUsed = append(ev.v.FactsUsed, model.FinancialFact{Field: field, Year: k.Year, Quarter: k.Quarter, Value: value})
}

func (ev *evaluation) step(s model.ComputationStep) {
	ev.v.ComputationSteps = append(ev.v.ComputationSteps, s)
}

func (ev *evaluation) sources(srcs ...string) {
	ev.v.EvidenceSource = strings.Join(dedupe(srcs), ", ")
}

func (ev *evaluation) human() string {
	return strings.ReplaceAll(ev.metric, "_", " ")
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

var printer = message.NewPrinter(language.English)

// num renders v with thousands separators and two decimals.
func num(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// whole renders v with thousands separators and no decimals.
func whole(v float64) string {
	return printer.Sprintf("%.0f", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}
