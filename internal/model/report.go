package model

// TranscriptResult is the persisted verification record for one transcript.
// This schema is consumed verbatim by the dashboard.
type TranscriptResult struct {
	Ticker             string         `json:"ticker"`
	Key                string         `json:"key"`  // e.g. "AAPL_Q1_2025"
	Year               int            `json:"year"` // Year of the transcript key, not the override
	Quarter            int            `json:"quarter"`
	VerifiedAt         string         `json:"verified_at"` // ISO-8601
	ClaimsWithVerdicts []ClaimVerdict `json:"claims_with_verdicts"`
	Summary            Summary        `json:"summary"`
}

// ClaimVerdict pairs a claim with its verification
type ClaimVerdict struct {
	Claim        Claim   `json:"claim"`
	Verification Verdict `json:"verification"`
}

// Summary counts verdicts per label
type Summary struct {
	Total        int `json:"total"`
	Verified     int `json:"verified"`
	CloseMatch   int `json:"close_match"`
	Mismatch     int `json:"mismatch"`
	Misleading   int `json:"misleading"`
	Unverifiable int `json:"unverifiable"`
}

// Add counts one verdict with the given label.
func (s *Summary) Add(l Label) {
	s.Total++
	switch l {
	case LabelVerified:
		s.Verified++
	case LabelCloseMatch:
		s.CloseMatch++
	case LabelMismatch:
		s.Mismatch++
	case LabelMisleading:
		s.Misleading++
	case LabelUnverifiable:
		s.Unverifiable++
	}
}

// Merge adds every count of o into s.
func (s *Summary) Merge(o Summary) {
	s.Total += o.Total
	s.Verified += o.Verified
	s.CloseMatch += o.CloseMatch
	s.Mismatch += o.Mismatch
	s.Misleading += o.Misleading
	s.Unverifiable += o.Unverifiable
}

// Count returns the number of verdicts with label l.
func (s Summary) Count(l Label) int {
	switch l {
	case LabelVerified:
		return s.Verified
	case LabelCloseMatch:
		return s.CloseMatch
	case LabelMismatch:
		return s.Mismatch
	case LabelMisleading:
		return s.Misleading
	case LabelUnverifiable:
		return s.Unverifiable
	default:
		return 0
	}
}

// Summarize counts the labels of a batch of verdicts.
func Summarize(items []ClaimVerdict) Summary {
	var s Summary
	for _, it := range items {
		s.Add(it.Verification.Label)
	}
	return s
}
