package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/google/uuid"

	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// ErrNoClaims is returned when a claims file holds no claims
var ErrNoClaims = errors.New("no claims")

// claimIDSpace namespaces the IDs generated for claims that arrive without one.
var claimIDSpace = uuid.MustParse("6f1d3c2a-8b4e-5a7f-9c0d-2e3f4a5b6c7d")

type claimsFile struct {
	Claims []model.Claim `json:"claims"`
}

// ParseClaims decodes a claims document. Extraction output is occasionally
// malformed, so a document that
// fails to decode is repaired once before giving up. Claims without an ID get
// a stable one derived from key and position.
func ParseClaims(data []byte, key string) ([]model.Claim, error) {
	var f claimsFile
	if err := json.Unmarshal(data, &f); err != nil {
		repaired, rerr := jsonrepair.RepairJSON(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("decode claims: %w", err)
		}
		f = claimsFile{}
		if err := json.Unmarshal([]byte(repaired), &f); err != nil {
			return nil, fmt.Errorf("decode repaired claims: %w", err)
		}
	}
	if len(f.Claims) == 0 {
		return nil, ErrNoClaims
	}

	for i := range f.Claims {
		if f.Claims[i].ClaimID == "" {
			f.Claims[i].ClaimID = uuid.NewSHA1(claimIDSpace, fmt.Appendf(nil, "%s#%d", key, i)).String()
		}
	}
	return f.Claims, nil
}

// ShiftClaims returns copies of claims with period and comparison period
// moved by delta years. The input is not modified.
func ShiftClaims(claims []model.Claim, delta int) []model.Claim {
	if delta == 0 {
		return claims
	}
	out := make([]model.Claim, len(claims))
	for i, c := range claims {
		c.Period = period.ShiftLabel(c.Period, delta)
		c.ComparisonPeriod = period.ShiftLabel(c.ComparisonPeriod, delta)
		out[i] = c
	}
	return out
}
