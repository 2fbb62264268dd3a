package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// TranscriptRef names one transcript's claims file
type TranscriptRef struct {
	Ticker     string
	Year       int
	Quarter    int
	ClaimsPath string
}

// Key returns the transcript key used in file names, e.g. "AAPL_Q1_2025".
func (r TranscriptRef) Key() string {
	return fmt.Sprintf("%s_Q%d_%d", r.Ticker, r.Quarter, r.Year)
}

var claimsFileRe = regexp.MustCompile(`^([A-Za-z0-9.\-]+)_Q([1-4])_(\d{4})_claims\.json$`)

// ParseClaimsFilename extracts the transcript reference from a claims file
// name. The path is kept as given.
func ParseClaimsFilename(path string) (TranscriptRef, bool) {
	m := claimsFileRe.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return TranscriptRef{}, false
	}
	q, _ := strconv.Atoi(m[2])
	y, _ := strconv.Atoi(m[3])
	return TranscriptRef{
		Ticker:     strings.ToUpper(m[1]),
		Year:       y,
		Quarter:    q,
		ClaimsPath: path,
	}, true
}

// Discover lists the claims files in dir, ordered by ticker then period.
// Files that do not follow the naming convention are skipped.
func Discover(dir string) ([]TranscriptRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read claims dir: %w", err)
	}

	var refs []TranscriptRef
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ref, ok := ParseClaimsFilename(filepath.Join(dir, e.Name())); ok {
			refs = append(refs, ref)
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.Ticker != b.Ticker {
			return a.Ticker < b.Ticker
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		return a.Quarter < b.Quarter
	})
	return refs, nil
}

// Filter keeps the refs whose ticker is in tickers. An empty list keeps all.
func Filter(refs []TranscriptRef, tickers ...string) []TranscriptRef {
	if len(tickers) == 0 {
		return refs
	}
	want := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		want[strings.ToUpper(t)] = true
	}
	var out []TranscriptRef
	for _, r := range refs {
		if want[r.Ticker] {
			out = append(out, r)
		}
	}
	return out
}
