package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/ppiankov/earningscheck/internal/period"
)

// Transcript page URLs carry the company's fiscal period, which can differ
// from the key a transcript was filed under.
var transcriptURLRe = regexp.MustCompile(`(?i)/[a-z0-9-]+-q([1-4])-(20\d{2})-earnings-call-transcript/?$`)

type transcriptMeta struct {
	SourceURL string `json:"source_url"`
}

// metadataPath returns the transcript metadata file for ref under dir.
func metadataPath(dir string, ref TranscriptRef) string {
	return filepath.Join(dir, ref.Key()+".json")
}

// FiscalPeriod returns the period to verify ref against. It is the period in
// the transcript's source URL when metadata is present and the URL carries
// one, else the period of the ref itself.
func FiscalPeriod(meta []byte, ref TranscriptRef) period.Key {
	own := period.Key{Year: ref.Year, Quarter: ref.Quarter}
	if len(meta) == 0 {
		return own
	}
	var m transcriptMeta
	if err := json.Unmarshal(meta, &m); err != nil {
		return own
	}
	match := transcriptURLRe.FindStringSubmatch(m.SourceURL)
	if match == nil {
		return own
	}
	q, _ := strconv.Atoi(match[1])
	y, _ := strconv.Atoi(match[2])
	return period.Key{Year: y, Quarter: q}
}

// readOptional returns the file content, or nil when the file does not exist.
func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}
