package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"

	"github.com/ppiankov/earningscheck/internal/model"
)

// Renderer writes transcript results to disk. It is safe for concurrent use.
type Renderer struct {
	lang language.Tag
}

// NewRenderer creates a renderer
func NewRenderer() *Renderer {
	return &Renderer{lang: language.English}
}

// VerdictPaths returns the JSON and Markdown output paths for key under dir.
func VerdictPaths(dir, key string) (jsonPath, mdPath string) {
	base := filepath.Join(dir, key+"_verdicts")
	return base + ".json", base + ".md"
}

// RenderJSON writes the result as indented JSON.
func (r *Renderer) RenderJSON(res *model.TranscriptResult, path string) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return writeFileAtomic(path, append(data, '\n'))
}

// RenderMarkdown writes a human-readable report of the result.
func (r *Renderer) RenderMarkdown(res *model.TranscriptResult, path string) error {
	var b bytes.Buffer
	r.WriteMarkdown(&b, res)
	return writeFileAtomic(path, b.Bytes())
}

// WriteMarkdown renders the report to w.
func (r *Renderer) WriteMarkdown(w io.Writer, res *model.TranscriptResult) {
	fmt.Fprintf(w, "# %s Q%d %d Claim Verification\n\n", res.Ticker, res.Quarter, res.Year)
	fmt.Fprintf(w, "Verified at %s.\n\n", res.VerifiedAt)

	fmt.Fprintf(w, "| Verdict | Claims |\n|---|---:|\n")
	for _, l := range model.Labels {
		fmt.Fprintf(w, "| %s | %d |\n", l.Title(r.lang), res.Summary.Count(l))
	}
	fmt.Fprintf(w, "| **Total** | **%d** |\n\n", res.Summary.Total)

	fmt.Fprintf(w, "## Claims\n")
	for i, it := range res.ClaimsWithVerdicts {
		c, v := it.Claim, it.Verification
		fmt.Fprintf(w, "\n### %d. %s (%s, %s)\n\n", i+1, c.Metric, c.Kind, c.Period)
		if c.QuoteText != "" {
			fmt.Fprintf(w, "> %s\n\n", strings.Join(strings.Fields(c.QuoteText), " "))
		}
		fmt.Fprintf(w, "- **Verdict:** %s\n", v.Label.Title(r.lang))
		if c.Speaker != "" {
			fmt.Fprintf(w, "- **Speaker:** %s\n", c.Speaker)
		}
		if v.ComputationDetail != "" {
			fmt.Fprintf(w, "- **Computation:** %s\n", v.ComputationDetail)
		}
		if v.EvidenceSource != "" {
			fmt.Fprintf(w, "- **Source:** %s\n", v.EvidenceSource)
		}
		if len(v.Flags) > 0 {
			fmt.Fprintf(w, "- **Flags:** %s\n", strings.Join(v.Flags, ", "))
		}
		if len(v.MisleadingFlags) > 0 {
			fmt.Fprintf(w, "- **Misleading:** %s\n", strings.Join(v.MisleadingFlags, ", "))
		}
		fmt.Fprintf(w, "\n%s\n", v.Explanation)
	}
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
