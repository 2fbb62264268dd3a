package facts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/earningscheck/internal/period"
)

// ErrNoFacts is returned when a facts file holds no usable periods
var ErrNoFacts = errors.New("no financial facts")

// File is the on-disk shape of a <TICKER>_facts.json file written by ingestion.
type File struct {
	Ticker        string       `json:"ticker"`
	DefaultSource string       `json:"default_source,omitempty"`
	Periods       []PeriodFile `json:"periods"`
}

// PeriodFile holds one fiscal quarter's figures.
type PeriodFile struct {
	FiscalYear      int                `json:"fiscal_year"`
	FiscalQuarter   int                `json:"fiscal_quarter"`
	CalendarYear    int                `json:"calendar_year,omitempty"`
	CalendarQuarter int                `json:"calendar_quarter,omitempty"`
	Metrics         map[string]float64 `json:"metrics"`
	Sources         map[string]string  `json:"sources,omitempty"` // metric -> provider
}

// Build turns a decoded file into a store.
func (f *File) Build() (*Store, error) {
	s := NewStore(strings.ToUpper(f.Ticker))
	for _, p := range f.Periods {
		fiscal := period.Key{Year: p.FiscalYear, Quarter: p.FiscalQuarter}
		if !fiscal.Valid() || fiscal.FullYear() {
			return nil, fmt.Errorf("invalid fiscal period %d/%d", p.FiscalYear, p.FiscalQuarter)
		}
		for field, v := range p.Metrics {
			src := p.Sources[field]
			if src == "" {
				src = f.DefaultSource
			}
			s.Set(fiscal, field, v, src)
		}
		if p.CalendarYear != 0 && p.CalendarQuarter != 0 {
			cal := period.Key{Year: p.CalendarYear, Quarter: p.CalendarQuarter}
			if cal != fiscal {
				s.Alias(cal, fiscal)
			}
		}
	}
	if s.Periods() == 0 {
		return nil, ErrNoFacts
	}
	return s, nil
}

// Parse decodes a facts document.
func Parse(data []byte) (*Store, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}
	return f.Build()
}

// Load reads and parses a facts file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read facts: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return s, nil
}

// Loader memoizes stores so that the quarters of one ticker share a single
// parsed copy. Entries are keyed by path and modification time.
type Loader struct {
	cache *gocache.Cache
}

// NewLoader creates a loader that keeps stores for ttl.
func NewLoader(ttl time.Duration) *Loader {
	return &Loader{cache: gocache.New(ttl, 2*ttl)}
}

// Load returns the store for path, parsing it at most once per version.
func (l *Loader) Load(path string) (*Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat facts: %w", err)
	}
	key := fmt.Sprintf("%s@%d:%d", path, info.ModTime().UnixNano(), info.Size())
	if v, found := l.cache.Get(key); found {
		return v.(*Store), nil
	}

	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	l.cache.SetDefault(key, s)
	return s, nil
}

// PathFor returns the conventional facts path for ticker under dir.
func PathFor(dir, ticker string) string {
	return filepath.Join(dir, strings.ToUpper(ticker)+"_facts.json")
}
