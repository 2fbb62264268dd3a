// Package facts is a read-only view over reported financial figures keyed by
// fiscal period.
package facts

import (
	"math/big"

	"github.com/ppiankov/earningscheck/internal/model"
	"github.com/ppiankov/earningscheck/internal/period"
)

// DefaultSource is the provenance tag used when a fact carries none
const DefaultSource = "fmp"

// AliasSuffix is appended to the provenance of values found through the
// calendar-quarter alias table.
const AliasSuffix = "_calendar_alias"

type sourceKey struct {
	period period.Key
	field  string
}

// Store maps fiscal periods to metric values. It is populated once by a
// loader and is safe for concurrent reads afterwards.
type Store struct {
	ticker  string
	values  map[period.Key]map[string]float64
	sources map[sourceKey]string
	aliases map[period.Key]period.Key // calendar -> fiscal
}

// NewStore creates an empty store.
func NewStore(ticker string) *Store {
	return &Store{
		ticker:  ticker,
		values:  make(map[period.Key]map[string]float64),
		sources: make(map[sourceKey]string),
		aliases: make(map[period.Key]period.Key),
	}
}

// Ticker returns the company the store describes.
func (s *Store) Ticker() string {
	return s.ticker
}

// Set records a value. An empty source leaves the default tag.
func (s *Store) Set(k period.Key, field string, value float64, source string) {
	m, ok := s.values[k]
	if !ok {
		m = make(map[string]float64)
		s.values[k] = m
	}
	m[field] = value
	if source != "" {
		s.sources[sourceKey{k, field}] = source
	}
}

// Alias maps a calendar quarter onto the fiscal quarter that reports it.
func (s *Store) Alias(calendar, fiscal period.Key) {
	s.aliases[calendar] = fiscal
}

// Periods returns the number of periods with at least one value.
func (s *Store) Periods() int {
	return len(s.values)
}

// Value is a looked-up fact and where it came from.
type Value struct {
	Value  float64
	Source string
	// Period is the fiscal period the value was read from, which differs
	// from the requested one after an alias hop.
	Period period.Key
}

func (s *Store) source(k period.Key, field string) string {
	if src, ok := s.sources[sourceKey{k, field}]; ok {
		return src
	}
	return DefaultSource
}

// Get reads a fiscal value directly, without alias fallback or provenance.
func (s *Store) Get(k period.Key, field string) (float64, bool) {
	v, ok := s.values[k][field]
	return v, ok
}

// Lookup returns field for period k. When allowAlias is set and k has no
// value, k is treated as a calendar quarter and resolved through the alias
// table; the source tag is then suffixed with AliasSuffix.
func (s *Store) Lookup(field string, k period.Key, allowAlias bool) (Value, bool) {
	if v, ok := s.values[k][field]; ok {
		return Value{Value: v, Source: s.source(k, field), Period: k}, true
	}
	if !allowAlias {
		return Value{}, false
	}
	fiscal, ok := s.aliases[k]
	if !ok {
		return Value{}, false
	}
	if v, ok := s.values[fiscal][field]; ok {
		return Value{Value: v, Source: s.source(fiscal, field) + AliasSuffix, Period: fiscal}, true
	}
	return Value{}, false
}

// Aggregate is the sum of one field over several quarters.
type Aggregate struct {
	Total   float64
	Sources []string
	Facts   []model.FinancialFact
	Missing []string // Labels of absent quarters, in request order
}

// Complete reports whether every requested quarter was present.
func (a Aggregate) Complete() bool {
	return len(a.Missing) == 0
}

// Sum adds field over periods. If any quarter is missing the aggregate is
// incomplete and Total is zero; partial sums are never returned.
//
// The total is accumulated exactly and rounded once, so it does not depend
// on the order of periods.
func (s *Store) Sum(field string, periods []period.Key, allowAlias bool) Aggregate {
	var agg Aggregate
	total := new(big.Float).SetPrec(2200)
	for _, k := range periods {
		v, ok := s.Lookup(field, k, allowAlias)
		if !ok {
			agg.Missing = append(agg.Missing, k.String())
			continue
		}
		total.Add(total, new(big.Float).SetFloat64(v.Value))
		agg.Sources = appendUnique(agg.Sources, v.Source)
		agg.Facts = append(agg.Facts, model.FinancialFact{Field: field, Year: k.Year, Quarter: k.Quarter, Value: v.Value})
	}
	if agg.Complete() {
		agg.Total, _ = total.Float64()
	}
	return agg
}

func appendUnique(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
