package detect

import (
	"regexp"
	"strings"

	"github.com/ppiankov/earningscheck/internal/model"
)

// segmentKeywords lists product, segment and geography names that mark a
// claim as covering part of a company, grouped by where they come from.
var segmentKeywords = map[string][]string{
	"apple": {
		"iphone", "in mac", "mac,", "mac revenue", "ipad", "wearable",
		"services,", "services business", "from services", "to services",
		"products revenue", "apple intelligence",
	},
	"microsoft": {
		"cloud", "azure", "office", "linkedin", "gaming", "windows", "xbox",
		"intelligent cloud", "productivity and business", "more personal computing",
	},
	"alphabet":  {"advertising", "youtube", "google search", "pixel", "google cloud"},
	"amazon":    {"aws", "north america", "third-party", "first-party"},
	"geography": {"international", "subscriptions", "device", "greater china", "europe", "japan", "rest of asia", "americas"},
	"banking":   {"consumer banking", "investment banking", "asset management", "commercial banking"},
	"pharma":    {"pharmaceutical", "medtech", "innovative medicine"},
	"walmart":   {"sam's club", "walmart u.s.", "walmart international"},
	"tesla":     {"automotive", "energy generation", "energy storage"},
	"nvidia":    {"data center", "professional visualization", "compute & networking"},
	"meta":      {"reality labs", "family of apps"},
}

// SegmentMatch is a keyword hit in a quote.
type SegmentMatch struct {
	Keyword string
	Group   string
}

type compiledKeyword struct {
	pattern *regexp.Regexp
	match   SegmentMatch
}

// SegmentClassifier decides whether a claim covers a part of the company
type SegmentClassifier struct {
	keywords []*compiledKeyword
}

// NewSegmentClassifier compiles the keyword table. Keywords match on word
// boundaries so that "research" does not hit "search" and "macro" does not
// hit "mac".
func NewSegmentClassifier() *SegmentClassifier {
	c := &SegmentClassifier{}
	for _, group := range groupOrder {
		for _, kw := range segmentKeywords[group] {
			c.keywords = append(c.keywords, &compiledKeyword{
				pattern: keywordPattern(kw),
				match:   SegmentMatch{Keyword: kw, Group: group},
			})
		}
	}
	return c
}

// keywordPattern matches kw with no letter or digit on either side; spaces
// inside kw match any run of whitespace.
func keywordPattern(kw string) *regexp.Regexp {
	parts := strings.Fields(kw)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9])` + strings.Join(parts, `\s+`) + `(?:$|[^a-z0-9])`)
}

// Match returns the first segment keyword found in quote.
func (c *SegmentClassifier) Match(quote string) (SegmentMatch, bool) {
	q := strings.ToLower(quote)
	for _, ck := range c.keywords {
		if ck.pattern.MatchString(q) {
			return ck.match, true
		}
	}
	return SegmentMatch{}, false
}

// Classify reports whether the claim is about a segment, product or
// geography and returns a label for it. An explicit non-total metric
// context wins; otherwise the quote is searched for segment keywords.
func (c *SegmentClassifier) Classify(claim model.Claim) (string, bool) {
	if !claim.IsTotal() {
		return strings.TrimSpace(claim.MetricContext), true
	}
	if _, ok := c.Match(claim.QuoteText); ok {
		return "segment", true
	}
	return "", false
}

// Keywords returns the number of compiled keywords.
func (c *SegmentClassifier) Keywords() int {
	return len(c.keywords)
}

// Groups are compiled in this order so matches are deterministic.
var groupOrder = []string{
	"apple", "microsoft", "alphabet", "amazon", "geography", "banking",
	"pharma", "walmart", "tesla", "nvidia", "meta",
}
