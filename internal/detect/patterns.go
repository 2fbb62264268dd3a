// Package detect recognizes claim phrasing that changes how, or whether, a
// claim can be checked against reported figures. All patterns are compiled
// once at package init.
package detect

import (
	"regexp"
	"strings"
)

var (
	multiPeriod = regexp.MustCompile(`(?i)(trailing\s+(twelve|12)[- ]month|\bttm\b|last\s+12\s+months|past\s+year` +
		`|first\s+half|first\s+nine\s+months|year[- ]to[- ]date|\bytd\b|through\s+the\s+first\s+half)`)

	ttmWindow     = regexp.MustCompile(`(?i)(trailing\s+(twelve|12)|\bttm\b|last\s+12\s+months|past\s+year)`)
	firstHalf     = regexp.MustCompile(`(?i)first\s+half`)
	firstNine     = regexp.MustCompile(`(?i)first\s+nine\s+months`)
	yearToDate    = regexp.MustCompile(`(?i)(year[- ]to[- ]date|\bytd\b)`)
	financeLease  = regexp.MustCompile(`(?i)(including.*?financ(e|ed)\s+leases?|plus.*?financ(e|ed)\s+leases?|financ(e|ed)\s+lease)`)
	totalExpenses = regexp.MustCompile(`(?i)(total\s+(costs?\s+and\s+)?expenses|costs?\s+and\s+expenses)`)

	bpsVerbFirst = regexp.MustCompile(`(?i)(expand(ed)?|contract(ed)?|improv(ed)?|declin(ed)?|increas(ed)?|decreas(ed)?|deleverag(e|ed|ing))` +
		`\s+\d+\s*basis\s*points?`)
	bpsNounLast = regexp.MustCompile(`(?i)\d+\s*basis\s*points?\s*(of\s+)?(expansion|contraction|improvement|decline|deleverag(e|ed|ing))`)

	negativeDirection = regexp.MustCompile(`(?i)\b(down|declin\w*|decreas\w*|contraction|contracted)\b`)
	positiveDirection = regexp.MustCompile(`(?i)\b(up|increas\w*|expansion|expanded|improvement|improved)\b`)
	yoyPhrase         = regexp.MustCompile(`(?i)(year\s+over\s+year|\byoy\b|versus\s+last\s+year|from\s+a\s+year\s+ago)`)
	sequentialPhrase  = regexp.MustCompile(`(?i)(sequential|\bqoq\b|quarter\s+over\s+quarter|versus\s+the\s+prior\s+quarter)`)
	monthQuarter      = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+quarter\b`)
)

// nonGAAPDisclosure are words that tell the listener a figure is adjusted
var nonGAAPDisclosure = []string{"adjusted", "non-gaap", "non gaap", "excluding", "pro forma"}

// bankNetRevenue marks the net-of-interest revenue banks quote on calls
var bankNetRevenue = []string{"net revenue", "managed revenue", "net interest"}

// MultiPeriod reports whether the quote describes a figure spanning several
// quarters (TTM, year-to-date, first half, first nine months).
func MultiPeriod(quote string) bool {
	return multiPeriod.MatchString(quote)
}

// FinanceLease reports whether a CapEx quote includes finance leases.
func FinanceLease(quote string) bool {
	return financeLease.MatchString(quote)
}

// TotalExpenses reports whether the quote names total costs and expenses.
func TotalExpenses(quote string) bool {
	return totalExpenses.MatchString(quote)
}

// BPSChange reports whether the quote describes a margin moving by a number
// of basis points.
func BPSChange(quote string) bool {
	return bpsVerbFirst.MatchString(quote) || bpsNounLast.MatchString(quote)
}

// SignedBPS applies the direction stated in the quote to a claimed bps
// change. Without direction words the claimed sign is kept.
func SignedBPS(claimed float64, quote string) float64 {
	mag := claimed
	if mag < 0 {
		mag = -mag
	}
	switch {
	case negativeDirection.MatchString(quote):
		return -mag
	case positiveDirection.MatchString(quote):
		return mag
	default:
		return claimed
	}
}

// YearOverYear reports whether the quote frames a change against last year.
func YearOverYear(quote string) bool {
	return yoyPhrase.MatchString(quote)
}

// Sequential reports whether the quote frames a change against the prior quarter.
func Sequential(quote string) bool {
	return sequentialPhrase.MatchString(quote)
}

// MonthQuarter reports whether the quote names a quarter by its closing
// month, e.g. "the December quarter".
func MonthQuarter(quote string) bool {
	return monthQuarter.MatchString(quote)
}

// NonGAAPDisclosed reports whether the quote signals an adjusted figure.
func NonGAAPDisclosed(quote string) bool {
	return containsAny(strings.ToLower(quote), nonGAAPDisclosure)
}

// BankNetRevenue reports whether the quote uses bank net-revenue language.
func BankNetRevenue(quote string) bool {
	return containsAny(strings.ToLower(quote), bankNetRevenue)
}

// SGA reports whether the quote talks about SG&A rather than all operating
// expenses.
func SGA(quote string) bool {
	return strings.Contains(strings.ToLower(quote), "sg&a")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
