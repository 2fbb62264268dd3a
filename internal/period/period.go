// Package period parses fiscal period labels and resolves comparison baselines.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Key identifies a fiscal period. Quarter 0 denotes the full fiscal year.
type Key struct {
	Year    int
	Quarter int
}

// FullYear reports whether k is a full fiscal year.
func (k Key) FullYear() bool {
	return k.Quarter == 0
}

// Valid reports whether k is a full year or a quarter 1..4.
func (k Key) Valid() bool {
	return k.Year > 0 && k.Quarter >= 0 && k.Quarter <= 4
}

// String renders the canonical label: "Q3 2024" or "FY 2024".
func (k Key) String() string {
	if k.FullYear() {
		return fmt.Sprintf("FY %d", k.Year)
	}
	return fmt.Sprintf("Q%d %d", k.Quarter, k.Year)
}

// Previous returns the preceding quarter, wrapping Q1 to Q4 of the prior year.
func (k Key) Previous() Key {
	if k.Quarter <= 1 {
		return Key{Year: k.Year - 1, Quarter: 4}
	}
	return Key{Year: k.Year, Quarter: k.Quarter - 1}
}

// PriorYear returns the same quarter (or full year) one year earlier.
func (k Key) PriorYear() Key {
	return Key{Year: k.Year - 1, Quarter: k.Quarter}
}

// Shift moves k by delta years.
func (k Key) Shift(delta int) Key {
	return Key{Year: k.Year + delta, Quarter: k.Quarter}
}

var (
	quarterFirst = regexp.MustCompile(`^Q(\d)\s*(?:FY)?(\d{4})`)      // Q3 2024, Q3 FY2024
	numberFirst  = regexp.MustCompile(`^(\d)Q\s*(?:FY)?(\d{4})`)      // 3Q 2024, 3Q2024
	shortYear    = regexp.MustCompile(`^(\d)Q(\d{2})$`)               // 3Q24
	fiscalYear   = regexp.MustCompile(`^FY\s*(\d{4})`)                // FY 2024, FY2024
	fiscalWord   = regexp.MustCompile(`^FISCAL\s*(?:YEAR\s*)?(\d{4})`) // FISCAL 2024, FISCAL YEAR 2024
)

// Parse reads a period label. It returns false for anything it does not
// recognize, including quarter numbers outside 1..4.
func Parse(s string) (Key, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Key{}, false
	}

	if m := quarterFirst.FindStringSubmatch(s); m != nil {
		return quarterKey(m[2], m[1])
	}
	if m := numberFirst.FindStringSubmatch(s); m != nil {
		return quarterKey(m[2], m[1])
	}
	if m := shortYear.FindStringSubmatch(s); m != nil {
		yy, _ := strconv.Atoi(m[2])
		return quarterKey(strconv.Itoa(2000+yy), m[1])
	}
	if m := fiscalYear.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return Key{Year: y}, true
	}
	if m := fiscalWord.FindStringSubmatch(s); m != nil {
		y, _ := strconv.Atoi(m[1])
		return Key{Year: y}, true
	}
	return Key{}, false
}

func quarterKey(year, quarter string) (Key, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return Key{}, false
	}
	q, err := strconv.Atoi(quarter)
	if err != nil || q < 1 || q > 4 {
		return Key{}, false
	}
	return Key{Year: y, Quarter: q}, true
}

// ShiftLabel re-renders a period label moved by delta years. Labels that do
// not parse are returned unchanged.
func ShiftLabel(label string, delta int) string {
	if delta == 0 {
		return label
	}
	k, ok := Parse(label)
	if !ok {
		return label
	}
	return k.Shift(delta).String()
}
