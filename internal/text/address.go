package text

import (
	"regexp"
	"strings"
)

// AddressMatch is one street-address shape found in free text.
type AddressMatch struct {
	Value    string
	Pos      int
	Score    int
	HasComma bool
}

// streetSuffixes are the thoroughfare designators the address matcher
// recognizes. Kept short deliberately: longer lists pull in too many
// false positives from menu text and driving directions.
const streetSuffixes = `St|Street|Ave|Avenue|Blvd|Boulevard|Rd|Road|Dr|Drive|Ln|Lane|Way|Pl|Place|Ct|Court|Pkwy|Parkway|Hwy|Highway`

var (
	fullAddressRE = regexp.MustCompile(
		`\b(\d{1,6}\s+[A-Za-z0-9][A-Za-z0-9 .'-]{1,40}?\s(?:` + streetSuffixes + `)\.?)` +
			`(?:,?\s+([A-Z][A-Za-z .'-]{1,30}?))?` +
			`(?:,?\s+([A-Z]{2}))?` +
			`(?:\s+(\d{5}(?:-\d{4})?))?\b`)
)

// FindAddresses scans text for street, city, state zip shapes. The score
// grows with each address component present.
func FindAddresses(s string) []AddressMatch {
	var out []AddressMatch

	for _, loc := range fullAddressRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		street, city, state, zip := m[1], m[2], m[3], m[4]
		if street == "" {
			continue
		}
		if state != "" && !IsStateAbbr(state) {
			state = ""
		}

		score := 55
		parts := []string{strings.TrimSpace(street)}
		if city != "" {
			score += 10
			parts = append(parts, strings.TrimSpace(city))
		}
		if state != "" {
			score += 10
			if zip != "" {
				score += 10
				parts = append(parts, state+" "+zip)
			} else {
				parts = append(parts, state)
			}
		}

		value := strings.Join(parts, ", ")
		out = append(out, AddressMatch{
			Value:    value,
			Pos:      loc[0],
			Score:    score,
			HasComma: strings.Contains(value, ","),
		})
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Pos > out[j].Pos; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

var trailingLocaleRE = regexp.MustCompile(
	`^(.*\b(?:` + streetSuffixes + `)\.?)\s+([A-Z][A-Za-z .'-]{1,30}?\s+[A-Z]{2}(?:\s+\d{5}(?:-\d{4})?)?)$`)

// NormalizeAddress collapses whitespace and, when the address lacks the
// comma-separated street, city, state shape, attempts to reformat it by
// splitting after the street suffix. The second return reports whether
// the result conforms to the comma rule; non-conforming addresses are
// returned unchanged for the caller to downgrade, never dropped here.
func NormalizeAddress(addr string) (string, bool) {
	addr = strings.Join(strings.Fields(addr), " ")
	addr = strings.Trim(addr, " ,")
	if addr == "" {
		return "", false
	}
	if strings.Contains(addr, ",") {
		return addr, true
	}

	if m := trailingLocaleRE.FindStringSubmatch(addr); m != nil {
		locale := m[2]
		// Separate trailing "City ST" / "City ST zip" with commas.
		fields := strings.Fields(locale)
		for i, f := range fields {
			if len(f) == 2 && IsStateAbbr(f) && i > 0 {
				city := strings.Join(fields[:i], " ")
				rest := strings.Join(fields[i:], " ")
				return m[1] + ", " + city + ", " + rest, true
			}
		}
		return m[1] + ", " + locale, true
	}

	return addr, false
}
