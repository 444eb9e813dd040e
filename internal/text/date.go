// Package text provides the shared matchers and normalizers for visible
// page text and OCR output: dates, times, prices and street addresses.
// The pattern and heuristic layers, and the flyer OCR layer, all parse
// through this package so recognized image text gets the same treatment
// as body text.
package text

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateMatch is one date found in free text.
type DateMatch struct {
	ISO   string // 2006-01-02
	Time  string // 15:04:05 when the match carried a time, else ""
	Pos   int    // byte offset into the searched text
	Score int    // pattern specificity, 0-100
}

var (
	isoDateTimeRE = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})[T ](\d{2}):(\d{2})(?::(\d{2}))?(Z|[+-]\d{2}:?\d{2})?`)
	isoDateRE     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	usDateRE      = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	monthDateRE   = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t|tember)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?`)
)

var monthNumbers = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// FindDates scans text with the ordered date pattern families, most
// specific first. Matches are returned in document order; overlapping
// hits keep the more specific family's score.
func FindDates(s string) []DateMatch {
	byPos := make(map[int]DateMatch)

	for _, loc := range isoDateTimeRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validYMD(y, mo, d) {
			continue
		}
		score := 85
		if m[7] != "" {
			score = 90 // timezone present
		}
		sec := m[6]
		if sec == "" {
			sec = "00"
		}
		keep(byPos, DateMatch{
			ISO:   fmt.Sprintf("%04d-%02d-%02d", y, mo, d),
			Time:  fmt.Sprintf("%s:%s:%s", m[4], m[5], sec),
			Pos:   loc[0],
			Score: score,
		})
	}

	for _, loc := range isoDateRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		y, mo, d := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validYMD(y, mo, d) {
			continue
		}
		keep(byPos, DateMatch{ISO: fmt.Sprintf("%04d-%02d-%02d", y, mo, d), Pos: loc[0], Score: 75})
	}

	for _, loc := range usDateRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		mo, d, y := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validYMD(y, mo, d) {
			continue
		}
		keep(byPos, DateMatch{ISO: fmt.Sprintf("%04d-%02d-%02d", y, mo, d), Pos: loc[0], Score: 65})
	}

	for _, loc := range monthDateRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		mo := monthNumbers[strings.ToLower(m[1])[:3]]
		d := atoi(m[2])
		score := 70
		y := atoi(m[3])
		if m[3] == "" {
			// Year omitted: assume the current year. Flyers rarely
			// advertise past events, so this is wrong at most around
			// year boundaries.
			y = time.Now().UTC().Year()
			score = 50
		}
		if !validYMD(y, mo, d) {
			continue
		}
		keep(byPos, DateMatch{ISO: fmt.Sprintf("%04d-%02d-%02d", y, mo, d), Pos: loc[0], Score: score})
	}

	return sortedByPos(byPos)
}

// ParseDate parses a single date or datetime value (a structured-data
// startDate, a <time datetime> attribute, or already-matched text) into
// ISO date and optional time components.
func ParseDate(s string) (iso string, clock string, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", false
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan 2 2006",
		"2 January 2006",
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		iso = t.Format("2006-01-02")
		if strings.ContainsAny(layout, ":") {
			clock = t.Format("15:04:05")
		}
		return iso, clock, true
	}

	// Fall back to the free-text matchers for messier shapes.
	if matches := FindDates(s); len(matches) > 0 {
		return matches[0].ISO, matches[0].Time, true
	}
	return "", "", false
}

func keep(byPos map[int]DateMatch, m DateMatch) {
	if existing, ok := byPos[m.Pos]; ok && existing.Score >= m.Score {
		return
	}
	byPos[m.Pos] = m
}

func sortedByPos(byPos map[int]DateMatch) []DateMatch {
	out := make([]DateMatch, 0, len(byPos))
	for _, m := range byPos {
		out = append(out, m)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Pos > out[j].Pos; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func submatches(s string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := 0; i < len(loc); i += 2 {
		if loc[i] < 0 {
			out[i/2] = ""
			continue
		}
		out[i/2] = s[loc[i]:loc[i+1]]
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func validYMD(y, m, d int) bool {
	if y < 1900 || y > 2100 || m < 1 || m > 12 || d < 1 {
		return false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Day() == d && int(t.Month()) == m
}
