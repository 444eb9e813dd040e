package text

import (
	"fmt"
	"regexp"
	"strings"
)

// TimeMatch is one clock time found in free text, normalized to 15:04:05.
type TimeMatch struct {
	Value string
	Pos   int
	Score int
}

var (
	twelveHourRE     = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(a\.?m\.?|p\.?m\.?)\b`)
	twentyFourHourRE = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)(?::([0-5]\d))?\b`)
	doorsAtRE        = regexp.MustCompile(`(?i)\bdoors?\s+(?:open\s+)?at\s+(\d{1,2})(?::(\d{2}))?\s*(a\.?m\.?|p\.?m\.?)?`)
)

// FindTimes scans text for 12- and 24-hour clock times. A "doors at"
// phrasing is treated as a start time with a small score boost since it
// is unambiguous on event pages.
func FindTimes(s string) []TimeMatch {
	byPos := make(map[int]TimeMatch)

	for _, loc := range doorsAtRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		v, ok := clock12(m[1], m[2], m[3])
		if !ok {
			continue
		}
		keepTime(byPos, TimeMatch{Value: v, Pos: loc[0], Score: 70})
	}

	for _, loc := range twelveHourRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		v, ok := clock12(m[1], m[2], m[3])
		if !ok {
			continue
		}
		score := 55
		if m[2] != "" {
			score = 65
		}
		keepTime(byPos, TimeMatch{Value: v, Pos: loc[0], Score: score})
	}

	for _, loc := range twentyFourHourRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		sec := m[3]
		if sec == "" {
			sec = "00"
		}
		v := fmt.Sprintf("%02d:%s:%s", atoi(m[1]), m[2], sec)
		keepTime(byPos, TimeMatch{Value: v, Pos: loc[0], Score: 60})
	}

	out := make([]TimeMatch, 0, len(byPos))
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

func clock12(hourStr, minStr, meridiem string) (string, bool) {
	hour := atoi(hourStr)
	if hour < 1 || hour > 12 {
		return "", false
	}
	min := 0
	if minStr != "" {
		min = atoi(minStr)
	}
	switch strings.ToLower(strings.ReplaceAll(meridiem, ".", "")) {
	case "pm":
		if hour != 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "":
		// "doors at 8" with no meridiem: events open in the evening.
		if hour < 12 {
			hour += 12
		}
	}
	return fmt.Sprintf("%02d:%02d:00", hour, min), true
}

func keepTime(byPos map[int]TimeMatch, m TimeMatch) {
	if existing, ok := byPos[m.Pos]; ok && existing.Score >= m.Score {
		return
	}
	byPos[m.Pos] = m
}
