package text

import (
	"regexp"
	"strconv"
)

// PriceMatch is one admission price signal found in free text.
type PriceMatch struct {
	Amount float64 // 0 when Free
	Free   bool
	Pos    int
	Score  int
}

var (
	currencyRE = regexp.MustCompile(`\$\s?(\d{1,4}(?:\.\d{2})?)\b`)
	freeRE     = regexp.MustCompile(`(?i)\b(free admission|free entry|free event|no cover|free)\b`)
)

// FindPrices scans text for currency amounts and free-admission phrases.
func FindPrices(s string) []PriceMatch {
	var out []PriceMatch

	for _, loc := range currencyRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		out = append(out, PriceMatch{Amount: amount, Free: amount == 0, Pos: loc[0], Score: 60})
	}

	for _, loc := range freeRE.FindAllStringSubmatchIndex(s, -1) {
		m := submatches(s, loc)
		score := 60
		if len(m[1]) <= 4 {
			// Bare "free" is weaker: "free parking", "gluten free".
			score = 45
		}
		out = append(out, PriceMatch{Free: true, Pos: loc[0], Score: score})
	}

	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Pos > out[j].Pos; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
