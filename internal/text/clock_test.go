package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTimes(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantValue string
		wantScore int
	}{
		{"12h with minutes", "show starts 7:30 PM", "19:30:00", 65},
		{"12h bare hour", "music from 9pm", "21:00:00", 55},
		{"12h dotted meridiem", "brunch at 11 a.m.", "11:00:00", 55},
		{"midnight", "open until 12 AM", "00:00:00", 55},
		{"noon", "gates at 12 PM", "12:00:00", 55},
		{"24h", "set begins 21:30", "21:30:00", 60},
		{"doors at with meridiem", "Doors at 7 PM", "19:00:00", 70},
		{"doors open at bare evening hour", "doors open at 8", "20:00:00", 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FindTimes(tt.input)
			require.NotEmpty(t, matches)
			assert.Equal(t, tt.wantValue, matches[0].Value)
			assert.Equal(t, tt.wantScore, matches[0].Score)
		})
	}
}

func TestFindTimesNoMatch(t *testing.T) {
	assert.Empty(t, FindTimes("no clock anywhere here"))
	assert.Empty(t, FindTimes("13 pm is not a time"))
}

func TestFindTimesDocumentOrder(t *testing.T) {
	matches := FindTimes("7:00 PM to 11:00 PM")
	require.Len(t, matches, 2)
	assert.Equal(t, "19:00:00", matches[0].Value)
	assert.Equal(t, "23:00:00", matches[1].Value)
}
