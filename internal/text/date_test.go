package text

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDates(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantISO  string
		wantTime string
		minScore int
	}{
		{
			name:     "iso datetime with timezone",
			input:    "starts 2026-03-14T19:30:00-05:00 sharp",
			wantISO:  "2026-03-14",
			wantTime: "19:30:00",
			minScore: 90,
		},
		{
			name:     "iso datetime without timezone",
			input:    "doors 2026-03-14T19:30",
			wantISO:  "2026-03-14",
			wantTime: "19:30:00",
			minScore: 85,
		},
		{
			name:     "bare iso date",
			input:    "save the date: 2026-07-04",
			wantISO:  "2026-07-04",
			minScore: 75,
		},
		{
			name:     "us slash date",
			input:    "on 3/14/2026 at the hall",
			wantISO:  "2026-03-14",
			minScore: 65,
		},
		{
			name:     "month name with year",
			input:    "Saturday, March 14, 2026",
			wantISO:  "2026-03-14",
			minScore: 70,
		},
		{
			name:     "abbreviated month with ordinal",
			input:    "Mar 14th, 2026 only",
			wantISO:  "2026-03-14",
			minScore: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := FindDates(tt.input)
			require.NotEmpty(t, matches)
			assert.Equal(t, tt.wantISO, matches[0].ISO)
			if tt.wantTime != "" {
				assert.Equal(t, tt.wantTime, matches[0].Time)
			}
			assert.GreaterOrEqual(t, matches[0].Score, tt.minScore)
		})
	}
}

func TestFindDatesYearlessAssumesCurrentYear(t *testing.T) {
	matches := FindDates("FRIDAY JUNE 14 DOORS 8PM")
	require.NotEmpty(t, matches)

	want := fmt.Sprintf("%04d-06-14", time.Now().UTC().Year())
	assert.Equal(t, want, matches[0].ISO)
	assert.Equal(t, 50, matches[0].Score, "yearless month dates score lower")
}

func TestFindDatesRejectsImpossible(t *testing.T) {
	assert.Empty(t, FindDates("2026-13-01 is not a month"))
	assert.Empty(t, FindDates("2026-02-30 does not exist"))
	assert.Empty(t, FindDates("order #1234-56-78"))
}

func TestFindDatesOverlapKeepsMoreSpecific(t *testing.T) {
	// The iso date family also matches the date portion of a datetime at
	// the same offset; the datetime score must win.
	matches := FindDates("2026-03-14T19:30:00Z")
	require.Len(t, matches, 1)
	assert.Equal(t, 90, matches[0].Score)
	assert.Equal(t, "19:30:00", matches[0].Time)
}

func TestFindDatesDocumentOrder(t *testing.T) {
	matches := FindDates("from 2026-05-01 through 2026-05-03")
	require.Len(t, matches, 2)
	assert.Equal(t, "2026-05-01", matches[0].ISO)
	assert.Equal(t, "2026-05-03", matches[1].ISO)
	assert.Less(t, matches[0].Pos, matches[1].Pos)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input     string
		wantISO   string
		wantClock string
		wantOK    bool
	}{
		{"2026-03-14T19:30:00-05:00", "2026-03-14", "19:30:00", true},
		{"2026-03-14T19:30:00", "2026-03-14", "19:30:00", true},
		{"2026-03-14", "2026-03-14", "", true},
		{"03/14/2026", "2026-03-14", "", true},
		{"March 14, 2026", "2026-03-14", "", true},
		{"Jan 2, 2027", "2027-01-02", "", true},
		{"  2026-03-14  ", "2026-03-14", "", true},
		{"", "", "", false},
		{"next Tuesday", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			iso, clock, ok := ParseDate(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantISO, iso)
			assert.Equal(t, tt.wantClock, clock)
		})
	}
}
