package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "ice cube", Fold("ICE CUBE"))
	assert.Equal(t, "strasse", Fold("Straße"))
}

func TestCleanOCR(t *testing.T) {
	in := "ICE   CUBE\x0c\nＦＲＩＤＡＹ  ＪＵＮＥ\n\n\n  doors at 8  "
	got := CleanOCR(in)

	assert.Equal(t, "ICE CUBE\nFRIDAY JUNE\ndoors at 8", got)
}
