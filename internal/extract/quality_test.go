package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// goodText is long enough, wordy enough, and alphabetic enough to pass
// every criterion on a single page.
var goodText = strings.Repeat("senior software engineer with production experience ", 10)

func TestScoreAllCriteriaMet(t *testing.T) {
	q := Score(goodText, 1)
	assert.Equal(t, 1.0, q.Score)
	assert.True(t, q.Sufficient)
	assert.GreaterOrEqual(t, q.CharCount, MinChars)
	assert.GreaterOrEqual(t, q.WordCount, MinWords)
}

func TestScoreEmptyText(t *testing.T) {
	q := Score("", 1)
	assert.Equal(t, 0.0, q.Score)
	assert.False(t, q.Sufficient)
	assert.Zero(t, q.CharCount)
	assert.Zero(t, q.WordCount)
}

func TestScoreZeroPages(t *testing.T) {
	// A zero-page document scores zero regardless of text content.
	q := Score(goodText, 0)
	assert.Equal(t, 0.0, q.Score)
	assert.False(t, q.Sufficient)
}

func TestScoreGarbledTextFailsAlphaRatio(t *testing.T) {
	garbled := strings.Repeat("��� 0101 #### ", 30)
	q := Score(garbled, 1)
	assert.Less(t, q.AlphaRatio, MinAlphaRatio)
	assert.False(t, q.Sufficient)
	// Length, word count, and density still pass; only the ratio is lost.
	assert.Equal(t, 0.75, q.Score)
}

func TestScoreSparseTextFailsDensity(t *testing.T) {
	// Plenty of text overall, but spread over far too many pages.
	q := Score(goodText, 100)
	assert.Less(t, q.CharsPerPage, MinCharsPerPage)
	assert.False(t, q.Sufficient)
	assert.Equal(t, 0.75, q.Score)
}

func TestScoreShortTextPartialScore(t *testing.T) {
	q := Score("short", 1)
	assert.Less(t, q.CharCount, MinChars)
	assert.Less(t, q.WordCount, MinWords)
	assert.False(t, q.Sufficient)
	// Alpha ratio still passes for clean short text.
	assert.Equal(t, 0.25, q.Score)
}

func TestScoreDeterministic(t *testing.T) {
	a := Score(goodText, 3)
	b := Score(goodText, 3)
	assert.Equal(t, a, b)
}
