package extract

import (
	"strings"
	"unicode"
)

// Quality thresholds. Each criterion contributes equally to the score; the
// pipeline compares the composite score against its configured threshold.
const (
	// MinChars is the minimum character count for non-trivial text.
	MinChars = 100
	// MinWords is the minimum whitespace-separated token count.
	MinWords = 20
	// MinAlphaRatio is the minimum fraction of non-whitespace runes that
	// must be alphabetic. Garbled text layers fail this check.
	MinAlphaRatio = 0.5
	// MinCharsPerPage guards against documents whose text layer is almost
	// empty relative to their page count.
	MinCharsPerPage = 40.0
)

// Quality captures metrics about extracted text.
type Quality struct {
	Score        float64 `json:"score"` // in [0,1], criteria met / 4
	CharCount    int     `json:"char_count"`
	WordCount    int     `json:"word_count"`
	AlphaRatio   float64 `json:"alpha_ratio"`
	CharsPerPage float64 `json:"chars_per_page"`
	Sufficient   bool    `json:"sufficient"` // all criteria pass
}

// Score computes quality metrics for algorithmically extracted text.
// Pure and deterministic; a zero-page document always scores 0.
func Score(text string, pages int) Quality {
	if pages <= 0 {
		return Quality{}
	}

	charCount := len([]rune(text))
	wordCount := 0
	if strings.TrimSpace(text) != "" {
		wordCount = len(strings.Fields(text))
	}

	nonWS := 0
	alpha := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		nonWS++
		// Replacement and control runes are counted but never alphabetic,
		// so garbage output drags the ratio down.
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	alphaRatio := 0.0
	if nonWS > 0 {
		alphaRatio = float64(alpha) / float64(nonWS)
	}
	charsPerPage := float64(charCount) / float64(pages)

	passesChars := charCount >= MinChars
	passesWords := wordCount >= MinWords
	passesAlpha := alphaRatio >= MinAlphaRatio
	passesDensity := charsPerPage >= MinCharsPerPage

	met := 0
	for _, ok := range []bool{passesChars, passesWords, passesAlpha, passesDensity} {
		if ok {
			met++
		}
	}

	return Quality{
		Score:        float64(met) / 4.0,
		CharCount:    charCount,
		WordCount:    wordCount,
		AlphaRatio:   alphaRatio,
		CharsPerPage: charsPerPage,
		Sufficient:   met == 4,
	}
}
