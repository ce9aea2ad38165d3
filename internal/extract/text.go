package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
)

// extractText passes plain-text uploads through with minimal normalization.
func extractText(content []byte) (ExtractionResult, error) {
	if !utf8.Valid(content) {
		return ExtractionResult{}, common.NewAppError("TEXT_CORRUPT",
			"plain text upload is not valid UTF-8", common.ErrCorruptDocument)
	}
	text := strings.ReplaceAll(string(content), "\r\n", "\n")
	return ExtractionResult{
		Text:   text,
		Pages:  1,
		Method: constants.MethodAlgorithmic,
	}, nil
}
