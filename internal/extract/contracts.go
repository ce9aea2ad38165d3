package extract

import (
	"context"

	"github.com/cvparse/cvparse/constants"
)

// Document is the immutable input to one pipeline run.
type Document struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ExtractionResult is the output of algorithmic text extraction.
type ExtractionResult struct {
	Text    string
	Pages   int
	Method  string // constants.MethodAlgorithmic | constants.MethodNone
	Format  constants.Format
	Quality Quality
}

// TextExtractor is stage 1: document bytes -> text.
type TextExtractor interface {
	Extract(ctx context.Context, doc Document) (ExtractionResult, error)
}
