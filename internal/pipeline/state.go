package pipeline

import (
	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/provider"
)

// OCR policy values accepted in RunOptions.OCRPolicy.
const (
	OCRAuto  = "auto"  // recognize only when quality is below threshold
	OCRForce = "force" // always recognize, skip the quality check
	OCRSkip  = "skip"  // never recognize
)

// RunOptions are the per-request knobs. Zero values fall back to the
// process-wide defaults resolved by the caller.
type RunOptions struct {
	OCRPolicy      string           // auto | force | skip
	OCRChain       provider.Chain   // nil = recognition disabled
	ParseChain     provider.Chain   // must be non-empty
	FormatOverride constants.Format // force a specific extractor, "" = detect
}

// step is one named state of the coordinator's machine.
type step int

const (
	stepExtract step = iota
	stepQualityCheck
	stepRecognize
	stepValidateLoop
	stepDone
	stepFailed
)

func (s step) String() string {
	switch s {
	case stepExtract:
		return "extract"
	case stepQualityCheck:
		return "quality_check"
	case stepRecognize:
		return "recognize"
	case stepValidateLoop:
		return "validate_loop"
	case stepDone:
		return "done"
	case stepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// runState is the mutable context threaded through one run. It is created
// at run start, owned exclusively by that run's coordinator, and discarded
// when the run ends — never shared between concurrent requests.
type runState struct {
	doc  extract.Document
	opts RunOptions

	text    string
	pages   int
	method  string
	quality extract.Quality
	ocrUsed bool

	usage  []llm.UsageRecord
	record *llm.ResumeData

	failedStage string
	failure     error
}

func (st *runState) appendUsage(records ...llm.UsageRecord) {
	st.usage = append(st.usage, records...)
}

// Metadata mirrors the response metadata contract.
type Metadata struct {
	ExtractionMethod string            `json:"extraction_method"`
	OCRUsed          bool              `json:"ocr_used"`
	Pages            int               `json:"pages"`
	ProcessingTimeMS int64             `json:"processing_time_ms"`
	Usage            []llm.UsageRecord `json:"usage"`
}

// Result is the outcome of one pipeline run. Metadata is populated on
// failure too, so callers can always reconcile spent tokens.
type Result struct {
	Success  bool
	Data     *llm.ResumeData
	Metadata Metadata
}
