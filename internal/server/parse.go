package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/cvparse/cvparse/internal/common"
	"github.com/cvparse/cvparse/internal/extract"
	"github.com/cvparse/cvparse/internal/llm"
	"github.com/cvparse/cvparse/internal/pipeline"
	"github.com/cvparse/cvparse/internal/provider"
)

// parseOptions is the optional "options" multipart field.
type parseOptions struct {
	ParseModels string `json:"parse_models"` // chain override, "provider/model,..."
	OCRModels   string `json:"ocr_models"`   // chain override, or "none" to disable
	OCR         string `json:"ocr"`          // auto | force | skip
}

// parseResponse is the response envelope, success and failure alike.
// Failure bodies still carry metadata so spent tokens stay reconcilable.
type parseResponse struct {
	Success  bool               `json:"success"`
	Data     *llm.ResumeData    `json:"data"`
	Metadata *pipeline.Metadata `json:"metadata,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	maxBytes := int64(s.cfg.Server.MaxFileSizeMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20) // slack for the multipart envelope

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds maximum size of %dMB", s.cfg.Server.MaxFileSizeMB))
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "missing 'file' field")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read upload")
		return
	}
	if int64(len(content)) > maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("file exceeds maximum size of %dMB", s.cfg.Server.MaxFileSizeMB))
		return
	}

	opts := parseOptions{OCR: pipeline.OCRAuto}
	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &opts); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "options is not valid JSON")
			return
		}
		if opts.OCR == "" {
			opts.OCR = pipeline.OCRAuto
		}
	}
	runOpts, err := s.resolveOptions(opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	doc := extract.Document{
		Content:     content,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}

	s.logger.Info("parse request received",
		"key_identity", common.KeyIdentityFromContext(r.Context()),
		"filename", doc.Filename,
		"content_type", doc.ContentType,
		"bytes", len(content),
		"ocr", opts.OCR,
	)

	result, runErr := s.pipe.Run(r.Context(), doc, runOpts)
	if runErr != nil {
		status := failureStatus(runErr)
		writeJSON(w, status, parseResponse{
			Success:  false,
			Metadata: &result.Metadata,
			Error:    runErr.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Success:  true,
		Data:     result.Data,
		Metadata: &result.Metadata,
	})
}

// resolveOptions merges per-request overrides with process-wide defaults.
func (s *Server) resolveOptions(opts parseOptions) (pipeline.RunOptions, error) {
	switch opts.OCR {
	case pipeline.OCRAuto, pipeline.OCRForce, pipeline.OCRSkip:
	default:
		return pipeline.RunOptions{}, fmt.Errorf("ocr must be one of auto, force, skip")
	}

	parseRaw := opts.ParseModels
	if parseRaw == "" {
		parseRaw = s.cfg.Pipeline.DefaultParseModels
	}
	parseChain, err := provider.ParseChain(parseRaw, "parse_models")
	if err != nil {
		return pipeline.RunOptions{}, err
	}
	if parseChain.Disabled() {
		return pipeline.RunOptions{}, fmt.Errorf("parse_models cannot be empty or 'none'")
	}

	ocrRaw := opts.OCRModels
	if ocrRaw == "" {
		ocrRaw = s.cfg.Pipeline.DefaultOCRModels
	}
	ocrChain, err := provider.ParseChain(ocrRaw, "ocr_models")
	if err != nil {
		return pipeline.RunOptions{}, err
	}

	return pipeline.RunOptions{
		OCRPolicy:  opts.OCR,
		OCRChain:   ocrChain,
		ParseChain: parseChain,
	}, nil
}

// failureStatus maps pipeline errors to HTTP statuses per the error
// taxonomy: input errors 4xx, provider/stage exhaustion 502, timeout 504.
func failureStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrUnsupportedFormat),
		errors.Is(err, common.ErrCorruptDocument):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, common.ErrExtractionFailed),
		errors.Is(err, common.ErrRecognitionExhausted),
		errors.Is(err, common.ErrRecognitionUnavailable),
		errors.Is(err, common.ErrProviderUnavailable),
		errors.Is(err, common.ErrProviderRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
