package llm

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cvparse/cvparse/internal/provider"
)

const parseSystemPrompt = `You are a resume parser. Extract structured data from the provided resume text.

Rules:
- Return ONLY valid JSON matching the schema below. No markdown, no explanation, no extra text.
- Extract all information present in the resume. Do not invent or assume information.
- Never output null. If a field is not present in the resume, omit it; use an empty list for absent list fields.
- Dates should be preserved as they appear in the resume (e.g. "Jan 2023", "2023", "Present").
- For skills, set "category" when the resume groups skills by category.

JSON Schema:
`

const ocrPrompt = "Extract ALL text from the document image(s) below. " +
	"Preserve the original structure, headings, bullet points, and formatting " +
	"as closely as possible. Each image is one page, in order; separate the " +
	"text of consecutive pages with a line containing only \"\\f\". Return " +
	"ONLY the extracted text, no commentary or explanation."

// BuildParseMessages builds the chat messages for structured extraction:
// a system message carrying the schema and a user message with the text.
func BuildParseMessages(text string) []provider.Message {
	schema, _ := json.MarshalIndent(BuildResumeJSONSchema(), "", "  ")
	return []provider.Message{
		{Role: "system", Content: parseSystemPrompt + string(schema)},
		{Role: "user", Content: "Parse the following resume and return structured JSON:\n\n" + text},
	}
}

// BuildOCRMessages builds one user message with the OCR instruction and all
// page images inlined as base64 PNG data URIs, in page order.
func BuildOCRMessages(images [][]byte) []provider.Message {
	parts := make([]provider.ContentPart, 0, len(images)+1)
	parts = append(parts, provider.ContentPart{Type: "text", Text: ocrPrompt})
	for _, img := range images {
		var sb strings.Builder
		sb.WriteString("data:")
		sb.WriteString(imageMIME(img))
		sb.WriteString(";base64,")
		sb.WriteString(base64.StdEncoding.EncodeToString(img))
		parts = append(parts, provider.ContentPart{
			Type:     "image_url",
			ImageURL: &provider.ImageURL{URL: sb.String()},
		})
	}
	return []provider.Message{{Role: "user", Content: parts}}
}

// imageMIME sniffs the image content type; rendered pages are PNG, but
// image uploads pass through in their original encoding.
func imageMIME(img []byte) string {
	mt := http.DetectContentType(img)
	if !strings.HasPrefix(mt, "image/") {
		return "image/png"
	}
	return mt
}
