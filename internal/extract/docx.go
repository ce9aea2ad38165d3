package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/cvparse/cvparse/constants"
	"github.com/cvparse/cvparse/internal/common"
)

// extractDocx parses a .docx byte stream by reading word/document.xml from
// the ZIP archive. Paragraphs and table-cell runs both live in the document
// body stream, so one token walk collects everything in reading order.
// Page count is always 1: OOXML does not record pagination.
func extractDocx(content []byte) (ExtractionResult, error) {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ExtractionResult{}, common.NewAppError("DOCX_CORRUPT",
			fmt.Sprintf("open zip: %v", err), common.ErrCorruptDocument)
	}

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return ExtractionResult{}, common.NewAppError("DOCX_CORRUPT",
			"word/document.xml not found in archive", common.ErrCorruptDocument)
	}

	rc, err := docFile.Open()
	if err != nil {
		return ExtractionResult{}, common.NewAppError("DOCX_CORRUPT",
			fmt.Sprintf("open document.xml: %v", err), common.ErrCorruptDocument)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var parts []string
	var currentText strings.Builder
	var inParagraph bool
	var inText bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				inParagraph = true
				currentText.Reset()
			case "t":
				inText = inParagraph
			}

		case xml.CharData:
			if inText {
				currentText.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inParagraph {
					inParagraph = false
					if text := strings.TrimSpace(currentText.String()); text != "" {
						parts = append(parts, text)
					}
				}
			}
		}
	}

	return ExtractionResult{
		Text:   strings.Join(parts, "\n"),
		Pages:  1,
		Method: constants.MethodAlgorithmic,
	}, nil
}
