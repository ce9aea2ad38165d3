package constants

import "strings"

// Format identifies a supported input document family.
type Format string

const (
	PDF   Format = "PDF"
	DOCX  Format = "DOCX"
	IMAGE Format = "IMAGE"
	TEXT  Format = "TEXT"
)

// Pipeline step tags recorded on usage entries.
const (
	StepOCR   = "ocr"
	StepParse = "parse"
)

// Extraction method labels reported in parse metadata.
const (
	MethodAlgorithmic = "algorithmic"
	MethodOCR         = "ocr"
	MethodNone        = "none"
)

var contentTypeFormats = map[string]Format{
	"application/pdf": PDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": DOCX,
	"text/plain": TEXT,
	"image/png":  IMAGE,
	"image/jpeg": IMAGE,
	"image/webp": IMAGE,
	"image/tiff": IMAGE,
}

var extensionFormats = map[string]Format{
	"pdf":  PDF,
	"docx": DOCX,
	"txt":  TEXT,
	"text": TEXT,
	"png":  IMAGE,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"webp": IMAGE,
	"tiff": IMAGE,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapContentTypeToFormat resolves a declared MIME type to a Format.
// Parameters after ";" (e.g. charset) are ignored. Returns "" when unknown.
func MapContentTypeToFormat(ct string) Format {
	ct = strings.TrimSpace(strings.ToLower(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return contentTypeFormats[ct]
}

// MapExtToFormat resolves a file extension (with or without dot) to a Format.
// Returns "" when unknown.
func MapExtToFormat(ext string) Format {
	return extensionFormats[NormalizeExt(ext)]
}
