package constants

import (
	"path/filepath"
	"strings"
)

// FileFormat selects the extraction strategy for an uploaded document.
type FileFormat string

const (
	FormatPDF     FileFormat = "PDF"
	FormatDOCX    FileFormat = "DOCX"
	FormatText    FileFormat = "TEXT"
	FormatImage   FileFormat = "IMAGE"
	FormatUnknown FileFormat = "UNKNOWN"
)

// formatByExt maps normalized extensions to formats. Extensions outside this
// table are rejected before any extractor runs.
var formatByExt = map[string]FileFormat{
	"pdf":  FormatPDF,
	"docx": FormatDOCX,
	"txt":  FormatText,
	"jpg":  FormatImage,
	"jpeg": FormatImage,
	"png":  FormatImage,
	"tiff": FormatImage,
}

// FileTypes lists the supported extensions in stable order for validators.
var FileTypes = []string{"pdf", "docx", "txt", "jpg", "jpeg", "png", "tiff"}

// AllowedExtensions holds the supported extensions for document ingestion.
var AllowedExtensions = make(map[string]struct{}, len(FileTypes))

func init() {
	for _, t := range FileTypes {
		AllowedExtensions[t] = struct{}{}
	}
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectFormat maps a file path to its extraction format by extension,
// case-insensitive. Unrecognized extensions yield FormatUnknown.
func DetectFormat(path string) FileFormat {
	ext := NormalizeExt(filepath.Ext(path))
	if f, ok := formatByExt[ext]; ok {
		return f
	}
	return FormatUnknown
}

// DefaultMaxFileSize is the upload size gate applied before extraction.
const DefaultMaxFileSize = 50 << 20 // 50 MB
