package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

func (e *Extractor) extractText(path string) (entity.ExtractionResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return entity.ExtractionResult{Extractor: ExtractorText},
			fmt.Errorf("%w: read %q: %v", common.ErrExtractionFailed, path, err)
	}

	var warnings []string
	txt := string(raw)
	if !utf8.ValidString(txt) {
		txt = strings.ToValidUTF8(txt, "�")
		warnings = append(warnings, "file contained invalid UTF-8, replaced offending bytes")
	}
	txt = Normalize(txt)

	return entity.ExtractionResult{
		Text:       txt,
		Confidence: 1.0,
		Extractor:  ExtractorText,
		Pages:      1,
		Warnings:   warnings,
	}, nil
}
