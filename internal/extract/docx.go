package extract

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

// extractDOCX reads the WordprocessingML body straight out of the zip
// container. No external tooling involved, so the text is exact.
func (e *Extractor) extractDOCX(path string) (entity.ExtractionResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return entity.ExtractionResult{Extractor: ExtractorDOCX},
			fmt.Errorf("%w: open docx %q: %v", common.ErrExtractionFailed, path, err)
	}
	defer func() { _ = zr.Close() }()

	var doc *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return entity.ExtractionResult{Extractor: ExtractorDOCX},
			fmt.Errorf("%w: docx %q has no word/document.xml", common.ErrExtractionFailed, path)
	}

	rc, err := doc.Open()
	if err != nil {
		return entity.ExtractionResult{Extractor: ExtractorDOCX},
			fmt.Errorf("%w: open document.xml: %v", common.ErrExtractionFailed, err)
	}
	defer func() { _ = rc.Close() }()

	txt, err := wordMLToText(rc)
	if err != nil {
		return entity.ExtractionResult{Extractor: ExtractorDOCX},
			fmt.Errorf("%w: parse document.xml: %v", common.ErrExtractionFailed, err)
	}

	return entity.ExtractionResult{
		Text:       Normalize(txt),
		Confidence: 1.0,
		Extractor:  ExtractorDOCX,
		Pages:      1,
	}, nil
}

// wordMLToText walks the XML token stream and collects run text. Paragraphs
// become lines; w:tab and w:br map to their plain-text equivalents.
func wordMLToText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	var inText bool
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}
