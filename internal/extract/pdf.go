package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

// A text layer shorter than this means the PDF is an image scan and the
// pages need OCR instead.
const scannedTextThreshold = 32

func (e *Extractor) extractPDF(ctx context.Context, path string) (entity.ExtractionResult, error) {
	txt, pages, layerErr := pdfTextLayer(path, e.cfg.MaxPages)
	if layerErr != nil {
		e.logger.Warn("pdf text layer unreadable", "path", path, "error", layerErr)
	}
	txt = Normalize(txt)

	if len(txt) >= scannedTextThreshold {
		return entity.ExtractionResult{
			Text:       txt,
			Confidence: 1.0,
			Extractor:  ExtractorPDF,
			Pages:      pages,
		}, nil
	}

	e.logger.Info("pdf has no usable text layer, falling back to ocr", "path", path, "chars", len(txt))
	ocrTxt, ocrPages, conf, warns, err := e.pdfOCR(ctx, path)
	if err != nil {
		if txt != "" {
			// Keep whatever the text layer gave us rather than failing outright.
			warns = append(warns, fmt.Sprintf("ocr fallback failed: %v", err))
			return entity.ExtractionResult{
				Text:       txt,
				Confidence: 0.5,
				Extractor:  ExtractorPDF,
				Pages:      pages,
				Warnings:   warns,
			}, nil
		}
		return entity.ExtractionResult{Extractor: ExtractorPDFOCR, Warnings: warns}, err
	}

	return entity.ExtractionResult{
		Text:       Normalize(ocrTxt),
		Confidence: conf,
		Extractor:  ExtractorPDFOCR,
		Pages:      ocrPages,
		Warnings:   warns,
	}, nil
}

// pdfTextLayer pulls embedded text out of the PDF. The parser panics on some
// malformed files, so recover turns that into an error.
func pdfTextLayer(path string, maxPages int) (txt string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	total := r.NumPage()
	pages = total
	if maxPages > 0 && total > maxPages {
		total = maxPages
	}

	var b strings.Builder
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		s, perr := p.GetPlainText(nil)
		if perr != nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(s)
	}
	return b.String(), pages, nil
}

func (e *Extractor) pdfOCR(ctx context.Context, path string) (text string, pages int, conf float32, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "phm-pp-*")
	if err != nil {
		return "", 0, 0, nil, err
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		if notFound(err) {
			return "", 0, 0, nil, fmt.Errorf("%w: %s not found", common.ErrDependencyUnavailable, e.cfg.Pdftoppm)
		}
		return "", 0, 0, []string{truncate(string(errb), 8 << 10)}, fmt.Errorf("%w: pdftoppm: %v", common.ErrExtractionFailed, err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, 0, []string{"pdftoppm produced no images"}, fmt.Errorf("%w: no pages rendered", common.ErrExtractionFailed)
	}

	var b strings.Builder
	var warns []string
	var confSum float32
	var confN int
	for _, img := range matches {
		txt, w, terr := e.tesseractOCR(ctx, img)
		if terr != nil {
			if notFound(terr) {
				return "", 0, 0, warns, fmt.Errorf("%w: %s not found", common.ErrDependencyUnavailable, e.cfg.Tesseract)
			}
			warns = append(warns, terr.Error())
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.WriteString(txt)
		warns = append(warns, w...)
		if c, _, cerr := e.tesseractTSVConfidence(ctx, img); cerr == nil && c > 0 {
			confSum += c
			confN++
		}
	}
	pages = len(matches)
	text = b.String()
	if confN > 0 {
		conf = confSum / float32(confN)
	} else {
		conf = heuristicConfidence(text)
	}
	return text, pages, clampOCRConfidence(conf), warns, nil
}
