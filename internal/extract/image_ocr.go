package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

func (e *Extractor) extractImage(ctx context.Context, path string) (entity.ExtractionResult, error) {
	txt, warn, err := e.tesseractOCR(ctx, path)
	if err != nil {
		if notFound(err) {
			return entity.ExtractionResult{Extractor: ExtractorOCR},
				fmt.Errorf("%w: %s not found", common.ErrDependencyUnavailable, e.cfg.Tesseract)
		}
		return entity.ExtractionResult{Extractor: ExtractorOCR, Warnings: warn},
			fmt.Errorf("%w: %v", common.ErrExtractionFailed, err)
	}
	txt = Normalize(txt)

	conf, warn2, err2 := e.tesseractTSVConfidence(ctx, path)
	warn = append(warn, warn2...)
	if err2 != nil || conf == 0 {
		if err2 != nil {
			warn = append(warn, err2.Error())
		}
		conf = heuristicConfidence(txt)
	}

	return entity.ExtractionResult{
		Text:       txt,
		Confidence: clampOCRConfidence(conf),
		Extractor:  ExtractorOCR,
		Pages:      1,
		Warnings:   warn,
	}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{truncate(string(errb), 8 << 10)}, fmt.Errorf("tesseract: %w", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word conf in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	// TSV output
	args = append(args, "tsv")

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{truncate(string(errb), 8 << 10)}, fmt.Errorf("tesseract TSV: %w", err)
	}

	// columns: level page block par line word left top width height conf text
	const confCol = 10
	lines := strings.Split(string(out), "\n")
	var sum, n float64
	for i, ln := range lines {
		if i == 0 || len(ln) == 0 {
			continue // skip header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) <= confCol {
			continue
		}
		confStr := cols[confCol]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, perr := strconv.ParseFloat(confStr, 64); perr == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	mean := sum / n // 0..100
	return float32(mean / 100.0), nil, nil
}
