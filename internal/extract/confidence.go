package extract

import (
	"regexp"
	"strings"
)

// OCR text is never trusted as much as a digital text layer; scores are
// capped just below 1.0.
const maxOCRConfidence = 0.99

var (
	reDateish  = regexp.MustCompile(`\b(19|20)\d{2}[-/.]\d{1,2}[-/.]\d{1,2}\b|\b\d{1,2}[-/.]\d{1,2}[-/.](19|20)\d{2}\b`)
	reUnitish  = regexp.MustCompile(`\b(mg/dl|mmol/l|mmhg|bpm|mcg|mg|ml|g/dl|iu/l|u/l|%)\b`)
	reValueish = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
)

func hasDatePattern(s string) bool  { return reDateish.MatchString(s) }
func hasUnitPattern(s string) bool  { return reUnitish.MatchString(s) }
func hasValuePattern(s string) bool { return reValueish.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics, used
// when tesseract gives us no per-word scores
func heuristicConfidence(txt string) float32 {
	// boost if we see common medical-document artifacts
	// (date-ish, unit-ish, value-ish). Each adds a bit.
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasUnitPattern(txtL) {
		score += 0.15
	}
	if hasValuePattern(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	return score
}

func clampOCRConfidence(c float32) float32 {
	if c > maxOCRConfidence {
		return maxOCRConfidence
	}
	if c < 0 {
		return 0
	}
	return c
}
