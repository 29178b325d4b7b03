package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anudeep227/personal-health-manager/internal/entity"
)

var (
	reHeartRate = regexp.MustCompile(`(?i)heart rate[:\s]*(\d+)`)
	rePRInt     = regexp.MustCompile(`(?i)\bPR[:\s]*(?:interval[:\s]*)?(\d+)`)
	reQRS       = regexp.MustCompile(`(?i)\bQRS[:\s]*(?:duration[:\s]*)?(\d+)`)
	reQTInt     = regexp.MustCompile(`(?i)\bQTc?[:\s]*(?:interval[:\s]*)?(\d+)`)
	reRhythm    = regexp.MustCompile(`(?i)\b(normal sinus rhythm|sinus rhythm|sinus bradycardia|sinus tachycardia|atrial fibrillation|atrial flutter|irregular rhythm)\b`)
)

func extractECG(text string) entity.StructuredFields {
	var f entity.StructuredFields
	f.HeartRate = firstInt(reHeartRate, text)
	f.PRInterval = firstInt(rePRInt, text)
	f.QRSDuration = firstInt(reQRS, text)
	f.QTInterval = firstInt(reQTInt, text)
	if m := reRhythm.FindString(text); m != "" {
		f.Rhythm = strings.ToLower(m)
	}
	return f
}

// firstInt returns the first capture group of the first match as an int, or
// nil when the pattern does not match.
func firstInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &v
}
