package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/anudeep227/personal-health-manager/internal/entity"
)

var (
	reMedication = regexp.MustCompile(`(?i)\b([A-Za-z][A-Za-z]+)\s*-?\s*(\d+(?:\.\d+)?)\s*(mg|mcg|g|ml)\b`)
	reFrequency  = regexp.MustCompile(`(?i)\b(once daily|twice daily|three times (?:a day|daily)|four times (?:a day|daily)|\d+ times? (?:a day|daily|per day)|every \d+ hours?|daily|weekly|with meals|at bedtime|as needed|prn|b\.?i\.?d\.?|t\.?i\.?d\.?|q\.?i\.?d\.?)\b`)
	reRoute      = regexp.MustCompile(`(?i)\b(orally|oral|by mouth|po|sublingual|topically|topical|intravenously|intravenous|iv|intramuscularly|intramuscular|im|subcutaneously|subcutaneous|inhaled|nasal)\b`)
)

// words that precede a dose but are not drug names
var medNameStopList = map[string]struct{}{
	"take": {}, "takes": {}, "taking": {}, "give": {}, "given": {},
	"dose": {}, "dosage": {}, "tablet": {}, "tablets": {}, "capsule": {},
	"capsules": {}, "with": {}, "contains": {}, "total": {},
}

// extractPrescription scans line by line for "<drug> <dose> <unit>" entries.
// Frequency and route found on the same line attach to every drug on it.
func extractPrescription(text string) entity.StructuredFields {
	var f entity.StructuredFields
	seen := map[string]struct{}{}
	for _, line := range strings.Split(text, "\n") {
		matches := reMedication.FindAllStringSubmatch(line, -1)
		if len(matches) == 0 {
			continue
		}

		var freq, route string
		if m := reFrequency.FindString(line); m != "" {
			freq = strings.ToLower(m)
		}
		if m := reRoute.FindString(line); m != "" {
			route = strings.ToLower(m)
		}

		for _, m := range matches {
			name := m[1]
			if _, skip := medNameStopList[strings.ToLower(name)]; skip {
				continue
			}
			dosage, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}

			key := strings.ToLower(name) + "|" + m[2] + "|" + strings.ToLower(m[3])
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			f.Medications = append(f.Medications, entity.MedicationEntry{
				Name:      name,
				Dosage:    dosage,
				Unit:      strings.ToLower(m[3]),
				Frequency: freq,
				Route:     route,
			})
		}
	}
	return f
}
