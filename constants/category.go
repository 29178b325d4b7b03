package constants

import (
	"strings"
)

// Category is the document type assigned by the classifier.
type Category string

const (
	LabReport    Category = "LAB_REPORT"
	ECG          Category = "ECG"
	Prescription Category = "PRESCRIPTION"
	Radiology    Category = "RADIOLOGY"
	General      Category = "GENERAL"
)

// CategoryPriority orders categories for tie-breaking: more specific and
// clinically urgent categories win ties. General is the catch-all.
var CategoryPriority = []Category{
	ECG,
	LabReport,
	Prescription,
	Radiology,
	General,
}

var allCategories = []Category{
	LabReport,
	ECG,
	Prescription,
	Radiology,
	General,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free-form category text onto a Category, accepting
// common synonyms. Returns General and false when nothing matches.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return General, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	// synonyms map
	synonyms := map[string]Category{
		"lab":               LabReport,
		"lab report":        LabReport,
		"laboratory":        LabReport,
		"blood test":        LabReport,
		"bloodwork":         LabReport,
		"ekg":               ECG,
		"electrocardiogram": ECG,
		"rx":                Prescription,
		"medication":        Prescription,
		"imaging":           Radiology,
		"x-ray":             Radiology,
		"xray":              Radiology,
		"mri":               Radiology,
		"ct scan":           Radiology,
		"ultrasound":        Radiology,
		"other":             General,
		"document":          General,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	// check if it matches any category string
	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return General, false
}
