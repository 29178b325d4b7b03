package fields

import "strings"

var radiologyVocabulary = []string{
	"x-ray", "ct scan", "mri", "ultrasound", "radiology", "imaging",
	"contrast", "fracture", "chest", "abdomen", "pelvis", "spine",
}

var generalVocabulary = []string{
	"medical", "health", "doctor", "hospital", "patient", "clinic",
	"follow-up", "referral", "insurance", "vaccination", "discharge",
}

// findKeywords returns the vocabulary terms present in text, in vocabulary
// order, each at most once.
func findKeywords(text string, vocab []string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, kw := range vocab {
		if strings.Contains(lower, kw) {
			tags = append(tags, kw)
		}
	}
	return tags
}
