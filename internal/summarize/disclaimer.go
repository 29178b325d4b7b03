package summarize

import (
	"strings"

	"github.com/anudeep227/personal-health-manager/constants"
)

// disclaimers are appended to every summary, AI-produced or not. The wording
// varies with how much clinical judgement the document type needs.
var disclaimers = map[constants.Category]string{
	constants.ECG:          "This analysis is for informational purposes only. Consult a cardiologist for medical interpretation.",
	constants.LabReport:    "Laboratory results require professional medical interpretation.",
	constants.Prescription: "Follow your doctor's instructions. Contact your healthcare provider with any concerns.",
	constants.Radiology:    "Radiology results should be reviewed with your doctor for proper medical context.",
	constants.General:      "This analysis is for informational purposes. Consult your healthcare provider for medical advice.",
}

// Disclaimer returns the category's disclaimer string.
func Disclaimer(category constants.Category) string {
	if d, ok := disclaimers[category]; ok {
		return d
	}
	return disclaimers[constants.General]
}

// AppendDisclaimer adds the category disclaimer to summary exactly once.
func AppendDisclaimer(summary string, category constants.Category) string {
	d := Disclaimer(category)
	if strings.Contains(summary, d) {
		return summary
	}
	if summary == "" {
		return d
	}
	return summary + "\n\n" + d
}
