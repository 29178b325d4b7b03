package summarize

import (
	"strings"

	"github.com/anudeep227/personal-health-manager/constants"
)

// maxPromptTextChars caps how much document text goes into the prompt.
const maxPromptTextChars = 3000

// BuildSystemPrompt is shared across categories: the model assists with
// health information but never diagnoses.
func BuildSystemPrompt() string {
	return strings.Join([]string{
		"You are a helpful health information assistant.",
		"Always emphasize consulting healthcare professionals and never provide medical diagnoses.",
		"Return ONLY JSON that matches the JSON Schema provided.",
		"Write the summary in clear, non-technical language.",
		"Recommendations must be short, actionable strings in priority order.",
		"Never output null. If a field is not present, omit it.",
	}, " ")
}

// categoryAsks are the per-category instruction blocks placed ahead of the
// document text.
var categoryAsks = map[constants.Category]string{
	constants.ECG: `Analyze this ECG/EKG report and extract key cardiac information.
Please identify and explain:
1. Heart rate and rhythm
2. Any abnormalities detected
3. Clinical significance of findings
4. Recommendations for follow-up
5. Key measurements (intervals, axes, etc.)`,
	constants.LabReport: `Analyze this laboratory report and provide patient-friendly explanations.
Please provide:
1. Summary of all test values
2. Which values are within/outside normal ranges
3. Clinical significance of abnormal values
4. Lifestyle recommendations based on results
5. Questions to ask your healthcare provider`,
	constants.Prescription: `Analyze this prescription and provide medication information.
Please extract and explain:
1. All medications prescribed (name, dosage, frequency)
2. Purpose of each medication
3. Important side effects to watch for
4. Drug interactions to be aware of
5. Instructions for taking medications`,
	constants.Radiology: `Analyze this radiology report and provide patient-friendly explanations.
Please explain:
1. Type of imaging study performed
2. Key findings in simple terms
3. What normal vs abnormal findings mean
4. Clinical significance of any abnormalities
5. Recommended follow-up actions`,
	constants.General: `Analyze this medical document and extract important information.
Please provide:
1. Document summary and purpose
2. Key medical information
3. Important dates and appointments
4. Action items or follow-up requirements
5. Questions to discuss with healthcare providers`,
}

// BuildUserPrompt assembles the category instructions and the (truncated)
// document text.
func BuildUserPrompt(category constants.Category, text, filename string) string {
	ask, ok := categoryAsks[category]
	if !ok {
		ask = categoryAsks[constants.General]
	}

	var b strings.Builder
	b.WriteString(ask)
	if filename != "" {
		b.WriteString("\n\nFilename: ")
		b.WriteString(filename)
	}
	b.WriteString("\n\nDocument text (first ~3k chars):\n")
	if len(text) > maxPromptTextChars {
		b.WriteString(text[:maxPromptTextChars])
	} else {
		b.WriteString(text)
	}
	return b.String()
}
