package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anudeep227/personal-health-manager/constants"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name string
		text string
		want constants.Category
	}{
		{
			name: "ecg report",
			text: "Electrocardiogram performed. Heart rate 75 bpm, normal sinus heart rhythm.",
			want: constants.ECG,
		},
		{
			name: "lab report",
			text: "Laboratory results: Glucose 95 mg/dL, Cholesterol 180 mg/dL. Hemoglobin within reference range.",
			want: constants.LabReport,
		},
		{
			name: "prescription",
			text: "Rx: Amoxicillin 500 mg. Dosage: one capsule three times daily. Prescription valid 30 days.",
			want: constants.Prescription,
		},
		{
			name: "radiology",
			text: "Chest X-Ray and follow-up CT scan show no acute findings. Radiology dept.",
			want: constants.Radiology,
		},
		{
			name: "no markers",
			text: "Dear diary, today I went for a walk in the park.",
			want: constants.General,
		},
		{
			name: "empty text",
			text: "",
			want: constants.General,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyCountsOccurrences(t *testing.T) {
	c := NewClassifier(nil)

	// One ECG marker against repeated lab markers: repetition wins.
	text := "ecg mentioned once. glucose glucose glucose."
	assert.Equal(t, constants.LabReport, c.Classify(text))
}

func TestClassifyTieBreakPrefersECG(t *testing.T) {
	c := NewClassifier(nil)

	// One marker hit each for ECG and LabReport.
	text := "ekg trace attached alongside hemoglobin panel"
	assert.Equal(t, constants.ECG, c.Classify(text))
}

func TestClassifyCaseInsensitive(t *testing.T) {
	c := NewClassifier(nil)

	assert.Equal(t, constants.ECG, c.Classify("ELECTROCARDIOGRAM NORMAL"))
}

func TestClassifyDeterministic(t *testing.T) {
	c := NewClassifier(nil)

	text := "blood work with ecg follow-up and mri referral"
	first := c.Classify(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}
