package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anudeep227/personal-health-manager/constants"
)

func TestExtractECG(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Heart rate: 75 bpm, PR interval: 160 ms, QRS: 90 ms", constants.ECG)

	require.NotNil(t, f.HeartRate)
	assert.Equal(t, 75, *f.HeartRate)
	require.NotNil(t, f.PRInterval)
	assert.Equal(t, 160, *f.PRInterval)
	require.NotNil(t, f.QRSDuration)
	assert.Equal(t, 90, *f.QRSDuration)
	assert.Nil(t, f.QTInterval)
	assert.Equal(t, 3, f.Count())
}

func TestExtractECGRhythmAndQT(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Normal Sinus Rhythm. QTc: 430 ms. Heart rate: 62", constants.ECG)

	assert.Equal(t, "normal sinus rhythm", f.Rhythm)
	require.NotNil(t, f.QTInterval)
	assert.Equal(t, 430, *f.QTInterval)
	require.NotNil(t, f.HeartRate)
	assert.Equal(t, 62, *f.HeartRate)
}

func TestExtractECGPartialText(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Heart rate: 75 bpm, PR interval: 160 ms", constants.ECG)

	require.NotNil(t, f.HeartRate)
	assert.Equal(t, 75, *f.HeartRate)
	require.NotNil(t, f.PRInterval)
	assert.Equal(t, 160, *f.PRInterval)
	assert.Nil(t, f.QRSDuration)
}

func TestExtractLabValuesWithUnits(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Glucose: 95 mg/dL, Cholesterol: 180 mg/dL", constants.LabReport)

	require.Len(t, f.LabValues, 2)
	assert.Equal(t, "Glucose", f.LabValues[0].Test)
	assert.Equal(t, 95.0, f.LabValues[0].Value)
	assert.Equal(t, "mg/dL", f.LabValues[0].Unit)
	assert.Equal(t, "Cholesterol", f.LabValues[1].Test)
	assert.Equal(t, 180.0, f.LabValues[1].Value)
	assert.Equal(t, "mg/dL", f.LabValues[1].Unit)
}

func TestExtractLabExplicitRangeFlagsAbnormal(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Glucose: 150 mg/dL (70 - 110)\nHemoglobin: 14.2 g/dL (13.5 - 17.5)", constants.LabReport)

	require.Len(t, f.LabValues, 2)

	glucose := f.LabValues[0]
	require.NotNil(t, glucose.Abnormal)
	assert.True(t, *glucose.Abnormal)
	require.NotNil(t, glucose.RefLow)
	assert.Equal(t, 70.0, *glucose.RefLow)
	require.NotNil(t, glucose.RefHigh)
	assert.Equal(t, 110.0, *glucose.RefHigh)

	hemoglobin := f.LabValues[1]
	require.NotNil(t, hemoglobin.Abnormal)
	assert.False(t, *hemoglobin.Abnormal)
	assert.Equal(t, 1, f.AbnormalCount())
}

func TestExtractLabNoRangeLeavesFlagUnset(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Sodium: 140 mmol/L", constants.LabReport)

	require.Len(t, f.LabValues, 1)
	assert.Nil(t, f.LabValues[0].Abnormal)
	assert.Nil(t, f.LabValues[0].RefLow)
	assert.Nil(t, f.LabValues[0].RefHigh)
}

func TestExtractLabSkipsMetadataLines(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Date: 2024\nPage: 1\nGlucose: 95 mg/dL", constants.LabReport)

	require.Len(t, f.LabValues, 1)
	assert.Equal(t, "Glucose", f.LabValues[0].Test)
}

func TestExtractLabIgnoresProseUnit(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Glucose: 95 within expected limits", constants.LabReport)

	require.Len(t, f.LabValues, 1)
	assert.Empty(t, f.LabValues[0].Unit)
}

func TestExtractPrescription(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Rx: Amoxicillin 500 mg by mouth three times a day", constants.Prescription)

	require.Len(t, f.Medications, 1)
	med := f.Medications[0]
	assert.Equal(t, "Amoxicillin", med.Name)
	assert.Equal(t, 500.0, med.Dosage)
	assert.Equal(t, "mg", med.Unit)
	assert.Equal(t, "three times a day", med.Frequency)
	assert.Equal(t, "by mouth", med.Route)
}

func TestExtractPrescriptionDashedDose(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Aspirin - 100 mg at bedtime", constants.Prescription)

	require.Len(t, f.Medications, 1)
	assert.Equal(t, "Aspirin", f.Medications[0].Name)
	assert.Equal(t, 100.0, f.Medications[0].Dosage)
	assert.Equal(t, "at bedtime", f.Medications[0].Frequency)
}

func TestExtractPrescriptionDeduplicates(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Aspirin 100 mg\nAspirin 100 mg", constants.Prescription)

	assert.Len(t, f.Medications, 1)
}

func TestExtractRadiologyTagsOnly(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Chest X-Ray shows no fracture", constants.Radiology)

	assert.Equal(t, []string{"x-ray", "fracture", "chest"}, f.Tags)
	assert.Empty(t, f.LabValues)
	assert.Empty(t, f.Medications)
	assert.Nil(t, f.HeartRate)
}

func TestExtractGeneralTags(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("Please schedule a follow-up with your doctor at the hospital", constants.General)

	assert.Equal(t, []string{"doctor", "hospital", "follow-up"}, f.Tags)
}

func TestExtractEmptyTextYieldsEmptyFields(t *testing.T) {
	e := NewExtractor(nil)

	for _, cat := range []constants.Category{
		constants.ECG, constants.LabReport, constants.Prescription,
		constants.Radiology, constants.General,
	} {
		f := e.Extract("", cat)
		assert.True(t, f.IsEmpty(), "category %s", cat)
	}
}

func TestExtractUnmatchedTextYieldsEmptyFields(t *testing.T) {
	e := NewExtractor(nil)

	f := e.Extract("nothing relevant here", constants.ECG)
	assert.True(t, f.IsEmpty())
	assert.Equal(t, 0, f.Count())
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewExtractor(nil)

	text := "Glucose: 95 mg/dL (70 - 110)\nAspirin 100 mg"
	first := e.Extract(text, constants.LabReport)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.Extract(text, constants.LabReport))
	}
}
