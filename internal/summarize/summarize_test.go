package summarize

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/entity"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

type stubSummarizer struct {
	calls int
	res   SummaryResult
	err   error
}

func (s *stubSummarizer) Summarize(context.Context, SummaryRequest) (SummaryResult, error) {
	s.calls++
	if s.err != nil {
		return SummaryResult{}, s.err
	}
	return s.res, nil
}

func TestRuleBasedLabReport(t *testing.T) {
	fields := entity.StructuredFields{
		LabValues: []entity.LabValue{
			{Test: "Glucose", Value: 150, Unit: "mg/dL", RefLow: floatPtr(70), RefHigh: floatPtr(110), Abnormal: boolPtr(true)},
			{Test: "Hemoglobin", Value: 14.2, Unit: "g/dL", Abnormal: boolPtr(false)},
			{Test: "Sodium", Value: 141, Unit: "mEq/L"},
		},
	}

	res, err := NewRuleBased(nil).Summarize(context.Background(), SummaryRequest{
		Category: constants.LabReport,
		Fields:   fields,
	})
	require.NoError(t, err)
	assert.Equal(t, "Lab report processed. 3 lab values found, 1 outside reference range.", res.Summary)
	assert.Equal(t, []string{
		"Discuss the flagged values with your healthcare provider.",
		"Review results with your healthcare provider.",
	}, res.Recommendations)
	assert.Equal(t, RuleBasedSource, res.Source)
}

func TestRuleBasedECG(t *testing.T) {
	fields := entity.StructuredFields{
		HeartRate:  intPtr(75),
		PRInterval: intPtr(160),
		Rhythm:     "sinus rhythm",
	}

	res, err := NewRuleBased(nil).Summarize(context.Background(), SummaryRequest{
		Category: constants.ECG,
		Fields:   fields,
	})
	require.NoError(t, err)
	assert.Equal(t, "ECG report processed. 3 measurements extracted. Heart rate 75 bpm. Rhythm: sinus rhythm.", res.Summary)
	assert.Equal(t, []string{"Professional interpretation recommended."}, res.Recommendations)
}

func TestRuleBasedByCategory(t *testing.T) {
	cases := []struct {
		name     string
		category constants.Category
		fields   entity.StructuredFields
		summary  string
	}{
		{
			name:     "prescription",
			category: constants.Prescription,
			fields: entity.StructuredFields{Medications: []entity.MedicationEntry{
				{Name: "Amoxicillin", Dosage: 500, Unit: "mg"},
				{Name: "Aspirin", Dosage: 100, Unit: "mg"},
			}},
			summary: "Prescription processed. 2 medications identified.",
		},
		{
			name:     "radiology",
			category: constants.Radiology,
			fields:   entity.StructuredFields{Tags: []string{"x-ray", "chest"}},
			summary:  "Radiology report processed. 2 keywords tagged.",
		},
		{
			name:     "general",
			category: constants.General,
			fields:   entity.StructuredFields{Tags: []string{"doctor"}},
			summary:  "Medical document processed. 1 structured values found.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := NewRuleBased(nil).Summarize(context.Background(), SummaryRequest{
				Category: tc.category,
				Fields:   tc.fields,
			})
			require.NoError(t, err)
			assert.Equal(t, tc.summary, res.Summary)
			assert.NotEmpty(t, res.Recommendations)
			assert.Equal(t, RuleBasedSource, res.Source)
		})
	}
}

func TestRuleBasedDeterministic(t *testing.T) {
	req := SummaryRequest{
		Category: constants.LabReport,
		Fields: entity.StructuredFields{LabValues: []entity.LabValue{
			{Test: "Glucose", Value: 95, Unit: "mg/dL"},
		}},
	}

	first, err := NewRuleBased(nil).Summarize(context.Background(), req)
	require.NoError(t, err)
	second, err := NewRuleBased(nil).Summarize(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAppendDisclaimerOnce(t *testing.T) {
	d := Disclaimer(constants.ECG)

	got := AppendDisclaimer("ECG report processed.", constants.ECG)
	assert.Equal(t, 1, strings.Count(got, d))

	again := AppendDisclaimer(got, constants.ECG)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, strings.Count(again, d))
}

func TestAppendDisclaimerEmptySummary(t *testing.T) {
	got := AppendDisclaimer("", constants.General)
	assert.Equal(t, Disclaimer(constants.General), got)
}

func TestDisclaimerUnknownCategory(t *testing.T) {
	got := Disclaimer(constants.Category("SOMETHING_ELSE"))
	assert.Equal(t, Disclaimer(constants.General), got)
}

func TestSanitizeSummaryJSON(t *testing.T) {
	decode := func(t *testing.T, raw []byte) map[string]any {
		t.Helper()
		var m map[string]any
		require.NoError(t, json.Unmarshal(raw, &m))
		return m
	}

	t.Run("renames advice to recommendations", func(t *testing.T) {
		out, dropped, err := SanitizeSummaryJSON([]byte(`{"summary":"ok","advice":["rest"]}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.Equal(t, []any{"rest"}, m["recommendations"])
		assert.Contains(t, dropped, "advice->recommendations")
	})

	t.Run("coerces lone recommendation string", func(t *testing.T) {
		out, _, err := SanitizeSummaryJSON([]byte(`{"summary":"ok","recommendations":"rest well"}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.Equal(t, []any{"rest well"}, m["recommendations"])
	})

	t.Run("filters empty recommendation entries", func(t *testing.T) {
		out, _, err := SanitizeSummaryJSON([]byte(`{"summary":"ok","recommendations":["","a",null]}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.Equal(t, []any{"a"}, m["recommendations"])
	})

	t.Run("drops unknown keys", func(t *testing.T) {
		out, dropped, err := SanitizeSummaryJSON([]byte(`{"summary":"ok","note":"x"}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.NotContains(t, m, "note")
		assert.Contains(t, dropped, "note(unknown)")
	})

	t.Run("parses stringified confidence", func(t *testing.T) {
		out, _, err := SanitizeSummaryJSON([]byte(`{"summary":"ok","confidence":"0.8"}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.InDelta(t, 0.8, m["confidence"], 1e-9)
	})

	t.Run("drops out-of-range confidence", func(t *testing.T) {
		out, dropped, err := SanitizeSummaryJSON([]byte(`{"summary":"ok","confidence":1.5}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.NotContains(t, m, "confidence")
		assert.Contains(t, dropped, "confidence(range)")
	})

	t.Run("trims summary", func(t *testing.T) {
		out, _, err := SanitizeSummaryJSON([]byte(`{"summary":"  ok  "}`), nil)
		require.NoError(t, err)
		m := decode(t, out)
		assert.Equal(t, "ok", m["summary"])
	})
}

func TestValidateSummarySchema(t *testing.T) {
	schema := BuildSummaryJSONSchema()

	require.NoError(t, ValidateJSONAgainstSchema(schema, []byte(`{"summary":"fine","recommendations":["a"],"confidence":0.5}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"recommendations":["a"]}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"summary":""}`)))
	assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(`{"summary":"x","note":"y"}`)))
}

func TestServiceUsesRemoteWhenHealthy(t *testing.T) {
	stub := &stubSummarizer{res: SummaryResult{
		Summary:         "Model reading of the document.",
		Recommendations: []string{"Hydrate."},
		Source:          "gpt-3.5-turbo",
	}}
	svc := NewService(ServiceConfig{}, stub, nil)

	res, err := svc.Summarize(context.Background(), SummaryRequest{Category: constants.General})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, "gpt-3.5-turbo", res.Source)
	assert.True(t, strings.HasPrefix(res.Summary, "Model reading of the document."))
	assert.Equal(t, 1, strings.Count(res.Summary, Disclaimer(constants.General)))
	assert.Empty(t, res.Warnings)
}

func TestServiceFallsBackOnRemoteError(t *testing.T) {
	stub := &stubSummarizer{err: errors.New("upstream down")}
	svc := NewService(ServiceConfig{}, stub, nil)

	res, err := svc.Summarize(context.Background(), SummaryRequest{
		Category: constants.Prescription,
		Fields: entity.StructuredFields{Medications: []entity.MedicationEntry{
			{Name: "Aspirin", Dosage: 100, Unit: "mg"},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, RuleBasedSource, res.Source)
	assert.Contains(t, res.Summary, "1 medications identified")
	assert.Equal(t, 1, strings.Count(res.Summary, Disclaimer(constants.Prescription)))
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "ai summary unavailable")
}

func TestServiceWithoutRemote(t *testing.T) {
	svc := NewService(ServiceConfig{}, nil, nil)

	res, err := svc.Summarize(context.Background(), SummaryRequest{Category: constants.General})
	require.NoError(t, err)
	assert.Equal(t, RuleBasedSource, res.Source)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, strings.Count(res.Summary, Disclaimer(constants.General)))
}

func TestServiceCircuitOpensAfterRepeatedFailures(t *testing.T) {
	stub := &stubSummarizer{err: errors.New("upstream down")}
	svc := NewService(ServiceConfig{RequestTimeout: time.Second}, stub, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := svc.Summarize(ctx, SummaryRequest{Category: constants.General})
		require.NoError(t, err)
		assert.Equal(t, RuleBasedSource, res.Source)
	}
	require.Equal(t, 3, stub.calls)

	// The breaker has tripped; the remote must not be called again.
	res, err := svc.Summarize(ctx, SummaryRequest{Category: constants.General})
	require.NoError(t, err)
	assert.Equal(t, RuleBasedSource, res.Source)
	assert.Equal(t, 3, stub.calls)
}

func TestIsCircuitOpen(t *testing.T) {
	assert.True(t, IsCircuitOpen(gobreaker.ErrOpenState))
	assert.True(t, IsCircuitOpen(gobreaker.ErrTooManyRequests))
	assert.False(t, IsCircuitOpen(errors.New("other")))
	assert.False(t, IsCircuitOpen(nil))
}

func TestBuildUserPromptTruncatesText(t *testing.T) {
	text := strings.Repeat("glucose 95 mg/dL\n", 400)
	prompt := BuildUserPrompt(constants.LabReport, text, "labs.pdf")

	assert.Contains(t, prompt, "Filename: labs.pdf")
	assert.Less(t, len(prompt), len(text))
	assert.Contains(t, prompt, "Document text (first ~3k chars):")
}
