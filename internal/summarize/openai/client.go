package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
)

// Summarize implements summarize.Summarizer using text-only chat/completions
// with a JSON-object response constrained by a schema we also validate
// locally.
func (c *Client) Summarize(ctx context.Context, req summarize.SummaryRequest) (summarize.SummaryResult, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.summarize.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"category", req.Category,
		"text_len", len(req.Text),
	)

	schema := summarize.BuildSummaryJSONSchema()
	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": summarize.BuildSystemPrompt()},
			{"role": "user", "content": summarize.BuildUserPrompt(req.Category, req.Text, req.Filename)},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.summarize.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return summarize.SummaryResult{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.summarize.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return summarize.SummaryResult{}, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.logger.Error("llm.summarize.no_choices",
			"req_id", rid, "raw", clip(string(raw), 2048),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return summarize.SummaryResult{}, fmt.Errorf("no choices in openai response")
	}
	rawContent := []byte(strings.TrimSpace(cc.Choices[0].Message.Content))

	// Validate strictly first; on failure sanitize once and re-validate.
	if err := summarize.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		cleaned, dropped, sErr := summarize.SanitizeSummaryJSON(rawContent, c.logger)
		if sErr != nil {
			c.logger.Error("llm.summarize.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return summarize.SummaryResult{}, fmt.Errorf("sanitize failed: %w", sErr)
		}
		if vErr := summarize.ValidateJSONAgainstSchema(schema, cleaned); vErr != nil {
			c.logger.Error("llm.summarize.schema_validation_failed",
				"req_id", rid, "error", vErr, "content", clip(string(rawContent), 2048),
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return summarize.SummaryResult{}, fmt.Errorf("schema validation failed: %w", vErr)
		}
		c.logger.Warn("llm.summarize.sanitize_applied",
			"req_id", rid, "dropped", dropped,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		rawContent = cleaned
	}

	var out struct {
		Summary         string   `json:"summary"`
		Recommendations []string `json:"recommendations"`
		Confidence      float32  `json:"confidence,omitempty"`
	}
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.logger.Error("llm.summarize.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return summarize.SummaryResult{}, fmt.Errorf("unmarshal summary: %w", err)
	}

	c.logger.Info("llm.summarize.ok",
		"req_id", rid,
		"summary_len", len(out.Summary),
		"recommendations", len(out.Recommendations),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return summarize.SummaryResult{
		Summary:         out.Summary,
		Recommendations: out.Recommendations,
		Source:          c.cfg.Model,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAPIUnavailable, err)
	}
	defer func(Body io.ReadCloser) {
		if cerr := Body.Close(); cerr != nil {
			c.logger.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: openai status %d: %s", common.ErrAPIUnavailable, resp.StatusCode, clip(string(raw), 2048))
	}
	return raw, nil
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
