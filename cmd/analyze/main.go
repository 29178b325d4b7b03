package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/anudeep227/personal-health-manager/internal/analysis"
	"github.com/anudeep227/personal-health-manager/internal/classify"
	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/extract"
	"github.com/anudeep227/personal-health-manager/internal/fields"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
	"github.com/anudeep227/personal-health-manager/internal/summarize/openai"
)

// analyze runs the document pipeline on one local file, no database involved,
// and prints the result as JSON. Logs go to stderr so stdout stays parseable.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load() // ignore error if .env doesn't exist

	if len(os.Args) < 2 || len(os.Args) > 3 {
		logger.Error("usage", "cmd", "analyze <path> [user-id-uuid]")
		os.Exit(2)
	}
	path := os.Args[1]

	userID := uuid.Nil
	if len(os.Args) == 3 {
		id, err := uuid.Parse(os.Args[2])
		if err != nil {
			logger.Error("invalid user id (must be UUID)", "arg", os.Args[2], "error", err)
			os.Exit(2)
		}
		userID = id
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := common.LoadConfig()

	var remote summarize.Summarizer
	if cfg.LLM.APIKey != "" {
		remote = openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Timeout:     cfg.LLM.Timeout,
			Temperature: cfg.LLM.Temperature,
		}, logger)
	}

	analyzer := analysis.NewAnalyzer(analysis.Config{MaxFileSize: cfg.Pipeline.MaxFileSize},
		extract.NewExtractor(extract.Config{
			Tesseract:     cfg.OCR.Tesseract,
			Pdftoppm:      cfg.OCR.Pdftoppm,
			TesseractLang: cfg.OCR.TesseractLang,
			DPI:           cfg.OCR.DPI,
			MaxPages:      cfg.OCR.MaxPages,
			TessdataDir:   cfg.OCR.TessdataDir,
		}, logger),
		classify.NewClassifier(logger),
		fields.NewExtractor(logger),
		summarize.NewService(summarize.ServiceConfig{}, remote, logger),
		logger,
	)

	start := time.Now()
	res := analyzer.Analyze(ctx, path, userID)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}

	if res.Failed() {
		logger.Error("analysis failed",
			"path", path,
			"code", res.Err.Code,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		os.Exit(1)
	}
}
