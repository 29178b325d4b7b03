package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/analysis"
	"github.com/anudeep227/personal-health-manager/internal/classify"
	"github.com/anudeep227/personal-health-manager/internal/common"
	"github.com/anudeep227/personal-health-manager/internal/export"
	"github.com/anudeep227/personal-health-manager/internal/extract"
	"github.com/anudeep227/personal-health-manager/internal/fields"
	"github.com/anudeep227/personal-health-manager/internal/ingest"
	repo "github.com/anudeep227/personal-health-manager/internal/repository"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
	"github.com/anudeep227/personal-health-manager/internal/summarize/openai"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	// Parse CLI flags
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir     = flag.String("dir", "", "directory to analyze documents from (required)")
		userStr = flag.String("user", "", "user ID (optional on single-user installs)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		fromStr = flag.String("from", "", "from date YYYY-MM-DD")
		toStr   = flag.String("to", "", "to date YYYY-MM-DD")
	)
	flag.Parse()

	// Validate required flags
	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}

	// If output file not specified, use parent directory with default filename
	if *out == "" {
		parentDir := filepath.Dir(*dir)
		*out = filepath.Join(parentDir, "health-export.xlsx")
	}

	// Parse date filters
	var from, to *time.Time
	if *fromStr != "" {
		if parsed, err := time.Parse("2006-01-02", *fromStr); err != nil {
			printError("Error: invalid --from date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		} else {
			from = &parsed
		}
	}
	if *toStr != "" {
		if parsed, err := time.Parse("2006-01-02", *toStr); err != nil {
			printError("Error: invalid --to date format, use YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		} else {
			to = &parsed
		}
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	_ = godotenv.Load() // ignore error if .env doesn't exist

	// Load configuration for OCR, LLM and database
	cfg := common.LoadConfig()
	dbURL := cfg.Database.DSN
	if *inmem {
		dbURL = ":memory:"
	}

	entc, pool, err := repo.Open(ctx, repo.Config{
		DSN:             dbURL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(entc, pool, logger)

	if err := repo.Migrate(ctx, entc); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	// Wire repositories
	usersRepo := repo.NewUserRepository(entc, logger)
	medsRepo := repo.NewMedicationRepository(entc, logger)
	recordsRepo := repo.NewHealthRecordRepository(entc, logger)
	analysesRepo := repo.NewAnalysisRepository(entc, logger)

	userID, err := resolveUser(ctx, usersRepo, *userStr)
	if err != nil {
		logger.Error("failed to resolve user", "error", err)
		os.Exit(1)
	}
	logger.Info("using user", "id", userID)

	// Setup extraction
	extractor := extract.NewExtractor(extract.Config{
		Tesseract:     cfg.OCR.Tesseract,
		Pdftoppm:      cfg.OCR.Pdftoppm,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	// Setup OpenAI client (graceful if missing)
	var remote summarize.Summarizer
	if cfg.LLM.APIKey != "" {
		remote = openai.NewClient(openai.Config{
			Model:       cfg.LLM.Model,
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Timeout:     cfg.LLM.Timeout,
			Temperature: cfg.LLM.Temperature,
		}, logger)
		logger.Info("OpenAI client initialized", "model", cfg.LLM.Model)
	} else {
		logger.Warn("OpenAI API key not configured, summaries use the rule-based fallback")
	}

	// Setup pipeline
	analyzer := analysis.NewAnalyzer(analysis.Config{MaxFileSize: cfg.Pipeline.MaxFileSize},
		extractor,
		classify.NewClassifier(logger),
		fields.NewExtractor(logger),
		summarize.NewService(summarize.ServiceConfig{}, remote, logger),
		logger,
	)
	processor := analysis.NewProcessor(analyzer, analysesRepo, logger)

	// Setup ingestor
	ingestor := ingest.NewFSIngestor(usersRepo, analysesRepo, logger)

	// Ingest directory
	logger.Info("starting ingestion", "dir", *dir, "user", userID)
	results, stats, err := ingestor.IngestDirectory(ctx, userID, *dir, true)
	if err != nil {
		logger.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}

	// Collect analysis IDs worth a run; duplicates already analyzed are done,
	// but a duplicate stuck in QUEUED from an aborted run still counts.
	var pending []uuid.UUID
	for _, result := range results {
		if result.Err != "" {
			continue
		}
		if result.Deduplicated && result.Status != string(constants.AnalysisQueued) {
			continue
		}
		id, err := uuid.Parse(result.AnalysisID)
		if err != nil {
			logger.Error("failed to parse analysis ID", "analysis_id", result.AnalysisID, "error", err)
			continue
		}
		pending = append(pending, id)
	}
	logger.Info("ingestion complete",
		"pending_analyses", len(pending),
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"deduplicated", stats.Deduplicated)

	// Analyze each ingested document
	processed := 0
	failures := 0

	for _, id := range pending {
		logger.Info("analyzing document", "analysis_id", id)
		doc, err := processor.ProcessDocument(ctx, id)
		if err != nil {
			logger.Error("failed to analyze document", "analysis_id", id, "error", err)
			failures++
			continue
		}
		processed++
		logger.Info("document analyzed", "analysis_id", id, "category", doc.Category, "status", doc.Status)
	}

	// Export to XLSX
	logger.Info("exporting to XLSX", "output", *out)
	exportService := export.NewService(medsRepo, recordsRepo, analysesRepo, logger)

	xlsxBytes, err := exportService.ExportHealthXLSX(ctx, userID, from, to)
	if err != nil {
		logger.Error("failed to export health data", "error", err)
		os.Exit(1)
	}

	// Write to file
	err = os.WriteFile(*out, xlsxBytes, 0644)
	if err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	// Log summary
	logger.Info("batch processing complete",
		"documents_ingested", len(pending),
		"documents_analyzed", processed,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch analysis complete!\n")
	fmt.Printf("- Documents ingested: %d\n", len(pending))
	fmt.Printf("- Documents analyzed: %d\n", processed)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// resolveUser picks the user to ingest under. An explicit ID wins; otherwise a
// single-user install uses its only user, and an empty database gets one.
func resolveUser(ctx context.Context, users repo.UserRepository, arg string) (uuid.UUID, error) {
	if arg != "" {
		return uuid.Parse(arg)
	}
	all, err := users.List(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	switch len(all) {
	case 0:
		created, err := users.Create(ctx, &repo.User{FirstName: "Local", LastName: "Batch"})
		if err != nil {
			return uuid.Nil, err
		}
		return created.ID, nil
	case 1:
		return all[0].ID, nil
	default:
		return uuid.Nil, fmt.Errorf("%d users exist, pass --user", len(all))
	}
}
