package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	UsersRepo    repository.UserRepository
	AnalysesRepo repository.AnalysisRepository
	AllowedExts  map[string]struct{} // lowercased sans '.'; nil -> full supported set
	logger       *slog.Logger
}

func NewFSIngestor(u repository.UserRepository, a repository.AnalysisRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		UsersRepo:    u,
		AnalysesRepo: a,
		logger:       logger,
	}
}

func (i *FSIngestor) allowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	if i.AllowedExts == nil {
		return AllowedExt(ext)
	}
	_, ok := i.AllowedExts[ext]
	return ok
}

func (i *FSIngestor) IngestPath(ctx context.Context, userID uuid.UUID, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("abs path failed", "path", path, "error", err)
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !i.allowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	exists, err := i.UsersRepo.Exists(ctx, userID)
	if err != nil {
		return out, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return out, fmt.Errorf("user not found: %s", userID)
	}

	f, err := os.Open(abs)
	if err != nil {
		i.logger.Error("open failed", "path", abs, "error", err)
		return out, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			i.logger.Warn("close file failed", "path", abs, "error", err)
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return out, fmt.Errorf("stat: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		i.logger.Error("hash failed", "path", abs, "error", err)
		return out, err
	}
	sum := h.Sum(nil)

	row, dedup, err := i.AnalysesRepo.EnqueueFile(ctx, userID, abs, filepath.Base(abs), ext, fi.Size(), sum)
	if err != nil {
		return out, err
	}

	out = IngestionResult{
		SourcePath:   row.FilePath,
		AnalysisID:   row.ID.String(),
		Deduplicated: dedup,
		HashHex:      hex.EncodeToString(sum),
		FileExt:      row.FileExt,
		SizeBytes:    row.FileSize,
		Status:       string(row.Status),
		UploadedAt:   row.CreatedAt,
	}
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	userID uuid.UUID,
	root string,
	skipHidden bool,
) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !i.allowedExt(ext) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, userID, path)
		if err != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: err.Error()})
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	return results, stats, nil
}
