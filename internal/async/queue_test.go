package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/analysis"
	"github.com/anudeep227/personal-health-manager/internal/classify"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/fields"
	"github.com/anudeep227/personal-health-manager/internal/repository"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
)

type stubExtractor struct{}

func (stubExtractor) Extract(_ context.Context, path string) (entity.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.ExtractionResult{}, err
	}
	return entity.ExtractionResult{Text: string(data), Confidence: 1.0, Extractor: "stub"}, nil
}

// fakeAnalysisRepo implements only the methods the processor touches.
type fakeAnalysisRepo struct {
	repository.AnalysisRepository

	mu      sync.Mutex
	rows    map[uuid.UUID]*entity.DocumentAnalysis
	running map[uuid.UUID]bool
	stored  map[uuid.UUID]*entity.AnalysisResult
	done    chan uuid.UUID
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{
		rows:    make(map[uuid.UUID]*entity.DocumentAnalysis),
		running: make(map[uuid.UUID]bool),
		stored:  make(map[uuid.UUID]*entity.AnalysisResult),
		done:    make(chan uuid.UUID, 64),
	}
}

func (f *fakeAnalysisRepo) add(path string) uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.rows[id] = &entity.DocumentAnalysis{
		ID:       id,
		UserID:   uuid.New(),
		Filename: filepath.Base(path),
		FilePath: path,
		Status:   constants.AnalysisQueued,
	}
	return id
}

func (f *fakeAnalysisRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.DocumentAnalysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, errors.New("analysis not found")
	}
	return row, nil
}

func (f *fakeAnalysisRepo) MarkRunning(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.running[id] = true
	return nil
}

func (f *fakeAnalysisRepo) StoreResult(_ context.Context, id uuid.UUID, res *entity.AnalysisResult) (*entity.DocumentAnalysis, error) {
	f.mu.Lock()
	f.stored[id] = res
	row := f.rows[id]
	row.Category = res.Category
	row.Status = res.Status()
	f.mu.Unlock()
	f.done <- id
	return row, nil
}

func (f *fakeAnalysisRepo) result(id uuid.UUID) *entity.AnalysisResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stored[id]
}

func (f *fakeAnalysisRepo) storedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.stored)
}

func (f *fakeAnalysisRepo) wasRunning(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running[id]
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestQueue(repo repository.AnalysisRepository, opts ...Option) *ProcessorQueue {
	logger := discardLogger()
	analyzer := analysis.NewAnalyzer(
		analysis.Config{},
		stubExtractor{},
		classify.NewClassifier(logger),
		fields.NewExtractor(logger),
		summarize.NewService(summarize.ServiceConfig{}, nil, logger),
		logger,
	)
	proc := analysis.NewProcessor(analyzer, repo, logger)
	return NewProcessorQueue(proc, logger, opts...)
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func waitForJobs(t *testing.T, repo *fakeAnalysisRepo, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-repo.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for job %d of %d", i+1, n)
		}
	}
}

func TestQueueProcessesJob(t *testing.T) {
	repo := newFakeAnalysisRepo()
	path := writeTempFile(t, "ecg.txt", "Heart rate: 75 bpm, PR interval: 160 ms")
	id := repo.add(path)

	q := newTestQueue(repo)
	require.NoError(t, q.Enqueue(context.Background(), Job{AnalysisID: id, SubmittedAt: time.Now()}))
	waitForJobs(t, repo, 1)
	q.Shutdown(context.Background())

	assert.True(t, repo.wasRunning(id))
	res := repo.result(id)
	require.NotNil(t, res)
	assert.Equal(t, constants.ECG, res.Category)
	assert.Equal(t, constants.AnalysisCompleted, res.Status())
	assert.Nil(t, res.Err)
}

func TestQueueShutdownDrainsPending(t *testing.T) {
	repo := newFakeAnalysisRepo()
	ids := make([]uuid.UUID, 0, 6)
	for i := 0; i < 6; i++ {
		path := writeTempFile(t, "note.txt", "Glucose: 95 mg/dL")
		ids = append(ids, repo.add(path))
	}

	q := newTestQueue(repo, WithWorkers(1), WithQueueSize(8))
	for _, id := range ids {
		require.NoError(t, q.Enqueue(context.Background(), Job{AnalysisID: id, SubmittedAt: time.Now()}))
	}
	q.Shutdown(context.Background())

	assert.Equal(t, len(ids), repo.storedCount())
	for _, id := range ids {
		assert.True(t, repo.wasRunning(id))
	}
}

func TestQueueEnqueueAfterShutdownIsDropped(t *testing.T) {
	repo := newFakeAnalysisRepo()
	q := newTestQueue(repo)
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{AnalysisID: uuid.New(), SubmittedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, 0, repo.storedCount())

	// double shutdown is a no-op
	q.Shutdown(context.Background())
}

func TestQueueSurvivesProcessingFailure(t *testing.T) {
	repo := newFakeAnalysisRepo()
	q := newTestQueue(repo, WithWorkers(1))

	// unknown row: the processor errors and the worker moves on
	require.NoError(t, q.Enqueue(context.Background(), Job{AnalysisID: uuid.New(), SubmittedAt: time.Now()}))

	path := writeTempFile(t, "labs.txt", "Hemoglobin: 14.2 g/dL")
	id := repo.add(path)
	require.NoError(t, q.Enqueue(context.Background(), Job{AnalysisID: id, SubmittedAt: time.Now()}))
	waitForJobs(t, repo, 1)
	q.Shutdown(context.Background())

	require.NotNil(t, repo.result(id))
	assert.Equal(t, 1, repo.storedCount())
}

func TestQueueOptions(t *testing.T) {
	repo := newFakeAnalysisRepo()
	q := newTestQueue(repo, WithWorkers(2), WithQueueSize(8), WithProcessTimeout(time.Minute))
	defer q.Shutdown(context.Background())

	assert.Equal(t, 2, q.workers)
	assert.Equal(t, 8, cap(q.ch))
	assert.Equal(t, time.Minute, q.timeout)
}
