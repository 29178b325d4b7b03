package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/extract"
	"github.com/anudeep227/personal-health-manager/internal/repository"
)

type fakeAnalysisRepo struct {
	repository.AnalysisRepository
	row        *entity.DocumentAnalysis
	getErr     error
	storeErr   error
	marked     []uuid.UUID
	storedRes  *entity.AnalysisResult
	storeCalls int
}

func (f *fakeAnalysisRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.DocumentAnalysis, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.row == nil || f.row.ID != id {
		return nil, errors.New("not found")
	}
	return f.row, nil
}

func (f *fakeAnalysisRepo) MarkRunning(_ context.Context, id uuid.UUID) error {
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeAnalysisRepo) StoreResult(_ context.Context, id uuid.UUID, res *entity.AnalysisResult) (*entity.DocumentAnalysis, error) {
	f.storeCalls++
	if f.storeErr != nil {
		return nil, f.storeErr
	}
	f.storedRes = res
	return &entity.DocumentAnalysis{
		ID:       id,
		UserID:   res.UserID,
		Category: res.Category,
		Status:   res.Status(),
		Summary:  res.Summary,
	}, nil
}

func newTestProcessor(t *testing.T, repo *fakeAnalysisRepo) *Processor {
	t.Helper()
	a := newAnalyzer(t, Config{}, extract.NewExtractor(extract.Config{}, nil))
	return NewProcessor(a, repo, nil)
}

func TestProcessDocumentStoresResult(t *testing.T) {
	path := writeTempFile(t, "labs.txt", "Glucose: 95 mg/dL")
	id := uuid.New()
	repo := &fakeAnalysisRepo{row: &entity.DocumentAnalysis{
		ID:       id,
		UserID:   uuid.New(),
		FilePath: path,
	}}

	stored, err := newTestProcessor(t, repo).ProcessDocument(context.Background(), id)

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []uuid.UUID{id}, repo.marked)
	assert.Equal(t, constants.LabReport, stored.Category)
	assert.Equal(t, constants.AnalysisCompleted, stored.Status)
	require.NotNil(t, repo.storedRes)
	assert.Equal(t, repo.row.UserID, repo.storedRes.UserID)
}

func TestProcessDocumentStoresFailedRun(t *testing.T) {
	id := uuid.New()
	repo := &fakeAnalysisRepo{row: &entity.DocumentAnalysis{
		ID:       id,
		UserID:   uuid.New(),
		FilePath: "/nonexistent/gone.txt",
	}}

	stored, err := newTestProcessor(t, repo).ProcessDocument(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, constants.AnalysisFailed, stored.Status)
	require.NotNil(t, repo.storedRes)
	require.NotNil(t, repo.storedRes.Err)
	assert.Equal(t, entity.ErrCodeExtractionFailed, repo.storedRes.Err.Code)
}

func TestProcessDocumentLoadFailure(t *testing.T) {
	repo := &fakeAnalysisRepo{getErr: errors.New("connection refused")}

	_, err := newTestProcessor(t, repo).ProcessDocument(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load document")
	assert.Empty(t, repo.marked)
	assert.Zero(t, repo.storeCalls)
}

func TestProcessDocumentStoreFailure(t *testing.T) {
	path := writeTempFile(t, "note.txt", "take with food")
	id := uuid.New()
	repo := &fakeAnalysisRepo{
		row:      &entity.DocumentAnalysis{ID: id, UserID: uuid.New(), FilePath: path},
		storeErr: errors.New("disk full"),
	}

	_, err := newTestProcessor(t, repo).ProcessDocument(context.Background(), id)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store result")
}
