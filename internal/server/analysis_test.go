package server

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	"github.com/anudeep227/personal-health-manager/constants"
	"github.com/anudeep227/personal-health-manager/gen/ent"
	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/analysis"
	"github.com/anudeep227/personal-health-manager/internal/classify"
	"github.com/anudeep227/personal-health-manager/internal/entity"
	"github.com/anudeep227/personal-health-manager/internal/extract"
	"github.com/anudeep227/personal-health-manager/internal/fields"
	"github.com/anudeep227/personal-health-manager/internal/ingest"
	"github.com/anudeep227/personal-health-manager/internal/repository"
	"github.com/anudeep227/personal-health-manager/internal/summarize"
)

type fakeAnalysisStore struct {
	repository.AnalysisRepository
	rows      map[uuid.UUID]*entity.DocumentAnalysis
	hits      []*entity.SearchHit
	stats     *entity.AnalysisStats
	listCat   *constants.Category
	listLimit int
	searchErr error
}

func newFakeAnalysisStore(rows ...*entity.DocumentAnalysis) *fakeAnalysisStore {
	m := make(map[uuid.UUID]*entity.DocumentAnalysis, len(rows))
	for _, r := range rows {
		m[r.ID] = r
	}
	return &fakeAnalysisStore{rows: m}
}

func (f *fakeAnalysisStore) GetByID(_ context.Context, id uuid.UUID) (*entity.DocumentAnalysis, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, &ent.NotFoundError{}
	}
	return row, nil
}

func (f *fakeAnalysisStore) MarkRunning(_ context.Context, id uuid.UUID) error {
	if row, ok := f.rows[id]; ok {
		row.Status = constants.AnalysisRunning
	}
	return nil
}

func (f *fakeAnalysisStore) StoreResult(_ context.Context, id uuid.UUID, res *entity.AnalysisResult) (*entity.DocumentAnalysis, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, &ent.NotFoundError{}
	}
	row.Category = res.Category
	row.Status = res.Status()
	row.Summary = res.Summary
	row.Warnings = res.Warnings
	return row, nil
}

func (f *fakeAnalysisStore) ListByUser(_ context.Context, _ uuid.UUID, category *constants.Category, limit int) ([]*entity.DocumentAnalysis, error) {
	f.listCat, f.listLimit = category, limit
	out := make([]*entity.DocumentAnalysis, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAnalysisStore) Search(context.Context, uuid.UUID, string, int) ([]*entity.SearchHit, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.hits, nil
}

func (f *fakeAnalysisStore) Stats(context.Context, uuid.UUID) (*entity.AnalysisStats, error) {
	return f.stats, nil
}

type fakeDocIngestor struct {
	res ingest.IngestionResult
	err error
}

func (f *fakeDocIngestor) IngestPath(context.Context, uuid.UUID, string) (ingest.IngestionResult, error) {
	return f.res, f.err
}

func (f *fakeDocIngestor) IngestDirectory(context.Context, uuid.UUID, string, bool) ([]ingest.IngestionResult, ingest.DirStats, error) {
	return nil, ingest.DirStats{}, errors.New("not used")
}

func newAnalysisServer(t *testing.T, ing ingest.Ingestor, store *fakeAnalysisStore) *AnalysisServer {
	t.Helper()
	analyzer := analysis.NewAnalyzer(analysis.Config{},
		extract.NewExtractor(extract.Config{}, nil),
		classify.NewClassifier(nil),
		fields.NewExtractor(nil),
		summarize.NewService(summarize.ServiceConfig{}, nil, nil),
		nil,
	)
	proc := analysis.NewProcessor(analyzer, store, discardLogger())
	return NewAnalysisServer(ing, proc, store, discardLogger())
}

func TestAnalyzeDocumentRunsPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labs.txt")
	require.NoError(t, os.WriteFile(path, []byte("Glucose: 95 mg/dL"), 0o644))

	id := uuid.New()
	userID := uuid.New()
	store := newFakeAnalysisStore(&entity.DocumentAnalysis{
		ID:       id,
		UserID:   userID,
		FilePath: path,
		Filename: "labs.txt",
	})
	ing := &fakeDocIngestor{res: ingest.IngestionResult{AnalysisID: id.String(), SourcePath: path}}
	srv := newAnalysisServer(t, ing, store)

	resp, err := srv.AnalyzeDocument(context.Background(), &v1.AnalyzeDocumentRequest{
		UserId: userID.String(),
		Path:   path,
	})

	require.NoError(t, err)
	a := resp.GetAnalysis()
	require.NotNil(t, a)
	assert.Equal(t, id.String(), a.GetId())
	assert.Equal(t, string(constants.LabReport), a.GetCategory())
	assert.Equal(t, string(constants.AnalysisCompleted), a.GetStatus())
	assert.NotEmpty(t, a.GetSummary())
}

func TestAnalyzeDocumentRequiresUser(t *testing.T) {
	srv := newAnalysisServer(t, &fakeDocIngestor{}, newFakeAnalysisStore())

	_, err := srv.AnalyzeDocument(context.Background(), &v1.AnalyzeDocumentRequest{
		UserId: "nope",
		Path:   "/tmp/x.txt",
	})

	requireCode(t, err, codes.InvalidArgument)
}

func TestAnalyzeDocumentIngestRejected(t *testing.T) {
	ing := &fakeDocIngestor{err: errors.New("unsupported file extension")}
	srv := newAnalysisServer(t, ing, newFakeAnalysisStore())

	_, err := srv.AnalyzeDocument(context.Background(), &v1.AnalyzeDocumentRequest{
		UserId: uuid.NewString(),
		Path:   "/tmp/report.csv",
	})

	requireCode(t, err, codes.InvalidArgument)
}

func TestGetAnalysisNotFound(t *testing.T) {
	srv := newAnalysisServer(t, &fakeDocIngestor{}, newFakeAnalysisStore())

	_, err := srv.GetAnalysis(context.Background(), &v1.GetAnalysisRequest{AnalysisId: uuid.NewString()})

	requireCode(t, err, codes.NotFound)
}

func TestListAnalysesCanonicalizesCategory(t *testing.T) {
	store := newFakeAnalysisStore()
	srv := newAnalysisServer(t, &fakeDocIngestor{}, store)

	_, err := srv.ListAnalyses(context.Background(), &v1.ListAnalysesRequest{
		UserId:   uuid.NewString(),
		Category: "lab",
	})

	require.NoError(t, err)
	require.NotNil(t, store.listCat)
	assert.Equal(t, constants.LabReport, *store.listCat)
	assert.Equal(t, defaultListLimit, store.listLimit)
}

func TestListAnalysesUnknownCategory(t *testing.T) {
	srv := newAnalysisServer(t, &fakeDocIngestor{}, newFakeAnalysisStore())

	_, err := srv.ListAnalyses(context.Background(), &v1.ListAnalysesRequest{
		UserId:   uuid.NewString(),
		Category: "receipts",
	})

	requireCode(t, err, codes.InvalidArgument)
}

func TestSearchAnalysesRequiresQuery(t *testing.T) {
	srv := newAnalysisServer(t, &fakeDocIngestor{}, newFakeAnalysisStore())

	_, err := srv.SearchAnalyses(context.Background(), &v1.SearchAnalysesRequest{
		UserId: uuid.NewString(),
		Query:  "   ",
	})

	requireCode(t, err, codes.InvalidArgument)
}

func TestSearchAnalysesFiltersByCategory(t *testing.T) {
	lab := &entity.DocumentAnalysis{ID: uuid.New(), Category: constants.LabReport}
	rx := &entity.DocumentAnalysis{ID: uuid.New(), Category: constants.Prescription}
	store := newFakeAnalysisStore()
	store.hits = []*entity.SearchHit{
		{Document: lab, Score: 0.8},
		{Document: rx, Score: 0.5},
	}
	srv := newAnalysisServer(t, &fakeDocIngestor{}, store)

	resp, err := srv.SearchAnalyses(context.Background(), &v1.SearchAnalysesRequest{
		UserId:   uuid.NewString(),
		Query:    "glucose",
		Category: "prescription",
	})

	require.NoError(t, err)
	require.Len(t, resp.GetResults(), 1)
	assert.Equal(t, rx.ID.String(), resp.GetResults()[0].GetDocument().GetId())
}

func TestGetDocumentStats(t *testing.T) {
	store := newFakeAnalysisStore()
	store.stats = &entity.AnalysisStats{
		Total:         3,
		ByCategory:    map[string]int{"LAB_REPORT": 2, "PRESCRIPTION": 1},
		ByStatus:      map[string]int{"COMPLETED": 3},
		AvgConfidence: 0.92,
		TotalBytes:    4096,
	}
	srv := newAnalysisServer(t, &fakeDocIngestor{}, store)

	resp, err := srv.GetDocumentStats(context.Background(), &v1.GetDocumentStatsRequest{UserId: uuid.NewString()})

	require.NoError(t, err)
	assert.Equal(t, int32(3), resp.GetTotal())
	assert.Equal(t, int32(2), resp.GetByCategory()["LAB_REPORT"])
	assert.InDelta(t, 0.92, resp.GetAvgConfidence(), 1e-9)
	assert.Equal(t, int64(4096), resp.GetTotalBytes())
}
