package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"

	v1 "github.com/anudeep227/personal-health-manager/gen/proto/health/v1"
	"github.com/anudeep227/personal-health-manager/internal/async"
	"github.com/anudeep227/personal-health-manager/internal/ingest"
)

type fakeJobQueue struct {
	jobs []async.Job
}

func (q *fakeJobQueue) Enqueue(_ context.Context, j async.Job) error {
	q.jobs = append(q.jobs, j)
	return nil
}

func (q *fakeJobQueue) Shutdown(context.Context) {}

type fakeDirIngestor struct {
	fakeDocIngestor
	skipHidden bool
	results    []ingest.IngestionResult
	stats      ingest.DirStats
}

func (f *fakeDirIngestor) IngestDirectory(_ context.Context, _ uuid.UUID, _ string, skipHidden bool) ([]ingest.IngestionResult, ingest.DirStats, error) {
	f.skipHidden = skipHidden
	return f.results, f.stats, nil
}

func newIngestionServer(ing ingest.Ingestor, q async.Queue) *IngestionServer {
	svc := ingest.NewService(ing, newFakeUserRepo(), q, discardLogger())
	return NewIngestionServer(svc, discardLogger())
}

func TestIngestFileMapsResult(t *testing.T) {
	id := uuid.New()
	uploaded := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	ing := &fakeDocIngestor{res: ingest.IngestionResult{
		SourcePath: "/inbox/labs.pdf",
		AnalysisID: id.String(),
		HashHex:    "deadbeef",
		FileExt:    "pdf",
		SizeBytes:  2048,
		Status:     "QUEUED",
		UploadedAt: uploaded,
	}}
	q := &fakeJobQueue{}
	srv := newIngestionServer(ing, q)

	resp, err := srv.IngestFile(context.Background(), &v1.IngestFileRequest{
		UserId: uuid.NewString(),
		Path:   "/inbox/labs.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, id.String(), resp.GetAnalysisId())
	assert.Equal(t, "deadbeef", resp.GetContentHashHex())
	assert.Equal(t, "pdf", resp.GetFileExt())
	assert.Equal(t, "2026-03-14T09:26:53Z", resp.GetUploadedAt())
	assert.Equal(t, "/inbox/labs.pdf", resp.GetSourcePath())
	assert.Empty(t, resp.GetError())
	require.Len(t, q.jobs, 1)
	assert.Equal(t, id, q.jobs[0].AnalysisID)
}

func TestIngestFileRejectsBadUserID(t *testing.T) {
	srv := newIngestionServer(&fakeDocIngestor{}, &fakeJobQueue{})

	_, err := srv.IngestFile(context.Background(), &v1.IngestFileRequest{
		UserId: "someone",
		Path:   "/inbox/labs.pdf",
	})

	requireCode(t, err, codes.InvalidArgument)
}

func TestIngestDirectorySkipsHiddenByDefault(t *testing.T) {
	ing := &fakeDirIngestor{}
	srv := newIngestionServer(ing, &fakeJobQueue{})

	_, err := srv.IngestDirectory(context.Background(), &v1.IngestDirectoryRequest{
		UserId:   uuid.NewString(),
		RootPath: "/inbox",
	})

	require.NoError(t, err)
	assert.True(t, ing.skipHidden)
}

func TestIngestDirectoryIncludesHiddenWhenAsked(t *testing.T) {
	ing := &fakeDirIngestor{}
	srv := newIngestionServer(ing, &fakeJobQueue{})

	_, err := srv.IngestDirectory(context.Background(), &v1.IngestDirectoryRequest{
		UserId:        uuid.NewString(),
		RootPath:      "/inbox",
		IncludeHidden: true,
	})

	require.NoError(t, err)
	assert.False(t, ing.skipHidden)
}

func TestIngestDirectoryMapsStatsAndResults(t *testing.T) {
	okID := uuid.New()
	ing := &fakeDirIngestor{
		results: []ingest.IngestionResult{
			{SourcePath: "/inbox/a.pdf", AnalysisID: okID.String(), UploadedAt: time.Now()},
			{SourcePath: "/inbox/b.tiff", Err: "unsupported file extension"},
		},
		stats: ingest.DirStats{Scanned: 5, Matched: 2, Succeeded: 1, Failed: 1},
	}
	q := &fakeJobQueue{}
	srv := newIngestionServer(ing, q)

	resp, err := srv.IngestDirectory(context.Background(), &v1.IngestDirectoryRequest{
		UserId:   uuid.NewString(),
		RootPath: "/inbox",
	})

	require.NoError(t, err)
	assert.Equal(t, uint32(5), resp.GetScanned())
	assert.Equal(t, uint32(2), resp.GetMatched())
	assert.Equal(t, uint32(1), resp.GetSucceeded())
	assert.Equal(t, uint32(1), resp.GetFailed())
	require.Len(t, resp.GetResults(), 2)
	assert.Equal(t, okID.String(), resp.GetResults()[0].GetAnalysisId())
	assert.Equal(t, "unsupported file extension", resp.GetResults()[1].GetError())
	require.Len(t, q.jobs, 1)
}
