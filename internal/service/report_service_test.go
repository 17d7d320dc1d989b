package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/pkg/jobs"
	"github.com/skillbridge-app/skillbridge-api/pkg/storage"
)

type stubReportRepo struct {
	jobs      map[string]*models.ReportJob
	completed map[string]string
	failed    map[string]string
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{jobs: map[string]*models.ReportJob{}, completed: map[string]string{}, failed: map[string]string{}}
}

func (s *stubReportRepo) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	s.jobs[job.ID] = job
	return nil
}

func (s *stubReportRepo) FindByID(ctx context.Context, id string) (*models.ReportJob, error) {
	if j, ok := s.jobs[id]; ok {
		copied := *j
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubReportRepo) MarkProcessing(ctx context.Context, id string) error {
	s.jobs[id].Status = models.ReportStatusProcessing
	return nil
}

func (s *stubReportRepo) MarkCompleted(ctx context.Context, id, filePath string) error {
	s.jobs[id].Status = models.ReportStatusCompleted
	s.jobs[id].FilePath = filePath
	s.completed[id] = filePath
	return nil
}

func (s *stubReportRepo) MarkFailed(ctx context.Context, id, message string) error {
	s.jobs[id].Status = models.ReportStatusFailed
	s.failed[id] = message
	return nil
}

type stubReportApplications struct {
	rows []models.ApplicationDetail
}

func (s *stubReportApplications) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return s.rows, len(s.rows), nil
}

type stubReportStore struct {
	objects map[string][]byte
}

func (s *stubReportStore) Save(bucket, object string, data []byte) error {
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[bucket+"/"+object] = data
	return nil
}

type stubReportQueue struct {
	enqueued []jobs.Job
}

func (s *stubReportQueue) Enqueue(job jobs.Job) error {
	s.enqueued = append(s.enqueued, job)
	return nil
}

func TestRequestQueuesJob(t *testing.T) {
	repo := newStubReportRepo()
	queue := &stubReportQueue{}
	svc := NewReportService(repo, &stubReportApplications{}, &stubReportStore{}, nil, nil, nil)
	svc.AttachQueue(queue)

	job, err := svc.Request(context.Background(), "emp-1", dto.CreateReportRequest{OpportunityID: "opp-1", Format: "csv"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	require.Len(t, queue.enqueued, 1)
	assert.Equal(t, job.ID, queue.enqueued[0].Payload)
}

func TestProcessRendersCSV(t *testing.T) {
	repo := newStubReportRepo()
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", OpportunityID: "opp-1", Format: models.ReportFormatCSV, Status: models.ReportStatusQueued}
	applications := &stubReportApplications{rows: []models.ApplicationDetail{{
		Application:      models.Application{ID: "app-1", Status: models.ApplicationStatusPending, CreatedAt: time.Now()},
		StudentFirstName: "Jane",
		StudentLastName:  "Doe",
		OpportunityTitle: "React Developer",
	}}}
	store := &stubReportStore{}
	svc := NewReportService(repo, applications, store, nil, nil, nil)

	err := svc.Process(context.Background(), jobs.Job{ID: "job-1", Payload: "job-1"})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusCompleted, repo.jobs["job-1"].Status)

	content := string(store.objects["reports/opp-1/job-1.csv"])
	assert.True(t, strings.Contains(content, "Jane Doe"))
	assert.True(t, strings.Contains(content, "React Developer"))
}

func TestProcessRendersPDF(t *testing.T) {
	repo := newStubReportRepo()
	repo.jobs["job-2"] = &models.ReportJob{ID: "job-2", OpportunityID: "opp-1", Format: models.ReportFormatPDF, Status: models.ReportStatusQueued}
	store := &stubReportStore{}
	svc := NewReportService(repo, &stubReportApplications{}, store, nil, nil, nil)

	err := svc.Process(context.Background(), jobs.Job{ID: "job-2", Payload: "job-2"})
	require.NoError(t, err)
	assert.NotEmpty(t, store.objects["reports/opp-1/job-2.pdf"])
}

func TestGetCompletedJobSignsDownload(t *testing.T) {
	repo := newStubReportRepo()
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", OpportunityID: "opp-1", RequestedBy: "emp-1", Format: models.ReportFormatCSV, Status: models.ReportStatusCompleted, FilePath: "opp-1/job-1.csv"}
	signer := storage.NewSignedURLSigner("secret", time.Minute)
	svc := NewReportService(repo, &stubReportApplications{}, &stubReportStore{}, signer, nil, nil)

	resp, err := svc.Get(context.Background(), "job-1", "emp-1")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.DownloadURL)
	require.NotNil(t, resp.ExpiresAt)

	bucket, object, _, err := signer.Parse(resp.DownloadURL, false)
	require.NoError(t, err)
	assert.Equal(t, storage.BucketReports, bucket)
	assert.Equal(t, "opp-1/job-1.csv", object)
}

func TestGetOtherUsersJobForbidden(t *testing.T) {
	repo := newStubReportRepo()
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", RequestedBy: "emp-1", Status: models.ReportStatusQueued}
	svc := NewReportService(repo, &stubReportApplications{}, &stubReportStore{}, nil, nil, nil)

	_, err := svc.Get(context.Background(), "job-1", "emp-2")
	require.Error(t, err)
}
