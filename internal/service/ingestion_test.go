package service_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauri-sd/user-document-management/internal/processor"
	"github.com/gauri-sd/user-document-management/internal/repository"
	"github.com/gauri-sd/user-document-management/internal/service"
	"github.com/gauri-sd/user-document-management/internal/types"
)

const (
	ownerID      = "6f1d0aa7-0001-4c58-9f5a-5b7e2d3c4a01"
	otherOwnerID = "6f1d0aa7-0002-4c58-9f5a-5b7e2d3c4a02"
)

type fakeJobRepo struct {
	mu      sync.Mutex
	nextID  int64
	jobs    map[int64]types.IngestionJob
	updates []types.IngestionJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int64]types.IngestionJob)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *types.IngestionJob) (*types.IngestionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	stored := *job
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.jobs[stored.ID] = stored
	out := stored
	return &out, nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id int64) (*types.IngestionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := job
	return &out, nil
}

func (f *fakeJobRepo) GetByExternalID(ctx context.Context, externalID string) (*types.IngestionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		if job.ExternalJobID == externalID {
			out := job
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeJobRepo) SetExternalID(ctx context.Context, id int64, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return repository.ErrNotFound
	}
	job.ExternalJobID = externalID
	f.jobs[id] = job
	return nil
}

func (f *fakeJobRepo) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, job := range f.jobs {
		if job.ExternalJobID == externalID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeJobRepo) Update(ctx context.Context, job *types.IngestionJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.jobs[job.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := *job
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now()
	f.jobs[job.ID] = updated
	f.updates = append(f.updates, updated)
	return nil
}

func (f *fakeJobRepo) ListByOwner(ctx context.Context, owner string, limit, offset int) ([]types.IngestionJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []types.IngestionJob
	for _, job := range f.jobs {
		if job.CreatedByID == owner {
			jobs = append(jobs, job)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID > jobs[j].ID })
	if offset >= len(jobs) {
		return nil, nil
	}
	jobs = jobs[offset:]
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (f *fakeJobRepo) CountByOwner(ctx context.Context, owner string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, job := range f.jobs {
		if job.CreatedByID == owner {
			count++
		}
	}
	return count, nil
}

func (f *fakeJobRepo) seed(job types.IngestionJob) types.IngestionJob {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	job.ID = f.nextID
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}
	f.jobs[job.ID] = job
	return job
}

func (f *fakeJobRepo) snapshot(t *testing.T, id int64) types.IngestionJob {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	require.True(t, ok, "job %d not in store", id)
	return job
}

func (f *fakeJobRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

func (f *fakeJobRepo) progressHistory(id int64) []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var history []int
	for _, update := range f.updates {
		if update.ID == id {
			history = append(history, update.Progress)
		}
	}
	return history
}

type fakeDocRepo struct {
	docs map[string]types.Document
}

func newFakeDocRepo(docs ...types.Document) *fakeDocRepo {
	f := &fakeDocRepo{docs: make(map[string]types.Document)}
	for _, doc := range docs {
		f.docs[doc.ID] = doc
	}
	return f
}

func (f *fakeDocRepo) GetByIDs(ctx context.Context, ids []string) ([]types.Document, error) {
	var out []types.Document
	for _, id := range ids {
		if doc, ok := f.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

type fakeInvoker struct {
	mu       sync.Mutex
	result   processor.Result
	err      error
	panicMsg string
	calls    int
}

func (f *fakeInvoker) Process(ctx context.Context, jobType types.JobType, documents []types.DocumentSnapshot, parameters map[string]any) (processor.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result, f.err
}

func (f *fakeInvoker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func ownedDoc(id string) types.Document {
	return types.Document{
		ID:       id,
		OwnerID:  ownerID,
		Title:    "Report " + id,
		FileName: id + ".pdf",
		FilePath: ownerID + "/" + id + "/" + id + ".pdf",
		MimeType: "application/pdf",
	}
}

func newIngestionService(jobs *fakeJobRepo, docs *fakeDocRepo, invoker *fakeInvoker) *service.IngestionService {
	return service.NewIngestionService(jobs, docs, invoker, nil, time.Millisecond)
}

func waitForStatus(t *testing.T, repo *fakeJobRepo, id int64, status types.JobStatus) types.IngestionJob {
	t.Helper()
	require.Eventually(t, func() bool {
		return repo.snapshot(t, id).Status == status
	}, 2*time.Second, 5*time.Millisecond, "job %d never reached %s", id, status)
	return repo.snapshot(t, id)
}

func TestTriggerRunsJobToCompletion(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"), ownedDoc("d2"))
	invoker := &fakeInvoker{result: processor.Result{
		Success: true,
		Data:    map[string]any{"pages": 3},
	}}
	svc := newIngestionService(jobs, docs, invoker)

	job, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
		Type:        types.JobTypeOCR,
		DocumentIDs: []string{"d1", "d2"},
	})
	require.NoError(t, err)

	assert.Equal(t, types.JobStatusPending, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.Equal(t, 0, job.RetryCount)
	assert.Equal(t, 3, job.MaxRetries)
	assert.True(t, strings.HasPrefix(job.ExternalJobID, "ing_"), "external id %q", job.ExternalJobID)
	assert.Equal(t, []string{"d1", "d2"}, job.InputData.DocumentIDs)
	require.Len(t, job.InputData.Documents, 2)
	assert.Equal(t, "d1.pdf", job.InputData.Documents[0].FileName)
	assert.NotEmpty(t, job.Name)

	done := waitForStatus(t, jobs, job.ID, types.JobStatusCompleted)
	assert.Equal(t, 100, done.Progress)
	assert.Equal(t, map[string]any{"pages": 3}, done.OutputData)
	require.NotNil(t, done.StartedAt)
	require.NotNil(t, done.CompletedAt)
	assert.Nil(t, done.ErrorMessage)
	assert.Equal(t, 1, invoker.callCount())

	history := jobs.progressHistory(job.ID)
	require.NotEmpty(t, history)
	last := 0
	for _, p := range history {
		assert.GreaterOrEqual(t, p, last, "progress must be monotonically non-decreasing: %v", history)
		last = p
	}
	assert.Contains(t, history, 10)
	assert.Contains(t, history, 100)
}

func TestTriggerExternalIDsAreUnique(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	invoker := &fakeInvoker{result: processor.Result{Success: true}}
	svc := newIngestionService(jobs, docs, invoker)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		job, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
			Type:        types.JobTypeTextExtraction,
			DocumentIDs: []string{"d1"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, job.ExternalJobID)
		assert.False(t, seen[job.ExternalJobID], "duplicate external id %q", job.ExternalJobID)
		seen[job.ExternalJobID] = true
	}
}

func TestTriggerRequestValidation(t *testing.T) {
	badRetries := 11
	negativeRetries := -1

	tests := []struct {
		name string
		req  service.TriggerRequest
	}{
		{"unknown type", service.TriggerRequest{Type: "SENTIMENT", DocumentIDs: []string{"d1"}}},
		{"empty documents", service.TriggerRequest{Type: types.JobTypeOCR}},
		{"max retries too high", service.TriggerRequest{Type: types.JobTypeOCR, DocumentIDs: []string{"d1"}, MaxRetries: &badRetries}},
		{"max retries negative", service.TriggerRequest{Type: types.JobTypeOCR, DocumentIDs: []string{"d1"}, MaxRetries: &negativeRetries}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := newFakeJobRepo()
			docs := newFakeDocRepo(ownedDoc("d1"))
			svc := newIngestionService(jobs, docs, &fakeInvoker{})

			_, err := svc.Trigger(context.Background(), ownerID, tt.req)
			require.ErrorIs(t, err, service.ErrInvalidRequest)
			assert.Equal(t, 0, jobs.count(), "no job may be created on validation failure")
		})
	}
}

func TestTriggerUnknownDocument(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	svc := newIngestionService(jobs, docs, &fakeInvoker{})

	_, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
		Type:        types.JobTypeOCR,
		DocumentIDs: []string{"d1", "missing"},
	})
	require.ErrorIs(t, err, service.ErrInvalidRequest)
	assert.Equal(t, 0, jobs.count())
}

func TestTriggerForeignDocumentDenied(t *testing.T) {
	foreign := ownedDoc("d2")
	foreign.OwnerID = otherOwnerID

	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"), foreign)
	svc := newIngestionService(jobs, docs, &fakeInvoker{})

	_, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
		Type:        types.JobTypeOCR,
		DocumentIDs: []string{"d1", "d2"},
	})
	require.ErrorIs(t, err, service.ErrAccessDenied)
	assert.Equal(t, 0, jobs.count(), "no job may be created when access is denied")
}

func TestExecutionFailureSchedulesRetry(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	invoker := &fakeInvoker{result: processor.Result{Success: false, Error: "ocr engine exploded"}}
	svc := newIngestionService(jobs, docs, invoker)

	job, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
		Type:        types.JobTypeOCR,
		DocumentIDs: []string{"d1"},
	})
	require.NoError(t, err)

	failed := waitForStatus(t, jobs, job.ID, types.JobStatusFailed)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "ocr engine exploded", *failed.ErrorMessage)
	assert.Equal(t, 0, failed.RetryCount, "retry count is untouched by the failure itself")
	require.NotNil(t, failed.CompletedAt)
	require.NotNil(t, failed.NextRetryAt, "retries remain, so a next retry must be suggested")
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), *failed.NextRetryAt, 10*time.Second)
}

func TestExecutionInvokerErrorFailsJob(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	invoker := &fakeInvoker{err: errors.New("connection reset")}
	svc := newIngestionService(jobs, docs, invoker)

	job, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
		Type:        types.JobTypeDataExtraction,
		DocumentIDs: []string{"d1"},
	})
	require.NoError(t, err)

	failed := waitForStatus(t, jobs, job.ID, types.JobStatusFailed)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "connection reset", *failed.ErrorMessage)
}

func TestExecutionPanicIsRecovered(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	invoker := &fakeInvoker{panicMsg: "nil pointer somewhere"}
	svc := newIngestionService(jobs, docs, invoker)

	job, err := svc.Trigger(context.Background(), ownerID, service.TriggerRequest{
		Type:        types.JobTypeDocumentClassification,
		DocumentIDs: []string{"d1"},
	})
	require.NoError(t, err)

	failed := waitForStatus(t, jobs, job.ID, types.JobStatusFailed)
	require.NotNil(t, failed.ErrorMessage)
	assert.Contains(t, *failed.ErrorMessage, "internal error")
}

func TestRetryDelay(t *testing.T) {
	expected := map[int]time.Duration{
		0: 1 * time.Minute,
		1: 2 * time.Minute,
		2: 4 * time.Minute,
		3: 8 * time.Minute,
		4: 16 * time.Minute,
		5: 32 * time.Minute,
		6: 60 * time.Minute,
		7: 60 * time.Minute,
	}
	for count, want := range expected {
		assert.Equal(t, want, service.RetryDelay(count), "retry count %d", count)
	}
}

func TestRetryRequiresFailedState(t *testing.T) {
	for _, status := range []types.JobStatus{
		types.JobStatusPending,
		types.JobStatusProcessing,
		types.JobStatusCompleted,
		types.JobStatusRetrying,
	} {
		t.Run(string(status), func(t *testing.T) {
			jobs := newFakeJobRepo()
			docs := newFakeDocRepo(ownedDoc("d1"))
			svc := newIngestionService(jobs, docs, &fakeInvoker{})

			job := jobs.seed(types.IngestionJob{
				Name:        "stuck job",
				Type:        types.JobTypeOCR,
				Status:      status,
				MaxRetries:  3,
				CreatedByID: ownerID,
				InputData:   types.JobInput{DocumentIDs: []string{"d1"}},
			})

			_, err := svc.Retry(context.Background(), job.ID, ownerID)
			require.ErrorIs(t, err, service.ErrInvalidRequest)
		})
	}
}

func TestRetryExhausted(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	svc := newIngestionService(jobs, docs, &fakeInvoker{})

	job := jobs.seed(types.IngestionJob{
		Name:        "worn out",
		Type:        types.JobTypeOCR,
		Status:      types.JobStatusFailed,
		RetryCount:  2,
		MaxRetries:  2,
		CreatedByID: ownerID,
		InputData:   types.JobInput{DocumentIDs: []string{"d1"}},
	})

	_, err := svc.Retry(context.Background(), job.ID, ownerID)
	require.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestRetryCycleUntilExhaustion(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo(ownedDoc("d1"))
	invoker := &fakeInvoker{result: processor.Result{Success: false, Error: "still broken"}}
	svc := newIngestionService(jobs, docs, invoker)

	errMsg := "first failure"
	next := time.Now().Add(time.Minute)
	job := jobs.seed(types.IngestionJob{
		Name:         "flaky",
		Type:         types.JobTypeOCR,
		Status:       types.JobStatusFailed,
		Progress:     40,
		ErrorMessage: &errMsg,
		RetryCount:   0,
		MaxRetries:   2,
		NextRetryAt:  &next,
		CreatedByID:  ownerID,
		InputData:    types.JobInput{DocumentIDs: []string{"d1"}},
	})

	retried, err := svc.Retry(context.Background(), job.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, types.JobStatusRetrying, retried.Status)
	assert.Equal(t, 0, retried.Progress)
	assert.Nil(t, retried.ErrorMessage)
	assert.Equal(t, 1, retried.RetryCount)
	assert.Nil(t, retried.NextRetryAt)

	waitForStatus(t, jobs, job.ID, types.JobStatusFailed)

	retried, err = svc.Retry(context.Background(), job.ID, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 2, retried.RetryCount)

	failed := waitForStatus(t, jobs, job.ID, types.JobStatusFailed)
	assert.Nil(t, failed.NextRetryAt, "no retries left, no next retry suggestion")

	_, err = svc.Retry(context.Background(), job.ID, ownerID)
	require.ErrorIs(t, err, service.ErrInvalidRequest)
}

func TestGetErrors(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo()
	svc := newIngestionService(jobs, docs, &fakeInvoker{})

	_, err := svc.Get(context.Background(), 42, ownerID)
	require.ErrorIs(t, err, service.ErrNotFound)

	job := jobs.seed(types.IngestionJob{
		Name:        "someone else's job",
		Type:        types.JobTypeOCR,
		Status:      types.JobStatusPending,
		MaxRetries:  3,
		CreatedByID: otherOwnerID,
	})

	_, err = svc.Get(context.Background(), job.ID, ownerID)
	require.ErrorIs(t, err, service.ErrAccessDenied)
}

func TestListPagination(t *testing.T) {
	jobs := newFakeJobRepo()
	docs := newFakeDocRepo()
	svc := newIngestionService(jobs, docs, &fakeInvoker{})

	for i := 0; i < 7; i++ {
		jobs.seed(types.IngestionJob{
			Name:        fmt.Sprintf("job %d", i),
			Type:        types.JobTypeOCR,
			Status:      types.JobStatusCompleted,
			MaxRetries:  3,
			CreatedByID: ownerID,
		})
	}
	for i := 0; i < 3; i++ {
		jobs.seed(types.IngestionJob{
			Name:        fmt.Sprintf("foreign job %d", i),
			Type:        types.JobTypeOCR,
			Status:      types.JobStatusCompleted,
			MaxRetries:  3,
			CreatedByID: otherOwnerID,
		})
	}

	resp, err := svc.List(context.Background(), ownerID, 2, 5)
	require.NoError(t, err)
	assert.Len(t, resp.Jobs, 2)
	assert.Equal(t, int64(7), resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, 2, resp.TotalPages)

	// Defaults kick in for out-of-range values.
	resp, err = svc.List(context.Background(), ownerID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 10, resp.Limit)
	assert.Len(t, resp.Jobs, 7)

	// Newest first.
	first, err := svc.List(context.Background(), ownerID, 1, 5)
	require.NoError(t, err)
	require.Len(t, first.Jobs, 5)
	assert.Greater(t, first.Jobs[0].ID, first.Jobs[1].ID)
}

func TestUpdateStatusUnknownExternalID(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	err := svc.UpdateStatus(context.Background(), "ing_000_nope", service.StatusUpdate{Status: "completed"})
	require.NoError(t, err, "unknown external ids are tolerated")
	assert.Equal(t, 0, jobs.count(), "no job may be created")
}

func TestUpdateStatusCompleted(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	job := jobs.seed(types.IngestionJob{
		Name:          "in flight",
		ExternalJobID: "ing_100_abc",
		Type:          types.JobTypeOCR,
		Status:        types.JobStatusProcessing,
		Progress:      60,
		MaxRetries:    3,
		CreatedByID:   ownerID,
	})

	err := svc.UpdateStatus(context.Background(), "ing_100_abc", service.StatusUpdate{
		Status: "completed",
		Output: map[string]any{"pages": 12},
	})
	require.NoError(t, err)

	updated := jobs.snapshot(t, job.ID)
	assert.Equal(t, types.JobStatusCompleted, updated.Status)
	assert.Equal(t, 100, updated.Progress, "completion forces progress to 100")
	assert.Equal(t, map[string]any{"pages": 12}, updated.OutputData)
	require.NotNil(t, updated.CompletedAt)
}

func TestUpdateStatusFailedDefaultsMessage(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	job := jobs.seed(types.IngestionJob{
		Name:          "doomed",
		ExternalJobID: "ing_101_abc",
		Type:          types.JobTypeOCR,
		Status:        types.JobStatusProcessing,
		RetryCount:    0,
		MaxRetries:    3,
		CreatedByID:   ownerID,
	})

	err := svc.UpdateStatus(context.Background(), "ing_101_abc", service.StatusUpdate{Status: "failed"})
	require.NoError(t, err)

	updated := jobs.snapshot(t, job.ID)
	assert.Equal(t, types.JobStatusFailed, updated.Status)
	require.NotNil(t, updated.ErrorMessage)
	assert.Equal(t, "Processing failed", *updated.ErrorMessage)
	require.NotNil(t, updated.NextRetryAt)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), *updated.NextRetryAt, 10*time.Second)
}

func TestUpdateStatusFailedExhaustedLeavesNoRetry(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	jobs.seed(types.IngestionJob{
		Name:          "spent",
		ExternalJobID: "ing_102_abc",
		Type:          types.JobTypeOCR,
		Status:        types.JobStatusProcessing,
		RetryCount:    3,
		MaxRetries:    3,
		CreatedByID:   ownerID,
	})

	err := svc.UpdateStatus(context.Background(), "ing_102_abc", service.StatusUpdate{Status: "failed"})
	require.NoError(t, err)

	updated, getErr := jobs.GetByExternalID(context.Background(), "ing_102_abc")
	require.NoError(t, getErr)
	assert.Nil(t, updated.NextRetryAt)
}

func TestUpdateStatusUnknownTokenTreatedAsFailure(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	job := jobs.seed(types.IngestionJob{
		Name:          "surprise",
		ExternalJobID: "ing_103_abc",
		Type:          types.JobTypeOCR,
		Status:        types.JobStatusProcessing,
		MaxRetries:    3,
		CreatedByID:   ownerID,
	})

	err := svc.UpdateStatus(context.Background(), "ing_103_abc", service.StatusUpdate{Status: "exploded"})
	require.NoError(t, err)

	assert.Equal(t, types.JobStatusFailed, jobs.snapshot(t, job.ID).Status)
}

func TestUpdateStatusProcessingSetsStartedAtOnce(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	job := jobs.seed(types.IngestionJob{
		Name:          "fresh",
		ExternalJobID: "ing_104_abc",
		Type:          types.JobTypeOCR,
		Status:        types.JobStatusPending,
		MaxRetries:    3,
		CreatedByID:   ownerID,
	})

	err := svc.UpdateStatus(context.Background(), "ing_104_abc", service.StatusUpdate{Status: "processing"})
	require.NoError(t, err)

	firstStart := jobs.snapshot(t, job.ID).StartedAt
	require.NotNil(t, firstStart)

	err = svc.UpdateStatus(context.Background(), "ing_104_abc", service.StatusUpdate{Status: "processing"})
	require.NoError(t, err)

	assert.Equal(t, firstStart, jobs.snapshot(t, job.ID).StartedAt, "startedAt is set exactly once")
}

func TestUpdateStatusAppliesOptionalFields(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newIngestionService(jobs, newFakeDocRepo(), &fakeInvoker{})

	job := jobs.seed(types.IngestionJob{
		Name:          "partial",
		ExternalJobID: "ing_105_abc",
		Type:          types.JobTypeOCR,
		Status:        types.JobStatusProcessing,
		Progress:      20,
		MaxRetries:    3,
		CreatedByID:   ownerID,
	})

	progress := 55
	errText := "halfway warning"
	err := svc.UpdateStatus(context.Background(), "ing_105_abc", service.StatusUpdate{
		Status:   "processing",
		Progress: &progress,
		Error:    &errText,
	})
	require.NoError(t, err)

	updated := jobs.snapshot(t, job.ID)
	assert.Equal(t, 55, updated.Progress)
	require.NotNil(t, updated.ErrorMessage)
	assert.Equal(t, "halfway warning", *updated.ErrorMessage)

	// Absent fields keep existing values.
	err = svc.UpdateStatus(context.Background(), "ing_105_abc", service.StatusUpdate{Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, 55, jobs.snapshot(t, job.ID).Progress)
}
