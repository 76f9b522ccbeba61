package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gauri-sd/user-document-management/internal/processor"
	"github.com/gauri-sd/user-document-management/internal/queue"
	"github.com/gauri-sd/user-document-management/internal/repository"
	"github.com/gauri-sd/user-document-management/internal/types"
)

const (
	defaultMaxRetries = 3
	maxRetriesLimit   = 10

	// progressSteps is the number of simulated progress increments persisted
	// while a job runs, before the invoker result is applied.
	progressSteps = 10

	// maxRetryDelayMinutes caps the exponential backoff.
	maxRetryDelayMinutes = 60

	externalIDPrefix = "ing"

	defaultFailureMessage = "Processing failed"
)

// DocumentResolver is the slice of the document store the orchestrator
// needs: fetching records by id for validation and retry snapshots.
type DocumentResolver interface {
	GetByIDs(ctx context.Context, ids []string) ([]types.Document, error)
}

// IngestionService owns the ingestion job state machine and is the sole
// writer of job records. Execution is fire-and-forget: trigger and retry
// return as soon as the job is persisted and a goroutine owns the rest.
type IngestionService struct {
	jobs      repository.JobRepository
	documents DocumentResolver
	invoker   processor.Invoker
	events    *queue.EventPublisher
	stepDelay time.Duration
}

func NewIngestionService(
	jobs repository.JobRepository,
	documents DocumentResolver,
	invoker processor.Invoker,
	events *queue.EventPublisher,
	stepDelay time.Duration,
) *IngestionService {
	return &IngestionService{
		jobs:      jobs,
		documents: documents,
		invoker:   invoker,
		events:    events,
		stepDelay: stepDelay,
	}
}

type TriggerRequest struct {
	Type        types.JobType
	DocumentIDs []string
	Name        string
	Description *string
	Parameters  map[string]any
	MaxRetries  *int
}

type JobListResponse struct {
	Jobs       []types.IngestionJob `json:"jobs"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int                  `json:"total_pages"`
}

// StatusUpdate carries a webhook status push from the external processing
// system. Absent fields keep the job's existing values.
type StatusUpdate struct {
	Status   string
	Progress *int
	Error    *string
	Output   map[string]any
}

// RetryDelay computes the advisory backoff for a given retry count:
// min(2^retryCount, 60) minutes.
func RetryDelay(retryCount int) time.Duration {
	minutes := 1
	for i := 0; i < retryCount; i++ {
		minutes *= 2
		if minutes >= maxRetryDelayMinutes {
			return maxRetryDelayMinutes * time.Minute
		}
	}
	return time.Duration(minutes) * time.Minute
}

func (s *IngestionService) Trigger(ctx context.Context, ownerID string, req TriggerRequest) (*types.IngestionJob, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unsupported processing type %q: %w", req.Type, ErrInvalidRequest)
	}
	if len(req.DocumentIDs) == 0 {
		return nil, fmt.Errorf("document_ids must not be empty: %w", ErrInvalidRequest)
	}

	maxRetries := defaultMaxRetries
	if req.MaxRetries != nil {
		if *req.MaxRetries < 0 || *req.MaxRetries > maxRetriesLimit {
			return nil, fmt.Errorf("max_retries must be between 0 and %d: %w", maxRetriesLimit, ErrInvalidRequest)
		}
		maxRetries = *req.MaxRetries
	}

	snapshots, err := s.resolveDocuments(ctx, req.DocumentIDs, ownerID)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("%s job %s", req.Type, time.Now().Format("2006-01-02 15:04:05"))
	}

	job := &types.IngestionJob{
		Name:        name,
		Description: req.Description,
		Type:        req.Type,
		Status:      types.JobStatusPending,
		Progress:    0,
		RetryCount:  0,
		MaxRetries:  maxRetries,
		Parameters:  req.Parameters,
		InputData: types.JobInput{
			DocumentIDs: req.DocumentIDs,
			Documents:   snapshots,
		},
		CreatedByID: ownerID,
	}

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	externalID, err := s.generateExternalID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.jobs.SetExternalID(ctx, created.ID, externalID); err != nil {
		return nil, err
	}

	// Re-read so the response carries the external id.
	created, err = s.jobs.GetByID(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload job: %w", err)
	}

	// The goroutine owns its own copy so the returned record is never
	// mutated concurrently with response encoding.
	run := *created
	go s.executeJob(&run, snapshots)

	return created, nil
}

func (s *IngestionService) List(ctx context.Context, ownerID string, page, limit int) (*JobListResponse, error) {
	page, limit = normalizePagination(page, limit)

	total, err := s.jobs.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	jobs, err := s.jobs.ListByOwner(ctx, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []types.IngestionJob{}
	}

	return &JobListResponse{
		Jobs:       jobs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *IngestionService) Get(ctx context.Context, id int64, ownerID string) (*types.IngestionJob, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("job %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job.CreatedByID != ownerID {
		return nil, fmt.Errorf("job %d: %w", id, ErrAccessDenied)
	}
	return job, nil
}

func (s *IngestionService) Retry(ctx context.Context, id int64, ownerID string) (*types.IngestionJob, error) {
	job, err := s.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	if job.Status != types.JobStatusFailed {
		return nil, fmt.Errorf("job %d is not in a retryable state (status %s): %w", id, job.Status, ErrInvalidRequest)
	}
	if job.RetryCount >= job.MaxRetries {
		return nil, fmt.Errorf("job %d has exhausted its retries (%d/%d): %w", id, job.RetryCount, job.MaxRetries, ErrInvalidRequest)
	}

	job.Status = types.JobStatusRetrying
	job.Progress = 0
	job.ErrorMessage = nil
	job.RetryCount++
	job.NextRetryAt = nil

	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to persist retry transition: %w", err)
	}
	s.events.PublishJobStatus(job)

	// Retries reuse the original document set. The records are re-fetched but
	// not re-validated against ownership.
	docs, err := s.documents.GetByIDs(ctx, job.InputData.DocumentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to reload documents: %w", err)
	}
	snapshots := make([]types.DocumentSnapshot, 0, len(docs))
	for _, doc := range docs {
		snapshots = append(snapshots, doc.Snapshot())
	}

	run := *job
	go s.executeJob(&run, snapshots)

	return job, nil
}

// UpdateStatus is the webhook ingress. Unknown external ids are logged and
// ignored so stale or duplicate deliveries never surface an error.
func (s *IngestionService) UpdateStatus(ctx context.Context, externalJobID string, update StatusUpdate) error {
	job, err := s.jobs.GetByExternalID(ctx, externalJobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Printf("webhook update for unknown external job id %q ignored", externalJobID)
			return nil
		}
		return fmt.Errorf("failed to load job by external id: %w", err)
	}

	status := mapExternalStatus(update.Status)
	job.Status = status

	if update.Progress != nil {
		job.Progress = clampProgress(*update.Progress)
	}
	if update.Error != nil {
		job.ErrorMessage = update.Error
	}
	if update.Output != nil {
		job.OutputData = update.Output
	}

	now := time.Now()
	switch status {
	case types.JobStatusProcessing:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case types.JobStatusCompleted:
		job.Progress = 100
		job.CompletedAt = &now
	case types.JobStatusFailed:
		if job.ErrorMessage == nil {
			msg := defaultFailureMessage
			job.ErrorMessage = &msg
		}
		job.CompletedAt = &now
		if job.RetryCount < job.MaxRetries {
			next := now.Add(RetryDelay(job.RetryCount + 1))
			job.NextRetryAt = &next
		}
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		return fmt.Errorf("failed to persist webhook update: %w", err)
	}
	s.events.PublishJobStatus(job)

	return nil
}

// executeJob drives a job from PENDING/RETRYING through PROCESSING to a
// terminal state. It runs in its own goroutine with a background context so
// the triggering request cannot cancel it, and it never leaves the job in
// PROCESSING: any panic or error lands in the failure branch.
func (s *IngestionService) executeJob(job *types.IngestionJob, documents []types.DocumentSnapshot) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.markFailed(ctx, job, fmt.Sprintf("internal error: %v", r))
		}
	}()

	now := time.Now()
	job.Status = types.JobStatusProcessing
	if job.StartedAt == nil {
		job.StartedAt = &now
	}
	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("job %d: failed to persist PROCESSING transition: %v", job.ID, err)
		return
	}
	s.events.PublishJobStatus(job)

	// Coarse progress simulation standing in for an incremental feed from the
	// processing system: 10, 20, ..., 100, persisted step by step.
	for step := 0; step < progressSteps; step++ {
		time.Sleep(s.stepDelay)
		job.Progress = (step + 1) * 100 / progressSteps
		if err := s.jobs.Update(ctx, job); err != nil {
			log.Printf("job %d: failed to persist progress %d: %v", job.ID, job.Progress, err)
		}
	}

	result, err := s.invoker.Process(ctx, job.Type, documents, job.Parameters)
	if err != nil {
		s.markFailed(ctx, job, err.Error())
		return
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = defaultFailureMessage
		}
		s.markFailed(ctx, job, msg)
		return
	}

	completedAt := time.Now()
	job.Status = types.JobStatusCompleted
	job.Progress = 100
	job.OutputData = result.Data
	job.CompletedAt = &completedAt
	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("job %d: failed to persist COMPLETED state: %v", job.ID, err)
		return
	}
	s.events.PublishJobStatus(job)

	log.Printf("job %d (%s) completed", job.ID, job.ExternalJobID)
}

func (s *IngestionService) markFailed(ctx context.Context, job *types.IngestionJob, message string) {
	now := time.Now()
	job.Status = types.JobStatusFailed
	job.ErrorMessage = &message
	job.CompletedAt = &now
	if job.RetryCount < job.MaxRetries {
		next := now.Add(RetryDelay(job.RetryCount + 1))
		job.NextRetryAt = &next
	} else {
		job.NextRetryAt = nil
	}

	if err := s.jobs.Update(ctx, job); err != nil {
		log.Printf("job %d: failed to persist FAILED state: %v", job.ID, err)
		return
	}
	s.events.PublishJobStatus(job)

	log.Printf("job %d (%s) failed: %s", job.ID, job.ExternalJobID, message)
}

// resolveDocuments confirms every requested document exists and belongs to
// ownerID, and captures the snapshot stored into the job's input data.
func (s *IngestionService) resolveDocuments(ctx context.Context, documentIDs []string, ownerID string) ([]types.DocumentSnapshot, error) {
	docs, err := s.documents.GetByIDs(ctx, documentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve documents: %w", err)
	}
	if len(docs) != len(documentIDs) {
		return nil, fmt.Errorf("one or more documents do not exist: %w", ErrInvalidRequest)
	}

	snapshots := make([]types.DocumentSnapshot, 0, len(docs))
	for _, doc := range docs {
		if doc.OwnerID != ownerID {
			return nil, fmt.Errorf("document %s: %w", doc.ID, ErrAccessDenied)
		}
		snapshots = append(snapshots, doc.Snapshot())
	}
	return snapshots, nil
}

// generateExternalID allocates a globally unique correlation id of the form
// ing_<unixMillis>_<suffix>, regenerating on the rare collision.
func (s *IngestionService) generateExternalID(ctx context.Context) (string, error) {
	for {
		suffix := uuid.NewString()[:8]
		externalID := fmt.Sprintf("%s_%d_%s", externalIDPrefix, time.Now().UnixMilli(), suffix)

		exists, err := s.jobs.ExternalIDExists(ctx, externalID)
		if err != nil {
			return "", fmt.Errorf("failed to check external id: %w", err)
		}
		if !exists {
			return externalID, nil
		}
	}
}

func mapExternalStatus(token string) types.JobStatus {
	switch token {
	case "pending":
		return types.JobStatusPending
	case "processing":
		return types.JobStatusProcessing
	case "completed":
		return types.JobStatusCompleted
	case "failed":
		return types.JobStatusFailed
	default:
		// Fail-safe: anything unrecognized is treated as a failure.
		return types.JobStatusFailed
	}
}

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
