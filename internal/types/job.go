package types

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusRetrying   JobStatus = "RETRYING"
)

type JobType string

const (
	JobTypeOCR                    JobType = "OCR"
	JobTypeTextExtraction         JobType = "TEXT_EXTRACTION"
	JobTypeDocumentClassification JobType = "DOCUMENT_CLASSIFICATION"
	JobTypeDataExtraction         JobType = "DATA_EXTRACTION"
)

func (t JobType) Valid() bool {
	switch t {
	case JobTypeOCR, JobTypeTextExtraction, JobTypeDocumentClassification, JobTypeDataExtraction:
		return true
	}
	return false
}

// DocumentSnapshot is the minimal document metadata captured into a job's
// input data at trigger time. It is immutable after creation.
type DocumentSnapshot struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}

type JobInput struct {
	DocumentIDs []string           `json:"document_ids"`
	Documents   []DocumentSnapshot `json:"documents"`
}

type IngestionJob struct {
	ID            int64          `json:"id"`
	ExternalJobID string         `json:"external_job_id"`
	Name          string         `json:"name"`
	Description   *string        `json:"description,omitempty"`
	Type          JobType        `json:"type"`
	Status        JobStatus      `json:"status"`
	Progress      int            `json:"progress"`
	ErrorMessage  *string        `json:"error_message,omitempty"`
	RetryCount    int            `json:"retry_count"`
	MaxRetries    int            `json:"max_retries"`
	NextRetryAt   *time.Time     `json:"next_retry_at,omitempty"`
	Parameters    map[string]any `json:"parameters,omitempty"`
	InputData     JobInput       `json:"input_data"`
	OutputData    map[string]any `json:"output_data,omitempty"`
	StartedAt     *time.Time     `json:"started_at,omitempty"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
	CreatedByID   string         `json:"created_by_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
