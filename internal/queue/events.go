package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gauri-sd/user-document-management/internal/types"
)

// JobEvent is published on every job status transition so downstream
// consumers can follow the ingestion lifecycle without polling.
type JobEvent struct {
	JobID         int64           `json:"job_id"`
	ExternalJobID string          `json:"external_job_id"`
	Status        types.JobStatus `json:"status"`
	Progress      int             `json:"progress"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

type EventPublisher struct {
	client    *RabbitMQ
	queueName string
}

func NewEventPublisher(client *RabbitMQ, queueName string) (*EventPublisher, error) {
	if err := client.DeclareQueue(queueName, true, nil); err != nil {
		return nil, fmt.Errorf("failed to declare events queue: %w", err)
	}

	return &EventPublisher{
		client:    client,
		queueName: queueName,
	}, nil
}

// PublishJobStatus is fire-and-forget: publish failures are logged, never
// surfaced, and a nil publisher is a no-op so the broker stays optional.
func (p *EventPublisher) PublishJobStatus(job *types.IngestionJob) {
	if p == nil || p.client == nil {
		return
	}

	data, err := json.Marshal(JobEvent{
		JobID:         job.ID,
		ExternalJobID: job.ExternalJobID,
		Status:        job.Status,
		Progress:      job.Progress,
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		log.Printf("failed to marshal job event for job %d: %v", job.ID, err)
		return
	}

	if err := p.client.Publish(p.queueName, data); err != nil {
		log.Printf("failed to publish job event for job %d: %v", job.ID, err)
	}
}
