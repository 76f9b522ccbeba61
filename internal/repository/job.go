package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gauri-sd/user-document-management/internal/types"
)

// JobRepository is the ingestion job store. All mutation happens through
// whole-row writes; each Update persists a full snapshot of the job.
type JobRepository interface {
	Create(ctx context.Context, job *types.IngestionJob) (*types.IngestionJob, error)
	GetByID(ctx context.Context, id int64) (*types.IngestionJob, error)
	GetByExternalID(ctx context.Context, externalID string) (*types.IngestionJob, error)
	SetExternalID(ctx context.Context, id int64, externalID string) error
	ExternalIDExists(ctx context.Context, externalID string) (bool, error)
	Update(ctx context.Context, job *types.IngestionJob) error
	ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]types.IngestionJob, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
}

type jobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) JobRepository {
	return &jobRepository{pool: pool}
}

const jobColumns = `id, external_job_id, name, description, type, status, progress,
	error_message, retry_count, max_retries, next_retry_at, parameters,
	input_data, output_data, started_at, completed_at, created_by_id, created_at, updated_at`

func scanJob(row pgx.Row) (*types.IngestionJob, error) {
	var (
		j          types.IngestionJob
		externalID *string
	)
	err := row.Scan(
		&j.ID, &externalID, &j.Name, &j.Description, &j.Type, &j.Status, &j.Progress,
		&j.ErrorMessage, &j.RetryCount, &j.MaxRetries, &j.NextRetryAt, &j.Parameters,
		&j.InputData, &j.OutputData, &j.StartedAt, &j.CompletedAt, &j.CreatedByID,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if externalID != nil {
		j.ExternalJobID = *externalID
	}
	return &j, nil
}

func (r *jobRepository) Create(ctx context.Context, job *types.IngestionJob) (*types.IngestionJob, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ingestion_jobs
			(name, description, type, status, progress, retry_count, max_retries,
			 parameters, input_data, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+jobColumns,
		job.Name, job.Description, job.Type, job.Status, job.Progress,
		job.RetryCount, job.MaxRetries, job.Parameters, job.InputData, job.CreatedByID,
	)
	return scanJob(row)
}

func (r *jobRepository) GetByID(ctx context.Context, id int64) (*types.IngestionJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM ingestion_jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *jobRepository) GetByExternalID(ctx context.Context, externalID string) (*types.IngestionJob, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM ingestion_jobs WHERE external_job_id = $1`, externalID)
	return scanJob(row)
}

func (r *jobRepository) SetExternalID(ctx context.Context, id int64, externalID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ingestion_jobs SET external_job_id = $1, updated_at = now()
		WHERE id = $2 AND external_job_id IS NULL`,
		externalID, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set external job id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("external job id already assigned for job %d", id)
	}
	return nil
}

func (r *jobRepository) ExternalIDExists(ctx context.Context, externalID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ingestion_jobs WHERE external_job_id = $1)`,
		externalID,
	).Scan(&exists)
	return exists, err
}

func (r *jobRepository) Update(ctx context.Context, job *types.IngestionJob) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE ingestion_jobs SET
			name = $1, description = $2, status = $3, progress = $4,
			error_message = $5, retry_count = $6, max_retries = $7, next_retry_at = $8,
			parameters = $9, output_data = $10, started_at = $11, completed_at = $12,
			updated_at = now()
		WHERE id = $13`,
		job.Name, job.Description, job.Status, job.Progress,
		job.ErrorMessage, job.RetryCount, job.MaxRetries, job.NextRetryAt,
		job.Parameters, job.OutputData, job.StartedAt, job.CompletedAt,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job %d: %w", job.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *jobRepository) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]types.IngestionJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+jobColumns+` FROM ingestion_jobs
		WHERE created_by_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		ownerID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []types.IngestionJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

func (r *jobRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM ingestion_jobs WHERE created_by_id = $1`, ownerID).Scan(&count)
	return count, err
}
