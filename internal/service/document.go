package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/gauri-sd/user-document-management/internal/repository"
	"github.com/gauri-sd/user-document-management/internal/storage"
	"github.com/gauri-sd/user-document-management/internal/types"
)

const urlExpiryDuration = 15 * time.Minute

type DocumentService struct {
	repo    repository.DocumentRepository
	storage *storage.Storage
}

func NewDocumentService(repo repository.DocumentRepository, storage *storage.Storage) *DocumentService {
	return &DocumentService{
		repo:    repo,
		storage: storage,
	}
}

type CreateDocumentRequest struct {
	Title    string
	FileName string
	MimeType string
	FileSize int64
}

type CreateDocumentResponse struct {
	Document  *types.Document `json:"document"`
	UploadUrl string          `json:"upload_url"`
	ValidFor  string          `json:"valid_for"`
}

type DocumentListResponse struct {
	Documents  []types.Document `json:"documents"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

type DownloadUrlResponse struct {
	DownloadUrl string `json:"download_url"`
	ValidFor    string `json:"valid_for"`
}

func (s *DocumentService) Create(ctx context.Context, ownerID string, req CreateDocumentRequest) (*CreateDocumentResponse, error) {
	documentID := uuid.NewString()
	doc := &types.Document{
		ID:       documentID,
		OwnerID:  ownerID,
		Title:    req.Title,
		FileName: req.FileName,
		FilePath: storage.ObjectName(ownerID, documentID, req.FileName),
		MimeType: req.MimeType,
		FileSize: req.FileSize,
	}

	created, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	uploadUrl, err := s.storage.GetUploadUrl(ctx, created.FilePath, urlExpiryDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate upload URL: %w", err)
	}

	return &CreateDocumentResponse{
		Document:  created,
		UploadUrl: uploadUrl,
		ValidFor:  fmt.Sprintf("%.0f minutes", urlExpiryDuration.Minutes()),
	}, nil
}

func (s *DocumentService) List(ctx context.Context, ownerID string, page, limit int) (*DocumentListResponse, error) {
	page, limit = normalizePagination(page, limit)

	total, err := s.repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	docs, err := s.repo.ListByOwner(ctx, ownerID, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if docs == nil {
		docs = []types.Document{}
	}

	return &DocumentListResponse{
		Documents:  docs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *DocumentService) Get(ctx context.Context, documentID, ownerID string) (*types.Document, error) {
	doc, err := s.repo.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load document: %w", err)
	}
	if doc.OwnerID != ownerID {
		return nil, ErrAccessDenied
	}
	return doc, nil
}

func (s *DocumentService) GetDownloadUrl(ctx context.Context, documentID, ownerID string) (*DownloadUrlResponse, error) {
	doc, err := s.Get(ctx, documentID, ownerID)
	if err != nil {
		return nil, err
	}

	downloadUrl, err := s.storage.GetDownloadUrl(ctx, doc.FilePath, urlExpiryDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to generate download URL: %w", err)
	}

	return &DownloadUrlResponse{
		DownloadUrl: downloadUrl,
		ValidFor:    fmt.Sprintf("%.0f minutes", urlExpiryDuration.Minutes()),
	}, nil
}

func (s *DocumentService) Delete(ctx context.Context, documentID, ownerID string) error {
	doc, err := s.Get(ctx, documentID, ownerID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, documentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}

	// Object removal is best effort; the record is already gone.
	if doc.FilePath != "" {
		if err := s.storage.RemoveObject(ctx, doc.FilePath); err != nil {
			log.Printf("failed to remove object %s: %v", doc.FilePath, err)
		}
	}

	return nil
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}
