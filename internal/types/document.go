package types

import "time"

type Document struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	FileName  string    `json:"file_name"`
	FilePath  string    `json:"file_path"`
	MimeType  string    `json:"mime_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot captures the metadata an ingestion job keeps about a document.
func (d Document) Snapshot() DocumentSnapshot {
	return DocumentSnapshot{
		ID:       d.ID,
		Title:    d.Title,
		FilePath: d.FilePath,
		FileName: d.FileName,
		MimeType: d.MimeType,
	}
}
