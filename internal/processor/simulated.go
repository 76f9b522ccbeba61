package processor

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/gauri-sd/user-document-management/internal/types"
)

// The processors below generate synthetic output. They stand in for real OCR,
// extraction and classification engines while preserving the Result contract.

type OCRProcessor struct{}

func NewOCRProcessor() *OCRProcessor { return &OCRProcessor{} }

func (p *OCRProcessor) Type() types.JobType { return types.JobTypeOCR }

func (p *OCRProcessor) Process(ctx context.Context, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error) {
	pages := make([]map[string]any, 0, len(documents))
	for i, doc := range documents {
		pages = append(pages, map[string]any{
			"document_id": doc.ID,
			"page_count":  1 + i%3,
			"text":        fmt.Sprintf("Recognized text from %s", doc.FileName),
			"confidence":  0.85 + rand.Float64()*0.14,
		})
	}

	return Result{
		Success: true,
		Data: map[string]any{
			"engine":       "simulated-ocr",
			"language":     stringParam(parameters, "language", "en"),
			"documents":    pages,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

type TextExtractionProcessor struct{}

func NewTextExtractionProcessor() *TextExtractionProcessor { return &TextExtractionProcessor{} }

func (p *TextExtractionProcessor) Type() types.JobType { return types.JobTypeTextExtraction }

func (p *TextExtractionProcessor) Process(ctx context.Context, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error) {
	extracted := make([]map[string]any, 0, len(documents))
	totalWords := 0
	for _, doc := range documents {
		words := 200 + rand.Intn(1800)
		totalWords += words
		extracted = append(extracted, map[string]any{
			"document_id": doc.ID,
			"word_count":  words,
			"excerpt":     fmt.Sprintf("Extracted content of %q", doc.Title),
		})
	}

	return Result{
		Success: true,
		Data: map[string]any{
			"documents":    extracted,
			"total_words":  totalWords,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

type ClassificationProcessor struct{}

func NewClassificationProcessor() *ClassificationProcessor { return &ClassificationProcessor{} }

func (p *ClassificationProcessor) Type() types.JobType { return types.JobTypeDocumentClassification }

var classificationLabels = []string{"invoice", "contract", "report", "letter", "form"}

func (p *ClassificationProcessor) Process(ctx context.Context, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error) {
	labels := make([]map[string]any, 0, len(documents))
	for _, doc := range documents {
		label := classificationLabels[rand.Intn(len(classificationLabels))]
		if strings.Contains(strings.ToLower(doc.Title), "invoice") {
			label = "invoice"
		}
		labels = append(labels, map[string]any{
			"document_id": doc.ID,
			"label":       label,
			"confidence":  0.7 + rand.Float64()*0.29,
		})
	}

	return Result{
		Success: true,
		Data: map[string]any{
			"model":        "simulated-classifier",
			"documents":    labels,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

type DataExtractionProcessor struct{}

func NewDataExtractionProcessor() *DataExtractionProcessor { return &DataExtractionProcessor{} }

func (p *DataExtractionProcessor) Type() types.JobType { return types.JobTypeDataExtraction }

func (p *DataExtractionProcessor) Process(ctx context.Context, documents []types.DocumentSnapshot, parameters map[string]any) (Result, error) {
	extracted := make([]map[string]any, 0, len(documents))
	for _, doc := range documents {
		extracted = append(extracted, map[string]any{
			"document_id": doc.ID,
			"fields": map[string]any{
				"title":     doc.Title,
				"file_name": doc.FileName,
				"mime_type": doc.MimeType,
				"reference": fmt.Sprintf("REF-%06d", rand.Intn(1000000)),
			},
		})
	}

	return Result{
		Success: true,
		Data: map[string]any{
			"schema":       stringParam(parameters, "schema", "default"),
			"documents":    extracted,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

func stringParam(parameters map[string]any, key, defaultValue string) string {
	if parameters == nil {
		return defaultValue
	}
	if v, ok := parameters[key].(string); ok && v != "" {
		return v
	}
	return defaultValue
}
