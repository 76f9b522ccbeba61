package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gauri-sd/user-document-management/internal/middleware"
	"github.com/gauri-sd/user-document-management/internal/service"
	"github.com/gauri-sd/user-document-management/internal/types"
)

type IngestionHandler struct {
	ingestionService *service.IngestionService
}

func NewIngestionHandler(ingestionService *service.IngestionService) *IngestionHandler {
	return &IngestionHandler{
		ingestionService: ingestionService,
	}
}

type TriggerBody struct {
	Type        string         `json:"type" binding:"required"`
	DocumentIDs []string       `json:"document_ids" binding:"required,min=1"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	MaxRetries  *int           `json:"max_retries" binding:"omitempty,min=0,max=10"`
}

func (h *IngestionHandler) Trigger(c *gin.Context) {
	userID := middleware.GetUserID(c)
	body := &TriggerBody{}

	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	job, err := h.ingestionService.Trigger(c, userID, service.TriggerRequest{
		Type:        types.JobType(body.Type),
		DocumentIDs: body.DocumentIDs,
		Name:        body.Name,
		Description: body.Description,
		Parameters:  body.Parameters,
		MaxRetries:  body.MaxRetries,
	})
	if err != nil {
		respondError(c, err, "Failed to trigger ingestion")
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *IngestionHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := paginationQuery(c)

	resp, err := h.ingestionService.List(c, userID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to list jobs")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *IngestionHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid job id",
		})
		return
	}

	job, err := h.ingestionService.Get(c, id, userID)
	if err != nil {
		respondError(c, err, "Failed to load job")
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *IngestionHandler) Retry(c *gin.Context) {
	userID := middleware.GetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid job id",
		})
		return
	}

	job, err := h.ingestionService.Retry(c, id, userID)
	if err != nil {
		respondError(c, err, "Failed to retry job")
		return
	}

	c.JSON(http.StatusOK, job)
}

type WebhookBody struct {
	ExternalJobID string         `json:"external_job_id" binding:"required"`
	Status        string         `json:"status" binding:"required"`
	Progress      *int           `json:"progress"`
	Error         *string        `json:"error"`
	Output        map[string]any `json:"output"`
}

// Webhook receives status pushes from the external processing system.
func (h *IngestionHandler) Webhook(c *gin.Context) {
	body := &WebhookBody{}

	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	err := h.ingestionService.UpdateStatus(c, body.ExternalJobID, service.StatusUpdate{
		Status:   body.Status,
		Progress: body.Progress,
		Error:    body.Error,
		Output:   body.Output,
	})
	if err != nil {
		respondError(c, err, "Failed to apply status update")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
