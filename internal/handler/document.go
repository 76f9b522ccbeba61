package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gauri-sd/user-document-management/internal/middleware"
	"github.com/gauri-sd/user-document-management/internal/service"
)

type DocumentHandler struct {
	documentService *service.DocumentService
}

func NewDocumentHandler(documentService *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

type CreateDocumentBody struct {
	Title    string `json:"title" binding:"required"`
	FileName string `json:"file_name" binding:"required"`
	MimeType string `json:"mime_type" binding:"required"`
	FileSize int64  `json:"file_size" binding:"omitempty,min=0"`
}

func (h *DocumentHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	body := &CreateDocumentBody{}

	if err := c.ShouldBindJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request data",
		})
		return
	}

	resp, err := h.documentService.Create(c, userID, service.CreateDocumentRequest{
		Title:    body.Title,
		FileName: body.FileName,
		MimeType: body.MimeType,
		FileSize: body.FileSize,
	})
	if err != nil {
		respondError(c, err, "Failed to create document")
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := paginationQuery(c)

	resp, err := h.documentService.List(c, userID, page, limit)
	if err != nil {
		respondError(c, err, "Failed to list documents")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)

	doc, err := h.documentService.Get(c, c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to load document")
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (h *DocumentHandler) GetDownloadUrl(c *gin.Context) {
	userID := middleware.GetUserID(c)

	resp, err := h.documentService.GetDownloadUrl(c, c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to generate download URL")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.documentService.Delete(c, c.Param("id"), userID); err != nil {
		respondError(c, err, "Failed to delete document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Document deleted",
	})
}

func paginationQuery(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil {
		limit = 10
	}
	return page, limit
}
