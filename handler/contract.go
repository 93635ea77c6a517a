package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rightsdesk/backend/middleware"
	"github.com/rightsdesk/backend/model"
	"github.com/rightsdesk/backend/service"
)

type ContractHandler struct {
	pipeline *service.Pipeline
	store    service.RecordStore
	archive  *service.ArchiveService
}

// NewContractHandler builds the contract endpoints. archive may be nil
// when object storage is not configured.
func NewContractHandler(pipeline *service.Pipeline, store service.RecordStore, archive *service.ArchiveService) *ContractHandler {
	return &ContractHandler{
		pipeline: pipeline,
		store:    store,
		archive:  archive,
	}
}

// Upload handles contract file upload. The whole pipeline runs inline;
// the response carries the finished analysis.
func (h *ContractHandler) Upload(c *gin.Context) {
	username := middleware.GetUsername(c)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".txt" && ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only TXT and PDF files are allowed"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	record, err := h.pipeline.Process(c.Request.Context(), header.Filename, username, data)
	if err != nil {
		var extErr *service.ExtractionError
		switch {
		case errors.As(err, &extErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to extract text: " + extErr.Error()})
		case errors.Is(err, service.ErrServiceUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Analysis service unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process contract: " + err.Error()})
		}
		return
	}

	if h.archive != nil {
		contentType := "text/plain"
		if ext == ".pdf" {
			contentType = "application/pdf"
		}
		h.archive.Store(c.Request.Context(), username, record.ID, header.Filename, contentType, data)
	}

	c.JSON(http.StatusOK, recordView(record))
}

// List returns all analyzed contracts in upload order.
func (h *ContractHandler) List(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list contracts: " + err.Error()})
		return
	}

	result := make([]gin.H, len(records))
	for i, record := range records {
		h.pipeline.Classify(record)
		result[i] = recordView(record)
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

// Get returns a single contract with its full analysis.
func (h *ContractHandler) Get(c *gin.Context) {
	id := c.Param("id")

	records, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read contracts: " + err.Error()})
		return
	}

	for _, record := range records {
		if record.ID == id {
			h.pipeline.Classify(record)
			view := recordView(record)
			view["raw_text"] = record.RawText
			c.JSON(http.StatusOK, view)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
}

// Filter returns contracts matching the name and/or date query
// parameters. No match is an empty list, not an error.
func (h *ContractHandler) Filter(c *gin.Context) {
	q := service.FilterQuery{
		NameContains: c.Query("name"),
		Date:         c.Query("date"),
	}

	if q.Date != "" {
		if _, err := time.Parse("2006-01-02", q.Date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
			return
		}
	}

	records, err := h.store.Filter(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to filter contracts: " + err.Error()})
		return
	}

	result := make([]gin.H, len(records))
	for i, record := range records {
		h.pipeline.Classify(record)
		result[i] = recordView(record)
	}

	c.JSON(http.StatusOK, gin.H{"contracts": result})
}

// Export streams the record list as a CSV download.
func (h *ContractHandler) Export(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read contracts: " + err.Error()})
		return
	}
	for _, record := range records {
		h.pipeline.Classify(record)
	}

	data, err := service.ExportCSV(records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build CSV: " + err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="contracts.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// recordView is the JSON shape shared by the contract endpoints.
func recordView(record *model.ContractRecord) gin.H {
	view := gin.H{
		"id":          record.ID,
		"filename":    record.Filename,
		"uploaded_by": record.UploadedBy,
		"status":      record.Status,
		"risk_score":  record.RiskScore,
		"upload_date": record.UploadedAt.Format("2006-01-02"),
	}
	if record.Analysis != nil {
		if record.Analysis.Structured != nil {
			view["analysis"] = record.Analysis.Structured
		} else {
			view["analysis"] = record.Analysis.Text
		}
	}
	return view
}
