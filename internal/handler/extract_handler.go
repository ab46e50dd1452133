package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"claimdesk/internal/service"
)

// ExtractHandler handles extraction endpoints.
type ExtractHandler struct {
	svc *service.ExtractionService
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(svc *service.ExtractionService) *ExtractHandler {
	return &ExtractHandler{svc: svc}
}

// Extract handles POST /api/v1/extract
func (h *ExtractHandler) Extract(c *gin.Context) {
	var input service.ExtractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON")
		return
	}

	result, err := h.svc.Extract(c.Request.Context(), &input)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, result)
}

// batchRequest is the body for POST /api/v1/extract/batch.
type batchRequest struct {
	Documents []*service.ExtractInput `json:"documents" binding:"required"`
}

// batchResponse pairs the per-document results with the aggregate stats.
type batchResponse struct {
	Results []*service.ExtractResult `json:"results"`
	Stats   service.BatchStats       `json:"stats"`
}

// ExtractBatch handles POST /api/v1/extract/batch
func (h *ExtractHandler) ExtractBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "request body must contain a documents array")
		return
	}
	if len(req.Documents) == 0 {
		RespondError(c, http.StatusBadRequest, "EMPTY_BATCH", "documents array must not be empty")
		return
	}

	results, stats := h.svc.ExtractBatch(c.Request.Context(), req.Documents)
	RespondOK(c, batchResponse{Results: results, Stats: stats})
}

// GetOutcome handles GET /api/v1/outcomes/:id
func (h *ExtractHandler) GetOutcome(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "id must be a valid UUID")
		return
	}

	rec, err := h.svc.GetOutcome(c.Request.Context(), id)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondOK(c, rec)
}

// ListOutcomes handles GET /api/v1/outcomes
func (h *ExtractHandler) ListOutcomes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	recs, err := h.svc.ListOutcomes(c.Request.Context(), limit, offset)
	if err != nil {
		status, code, msg := MapDomainError(err)
		RespondError(c, status, code, msg)
		return
	}
	RespondPaginated(c, recs, PagMeta{Offset: offset, Limit: limit})
}
