package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/service"
	"github.com/noah-isme/thesis-hub-api/pkg/response"
)

// AuditHandler exposes the audit trail read surface.
type AuditHandler struct {
	service *service.AuditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(svc *service.AuditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List audit records
// @Description List audit records with filtering
// @Tags Audit
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param actor_id query string false "Actor filter"
// @Param action query string false "Action filter"
// @Param entity_type query string false "Entity type filter"
// @Param entity_id query string false "Entity ID filter"
// @Param severity query string false "Severity filter"
// @Param from query string false "Start time (RFC3339)"
// @Param to query string false "End time (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	var filter models.AuditFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil {
		filter.PageSize = size
	}
	filter.ActorID = c.Query("actor_id")
	filter.Action = c.Query("action")
	filter.EntityType = c.Query("entity_type")
	filter.EntityID = c.Query("entity_id")
	filter.Severity = models.AuditSeverity(c.Query("severity"))
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse(time.RFC3339, from); err == nil {
			filter.From = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse(time.RFC3339, to); err == nil {
			filter.To = &ts
		}
	}

	records, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// ExportTrail godoc
// @Summary Export audit trail PDF
// @Description Render the full audit trail of one entity as a PDF document
// @Tags Audit
// @Produce application/pdf
// @Param entity_type path string true "Entity type"
// @Param entity_id path string true "Entity ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /audit/{entity_type}/{entity_id}/export [get]
func (h *AuditHandler) ExportTrail(c *gin.Context) {
	entityType := c.Param("entity_type")
	entityID := c.Param("entity_id")

	pdf, err := h.service.ExportTrailPDF(c.Request.Context(), entityType, entityID)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("audit-%s-%s.pdf", entityType, entityID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
