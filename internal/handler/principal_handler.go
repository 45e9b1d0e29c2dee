package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/models"
	"github.com/noah-isme/thesis-hub-api/internal/service"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
	"github.com/noah-isme/thesis-hub-api/pkg/response"
)

// PrincipalHandler handles principal CRUD and lifecycle endpoints.
type PrincipalHandler struct {
	service *service.PrincipalService
}

// NewPrincipalHandler creates a new principal handler.
func NewPrincipalHandler(svc *service.PrincipalService) *PrincipalHandler {
	return &PrincipalHandler{service: svc}
}

// List godoc
// @Summary List principals
// @Description List principals with pagination and filtering
// @Tags Principals
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param active query bool false "Active filter"
// @Param include_deleted query bool false "Include soft-deleted rows"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /principals [get]
func (h *PrincipalHandler) List(c *gin.Context) {
	var filter models.PrincipalFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	if active := c.Query("active"); active != "" {
		if val, err := strconv.ParseBool(active); err == nil {
			filter.Active = &val
		}
	}
	if deleted, err := strconv.ParseBool(c.DefaultQuery("include_deleted", "false")); err == nil {
		filter.IncludeDeleted = deleted
	}
	filter.Search = c.Query("search")
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	principals, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, principals, pagination)
}

// Get godoc
// @Summary Get principal
// @Description Get principal detail
// @Tags Principals
// @Produce json
// @Param id path string true "Principal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /principals/{id} [get]
func (h *PrincipalHandler) Get(c *gin.Context) {
	principal, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, principal)
}

// Create godoc
// @Summary Create principal
// @Description Register a new principal
// @Tags Principals
// @Accept json
// @Produce json
// @Param payload body service.CreatePrincipalRequest true "Principal payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /principals [post]
func (h *PrincipalHandler) Create(c *gin.Context) {
	var req service.CreatePrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid principal payload"))
		return
	}

	principal, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, principal)
}

// Update godoc
// @Summary Update principal
// @Description Update principal attributes
// @Tags Principals
// @Accept json
// @Produce json
// @Param id path string true "Principal ID"
// @Param payload body service.UpdatePrincipalRequest true "Principal payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /principals/{id} [put]
func (h *PrincipalHandler) Update(c *gin.Context) {
	var req service.UpdatePrincipalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid principal payload"))
		return
	}

	principal, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, principal)
}

// Delete godoc
// @Summary Soft-delete principal
// @Description Soft-delete a principal and every dependent row, optionally limited to one semester
// @Tags Principals
// @Produce json
// @Param id path string true "Principal ID"
// @Param semester_id query string false "Limit the cascade to one semester"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /principals/{id} [delete]
func (h *PrincipalHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c), c.Query("semester_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Restore godoc
// @Summary Restore principal
// @Description Restore a soft-deleted principal and its dependent rows
// @Tags Principals
// @Produce json
// @Param id path string true "Principal ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /principals/{id}/restore [post]
func (h *PrincipalHandler) Restore(c *gin.Context) {
	result, err := h.service.Restore(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
