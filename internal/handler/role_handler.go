package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/thesis-hub-api/internal/service"
	appErrors "github.com/noah-isme/thesis-hub-api/pkg/errors"
	"github.com/noah-isme/thesis-hub-api/pkg/response"
)

// RoleHandler handles role assignment endpoints.
type RoleHandler struct {
	service *service.RoleService
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(svc *service.RoleService) *RoleHandler {
	return &RoleHandler{service: svc}
}

// ListForPrincipal godoc
// @Summary List role assignments
// @Description List the active role assignments of a principal
// @Tags Roles
// @Produce json
// @Param id path string true "Principal ID"
// @Success 200 {object} response.Envelope
// @Router /principals/{id}/roles [get]
func (h *RoleHandler) ListForPrincipal(c *gin.Context) {
	assignments, err := h.service.ListForPrincipal(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignments)
}

// Grant godoc
// @Summary Grant role
// @Description Grant a role to a principal, scoped to a semester unless the role is system-wide
// @Tags Roles
// @Accept json
// @Produce json
// @Param payload body service.GrantRoleRequest true "Grant payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /roles [post]
func (h *RoleHandler) Grant(c *gin.Context) {
	var req service.GrantRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grant payload"))
		return
	}

	assignment, err := h.service.Grant(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Revoke godoc
// @Summary Revoke role
// @Description Deactivate a role assignment
// @Tags Roles
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /roles/{id} [delete]
func (h *RoleHandler) Revoke(c *gin.Context) {
	if err := h.service.Revoke(c.Request.Context(), c.Param("id"), actorID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
