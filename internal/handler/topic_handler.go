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

// TopicHandler handles topic endpoints.
type TopicHandler struct {
	service *service.TopicService
}

// NewTopicHandler creates a new topic handler.
func NewTopicHandler(svc *service.TopicService) *TopicHandler {
	return &TopicHandler{service: svc}
}

// List godoc
// @Summary List topics
// @Tags Topics
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param semester_id query string false "Semester filter"
// @Param status query string false "Status filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /topics [get]
func (h *TopicHandler) List(c *gin.Context) {
	var filter models.TopicFilter

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SemesterID = c.Query("semester_id")
	filter.CreatedBy = c.Query("created_by")
	filter.Status = models.TopicStatus(c.Query("status"))
	filter.Search = c.Query("search")
	if deleted, err := strconv.ParseBool(c.DefaultQuery("include_deleted", "false")); err == nil {
		filter.IncludeDeleted = deleted
	}

	topics, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, topics, pagination)
}

// Get godoc
// @Summary Get topic
// @Tags Topics
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /topics/{id} [get]
func (h *TopicHandler) Get(c *gin.Context) {
	topic, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, topic)
}

// Create godoc
// @Summary Propose topic
// @Tags Topics
// @Accept json
// @Produce json
// @Param payload body service.CreateTopicRequest true "Topic payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /topics [post]
func (h *TopicHandler) Create(c *gin.Context) {
	var req service.CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}

	topic, err := h.service.Create(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, topic)
}

// Update godoc
// @Summary Update topic
// @Tags Topics
// @Accept json
// @Produce json
// @Param id path string true "Topic ID"
// @Param payload body service.UpdateTopicRequest true "Topic payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /topics/{id} [put]
func (h *TopicHandler) Update(c *gin.Context) {
	var req service.UpdateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid topic payload"))
		return
	}

	topic, err := h.service.Update(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, topic)
}

// Delete godoc
// @Summary Soft-delete topic
// @Description Soft-delete a topic and its reports and documents. Fails while an active registration references the topic.
// @Tags Topics
// @Produce json
// @Param id path string true "Topic ID"
// @Param semester_id query string false "Limit the cascade to one semester"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /topics/{id} [delete]
func (h *TopicHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("id"), actorID(c), c.Query("semester_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Restore godoc
// @Summary Restore topic
// @Tags Topics
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /topics/{id}/restore [post]
func (h *TopicHandler) Restore(c *gin.Context) {
	result, err := h.service.Restore(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
