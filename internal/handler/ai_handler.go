package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/service"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/response"
)

// AIHandler exposes generative endpoints.
type AIHandler struct {
	ai *service.AIService
}

// NewAIHandler constructs AIHandler.
func NewAIHandler(ai *service.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// GenerateCourse godoc
// @Summary Generate a course outline from a topic
// @Tags AI
// @Accept json
// @Produce json
// @Param payload body dto.GenerateCourseRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ai/generate-course [post]
func (h *AIHandler) GenerateCourse(c *gin.Context) {
	var req dto.GenerateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	res, err := h.ai.GenerateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// AnalyzeCompatibility godoc
// @Summary Analyse applicant compatibility for an application
// @Tags AI
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /ai/applications/{id}/compatibility [get]
func (h *AIHandler) AnalyzeCompatibility(c *gin.Context) {
	res, err := h.ai.AnalyzeCompatibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
