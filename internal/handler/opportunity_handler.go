package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-app/skillbridge-api/internal/models"
	"github.com/skillbridge-app/skillbridge-api/internal/service"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/response"
)

type profileResolver interface {
	Get(ctx context.Context, id string) (*models.Profile, error)
}

// OpportunityHandler exposes opportunity posting endpoints.
type OpportunityHandler struct {
	opportunities *service.OpportunityService
	profiles      profileResolver
}

// NewOpportunityHandler constructs OpportunityHandler.
func NewOpportunityHandler(opportunities *service.OpportunityService, profiles profileResolver) *OpportunityHandler {
	return &OpportunityHandler{opportunities: opportunities, profiles: profiles}
}

// List godoc
// @Summary List opportunities
// @Tags Opportunities
// @Produce json
// @Param search query string false "Search by title or skill"
// @Param type query string false "Filter by type"
// @Param status query string false "Filter by status"
// @Param companyId query string false "Filter by company"
// @Param remote query bool false "Filter by remote"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /opportunities [get]
func (h *OpportunityHandler) List(c *gin.Context) {
	var filter models.OpportunityFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Type = c.Query("type")
	filter.Status = c.Query("status")
	filter.CompanyID = c.Query("companyId")
	if remote := c.Query("remote"); remote != "" {
		v := remote == "true"
		filter.Remote = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	opportunities, pagination, err := h.opportunities.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opportunities, pagination)
}

// Get godoc
// @Summary Get opportunity detail
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 200 {object} response.Envelope
// @Router /opportunities/{id} [get]
func (h *OpportunityHandler) Get(c *gin.Context) {
	opportunity, err := h.opportunities.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opportunity, nil)
}

// Create godoc
// @Summary Create opportunity
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param payload body service.OpportunityRequest true "Opportunity payload"
// @Success 201 {object} response.Envelope
// @Router /opportunities [post]
func (h *OpportunityHandler) Create(c *gin.Context) {
	companyID, err := h.callerCompanyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	opportunity, err := h.opportunities.Create(c.Request.Context(), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, opportunity)
}

// Update godoc
// @Summary Update opportunity
// @Tags Opportunities
// @Accept json
// @Produce json
// @Param id path string true "Opportunity ID"
// @Param payload body service.OpportunityRequest true "Opportunity payload"
// @Success 200 {object} response.Envelope
// @Router /opportunities/{id} [put]
func (h *OpportunityHandler) Update(c *gin.Context) {
	companyID, err := h.callerCompanyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req service.OpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	opportunity, err := h.opportunities.Update(c.Request.Context(), c.Param("id"), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, opportunity, nil)
}

// Delete godoc
// @Summary Delete opportunity
// @Tags Opportunities
// @Produce json
// @Param id path string true "Opportunity ID"
// @Success 204
// @Router /opportunities/{id} [delete]
func (h *OpportunityHandler) Delete(c *gin.Context) {
	companyID, err := h.callerCompanyID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.opportunities.Delete(c.Request.Context(), c.Param("id"), companyID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// callerCompanyID resolves the employer's company from their profile.
func (h *OpportunityHandler) callerCompanyID(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	profile, err := h.profiles.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return "", err
	}
	if profile.CompanyID == nil || *profile.CompanyID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "no company linked to this account")
	}
	return *profile.CompanyID, nil
}
