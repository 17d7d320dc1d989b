package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/response"
)

type searchProvider interface {
	Search(ctx context.Context, query string, tab models.SearchTab) (*dto.SearchResponse, error)
	Suggestions(ctx context.Context, query string) (*dto.SuggestionResponse, error)
}

// SearchHandler exposes the search and autocomplete endpoints.
type SearchHandler struct {
	search searchProvider
}

// NewSearchHandler constructs SearchHandler.
func NewSearchHandler(search searchProvider) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search godoc
// @Summary Search across courses, opportunities, profiles and companies
// @Tags Search
// @Produce json
// @Param q query string true "Query text"
// @Param tab query string false "Tab: all, courses, opportunities, profiles, companies"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	tab := models.SearchTab(c.DefaultQuery("tab", string(models.SearchTabAll)))
	if !models.ValidSearchTab(tab) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown search tab"))
		return
	}

	res, err := h.search.Search(c.Request.Context(), query, tab)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Suggestions godoc
// @Summary Autocomplete suggestions for a query prefix
// @Tags Search
// @Produce json
// @Param q query string true "Query prefix"
// @Success 200 {object} response.Envelope
// @Router /search/suggestions [get]
func (h *SearchHandler) Suggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))

	res, err := h.search.Suggestions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
