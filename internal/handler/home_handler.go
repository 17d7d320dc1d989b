package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillbridge-app/skillbridge-api/internal/service"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
	"github.com/skillbridge-app/skillbridge-api/pkg/response"
)

// HomeHandler serves the personalised home feed.
type HomeHandler struct {
	home *service.HomeService
}

// NewHomeHandler constructs HomeHandler.
func NewHomeHandler(home *service.HomeService) *HomeHandler {
	return &HomeHandler{home: home}
}

// Feed godoc
// @Summary Personalised home feed
// @Tags Home
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /home [get]
func (h *HomeHandler) Feed(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	feed, err := h.home.Feed(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed, nil)
}
