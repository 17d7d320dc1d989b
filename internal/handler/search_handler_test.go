package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
)

type fakeSearchSrv struct {
	searchResp  *dto.SearchResponse
	searchErr   error
	suggestResp *dto.SuggestionResponse
	lastQuery   string
	lastTab     models.SearchTab
}

func (f *fakeSearchSrv) Search(_ context.Context, query string, tab models.SearchTab) (*dto.SearchResponse, error) {
	f.lastQuery = query
	f.lastTab = tab
	return f.searchResp, f.searchErr
}

func (f *fakeSearchSrv) Suggestions(_ context.Context, query string) (*dto.SuggestionResponse, error) {
	f.lastQuery = query
	return f.suggestResp, nil
}

func TestSearchHandlerDefaultsToAllTab(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSearchSrv{searchResp: &dto.SearchResponse{Query: "react", Tab: models.SearchTabAll}}
	handler := NewSearchHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/search?q=react", nil)

	handler.Search(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "react", srv.lastQuery)
	assert.Equal(t, models.SearchTabAll, srv.lastTab)
}

func TestSearchHandlerRejectsUnknownTab(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSearchHandler(&fakeSearchSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/search?q=react&tab=events", nil)

	handler.Search(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandlerTrimsQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSearchSrv{searchResp: &dto.SearchResponse{}}
	handler := NewSearchHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/search?q=%20react%20&tab=courses", nil)

	handler.Search(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "react", srv.lastQuery)
	assert.Equal(t, models.SearchTabCourses, srv.lastTab)
}

func TestSearchHandlerSuggestions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeSearchSrv{suggestResp: &dto.SuggestionResponse{Query: "rea", Suggestions: []string{"React Basics"}}}
	handler := NewSearchHandler(srv)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/search/suggestions?q=rea", nil)

	handler.Suggestions(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data dto.SuggestionResponse `json:"data"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &envelope)
	assert.Equal(t, []string{"React Basics"}, envelope.Data.Suggestions)
}
