package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

const generatedCourseJSON = `{
  "title": "React Basics",
  "description": "An introduction to React.",
  "chapters": [{"title": "Components", "content": "..."}],
  "quiz": [{"question": "What is JSX?", "options": ["a syntax extension", "a database"], "correct_option": 0}]
}`

func TestGenerateCourseParsesPlainJSON(t *testing.T) {
	gen := &stubGenerator{response: generatedCourseJSON}
	svc := NewAIService(gen, nil, nil, nil, nil, nil)

	resp, err := svc.GenerateCourse(context.Background(), dto.GenerateCourseRequest{Topic: "react"})
	require.NoError(t, err)
	assert.Equal(t, "React Basics", resp.Course.Title)
	require.Len(t, resp.Course.Chapters, 1)
	require.Len(t, resp.Course.Quiz, 1)
}

func TestGenerateCourseStripsCodeFence(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + generatedCourseJSON + "\n```"}
	svc := NewAIService(gen, nil, nil, nil, nil, nil)

	resp, err := svc.GenerateCourse(context.Background(), dto.GenerateCourseRequest{Topic: "react"})
	require.NoError(t, err)
	assert.Equal(t, "React Basics", resp.Course.Title)
}

func TestGenerateCourseMalformedResponse(t *testing.T) {
	gen := &stubGenerator{response: "sorry, I can't do that"}
	svc := NewAIService(gen, nil, nil, nil, nil, nil)

	_, err := svc.GenerateCourse(context.Background(), dto.GenerateCourseRequest{Topic: "react"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAIMalformed.Code, appErr.Code)
}

func TestGenerateCourseMissingTitleRejected(t *testing.T) {
	gen := &stubGenerator{response: `{"description": "no title", "chapters": []}`}
	svc := NewAIService(gen, nil, nil, nil, nil, nil)

	_, err := svc.GenerateCourse(context.Background(), dto.GenerateCourseRequest{Topic: "react"})
	require.Error(t, err)
}

func TestGenerateCourseQuizOptionOutOfRange(t *testing.T) {
	gen := &stubGenerator{response: `{
  "title": "React Basics",
  "chapters": [{"title": "Components", "content": "..."}],
  "quiz": [{"question": "q", "options": ["a"], "correct_option": 3}]
}`}
	svc := NewAIService(gen, nil, nil, nil, nil, nil)

	_, err := svc.GenerateCourse(context.Background(), dto.GenerateCourseRequest{Topic: "react"})
	require.Error(t, err)
}

func TestGenerateCourseDisabledWithoutBackend(t *testing.T) {
	svc := NewAIService(nil, nil, nil, nil, nil, nil)

	_, err := svc.GenerateCourse(context.Background(), dto.GenerateCourseRequest{Topic: "react"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAIUnavailable.Code, appErr.Code)
}

func TestAnalyzeCompatibilityClampsScore(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 140, "strengths": ["react"], "gaps": [], "recommendation": "interview", "summary": "strong match"}`}
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", StudentID: "stu-1", OpportunityID: "opp-1"}
	svc := NewAIService(gen, repo, &stubProfileLookup{profile: &models.Profile{ID: "stu-1", FirstName: "Jane", Skills: []string{"react"}}}, &stubOpportunityLookup{detail: openOpportunity()}, nil, nil)

	resp, err := svc.AnalyzeCompatibility(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Report.Score)
	assert.Equal(t, "strong match", resp.Report.Summary)
}

func TestAnalyzeCompatibilityMissingKeys(t *testing.T) {
	gen := &stubGenerator{response: `{"score": 10}`}
	repo := newStubApplicationRepo()
	repo.byID["app-1"] = &models.Application{ID: "app-1", StudentID: "stu-1", OpportunityID: "opp-1"}
	svc := NewAIService(gen, repo, &stubProfileLookup{profile: &models.Profile{ID: "stu-1"}}, &stubOpportunityLookup{detail: openOpportunity()}, nil, nil)

	_, err := svc.AnalyzeCompatibility(context.Background(), "app-1")
	require.Error(t, err)
}

func TestParseModelJSONVariants(t *testing.T) {
	var course models.GeneratedCourse
	require.NoError(t, ParseModelJSON("```\n{\"title\": \"x\"}\n```", &course))
	assert.Equal(t, "x", course.Title)

	require.Error(t, ParseModelJSON("```json\n```", &course))
	require.Error(t, ParseModelJSON("", &course))
}
