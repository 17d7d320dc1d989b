package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/skillbridge-app/skillbridge-api/internal/dto"
	"github.com/skillbridge-app/skillbridge-api/internal/models"
	appErrors "github.com/skillbridge-app/skillbridge-api/pkg/errors"
)

type textGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type aiApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
}

// AIService wraps the generative model behind typed course generation and
// applicant analysis operations.
type AIService struct {
	generator     textGenerator
	applications  aiApplicationRepository
	profiles      applicationProfileRepository
	opportunities applicationOpportunityRepository
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAIService constructs the AI service. A nil generator disables both
// operations.
func NewAIService(generator textGenerator, applications aiApplicationRepository, profiles applicationProfileRepository, opportunities applicationOpportunityRepository, validate *validator.Validate, logger *zap.Logger) *AIService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIService{generator: generator, applications: applications, profiles: profiles, opportunities: opportunities, validator: validate, logger: logger}
}

// Enabled reports whether a generative backend is configured.
func (s *AIService) Enabled() bool {
	return s != nil && s.generator != nil
}

// GenerateCourse asks the model for a structured course outline on the topic.
func (s *AIService) GenerateCourse(ctx context.Context, req dto.GenerateCourseRequest) (*dto.GenerateCourseResponse, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrAIUnavailable, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid generation payload")
	}

	chapters := req.ChapterCount
	if chapters <= 0 {
		chapters = 5
	}
	level := req.SkillLevel
	if level == "" {
		level = "beginner"
	}

	prompt := fmt.Sprintf(`Create a %s-level course outline about %q with exactly %d chapters and a short multiple-choice quiz.
Respond with a single JSON object using this shape:
{"title": string, "description": string, "chapters": [{"title": string, "content": string}], "quiz": [{"question": string, "options": [string], "correct_option": int}]}`,
		level, req.Topic, chapters)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("course generation failed", zap.String("topic", req.Topic), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "course generation failed")
	}

	var course models.GeneratedCourse
	if err := ParseModelJSON(raw, &course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAIMalformed.Code, appErrors.ErrAIMalformed.Status, appErrors.ErrAIMalformed.Message)
	}
	if course.Title == "" || len(course.Chapters) == 0 {
		return nil, appErrors.Clone(appErrors.ErrAIMalformed, "generated course is missing title or chapters")
	}
	for _, question := range course.Quiz {
		if question.CorrectOption < 0 || question.CorrectOption >= len(question.Options) {
			return nil, appErrors.Clone(appErrors.ErrAIMalformed, "generated quiz references an option out of range")
		}
	}

	return &dto.GenerateCourseResponse{Course: course}, nil
}

// AnalyzeCompatibility scores an applicant against the opportunity they
// applied to.
func (s *AIService) AnalyzeCompatibility(ctx context.Context, applicationID string) (*dto.CompatibilityResponse, error) {
	if !s.Enabled() {
		return nil, appErrors.Clone(appErrors.ErrAIUnavailable, "")
	}

	application, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	profile, err := s.profiles.FindByID(ctx, application.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicant profile")
	}
	opportunity, err := s.opportunities.FindByID(ctx, application.OpportunityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load opportunity")
	}

	prompt := fmt.Sprintf(`Assess how well this applicant fits the posting.
Applicant: %s. Bio: %q. Skills: %s.
Posting: %q at %s. Required skills: %s. Description: %q.
Respond with a single JSON object using this shape:
{"score": int 0-100, "strengths": [string], "gaps": [string], "recommendation": string, "summary": string}`,
		profile.FullName(), profile.Bio, strings.Join(profile.Skills, ", "),
		opportunity.Title, opportunity.CompanyName, strings.Join(opportunity.SkillsRequired, ", "), opportunity.Description)

	raw, err := s.generator.GenerateText(ctx, prompt)
	if err != nil {
		s.logger.Warn("compatibility analysis failed", zap.String("application_id", applicationID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrAIUnavailable.Code, appErrors.ErrAIUnavailable.Status, "compatibility analysis failed")
	}

	var report models.CompatibilityReport
	if err := ParseModelJSON(raw, &report); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrAIMalformed.Code, appErrors.ErrAIMalformed.Status, appErrors.ErrAIMalformed.Message)
	}
	if report.Summary == "" && report.Recommendation == "" {
		return nil, appErrors.Clone(appErrors.ErrAIMalformed, "analysis is missing summary and recommendation")
	}
	if report.Score < 0 {
		report.Score = 0
	}
	if report.Score > 100 {
		report.Score = 100
	}

	return &dto.CompatibilityResponse{ApplicationID: applicationID, Report: report}, nil
}

// ParseModelJSON decodes a model response into dest, tolerating a markdown
// code fence around the JSON body.
func ParseModelJSON(raw string, dest interface{}) error {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
			cleaned = cleaned[:idx]
		}
		cleaned = strings.TrimSpace(cleaned)
	}
	if cleaned == "" {
		return fmt.Errorf("empty model response")
	}
	if err := json.Unmarshal([]byte(cleaned), dest); err != nil {
		return fmt.Errorf("decode model response: %w", err)
	}
	return nil
}
