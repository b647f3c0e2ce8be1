package service

import (
	"context"
	"errors"
	"time"

	issueserrors "parkfinder/internal/issues/errors"
	"parkfinder/internal/issues/repository"
	"parkfinder/internal/issues/validator"
	slotsrepo "parkfinder/internal/slots/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/sanitizer"

	"github.com/google/uuid"
)

type IssueService interface {
	ReportIssue(ctx context.Context, session *model.Session, req *model.IssueReport) (*model.Issue, error)
	GetIssues(ctx context.Context, session *model.Session, status, slotID string) ([]*model.Issue, error)
	ResolveIssue(ctx context.Context, session *model.Session, id string) (*model.Issue, error)

	SubmitFeedback(ctx context.Context, req *model.FeedbackSubmission) (*model.Feedback, error)
	GetFeedback(ctx context.Context, session *model.Session) ([]*model.Feedback, error)
	RespondFeedback(ctx context.Context, session *model.Session, id string, response string) (*model.Feedback, error)
}

type issueService struct {
	repo      repository.IssueRepository
	slotRepo  slotsrepo.SlotRepository
	validator *validator.IssueValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewIssueService(
	repo repository.IssueRepository,
	slotRepo slotsrepo.SlotRepository,
	v *validator.IssueValidator,
	cfg *config.Config,
) IssueService {
	return &issueService{
		repo:      repo,
		slotRepo:  slotRepo,
		validator: v,
		cfg:       cfg,
		now:       time.Now,
	}
}

// ReportIssue files a maintenance problem against a slot. Reporting never
// changes the slot's status; taking a slot out of service stays an explicit
// admin decision.
func (s *issueService) ReportIssue(ctx context.Context, session *model.Session, req *model.IssueReport) (*model.Issue, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}
	if req == nil {
		return nil, apperrors.InvalidInput("Request body is required")
	}

	req.Type = sanitizer.TrimAndNormalize(req.Type)
	req.Description = sanitizer.CleanText(req.Description)

	if err := s.validator.ValidateReport(req); err != nil {
		return nil, apperrors.Validation("Invalid issue report", map[string]any{"error": err.Error()})
	}

	slot, err := s.slotRepo.FindByID(ctx, req.SlotID)
	if err != nil {
		return nil, apperrors.NotFoundWithID("Slot", req.SlotID)
	}

	issue := &model.Issue{
		ID:          uuid.NewString(),
		SlotID:      slot.ID,
		SlotNumber:  slot.Number,
		Type:        req.Type,
		Priority:    req.Priority,
		Description: req.Description,
		Status:      model.IssueOpen,
		ReportedBy:  session.UserID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateIssue(ctx, issue); err != nil {
		s.cfg.Log.Error("Failed to create issue", "slot_id", req.SlotID, "error", err)
		return nil, apperrors.Internal("Failed to create issue", err)
	}

	s.cfg.Log.Info("Issue reported",
		"issue_id", issue.ID,
		"slot_id", issue.SlotID,
		"priority", issue.Priority,
		"by", session.UserID,
	)
	return issue, nil
}

func (s *issueService) GetIssues(ctx context.Context, session *model.Session, status, slotID string) ([]*model.Issue, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}
	if status != "" && status != model.IssueOpen && status != model.IssueResolved {
		return nil, apperrors.InvalidInput("Unknown issue status: " + status)
	}

	issues, err := s.repo.FindAllIssues(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list issues", "error", err)
		return nil, apperrors.Internal("Failed to retrieve issues", err)
	}

	filtered := make([]*model.Issue, 0, len(issues))
	for _, issue := range issues {
		if status != "" && issue.Status != status {
			continue
		}
		if slotID != "" && issue.SlotID != slotID {
			continue
		}
		filtered = append(filtered, issue)
	}
	return filtered, nil
}

func (s *issueService) ResolveIssue(ctx context.Context, session *model.Session, id string) (*model.Issue, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Issue ID cannot be empty")
	}

	issue, err := s.repo.FindIssueByID(ctx, id)
	if err != nil {
		if errors.Is(err, issueserrors.ErrIssueNotFound) {
			return nil, apperrors.NotFoundWithID("Issue", id)
		}
		return nil, apperrors.Internal("Failed to retrieve issue", err)
	}
	if issue.Status == model.IssueResolved {
		return nil, apperrors.InvalidState("Issue is already resolved")
	}

	resolved := s.now()
	issue.Status = model.IssueResolved
	issue.ResolvedAt = &resolved
	if err := s.repo.UpdateIssue(ctx, issue); err != nil {
		return nil, apperrors.Internal("Failed to resolve issue", err)
	}

	s.cfg.Log.Info("Issue resolved", "issue_id", id, "by", session.UserID)
	return issue, nil
}

// SubmitFeedback accepts feedback from anyone, logged in or not.
func (s *issueService) SubmitFeedback(ctx context.Context, req *model.FeedbackSubmission) (*model.Feedback, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Request body is required")
	}

	req.Name = sanitizer.TrimAndNormalize(req.Name)
	req.Type = sanitizer.TrimAndNormalize(req.Type)
	req.Message = sanitizer.CleanText(req.Message)

	if err := s.validator.ValidateFeedback(req); err != nil {
		return nil, apperrors.Validation("Invalid feedback", map[string]any{"error": err.Error()})
	}

	feedback := &model.Feedback{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Type:      req.Type,
		Message:   req.Message,
		Status:    model.FeedbackNew,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateFeedback(ctx, feedback); err != nil {
		s.cfg.Log.Error("Failed to create feedback", "error", err)
		return nil, apperrors.Internal("Failed to submit feedback", err)
	}

	s.cfg.Log.Info("Feedback submitted", "feedback_id", feedback.ID)
	return feedback, nil
}

func (s *issueService) GetFeedback(ctx context.Context, session *model.Session) ([]*model.Feedback, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}

	entries, err := s.repo.FindAllFeedback(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list feedback", "error", err)
		return nil, apperrors.Internal("Failed to retrieve feedback", err)
	}
	return entries, nil
}

func (s *issueService) RespondFeedback(ctx context.Context, session *model.Session, id string, response string) (*model.Feedback, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Feedback ID cannot be empty")
	}

	response = sanitizer.CleanText(response)
	if err := s.validator.ValidateResponse(&model.FeedbackResponse{Response: response}); err != nil {
		return nil, apperrors.Validation("Invalid response", map[string]any{"error": err.Error()})
	}

	feedback, err := s.repo.FindFeedbackByID(ctx, id)
	if err != nil {
		if errors.Is(err, issueserrors.ErrFeedbackNotFound) {
			return nil, apperrors.NotFoundWithID("Feedback", id)
		}
		return nil, apperrors.Internal("Failed to retrieve feedback", err)
	}
	if feedback.Status == model.FeedbackResolved {
		return nil, apperrors.InvalidState("Feedback has already been answered")
	}

	responded := s.now()
	feedback.Status = model.FeedbackResolved
	feedback.Response = response
	feedback.RespondedAt = &responded
	if err := s.repo.UpdateFeedback(ctx, feedback); err != nil {
		return nil, apperrors.Internal("Failed to save response", err)
	}

	s.cfg.Log.Info("Feedback answered", "feedback_id", id, "by", session.UserID)
	return feedback, nil
}
