package service

import (
	"context"
	"testing"

	"parkfinder/internal/issues/repository"
	"parkfinder/internal/issues/validator"
	slotsrepo "parkfinder/internal/slots/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

func newIssueService(t *testing.T) (*issueService, slotsrepo.SlotRepository) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR})}
	slotRepo := slotsrepo.NewStoreSlotRepository(st)
	svc := NewIssueService(
		repository.NewStoreIssueRepository(st),
		slotRepo,
		validator.NewIssueValidator(cfg.Log),
		cfg,
	).(*issueService)
	return svc, slotRepo
}

func session(userID, role string) *model.Session {
	return &model.Session{UserID: userID, Username: userID, Role: role}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

func seedSlot(t *testing.T, repo slotsrepo.SlotRepository, id string, number int, status string) {
	t.Helper()
	err := repo.Create(context.Background(), &model.Slot{
		ID: id, Number: number, Type: model.SlotTypeRegular, Status: status,
	})
	if err != nil {
		t.Fatalf("seed slot: %v", err)
	}
}

func TestReportIssueLeavesSlotUntouched(t *testing.T) {
	svc, slotRepo := newIssueService(t)
	ctx := context.Background()
	seedSlot(t, slotRepo, "slot-1", 1, model.SlotAvailable)

	issue, err := svc.ReportIssue(ctx, session("sup", model.RoleSupervisor), &model.IssueReport{
		SlotID:      "slot-1",
		Type:        "sensor",
		Priority:    "high",
		Description: "  Occupancy sensor reads stuck.\x00  ",
	})
	if err != nil {
		t.Fatalf("ReportIssue: %v", err)
	}
	if issue.Status != model.IssueOpen {
		t.Errorf("status = %s, want open", issue.Status)
	}
	if issue.SlotNumber != 1 {
		t.Errorf("slot number = %d, want 1", issue.SlotNumber)
	}
	if issue.Description != "Occupancy sensor reads stuck." {
		t.Errorf("description not cleaned: %q", issue.Description)
	}

	// Reporting is informational; the slot stays bookable.
	slot, _ := slotRepo.FindByID(ctx, "slot-1")
	if slot.Status != model.SlotAvailable {
		t.Errorf("slot status = %s, want available", slot.Status)
	}
}

func TestReportIssueRequiresSupervisor(t *testing.T) {
	svc, slotRepo := newIssueService(t)
	seedSlot(t, slotRepo, "slot-1", 1, model.SlotAvailable)

	_, err := svc.ReportIssue(context.Background(), session("u1", model.RoleUser), &model.IssueReport{
		SlotID: "slot-1", Type: "sensor", Priority: "low", Description: "broken",
	})
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestReportIssueUnknownSlot(t *testing.T) {
	svc, _ := newIssueService(t)
	_, err := svc.ReportIssue(context.Background(), session("sup", model.RoleSupervisor), &model.IssueReport{
		SlotID: "nope", Type: "sensor", Priority: "low", Description: "broken",
	})
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestResolveIssueLifecycle(t *testing.T) {
	svc, slotRepo := newIssueService(t)
	ctx := context.Background()
	seedSlot(t, slotRepo, "slot-1", 1, model.SlotAvailable)

	issue, err := svc.ReportIssue(ctx, session("sup", model.RoleSupervisor), &model.IssueReport{
		SlotID: "slot-1", Type: "gate", Priority: "medium", Description: "barrier jams",
	})
	if err != nil {
		t.Fatalf("ReportIssue: %v", err)
	}

	resolved, err := svc.ResolveIssue(ctx, session("sup", model.RoleSupervisor), issue.ID)
	if err != nil {
		t.Fatalf("ResolveIssue: %v", err)
	}
	if resolved.Status != model.IssueResolved {
		t.Errorf("status = %s, want resolved", resolved.Status)
	}
	if resolved.ResolvedAt == nil {
		t.Error("resolved issue is missing its timestamp")
	}

	// Resolved is terminal.
	_, err = svc.ResolveIssue(ctx, session("sup", model.RoleSupervisor), issue.ID)
	assertCode(t, err, apperrors.CodeInvalidState)
}

func TestGetIssuesFiltersByStatus(t *testing.T) {
	svc, slotRepo := newIssueService(t)
	ctx := context.Background()
	sup := session("sup", model.RoleSupervisor)
	seedSlot(t, slotRepo, "slot-1", 1, model.SlotAvailable)

	first, _ := svc.ReportIssue(ctx, sup, &model.IssueReport{
		SlotID: "slot-1", Type: "gate", Priority: "low", Description: "barrier jams",
	})
	if _, err := svc.ReportIssue(ctx, sup, &model.IssueReport{
		SlotID: "slot-1", Type: "light", Priority: "low", Description: "lamp out",
	}); err != nil {
		t.Fatalf("ReportIssue: %v", err)
	}
	if _, err := svc.ResolveIssue(ctx, sup, first.ID); err != nil {
		t.Fatalf("ResolveIssue: %v", err)
	}

	open, err := svc.GetIssues(ctx, sup, model.IssueOpen, "")
	if err != nil {
		t.Fatalf("GetIssues open: %v", err)
	}
	if len(open) != 1 {
		t.Errorf("open issues = %d, want 1", len(open))
	}

	all, err := svc.GetIssues(ctx, sup, "", "")
	if err != nil {
		t.Fatalf("GetIssues all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("all issues = %d, want 2", len(all))
	}

	_, err = svc.GetIssues(ctx, sup, "pending", "")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestSubmitFeedbackIsAnonymousFriendly(t *testing.T) {
	svc, _ := newIssueService(t)

	feedback, err := svc.SubmitFeedback(context.Background(), &model.FeedbackSubmission{
		Name:    "Visitor",
		Message: "The entry display is hard to read at night.",
	})
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}
	if feedback.Status != model.FeedbackNew {
		t.Errorf("status = %s, want new", feedback.Status)
	}
}

func TestSubmitFeedbackValidation(t *testing.T) {
	svc, _ := newIssueService(t)
	_, err := svc.SubmitFeedback(context.Background(), &model.FeedbackSubmission{Name: "V", Message: ""})
	assertCode(t, err, apperrors.CodeValidation)
}

func TestRespondFeedback(t *testing.T) {
	svc, _ := newIssueService(t)
	ctx := context.Background()

	feedback, err := svc.SubmitFeedback(ctx, &model.FeedbackSubmission{
		Name:    "Visitor",
		Message: "More EV chargers please.",
	})
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}

	// Admin only.
	_, err = svc.RespondFeedback(ctx, session("sup", model.RoleSupervisor), feedback.ID, "Noted.")
	assertCode(t, err, apperrors.CodeForbidden)

	answered, err := svc.RespondFeedback(ctx, session("adm", model.RoleAdmin), feedback.ID, "Two more chargers arrive next month.")
	if err != nil {
		t.Fatalf("RespondFeedback: %v", err)
	}
	if answered.Status != model.FeedbackResolved {
		t.Errorf("status = %s, want resolved", answered.Status)
	}
	if answered.Response == "" || answered.RespondedAt == nil {
		t.Errorf("response not recorded: %+v", answered)
	}

	_, err = svc.RespondFeedback(ctx, session("adm", model.RoleAdmin), feedback.ID, "Again.")
	assertCode(t, err, apperrors.CodeInvalidState)
}
