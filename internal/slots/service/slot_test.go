package service

import (
	"context"
	"testing"

	"parkfinder/internal/slots/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

func newSlotService(t *testing.T) (*slotService, repository.SlotRepository) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.Config{
		RegularSlots: 4,
		EVSlots:      2,
		Log:          logger.New(logger.Config{Level: logger.ERROR}),
	}
	repo := repository.NewStoreSlotRepository(st)
	return NewSlotService(repo, cfg).(*slotService), repo
}

func adminSession() *model.Session {
	return &model.Session{UserID: "adm", Username: "admin", Role: model.RoleAdmin}
}

func TestInitializeSeedsInventory(t *testing.T) {
	svc, _ := newSlotService(t)
	ctx := context.Background()

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	slots, err := svc.GetAll(ctx, "")
	if err != nil {
		t.Fatalf("GetAll: %v", err)
	}
	if len(slots) != 6 {
		t.Fatalf("slots = %d, want 6", len(slots))
	}

	// Slots come back ordered by number; regular first, then EV.
	for i, slot := range slots {
		if slot.Number != i+1 {
			t.Errorf("slot[%d].Number = %d, want %d", i, slot.Number, i+1)
		}
		wantType := model.SlotTypeRegular
		if slot.Number > 4 {
			wantType = model.SlotTypeEV
		}
		if slot.Type != wantType {
			t.Errorf("slot %d type = %s, want %s", slot.Number, slot.Type, wantType)
		}
		if slot.Status != model.SlotAvailable {
			t.Errorf("slot %d status = %s, want available", slot.Number, slot.Status)
		}
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	svc, _ := newSlotService(t)
	ctx := context.Background()

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	// Simulate live state between restarts.
	slot, _ := svc.GetByID(ctx, "slot-1")
	slot.Status = model.SlotBooked
	slot.BookedBy = "u1"
	if err := svc.repo.Update(ctx, slot); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("second Initialize: %v", err)
	}

	slot, _ = svc.GetByID(ctx, "slot-1")
	if slot.Status != model.SlotBooked {
		t.Errorf("restart reset slot-1 to %s", slot.Status)
	}

	count, _ := svc.repo.Count(ctx)
	if count != 6 {
		t.Errorf("count = %d, want 6", count)
	}
}

func TestGetAllFiltersByType(t *testing.T) {
	svc, _ := newSlotService(t)
	ctx := context.Background()
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	ev, err := svc.GetAll(ctx, model.SlotTypeEV)
	if err != nil {
		t.Fatalf("GetAll ev: %v", err)
	}
	if len(ev) != 2 {
		t.Errorf("ev slots = %d, want 2", len(ev))
	}

	_, err = svc.GetAll(ctx, "compact")
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("code = %s, want INVALID_INPUT", appErr.Code)
	}
}

func TestMaintenanceLifecycle(t *testing.T) {
	svc, _ := newSlotService(t)
	ctx := context.Background()
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	slot, err := svc.SetMaintenance(ctx, adminSession(), "slot-2", "Repainting lines")
	if err != nil {
		t.Fatalf("SetMaintenance: %v", err)
	}
	if slot.Status != model.SlotMaintenance {
		t.Errorf("status = %s, want maintenance", slot.Status)
	}
	if slot.AdminNote != "Repainting lines" {
		t.Errorf("note = %q", slot.AdminNote)
	}

	slot, err = svc.ClearMaintenance(ctx, adminSession(), "slot-2")
	if err != nil {
		t.Fatalf("ClearMaintenance: %v", err)
	}
	if slot.Status != model.SlotAvailable || slot.AdminNote != "" {
		t.Errorf("cleared slot = %+v", slot)
	}

	// Clearing an in-service slot is a state error.
	_, err = svc.ClearMaintenance(ctx, adminSession(), "slot-2")
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidState {
		t.Errorf("code = %s, want INVALID_STATE", appErr.Code)
	}
}

func TestSetMaintenanceRejectsBookedSlot(t *testing.T) {
	svc, repo := newSlotService(t)
	ctx := context.Background()
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	slot, _ := svc.GetByID(ctx, "slot-1")
	slot.Status = model.SlotBooked
	slot.BookedBy = "u1"
	if err := repo.Update(ctx, slot); err != nil {
		t.Fatalf("Update: %v", err)
	}

	_, err := svc.SetMaintenance(ctx, adminSession(), "slot-1", "note")
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeInvalidState {
		t.Errorf("code = %s, want INVALID_STATE", appErr.Code)
	}
}

func TestSetMaintenanceRequiresAdmin(t *testing.T) {
	svc, _ := newSlotService(t)
	ctx := context.Background()
	if err := svc.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	sup := &model.Session{UserID: "sup", Role: model.RoleSupervisor}
	_, err := svc.SetMaintenance(ctx, sup, "slot-1", "note")
	if appErr := apperrors.AsAppError(err); appErr.Code != apperrors.CodeForbidden {
		t.Errorf("code = %s, want FORBIDDEN", appErr.Code)
	}
}
