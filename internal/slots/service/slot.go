package service

import (
	"context"
	"errors"
	"fmt"

	slotserrors "parkfinder/internal/slots/errors"
	"parkfinder/internal/slots/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/sanitizer"
	"parkfinder/pkg/store"
)

type SlotService interface {
	Initialize(ctx context.Context) error
	GetAll(ctx context.Context, slotType string) ([]*model.Slot, error)
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	SetMaintenance(ctx context.Context, session *model.Session, id string, note string) (*model.Slot, error)
	ClearMaintenance(ctx context.Context, session *model.Session, id string) (*model.Slot, error)
}

type slotService struct {
	repo repository.SlotRepository
	cfg  *config.Config
}

func NewSlotService(repo repository.SlotRepository, cfg *config.Config) SlotService {
	return &slotService{
		repo: repo,
		cfg:  cfg,
	}
}

// Initialize seeds the fixed slot inventory. Regular slots take the low
// numbers and EV slots continue after them. Running it against an already
// seeded store is a no-op so restarts never duplicate or reset slots.
func (s *slotService) Initialize(ctx context.Context) error {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return apperrors.Internal("Failed to inspect slot inventory", err)
	}
	if count > 0 {
		s.cfg.Log.Info("Slot inventory already initialized", "count", count)
		return nil
	}

	total := s.cfg.RegularSlots + s.cfg.EVSlots
	err = s.repo.ExecuteTransaction(ctx, func(tx store.Tx) error {
		txRepo := s.repo.WithTx(tx)
		for number := 1; number <= total; number++ {
			slotType := model.SlotTypeRegular
			if number > s.cfg.RegularSlots {
				slotType = model.SlotTypeEV
			}
			slot := &model.Slot{
				ID:     fmt.Sprintf("slot-%d", number),
				Number: number,
				Type:   slotType,
				Status: model.SlotAvailable,
			}
			if err := txRepo.Create(ctx, slot); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.Internal("Failed to seed slot inventory", err)
	}

	s.cfg.Log.Info("Slot inventory initialized",
		"regular", s.cfg.RegularSlots,
		"ev", s.cfg.EVSlots,
	)
	return nil
}

func (s *slotService) GetAll(ctx context.Context, slotType string) ([]*model.Slot, error) {
	if slotType != "" && slotType != model.SlotTypeRegular && slotType != model.SlotTypeEV {
		return nil, apperrors.InvalidInput("Unknown slot type: " + slotType)
	}

	slots, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list slots", "error", err)
		return nil, apperrors.Internal("Failed to retrieve slots", err)
	}

	if slotType == "" {
		return slots, nil
	}

	filtered := make([]*model.Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.Type == slotType {
			filtered = append(filtered, slot)
		}
	}
	return filtered, nil
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Slot", id)
		}
		return nil, apperrors.Internal("Failed to retrieve slot", err)
	}
	return slot, nil
}

// SetMaintenance takes an available slot out of service. Booked slots must
// be released first so an active session is never stranded on a closed slot.
func (s *slotService) SetMaintenance(ctx context.Context, session *model.Session, id string, note string) (*model.Slot, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can change slot maintenance")
	}

	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Status == model.SlotBooked {
		return nil, apperrors.InvalidState("Slot is booked; end the active session before maintenance")
	}

	slot.Status = model.SlotMaintenance
	slot.AdminNote = sanitizer.CleanText(note)

	if err := s.repo.Update(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to set slot maintenance", "slot_id", id, "error", err)
		return nil, apperrors.Internal("Failed to update slot", err)
	}

	s.cfg.Log.Info("Slot placed under maintenance", "slot_id", id, "by", session.UserID)
	return slot, nil
}

func (s *slotService) ClearMaintenance(ctx context.Context, session *model.Session, id string) (*model.Slot, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Only admins can change slot maintenance")
	}

	slot, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Status != model.SlotMaintenance {
		return nil, apperrors.InvalidState("Slot is not under maintenance")
	}

	slot.Status = model.SlotAvailable
	slot.AdminNote = ""

	if err := s.repo.Update(ctx, slot); err != nil {
		s.cfg.Log.Error("Failed to clear slot maintenance", "slot_id", id, "error", err)
		return nil, apperrors.Internal("Failed to update slot", err)
	}

	s.cfg.Log.Info("Slot returned to service", "slot_id", id, "by", session.UserID)
	return slot, nil
}
