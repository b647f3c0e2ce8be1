package service

import (
	"context"
	"errors"
	"time"

	"parkfinder/internal/billing"
	bookingserrors "parkfinder/internal/bookings/errors"
	"parkfinder/internal/bookings/repository"
	paymentsrepo "parkfinder/internal/payments/repository"
	slotsrepo "parkfinder/internal/slots/repository"
	usersrepo "parkfinder/internal/users/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"

	"github.com/google/uuid"
)

// RateProvider supplies the hourly rate in effect right now. Sessions are
// always charged at the current rate, never the rate at reservation time.
// Implementations read through the base store, so the rate must be fetched
// before a settlement transaction opens.
type RateProvider interface {
	HourlyRate(ctx context.Context) (float64, error)
}

type BookingService interface {
	Reserve(ctx context.Context, session *model.Session, req *model.ReserveRequest) (*model.Booking, error)
	EndSession(ctx context.Context, session *model.Session, bookingID string) (*model.Booking, *model.Payment, error)
	ForceEnd(ctx context.Context, session *model.Session, bookingID string) (*model.Booking, *model.Payment, error)
	Cancel(ctx context.Context, session *model.Session, bookingID string) (*model.Booking, error)
	MarkAllAvailable(ctx context.Context, session *model.Session) ([]*model.Booking, error)
	Settle(ctx context.Context, session *model.Session, bookingID, method string) (*model.Booking, *model.Payment, error)
	GetByID(ctx context.Context, session *model.Session, id string) (*model.Booking, error)
	GetActive(ctx context.Context, session *model.Session) ([]*model.Booking, error)
	GetCurrent(ctx context.Context, session *model.Session) (*model.Booking, error)
	GetMine(ctx context.Context, session *model.Session) ([]*model.Booking, error)
	GetAll(ctx context.Context, session *model.Session) ([]*model.Booking, error)
}

type bookingService struct {
	repo        repository.BookingRepository
	slotRepo    slotsrepo.SlotRepository
	paymentRepo paymentsrepo.PaymentRepository
	userRepo    usersrepo.UserRepository
	calc        *billing.Calculator
	rates       RateProvider
	cfg         *config.Config
	now         func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	slotRepo slotsrepo.SlotRepository,
	paymentRepo paymentsrepo.PaymentRepository,
	userRepo usersrepo.UserRepository,
	calc *billing.Calculator,
	rates RateProvider,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:        repo,
		slotRepo:    slotRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		calc:        calc,
		rates:       rates,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *bookingService) Reserve(ctx context.Context, session *model.Session, req *model.ReserveRequest) (*model.Booking, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if req == nil || req.SlotID == "" {
		return nil, apperrors.InvalidInput("Slot ID is required")
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(tx store.Tx) error {
		txBookings := s.repo.WithTx(tx)
		txSlots := s.slotRepo.WithTx(tx)

		if _, err := txBookings.FindActiveByUser(ctx, session.UserID); err == nil {
			return apperrors.Conflict("You already have an active booking")
		} else if !errors.Is(err, bookingserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check active bookings", err)
		}

		slot, err := txSlots.FindByID(ctx, req.SlotID)
		if err != nil {
			return apperrors.NotFoundWithID("Slot", req.SlotID)
		}
		switch slot.Status {
		case model.SlotBooked:
			return apperrors.Conflict("Slot is already booked")
		case model.SlotMaintenance:
			return apperrors.InvalidState("Slot is under maintenance")
		}

		start := s.now()
		booking = &model.Booking{
			ID:         uuid.NewString(),
			UserID:     session.UserID,
			SlotID:     slot.ID,
			SlotNumber: slot.Number,
			SlotType:   slot.Type,
			StartTime:  start,
			Status:     model.BookingActive,
			CreatedAt:  start,
		}
		if err := txBookings.Create(ctx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}

		slot.Status = model.SlotBooked
		slot.BookedBy = session.UserID
		slot.BookingStart = &start
		slot.BookingEnd = nil
		if err := txSlots.Update(ctx, slot); err != nil {
			return apperrors.Internal("Failed to reserve slot", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Reservation failed", "user_id", session.UserID, "slot_id", req.SlotID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"booking_id", booking.ID,
		"user_id", session.UserID,
		"slot_id", booking.SlotID,
	)
	return booking, nil
}

// EndSession finalizes the caller's own active booking at the current rate.
func (s *bookingService) EndSession(ctx context.Context, session *model.Session, bookingID string) (*model.Booking, *model.Payment, error) {
	if session == nil {
		return nil, nil, apperrors.Unauthorized("Authentication required")
	}
	return s.settle(ctx, session, bookingID, model.PaymentMethodCash, true)
}

// ForceEnd is the supervisor override: same settlement as EndSession minus
// the ownership check. The occupant is still charged.
func (s *bookingService) ForceEnd(ctx context.Context, session *model.Session, bookingID string) (*model.Booking, *model.Payment, error) {
	if session == nil || !session.CanSupervise() {
		return nil, nil, apperrors.Forbidden("Supervisor access required")
	}
	return s.settle(ctx, session, bookingID, model.PaymentMethodCash, false)
}

// Settle finalizes a booking with an explicit payment method. Plain users
// may only settle their own booking.
func (s *bookingService) Settle(ctx context.Context, session *model.Session, bookingID, method string) (*model.Booking, *model.Payment, error) {
	if session == nil {
		return nil, nil, apperrors.Unauthorized("Authentication required")
	}
	if method == "" {
		method = model.PaymentMethodCash
	}
	return s.settle(ctx, session, bookingID, method, !session.CanSupervise())
}

func (s *bookingService) settle(ctx context.Context, session *model.Session, bookingID, method string, enforceOwner bool) (*model.Booking, *model.Payment, error) {
	if bookingID == "" {
		return nil, nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	rate, err := s.rates.HourlyRate(ctx)
	if err != nil {
		return nil, nil, apperrors.Internal("Failed to load hourly rate", err)
	}

	var booking *model.Booking
	var payment *model.Payment
	err = s.repo.ExecuteTransaction(ctx, func(tx store.Tx) error {
		var err error
		booking, payment, err = s.settleInTx(ctx, tx, session, bookingID, method, rate, enforceOwner)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	s.cfg.Log.Info("Booking settled",
		"booking_id", booking.ID,
		"user_id", booking.UserID,
		"duration_min", booking.Duration,
		"amount", booking.Amount,
		"by", session.UserID,
	)
	return booking, payment, nil
}

// settleInTx is the one place a booking transitions to completed. It stamps
// the end time, charges the caller-supplied rate, records the payment when
// the fee is non-zero, rolls the user's lifetime totals forward and frees the
// slot, all inside the caller's transaction. The rate is resolved before the
// transaction opens; looking it up here would block on the store.
func (s *bookingService) settleInTx(ctx context.Context, tx store.Tx, session *model.Session, bookingID, method string, rate float64, enforceOwner bool) (*model.Booking, *model.Payment, error) {
	txBookings := s.repo.WithTx(tx)

	booking, err := txBookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if !booking.IsActive() {
		return nil, nil, apperrors.InvalidState("Booking is not active")
	}
	if enforceOwner && booking.UserID != session.UserID {
		return nil, nil, apperrors.Forbidden("Booking belongs to another user")
	}

	end := s.now()
	duration := s.calc.DurationMinutes(booking.StartTime, end)
	breakdown := s.calc.Breakdown(duration, rate)

	booking.EndTime = &end
	booking.Duration = duration
	booking.Amount = breakdown.Total
	booking.Status = model.BookingCompleted
	if err := txBookings.Update(ctx, booking); err != nil {
		return nil, nil, apperrors.Internal("Failed to finalize booking", err)
	}

	var payment *model.Payment
	if breakdown.Total > 0 {
		payment = &model.Payment{
			ID:        uuid.NewString(),
			UserID:    booking.UserID,
			BookingID: booking.ID,
			SlotID:    booking.SlotID,
			Amount:    breakdown.Total,
			Method:    method,
			Status:    model.PaymentCompleted,
			CreatedAt: end,
			Billing:   breakdown,
			Invoice: model.InvoiceRef{
				Number:  paymentsrepo.NewInvoiceNumber(end),
				Date:    end,
				DueDate: end,
			},
		}
		if err := s.paymentRepo.WithTx(tx).Create(ctx, payment); err != nil {
			return nil, nil, apperrors.Internal("Failed to record payment", err)
		}
	}

	if err := s.applyTotalsInTx(ctx, tx, booking); err != nil {
		return nil, nil, err
	}
	if err := s.releaseSlotInTx(ctx, tx, booking.SlotID); err != nil {
		return nil, nil, err
	}
	return booking, payment, nil
}

func (s *bookingService) applyTotalsInTx(ctx context.Context, tx store.Tx, booking *model.Booking) error {
	txUsers := s.userRepo.WithTx(tx)
	user, err := txUsers.FindByID(ctx, booking.UserID)
	if err != nil {
		// A deleted account does not block settlement; totals simply
		// have nowhere to go.
		s.cfg.Log.Warn("Settled booking for unknown user", "booking_id", booking.ID, "user_id", booking.UserID)
		return nil
	}

	user.TotalSpent += booking.Amount
	user.TotalBookings++
	user.TotalHours += booking.Duration / 60
	if err := txUsers.Update(ctx, user); err != nil {
		return apperrors.Internal("Failed to update user totals", err)
	}
	return nil
}

func (s *bookingService) releaseSlotInTx(ctx context.Context, tx store.Tx, slotID string) error {
	txSlots := s.slotRepo.WithTx(tx)
	slot, err := txSlots.FindByID(ctx, slotID)
	if err != nil {
		s.cfg.Log.Warn("Settled booking referenced missing slot", "slot_id", slotID)
		return nil
	}

	slot.Status = model.SlotAvailable
	slot.BookedBy = ""
	slot.BookingStart = nil
	slot.BookingEnd = nil
	if err := txSlots.Update(ctx, slot); err != nil {
		return apperrors.Internal("Failed to release slot", err)
	}
	return nil
}

// Cancel voids an active booking without charging. The slot is released and
// the user's totals are left untouched.
func (s *bookingService) Cancel(ctx context.Context, session *model.Session, bookingID string) (*model.Booking, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	var booking *model.Booking
	err := s.repo.ExecuteTransaction(ctx, func(tx store.Tx) error {
		txBookings := s.repo.WithTx(tx)

		var err error
		booking, err = txBookings.FindByID(ctx, bookingID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Booking", bookingID)
			}
			return apperrors.Internal("Failed to retrieve booking", err)
		}
		if !booking.IsActive() {
			return apperrors.InvalidState("Booking is not active")
		}

		end := s.now()
		booking.EndTime = &end
		booking.Duration = s.calc.DurationMinutes(booking.StartTime, end)
		booking.Amount = 0
		booking.Status = model.BookingCancelled
		if err := txBookings.Update(ctx, booking); err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}

		return s.releaseSlotInTx(ctx, tx, booking.SlotID)
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled",
		"booking_id", booking.ID,
		"user_id", booking.UserID,
		"by", session.UserID,
	)
	return booking, nil
}

// MarkAllAvailable force-ends every active session, then returns the whole
// inventory to available. Occupants are charged for their time; slots under
// maintenance stay closed.
func (s *bookingService) MarkAllAvailable(ctx context.Context, session *model.Session) ([]*model.Booking, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}

	rate, err := s.rates.HourlyRate(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load hourly rate", err)
	}

	var ended []*model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(tx store.Tx) error {
		ended = nil
		txBookings := s.repo.WithTx(tx)
		txSlots := s.slotRepo.WithTx(tx)

		active, err := txBookings.FindActive(ctx)
		if err != nil {
			return apperrors.Internal("Failed to list active bookings", err)
		}
		for _, b := range active {
			settled, _, err := s.settleInTx(ctx, tx, session, b.ID, model.PaymentMethodCash, rate, false)
			if err != nil {
				return err
			}
			ended = append(ended, settled)
		}

		slots, err := txSlots.FindAll(ctx)
		if err != nil {
			return apperrors.Internal("Failed to list slots", err)
		}
		for _, slot := range slots {
			if slot.Status != model.SlotBooked {
				continue
			}
			slot.Status = model.SlotAvailable
			slot.BookedBy = ""
			slot.BookingStart = nil
			slot.BookingEnd = nil
			if err := txSlots.Update(ctx, slot); err != nil {
				return apperrors.Internal("Failed to release slot", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("All slots released", "ended_sessions", len(ended), "by", session.UserID)
	return ended, nil
}

func (s *bookingService) GetByID(ctx context.Context, session *model.Session, id string) (*model.Booking, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if booking.UserID != session.UserID && !session.CanSupervise() {
		return nil, apperrors.Forbidden("Booking belongs to another user")
	}
	return booking, nil
}

func (s *bookingService) GetActive(ctx context.Context, session *model.Session) ([]*model.Booking, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}

	bookings, err := s.repo.FindActive(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list active bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve active bookings", err)
	}
	return bookings, nil
}

// GetCurrent returns the caller's active booking, or NotFound when they are
// not parked.
func (s *bookingService) GetCurrent(ctx context.Context, session *model.Session) (*model.Booking, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	booking, err := s.repo.FindActiveByUser(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Active booking")
		}
		return nil, apperrors.Internal("Failed to retrieve active booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetMine(ctx context.Context, session *model.Session) ([]*model.Booking, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	bookings, err := s.repo.FindByUser(ctx, session.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user bookings", "user_id", session.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) GetAll(ctx context.Context, session *model.Session) ([]*model.Booking, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}

	bookings, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}
