package service

import (
	"context"
	"errors"
	"time"

	bookingsrepo "parkfinder/internal/bookings/repository"
	paymentserrors "parkfinder/internal/payments/errors"
	"parkfinder/internal/payments/repository"
	usersrepo "parkfinder/internal/users/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
)

// Ledger finalizes an active booking and produces its payment record.
// Implemented by the bookings service; declaring it here keeps the two
// domains decoupled at the package level.
type Ledger interface {
	Settle(ctx context.Context, session *model.Session, bookingID, method string) (*model.Booking, *model.Payment, error)
}

type PaymentService interface {
	ProcessPayment(ctx context.Context, session *model.Session, req *model.ProcessPaymentRequest) (*model.Payment, error)
	GetByID(ctx context.Context, session *model.Session, id string) (*model.Payment, error)
	GetMine(ctx context.Context, session *model.Session) ([]*model.Payment, error)
	GetAll(ctx context.Context, session *model.Session) ([]*model.Payment, error)
	Revenue(ctx context.Context, session *model.Session, period string) (*model.RevenueStats, error)
	GenerateInvoice(ctx context.Context, session *model.Session, paymentID string) (*model.Invoice, error)
	InvoicePDF(ctx context.Context, session *model.Session, paymentID string) ([]byte, string, error)
}

type paymentService struct {
	repo        repository.PaymentRepository
	ledger      Ledger
	bookingRepo bookingsrepo.BookingRepository
	userRepo    usersrepo.UserRepository
	cfg         *config.Config
	now         func() time.Time
}

func NewPaymentService(
	repo repository.PaymentRepository,
	ledger Ledger,
	bookingRepo bookingsrepo.BookingRepository,
	userRepo usersrepo.UserRepository,
	cfg *config.Config,
) PaymentService {
	return &paymentService{
		repo:        repo,
		ledger:      ledger,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ProcessPayment settles an active booking with the chosen method. The fee
// is recomputed at settlement time, so the amount the customer sees here is
// authoritative regardless of any estimate shown earlier. The charge itself
// always succeeds; there is no gateway to decline it.
func (s *paymentService) ProcessPayment(ctx context.Context, session *model.Session, req *model.ProcessPaymentRequest) (*model.Payment, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if req == nil || req.BookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID is required")
	}

	method := req.Method
	if method == "" {
		method = model.PaymentMethodCash
	}
	switch method {
	case model.PaymentMethodCash, model.PaymentMethodCard, model.PaymentMethodUPI:
	default:
		return nil, apperrors.InvalidInput("Unknown payment method: " + method)
	}

	booking, payment, err := s.ledger.Settle(ctx, session, req.BookingID, method)
	if err != nil {
		return nil, err
	}

	if payment == nil {
		// Fully inside the grace period; nothing to charge and no
		// payment record to hand back.
		s.cfg.Log.Info("Session settled free of charge", "booking_id", booking.ID)
		return nil, nil
	}

	s.cfg.Log.Info("Payment processed",
		"payment_id", payment.ID,
		"booking_id", booking.ID,
		"amount", payment.Amount,
		"method", payment.Method,
	)
	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, session *model.Session, id string) (*model.Payment, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}
	if id == "" {
		return nil, apperrors.InvalidInput("Payment ID cannot be empty")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, paymentserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", id)
		}
		return nil, apperrors.Internal("Failed to retrieve payment", err)
	}
	if payment.UserID != session.UserID && !session.CanSupervise() {
		return nil, apperrors.Forbidden("Payment belongs to another user")
	}
	return payment, nil
}

func (s *paymentService) GetMine(ctx context.Context, session *model.Session) ([]*model.Payment, error) {
	if session == nil {
		return nil, apperrors.Unauthorized("Authentication required")
	}

	payments, err := s.repo.FindByUser(ctx, session.UserID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user payments", "user_id", session.UserID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve payments", err)
	}
	return payments, nil
}

func (s *paymentService) GetAll(ctx context.Context, session *model.Session) ([]*model.Payment, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}

	payments, err := s.repo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to list payments", "error", err)
		return nil, apperrors.Internal("Failed to retrieve payments", err)
	}
	return payments, nil
}

// Revenue aggregates completed payments over a reporting window anchored at
// local calendar boundaries.
func (s *paymentService) Revenue(ctx context.Context, session *model.Session, period string) (*model.RevenueStats, error) {
	if session == nil || !session.CanSupervise() {
		return nil, apperrors.Forbidden("Supervisor access required")
	}

	start, err := periodStart(s.now(), period)
	if err != nil {
		return nil, err
	}

	payments, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve payments", err)
	}

	stats := &model.RevenueStats{}
	for _, p := range payments {
		if p.CreatedAt.Before(start) {
			continue
		}
		stats.TotalRevenue += p.Amount
		stats.TotalTransactions++
		stats.TotalDuration += p.Billing.TotalDuration
		stats.FreeMinutesGiven += p.Billing.FreeMinutes
	}
	if stats.TotalTransactions > 0 {
		stats.AverageTransaction = stats.TotalRevenue / float64(stats.TotalTransactions)
	}
	return stats, nil
}

// periodStart maps a named window onto its inclusive lower bound. "week"
// starts at midnight of the most recent Sunday; "all" admits everything.
func periodStart(now time.Time, period string) (time.Time, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case model.PeriodToday:
		return midnight, nil
	case model.PeriodWeek:
		return midnight.AddDate(0, 0, -int(now.Weekday())), nil
	case model.PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), nil
	case model.PeriodYear:
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case model.PeriodAll, "":
		return time.Time{}, nil
	default:
		return time.Time{}, apperrors.InvalidInput("Unknown revenue period: " + period)
	}
}

// GenerateInvoice joins a payment with its user and booking. Broken
// references degrade to placeholders so an invoice can always be produced
// for a recorded payment.
func (s *paymentService) GenerateInvoice(ctx context.Context, session *model.Session, paymentID string) (*model.Invoice, error) {
	payment, err := s.GetByID(ctx, session, paymentID)
	if err != nil {
		return nil, err
	}

	customer := model.InvoiceCustomer{
		Name:  "Unknown User",
		Email: "N/A",
		ID:    payment.UserID,
	}
	if user, err := s.userRepo.FindByID(ctx, payment.UserID); err == nil {
		customer.Name = user.Username
		customer.Email = user.Email
	}

	bookingInfo := model.InvoiceBooking{
		ID:         payment.BookingID,
		SlotNumber: "N/A",
		StartTime:  "N/A",
		EndTime:    "N/A",
	}
	if booking, err := s.bookingRepo.FindByID(ctx, payment.BookingID); err == nil {
		bookingInfo.SlotNumber = formatSlotNumber(booking.SlotNumber)
		bookingInfo.StartTime = booking.StartTime.Format(time.RFC1123)
		if booking.EndTime != nil {
			bookingInfo.EndTime = booking.EndTime.Format(time.RFC1123)
		}
	}

	return &model.Invoice{
		Number:   payment.Invoice.Number,
		Date:     payment.Invoice.Date,
		Customer: customer,
		Booking:  bookingInfo,
		Billing:  payment.Billing,
		Payment: model.InvoicePayment{
			Method: payment.Method,
			Status: payment.Status,
			Amount: payment.Amount,
		},
	}, nil
}
