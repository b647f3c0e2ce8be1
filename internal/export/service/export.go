package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	bookingsrepo "parkfinder/internal/bookings/repository"
	paymentsrepo "parkfinder/internal/payments/repository"
	usersrepo "parkfinder/internal/users/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"
)

// ExportService renders admin reporting data as CSV downloads.
type ExportService interface {
	BookingsCSV(ctx context.Context, session *model.Session) ([]byte, error)
	PaymentsCSV(ctx context.Context, session *model.Session) ([]byte, error)
}

type exportService struct {
	bookingRepo bookingsrepo.BookingRepository
	paymentRepo paymentsrepo.PaymentRepository
	userRepo    usersrepo.UserRepository
	cfg         *config.Config
}

func NewExportService(
	bookingRepo bookingsrepo.BookingRepository,
	paymentRepo paymentsrepo.PaymentRepository,
	userRepo usersrepo.UserRepository,
	cfg *config.Config,
) ExportService {
	return &exportService{
		bookingRepo: bookingRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		cfg:         cfg,
	}
}

// usernames maps user ids to display names for the export rows. Deleted
// accounts render as their raw id.
func (s *exportService) usernames(ctx context.Context) map[string]string {
	names := make(map[string]string)
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		s.cfg.Log.Warn("Username lookup for export failed", "error", err)
		return names
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names
}

func (s *exportService) BookingsCSV(ctx context.Context, session *model.Session) ([]byte, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}

	bookings, err := s.bookingRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	names := s.usernames(ctx)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "user_id", "username", "slot_number", "slot_type", "start_time", "end_time", "duration_min", "amount", "status"})
	for _, b := range bookings {
		endTime := ""
		if b.EndTime != nil {
			endTime = b.EndTime.Format(time.RFC3339)
		}
		username := names[b.UserID]
		if username == "" {
			username = b.UserID
		}
		_ = w.Write([]string{
			b.ID,
			b.UserID,
			username,
			strconv.Itoa(b.SlotNumber),
			b.SlotType,
			b.StartTime.Format(time.RFC3339),
			endTime,
			strconv.Itoa(b.Duration),
			fmt.Sprintf("%.2f", b.Amount),
			b.Status,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Internal("Failed to render export", err)
	}

	s.cfg.Log.Info("Bookings exported", "rows", len(bookings), "by", session.UserID)
	return buf.Bytes(), nil
}

func (s *exportService) PaymentsCSV(ctx context.Context, session *model.Session) ([]byte, error) {
	if session == nil || !session.IsAdmin() {
		return nil, apperrors.Forbidden("Admin access required")
	}

	payments, err := s.paymentRepo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve payments", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "invoice_number", "user_id", "booking_id", "amount", "method", "status", "created_at"})
	for _, p := range payments {
		_ = w.Write([]string{
			p.ID,
			p.Invoice.Number,
			p.UserID,
			p.BookingID,
			fmt.Sprintf("%.2f", p.Amount),
			p.Method,
			p.Status,
			p.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, apperrors.Internal("Failed to render export", err)
	}

	s.cfg.Log.Info("Payments exported", "rows", len(payments), "by", session.UserID)
	return buf.Bytes(), nil
}
