package service

import (
	"context"
	"testing"
	"time"

	bookingsrepo "parkfinder/internal/bookings/repository"
	"parkfinder/internal/payments/repository"
	usersrepo "parkfinder/internal/users/repository"
	"parkfinder/pkg/config"
	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"
	"parkfinder/pkg/store"
)

type stubLedger struct {
	booking *model.Booking
	payment *model.Payment
	err     error
	method  string
}

func (l *stubLedger) Settle(ctx context.Context, session *model.Session, bookingID, method string) (*model.Booking, *model.Payment, error) {
	l.method = method
	return l.booking, l.payment, l.err
}

func newPaymentEnv(t *testing.T, ledger Ledger) (*paymentService, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	cfg := &config.Config{Log: logger.New(logger.Config{Level: logger.ERROR})}
	svc := NewPaymentService(
		repository.NewStorePaymentRepository(st),
		ledger,
		bookingsrepo.NewStoreBookingRepository(st),
		usersrepo.NewStoreUserRepository(st),
		cfg,
	).(*paymentService)
	return svc, st
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

func TestPeriodStart(t *testing.T) {
	// Wednesday, March 4 2026, 15:30 local.
	now := time.Date(2026, 3, 4, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   time.Time
	}{
		{model.PeriodToday, time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{model.PeriodWeek, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, // most recent Sunday
		{model.PeriodMonth, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{model.PeriodYear, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{model.PeriodAll, time.Time{}},
		{"", time.Time{}},
	}
	for _, tc := range tests {
		got, err := periodStart(now, tc.period)
		if err != nil {
			t.Errorf("periodStart(%q): %v", tc.period, err)
			continue
		}
		if !got.Equal(tc.want) {
			t.Errorf("periodStart(%q) = %v, want %v", tc.period, got, tc.want)
		}
	}
}

func TestPeriodStartOnSunday(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) // a Sunday
	got, err := periodStart(now, model.PeriodWeek)
	if err != nil {
		t.Fatalf("periodStart: %v", err)
	}
	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("week window on a Sunday starts %v, want same day's midnight %v", got, want)
	}
}

func TestPeriodStartRejectsUnknown(t *testing.T) {
	_, err := periodStart(time.Now(), "fortnight")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestRevenueAggregation(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	ctx := context.Background()

	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	seed := []struct {
		id      string
		amount  float64
		created time.Time
		dur     int
		free    int
	}{
		{"p1", 40, now.Add(-1 * time.Hour), 95, 30},
		{"p2", 20, now.Add(-2 * time.Hour), 45, 30},
		{"p3", 60, now.AddDate(0, 0, -10), 200, 30}, // outside "today"
	}
	for _, p := range seed {
		err := svc.repo.Create(ctx, &model.Payment{
			ID:        p.id,
			UserID:    "u1",
			Amount:    p.amount,
			Status:    model.PaymentCompleted,
			CreatedAt: p.created,
			Billing:   model.Billing{TotalDuration: p.dur, FreeMinutes: p.free, Total: p.amount},
		})
		if err != nil {
			t.Fatalf("seed payment %s: %v", p.id, err)
		}
	}

	stats, err := svc.Revenue(ctx, session("sup", model.RoleSupervisor), model.PeriodToday)
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if stats.TotalRevenue != 60 {
		t.Errorf("total revenue = %v, want 60", stats.TotalRevenue)
	}
	if stats.TotalTransactions != 2 {
		t.Errorf("transactions = %d, want 2", stats.TotalTransactions)
	}
	if stats.AverageTransaction != 30 {
		t.Errorf("average = %v, want 30", stats.AverageTransaction)
	}
	if stats.TotalDuration != 140 {
		t.Errorf("total duration = %d, want 140", stats.TotalDuration)
	}
	if stats.FreeMinutesGiven != 60 {
		t.Errorf("free minutes = %d, want 60", stats.FreeMinutesGiven)
	}

	all, err := svc.Revenue(ctx, session("sup", model.RoleSupervisor), model.PeriodAll)
	if err != nil {
		t.Fatalf("Revenue all: %v", err)
	}
	if all.TotalRevenue != 120 || all.TotalTransactions != 3 {
		t.Errorf("all-time = %v over %d, want 120 over 3", all.TotalRevenue, all.TotalTransactions)
	}
}

func TestRevenueEmptyWindow(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})

	stats, err := svc.Revenue(context.Background(), session("sup", model.RoleSupervisor), model.PeriodToday)
	if err != nil {
		t.Fatalf("Revenue: %v", err)
	}
	if stats.AverageTransaction != 0 {
		t.Errorf("average on zero transactions = %v, want 0", stats.AverageTransaction)
	}
}

func TestRevenueRequiresSupervisor(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	_, err := svc.Revenue(context.Background(), session("u1", model.RoleUser), model.PeriodAll)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestProcessPaymentRejectsUnknownMethod(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	_, err := svc.ProcessPayment(context.Background(), session("u1", model.RoleUser),
		&model.ProcessPaymentRequest{BookingID: "b1", Method: "cheque"})
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestProcessPaymentDefaultsToCash(t *testing.T) {
	ledger := &stubLedger{
		booking: &model.Booking{ID: "b1", Status: model.BookingCompleted},
		payment: &model.Payment{ID: "p1", BookingID: "b1", Amount: 20, Method: model.PaymentMethodCash},
	}
	svc, _ := newPaymentEnv(t, ledger)

	payment, err := svc.ProcessPayment(context.Background(), session("u1", model.RoleUser),
		&model.ProcessPaymentRequest{BookingID: "b1"})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if ledger.method != model.PaymentMethodCash {
		t.Errorf("settled with method %q, want cash", ledger.method)
	}
	if payment == nil || payment.ID != "p1" {
		t.Errorf("payment = %+v, want p1", payment)
	}
}

func TestProcessPaymentGracePeriodFree(t *testing.T) {
	ledger := &stubLedger{
		booking: &model.Booking{ID: "b1", Status: model.BookingCompleted, Amount: 0},
	}
	svc, _ := newPaymentEnv(t, ledger)

	payment, err := svc.ProcessPayment(context.Background(), session("u1", model.RoleUser),
		&model.ProcessPaymentRequest{BookingID: "b1", Method: model.PaymentMethodCard})
	if err != nil {
		t.Fatalf("ProcessPayment: %v", err)
	}
	if payment != nil {
		t.Errorf("free session must not return a payment, got %+v", payment)
	}
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	ctx := context.Background()

	err := svc.repo.Create(ctx, &model.Payment{ID: "p1", UserID: "u1", Amount: 20})
	if err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	if _, err := svc.GetByID(ctx, session("u1", model.RoleUser), "p1"); err != nil {
		t.Errorf("owner lookup failed: %v", err)
	}
	if _, err := svc.GetByID(ctx, session("sup", model.RoleSupervisor), "p1"); err != nil {
		t.Errorf("supervisor lookup failed: %v", err)
	}

	_, err = svc.GetByID(ctx, session("u2", model.RoleUser), "p1")
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = svc.GetByID(ctx, session("u1", model.RoleUser), "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestGenerateInvoiceJoinsRecords(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	ctx := context.Background()

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(95 * time.Minute)

	if err := svc.userRepo.Create(ctx, &model.User{ID: "u1", Username: "alice", Email: "alice@test.local", Role: model.RoleUser}); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if err := svc.bookingRepo.Create(ctx, &model.Booking{
		ID: "b1", UserID: "u1", SlotNumber: 7,
		StartTime: start, EndTime: &end,
		Status: model.BookingCompleted,
	}); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	if err := svc.repo.Create(ctx, &model.Payment{
		ID: "p1", UserID: "u1", BookingID: "b1",
		Amount: 40, Method: model.PaymentMethodCard, Status: model.PaymentCompleted,
		Billing: model.Billing{Total: 40},
		Invoice: model.InvoiceRef{Number: "INV-1000", Date: end},
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	invoice, err := svc.GenerateInvoice(ctx, session("u1", model.RoleUser), "p1")
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	if invoice.Number != "INV-1000" {
		t.Errorf("number = %s, want INV-1000", invoice.Number)
	}
	if invoice.Customer.Name != "alice" {
		t.Errorf("customer = %s, want alice", invoice.Customer.Name)
	}
	if invoice.Booking.SlotNumber != "#7" {
		t.Errorf("slot = %s, want #7", invoice.Booking.SlotNumber)
	}
	if invoice.Booking.StartTime == "N/A" || invoice.Booking.EndTime == "N/A" {
		t.Errorf("booking times missing: %+v", invoice.Booking)
	}
	if invoice.Payment.Amount != 40 {
		t.Errorf("amount = %v, want 40", invoice.Payment.Amount)
	}
}

func TestGenerateInvoiceDegradesMissingRefs(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	ctx := context.Background()

	if err := svc.repo.Create(ctx, &model.Payment{
		ID: "p1", UserID: "gone", BookingID: "gone-too",
		Amount: 20, Method: model.PaymentMethodCash, Status: model.PaymentCompleted,
		Invoice: model.InvoiceRef{Number: "INV-2000"},
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	invoice, err := svc.GenerateInvoice(ctx, session("adm", model.RoleAdmin), "p1")
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	if invoice.Customer.Name != "Unknown User" || invoice.Customer.Email != "N/A" {
		t.Errorf("customer = %+v, want Unknown User / N/A", invoice.Customer)
	}
	if invoice.Booking.SlotNumber != "N/A" || invoice.Booking.StartTime != "N/A" {
		t.Errorf("booking = %+v, want N/A placeholders", invoice.Booking)
	}
}

func TestInvoicePDFProducesDocument(t *testing.T) {
	svc, _ := newPaymentEnv(t, &stubLedger{})
	ctx := context.Background()

	if err := svc.repo.Create(ctx, &model.Payment{
		ID: "p1", UserID: "u1",
		Amount: 20, Method: model.PaymentMethodCash, Status: model.PaymentCompleted,
		Billing: model.Billing{TotalDuration: 45, FreeMinutes: 30, BillableHours: 1, HourlyRate: 20, Subtotal: 20, Total: 20},
		Invoice: model.InvoiceRef{Number: "INV-3000"},
	}); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	pdf, filename, err := svc.InvoicePDF(ctx, session("u1", model.RoleUser), "p1")
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if filename != "invoice-INV-3000.pdf" {
		t.Errorf("filename = %s, want invoice-INV-3000.pdf", filename)
	}
	if len(pdf) < 4 || string(pdf[:4]) != "%PDF" {
		t.Errorf("output does not look like a PDF (%d bytes)", len(pdf))
	}
}
