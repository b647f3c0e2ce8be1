package service

import (
	"bytes"
	"context"
	"fmt"

	apperrors "parkfinder/pkg/errors"
	"parkfinder/pkg/model"

	"github.com/phpdave11/gofpdf"
)

func formatSlotNumber(number int) string {
	return fmt.Sprintf("#%d", number)
}

// InvoicePDF renders the invoice as a printable A4 document and returns the
// bytes plus a suggested filename.
func (s *paymentService) InvoicePDF(ctx context.Context, session *model.Session, paymentID string) ([]byte, string, error) {
	invoice, err := s.GenerateInvoice(ctx, session, paymentID)
	if err != nil {
		return nil, "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "ParkFinder Invoice")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice: %s", invoice.Number))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", invoice.Date.Format("02 Jan 2006 15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Billed To")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 7, invoice.Customer.Name)
	pdf.Ln(6)
	pdf.Cell(0, 7, invoice.Customer.Email)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Parking Session")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Slot: %s", invoice.Booking.SlotNumber))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("From: %s", invoice.Booking.StartTime))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("To: %s", invoice.Booking.EndTime))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "Charges")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Total duration: %d min", invoice.Billing.TotalDuration))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Free period: %d min", invoice.Billing.FreeMinutes))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Billable: %d hour(s) at %.2f/hour", invoice.Billing.BillableHours, invoice.Billing.HourlyRate))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 9, fmt.Sprintf("Total: %.2f", invoice.Billing.Total))
	pdf.Ln(10)

	pdf.SetFont("Arial", "I", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Paid by %s (%s)", invoice.Payment.Method, invoice.Payment.Status))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.cfg.Log.Error("Failed to render invoice PDF", "payment_id", paymentID, "error", err)
		return nil, "", apperrors.Internal("Failed to render invoice", err)
	}

	filename := fmt.Sprintf("invoice-%s.pdf", invoice.Number)
	return buf.Bytes(), filename, nil
}
