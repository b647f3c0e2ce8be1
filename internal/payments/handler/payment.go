package handler

import (
	"net/http"

	"parkfinder/internal/payments/service"
	httputil "parkfinder/pkg/http"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PaymentHandler struct {
	service service.PaymentService
	log     *logger.Logger
}

func NewPaymentHandler(service service.PaymentService, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log,
	}
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/payments", h.ProcessPayment)
	router.GET("/api/payments", h.GetAll)
	router.GET("/api/payments/:id", h.GetByID)
	router.GET("/api/payments/:id/invoice", h.GetInvoice)
	router.GET("/api/payments/:id/invoice.pdf", h.GetInvoicePDF)
	router.GET("/api/me/payments", h.GetMine)
	router.GET("/api/supervisor/revenue", h.Revenue)
}

func (h *PaymentHandler) ProcessPayment(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.ProcessPaymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	payment, err := h.service.ProcessPayment(r.Context(), session, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if payment == nil {
		httputil.WriteSuccess(w, "Session ended within the free period; no charge", nil)
		return
	}

	httputil.WriteCreated(w, "Payment successful", payment)
}

func (h *PaymentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payment, err := h.service.GetByID(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Payment retrieved", payment)
}

func (h *PaymentHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payments, err := h.service.GetMine(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Payment history retrieved", payments)
}

func (h *PaymentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	payments, err := h.service.GetAll(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Payments retrieved", payments)
}

func (h *PaymentHandler) Revenue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.service.Revenue(r.Context(), session, r.URL.Query().Get("period"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Revenue retrieved", stats)
}

func (h *PaymentHandler) GetInvoice(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	invoice, err := h.service.GenerateInvoice(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Invoice generated", invoice)
}

func (h *PaymentHandler) GetInvoicePDF(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pdfBytes, filename, err := h.service.InvoicePDF(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdfBytes)
}
