package handler

import (
	"net/http"

	"parkfinder/internal/export/service"
	httputil "parkfinder/pkg/http"
	"parkfinder/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type ExportHandler struct {
	service service.ExportService
	log     *logger.Logger
}

func NewExportHandler(service service.ExportService, log *logger.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		log:     log,
	}
}

func (h *ExportHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/admin/export/bookings.csv", h.Bookings)
	router.GET("/api/admin/export/payments.csv", h.Payments)
}

func (h *ExportHandler) Bookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	data, err := h.service.BookingsCSV(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeCSV(w, "bookings.csv", data)
}

func (h *ExportHandler) Payments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	data, err := h.service.PaymentsCSV(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	writeCSV(w, "payments.csv", data)
}

func writeCSV(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
