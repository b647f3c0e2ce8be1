package handler

import (
	"net/http"

	"parkfinder/internal/bookings/service"
	httputil "parkfinder/pkg/http"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/bookings", h.Reserve)
	router.GET("/api/bookings", h.GetAll)
	router.GET("/api/bookings/:id", h.GetByID)
	router.POST("/api/bookings/:id/end", h.EndSession)
	router.GET("/api/me/bookings", h.GetMine)
	router.GET("/api/me/bookings/active", h.GetCurrent)
	router.GET("/api/supervisor/active-bookings", h.GetActive)
	router.POST("/api/supervisor/bookings/:id/force-end", h.ForceEnd)
	router.POST("/api/supervisor/bookings/:id/cancel", h.Cancel)
}

func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.ReserveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Reserve(r.Context(), session, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Booking confirmed", booking)
}

func (h *BookingHandler) EndSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, payment, err := h.service.EndSession(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Session ended", map[string]any{
		"booking": booking,
		"payment": payment,
	})
}

func (h *BookingHandler) ForceEnd(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, payment, err := h.service.ForceEnd(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Session force-ended", map[string]any{
		"booking": booking,
		"payment": payment,
	})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Booking cancelled", booking)
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Booking retrieved", booking)
}

func (h *BookingHandler) GetActive(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, err := h.service.GetActive(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Active bookings retrieved", bookings)
}

func (h *BookingHandler) GetCurrent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	booking, err := h.service.GetCurrent(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Active booking retrieved", booking)
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSession(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, err := h.service.GetMine(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Booking history retrieved", bookings)
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	bookings, err := h.service.GetAll(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Bookings retrieved", bookings)
}
