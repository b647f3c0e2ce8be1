package handler

import (
	"context"
	"net/http"

	"parkfinder/internal/slots/service"
	httputil "parkfinder/pkg/http"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// SlotReleaser force-ends every active session and returns the whole
// inventory to available. Implemented by the bookings service so released
// sessions are still charged.
type SlotReleaser interface {
	MarkAllAvailable(ctx context.Context, session *model.Session) ([]*model.Booking, error)
}

type SlotHandler struct {
	service  service.SlotService
	releaser SlotReleaser
	log      *logger.Logger
}

func NewSlotHandler(service service.SlotService, releaser SlotReleaser, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service:  service,
		releaser: releaser,
		log:      log,
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/slots", h.GetAll)
	router.GET("/api/slots/:id", h.GetByID)
	router.POST("/api/admin/slots/:id/maintenance", h.SetMaintenance)
	router.DELETE("/api/admin/slots/:id/maintenance", h.ClearMaintenance)
	router.POST("/api/admin/release-all", h.ReleaseAll)
}

func (h *SlotHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	slots, err := h.service.GetAll(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Slots retrieved", slots)
}

func (h *SlotHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	slot, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Slot retrieved", slot)
}

type maintenanceRequest struct {
	Note string `json:"note"`
}

func (h *SlotHandler) SetMaintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req maintenanceRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	slot, err := h.service.SetMaintenance(r.Context(), session, ps.ByName("id"), req.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Slot placed under maintenance", slot)
}

func (h *SlotHandler) ClearMaintenance(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	slot, err := h.service.ClearMaintenance(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Slot returned to service", slot)
}

func (h *SlotHandler) ReleaseAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	ended, err := h.releaser.MarkAllAvailable(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "All slots released", map[string]any{
		"ended_sessions": ended,
	})
}
