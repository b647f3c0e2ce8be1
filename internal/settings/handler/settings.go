package handler

import (
	"net/http"

	"parkfinder/internal/settings/service"
	httputil "parkfinder/pkg/http"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SettingsHandler struct {
	service service.SettingsService
	log     *logger.Logger
}

func NewSettingsHandler(service service.SettingsService, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		log:     log,
	}
}

func (h *SettingsHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/settings/billing", h.GetBilling)
	router.PUT("/api/admin/settings/billing", h.SetHourlyRate)
}

func (h *SettingsHandler) GetBilling(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	settings, err := h.service.GetBilling(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Billing settings retrieved", settings)
}

func (h *SettingsHandler) SetHourlyRate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.RateUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	settings, err := h.service.SetHourlyRate(r.Context(), session, req.HourlyRate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Hourly rate updated", settings)
}
