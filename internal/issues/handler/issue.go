package handler

import (
	"net/http"

	"parkfinder/internal/issues/service"
	httputil "parkfinder/pkg/http"
	"parkfinder/pkg/logger"
	"parkfinder/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type IssueHandler struct {
	service service.IssueService
	log     *logger.Logger
}

func NewIssueHandler(service service.IssueService, log *logger.Logger) *IssueHandler {
	return &IssueHandler{
		service: service,
		log:     log,
	}
}

func (h *IssueHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/supervisor/issues", h.ReportIssue)
	router.GET("/api/supervisor/issues", h.GetIssues)
	router.POST("/api/supervisor/issues/:id/resolve", h.ResolveIssue)
	router.POST("/api/feedback", h.SubmitFeedback)
	router.GET("/api/admin/feedback", h.GetFeedback)
	router.POST("/api/admin/feedback/:id/respond", h.RespondFeedback)
}

func (h *IssueHandler) ReportIssue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.IssueReport
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	issue, err := h.service.ReportIssue(r.Context(), session, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Issue reported", issue)
}

func (h *IssueHandler) GetIssues(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	issues, err := h.service.GetIssues(r.Context(), session, r.URL.Query().Get("status"), r.URL.Query().Get("slot_id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Issues retrieved", issues)
}

func (h *IssueHandler) ResolveIssue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireSupervisor(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	issue, err := h.service.ResolveIssue(r.Context(), session, ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Issue resolved", issue)
}

func (h *IssueHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.FeedbackSubmission
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	feedback, err := h.service.SubmitFeedback(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, "Feedback submitted", feedback)
}

func (h *IssueHandler) GetFeedback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.service.GetFeedback(r.Context(), session)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Feedback retrieved", entries)
}

func (h *IssueHandler) RespondFeedback(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := httputil.RequireAdmin(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req model.FeedbackResponse
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	feedback, err := h.service.RespondFeedback(r.Context(), session, ps.ByName("id"), req.Response)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, "Response recorded", feedback)
}
