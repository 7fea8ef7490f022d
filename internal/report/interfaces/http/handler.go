package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"store-monitoring/internal/audit"
	"store-monitoring/internal/auth"
	reportapp "store-monitoring/internal/report/application"
	report "store-monitoring/internal/report/domain"
	"store-monitoring/internal/report/interfaces"
)

const timeLayout = time.RFC3339

// Handler provides report APIs.
type Handler struct {
	orchestrator *reportapp.Orchestrator
	auditLogger  audit.Logger
}

// NewHandler constructs a handler. auditLogger may be nil.
func NewHandler(orchestrator *reportapp.Orchestrator, auditLogger audit.Logger) (*Handler, error) {
	if orchestrator == nil {
		return nil, errors.New("report handler: nil orchestrator")
	}
	return &Handler{orchestrator: orchestrator, auditLogger: auditLogger}, nil
}

// ServeHTTP routes report endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/reports/trigger" && r.Method == http.MethodPost:
		h.handleTrigger(w, r)
		return
	case strings.HasPrefix(r.URL.Path, "/api/v1/reports/"):
		h.handleReportByID(w, r)
		return
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	job, err := h.orchestrator.Trigger(r.Context())
	if err != nil {
		http.Error(w, "trigger report error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"report_id": job.ID,
		"status":    string(job.State),
	})
	h.logAudit(r, "report.trigger", job.ID, nil)
}

func (h *Handler) handleReportByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/reports/")
	parts := strings.Split(path, "/")
	reportID := parts[0]
	if reportID == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleStatus(w, r, reportID)
			return
		case http.MethodDelete:
			h.handleCancel(w, r, reportID)
			return
		}
	}
	if len(parts) == 2 && parts[1] == "download" && r.Method == http.MethodGet {
		h.handleDownload(w, r, reportID)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, reportID string) {
	job, err := h.orchestrator.Status(r.Context(), reportID)
	if err != nil {
		if errors.Is(err, report.ErrJobNotFound) {
			http.Error(w, "report not found", http.StatusNotFound)
			return
		}
		http.Error(w, "query report error", http.StatusInternalServerError)
		return
	}
	resp := map[string]any{
		"report_id":  job.ID,
		"status":     string(job.State),
		"created_at": job.CreatedAt.Format(timeLayout),
	}
	if !job.CompletedAt.IsZero() {
		resp["completed_at"] = job.CompletedAt.Format(timeLayout)
	}
	if job.State == report.StateComplete {
		resp["frozen_now"] = job.FrozenNow.Format(timeLayout)
		resp["store_count"] = job.StoreCount
		resp["warnings"] = job.Warnings
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request, reportID string) {
	err := h.orchestrator.Cancel(r.Context(), reportID)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusAccepted)
		h.logAudit(r, "report.cancel", reportID, nil)
	case errors.Is(err, report.ErrJobNotFound):
		http.Error(w, "report not found", http.StatusNotFound)
	case errors.Is(err, report.ErrJobFinished):
		http.Error(w, "report already finished", http.StatusConflict)
	default:
		http.Error(w, "cancel report error", http.StatusInternalServerError)
	}
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request, reportID string) {
	job, rows, err := h.orchestrator.Result(r.Context(), reportID)
	if err != nil {
		switch {
		case errors.Is(err, report.ErrJobNotFound):
			http.Error(w, "report not found", http.StatusNotFound)
		case errors.Is(err, report.ErrNotReady):
			http.Error(w, "report still running", http.StatusConflict)
		case errors.Is(err, report.ErrJobFailed):
			http.Error(w, "report failed", http.StatusGone)
		default:
			http.Error(w, "query report error", http.StatusInternalServerError)
		}
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	filename := fmt.Sprintf("report-%s.%s", job.ID, format)
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		if err := interfaces.AppendRowsCSV(w, rows); err != nil {
			http.Error(w, "render csv error", http.StatusInternalServerError)
		}
	case "xlsx":
		data, err := interfaces.BuildReportXLSX(job, rows)
		if err != nil {
			http.Error(w, "render xlsx error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		_, _ = w.Write(data)
	case "pdf":
		data, err := interfaces.BuildReportPDF(job, rows)
		if err != nil {
			http.Error(w, "render pdf error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename="+filename)
		_, _ = w.Write(data)
	default:
		http.Error(w, "format must be csv, xlsx or pdf", http.StatusBadRequest)
	}
}

func (h *Handler) logAudit(r *http.Request, action, reportID string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "report",
		ResourceID:   reportID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
