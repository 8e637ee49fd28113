package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/matching"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// MatchDispatcher queues a background match run for a report.
type MatchDispatcher interface {
	Dispatch(report model.LostReport) error
}

// MatchRunner runs the match pipeline for a report and waits for it.
type MatchRunner interface {
	Run(ctx context.Context, report model.LostReport) (matching.Result, error)
}

// ReportsHandler handles lost report endpoints.
type ReportsHandler struct {
	DB         *sql.DB
	Dispatcher MatchDispatcher
	Runner     MatchRunner
}

type createReportRequest struct {
	ItemName    string     `json:"item_name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Category    string     `json:"category" validate:"required,category"`
	Location    string     `json:"location" validate:"max=200"`
	ReportedAt  *time.Time `json:"reported_at"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create handles POST /api/reports. The report is saved first; matching runs
// in the background and never fails the request.
func (h *ReportsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ItemName = strings.TrimSpace(req.ItemName)
	if err := validate.Struct(&req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	p := store.ReportParams{
		ItemName:    req.ItemName,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
	}
	if req.ReportedAt != nil {
		if req.ReportedAt.After(time.Now().Add(time.Hour)) {
			jsonError(w, http.StatusBadRequest, "reported_at is in the future")
			return
		}
		p.ReportedAt = *req.ReportedAt
	}

	claims := GetClaims(r.Context())
	report, err := store.CreateReport(r.Context(), h.DB, claims.UserID, p)
	if err != nil {
		slog.Error("failed to create report", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create report")
		return
	}

	slog.Info("report created", "user", claims.Username, "report_id", report.ID, "item", report.ItemName)
	h.dispatch(*report)
	jsonResponse(w, http.StatusCreated, report)
}

func (h *ReportsHandler) dispatch(report model.LostReport) {
	if h.Dispatcher == nil {
		return
	}
	if err := h.Dispatcher.Dispatch(report); err != nil {
		slog.Warn("match run not queued", "report_id", report.ID, "error", err)
	}
}

// List handles GET /api/reports. Students see their own reports; staff see
// everyone's and may filter with ?student_id=. ?status= filters by status.
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	q := r.URL.Query()

	f := store.ReportFilter{Status: q.Get("status")}
	if isStaff(claims) {
		if s := q.Get("student_id"); s != "" {
			id, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				jsonError(w, http.StatusBadRequest, "invalid student_id")
				return
			}
			f.StudentID = id
		}
	} else {
		f.StudentID = claims.UserID
	}

	reports, err := store.ListReports(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to list reports", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []model.LostReport{}
	}
	jsonResponse(w, http.StatusOK, reports)
}

// load fetches the {id} report and checks the caller may see it. Reports of
// other students are reported as missing. On failure it writes the response
// and returns nil.
func (h *ReportsHandler) load(w http.ResponseWriter, r *http.Request) *model.LostReport {
	id, ok := pathID(w, r, "report")
	if !ok {
		return nil
	}

	report, err := store.GetReport(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get report", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get report")
		return nil
	}

	claims := GetClaims(r.Context())
	if report == nil || (!isStaff(claims) && report.StudentID != claims.UserID) {
		jsonError(w, http.StatusNotFound, "report not found")
		return nil
	}
	return report
}

// Get handles GET /api/reports/{id}.
func (h *ReportsHandler) Get(w http.ResponseWriter, r *http.Request) {
	report := h.load(w, r)
	if report == nil {
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

// UpdateStatus handles PUT /api/reports/{id}/status. The owner may cancel and
// reactivate; closing is left to security. Reactivation queues a new match run.
func (h *ReportsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	report := h.load(w, r)
	if report == nil {
		return
	}

	var req statusRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	claims := GetClaims(r.Context())
	switch req.Status {
	case model.ReportStatusClosed:
		if !isStaff(claims) {
			jsonError(w, http.StatusForbidden, "only security can close a report")
			return
		}
	case model.ReportStatusActive, model.ReportStatusCancelled:
		if report.StudentID != claims.UserID && claims.Role != model.RoleAdmin {
			jsonError(w, http.StatusForbidden, "only the owner can change this report")
			return
		}
	default:
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	err := store.UpdateReportStatus(r.Context(), h.DB, report.ID, req.Status)
	if errors.Is(err, store.ErrInvalidTransition) {
		jsonError(w, http.StatusConflict, "cannot move report from "+report.Status+" to "+req.Status)
		return
	}
	if err != nil {
		slog.Error("failed to update report status", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update report")
		return
	}

	updated, err := store.GetReport(r.Context(), h.DB, report.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get report")
		return
	}

	slog.Info("report status changed", "user", claims.Username, "report_id", report.ID,
		"from", report.Status, "to", updated.Status)
	if updated.Status == model.ReportStatusActive {
		h.dispatch(*updated)
	}
	jsonResponse(w, http.StatusOK, updated)
}

// UploadImage handles PUT /api/reports/{id}/image.
func (h *ReportsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	report := h.load(w, r)
	if report == nil {
		return
	}
	claims := GetClaims(r.Context())
	if report.StudentID != claims.UserID && !isStaff(claims) {
		jsonError(w, http.StatusForbidden, "only the owner can change this report")
		return
	}

	uploadImage(w, r, func(ctx context.Context, data []byte, mime string) error {
		return store.SetReportImage(ctx, h.DB, report.ID, data, mime)
	})
}

// GetImage handles GET /api/reports/{id}/image.
func (h *ReportsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	report := h.load(w, r)
	if report == nil {
		return
	}

	data, mime, err := store.GetReportImage(r.Context(), h.DB, report.ID)
	serveImage(w, data, mime, err)
}

// Matches handles GET /api/reports/{id}/matches.
func (h *ReportsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	report := h.load(w, r)
	if report == nil {
		return
	}

	matches, err := store.ListMatchesForReport(r.Context(), h.DB, report.ID)
	if err != nil {
		slog.Error("failed to list matches", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}

// Rematch handles POST /api/reports/{id}/rematch. It runs the pipeline again
// and waits for the result; existing matches are re-scored in place.
func (h *ReportsHandler) Rematch(w http.ResponseWriter, r *http.Request) {
	report := h.load(w, r)
	if report == nil {
		return
	}
	if h.Runner == nil {
		jsonError(w, http.StatusServiceUnavailable, "matching unavailable")
		return
	}
	if report.Status != model.ReportStatusActive {
		jsonError(w, http.StatusConflict, "only active reports can be matched")
		return
	}

	res, err := h.Runner.Run(r.Context(), *report)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "match run failed")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("report rematched", "user", claims.Username, "report_id", report.ID, "run_id", res.RunID)
	jsonResponse(w, http.StatusOK, res)
}
