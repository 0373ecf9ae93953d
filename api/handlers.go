/*
handlers.go - HTTP API handlers for the worklog engine

PURPOSE:
  Exposes the worklog engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates every
  computation to the worklog package.

ENDPOINTS:
  Auth:
    POST   /auth/register          Create account, open session
    POST   /auth/login             Open session
    POST   /auth/logout            End session

  Worklogs (bearer token required):
    GET    /api/worklogs           List raw records
    POST   /api/worklogs           Create (409 on same-day conflict
                                   unless overwrite is set)
    PUT    /api/worklogs/{id}      Replace mutable fields
    DELETE /api/worklogs/{id}      Remove
    GET    /api/worklogs/summary   Current/previous month totals + comment
    GET    /api/worklogs/heatmap   28-day intensity grid
    GET    /api/worklogs/export    Prior-month CSV (year/month override)

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input (worklog.ValidateCandidate)
  3. Call engine / store
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401: Missing/invalid session (client drops its cached token)
  - 404: Record not found
  - 409: Same-day conflict, duplicate username
  - 500: Store failures

SEE ALSO:
  - dto.go:    Request/response data structures
  - auth.go:   Session endpoints and middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worklog"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store *sqlite.Store

	// tokenTTL bounds session age; older bearer tokens get a 401.
	tokenTTL time.Duration

	// now is swappable in tests; derived views depend on "today".
	now func() worklog.CalendarDay
}

// NewHandler creates a new handler with the given store and session
// token lifetime.
func NewHandler(store *sqlite.Store, tokenTTL time.Duration) *Handler {
	return &Handler{
		Store:    store,
		tokenTTL: tokenTTL,
		now:      worklog.Today,
	}
}

// logs returns the engine-facing store view for the request's user.
func (h *Handler) logs(r *http.Request) worklog.Store {
	return h.Store.Owner(requestUserID(r))
}

// =============================================================================
// WORKLOG CRUD
// =============================================================================

// ListWorklogs returns the raw record snapshot for the user, newest
// day first.
func (h *Handler) ListWorklogs(w http.ResponseWriter, r *http.Request) {
	records, err := h.logs(r).List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list worklogs", err)
		return
	}

	records = worklog.SortNewestFirst(records)
	dtos := make([]WorklogDTO, len(records))
	for i, rec := range records {
		dtos[i] = toWorklogDTO(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": dtos})
}

// CreateWorklog validates and stores a new record. When another record
// already occupies the same calendar day the request conflicts (409)
// unless the client asked for an overwrite, in which case the existing
// record is replaced in place (upsert-by-date).
func (h *Handler) CreateWorklog(w http.ResponseWriter, r *http.Request) {
	req, candidate, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	day, err := worklog.ParseDay(candidate.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	store := h.logs(r)
	records, err := store.List(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check existing worklogs", err)
		return
	}

	if existing := worklog.FindByDate(records, day); existing != nil {
		if !req.Overwrite {
			writeJSON(w, http.StatusConflict, ConflictResponse{
				Error:    "A worklog already exists for this date",
				Existing: toWorklogDTO(*existing),
			})
			return
		}
		updated, err := store.Update(ctx, existing.ID, candidate)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to overwrite worklog", err)
			return
		}
		writeJSON(w, http.StatusOK, CreateWorklogResponse{
			Worklog: toWorklogDTO(updated),
			Message: worklog.SessionComment(candidate.DurationHours),
		})
		return
	}

	created, err := store.Create(ctx, candidate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create worklog", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateWorklogResponse{
		Worklog: toWorklogDTO(created),
		Message: worklog.SessionComment(candidate.DurationHours),
	})
}

// UpdateWorklog replaces the mutable fields of a record.
func (h *Handler) UpdateWorklog(w http.ResponseWriter, r *http.Request) {
	_, candidate, ok := h.decodeCandidate(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.logs(r).Update(r.Context(), id, candidate)
	if err != nil {
		if worklog.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Worklog not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update worklog", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorklogDTO(updated))
}

// DeleteWorklog removes a record by id.
func (h *Handler) DeleteWorklog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.logs(r).Delete(r.Context(), id); err != nil {
		if worklog.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Worklog not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete worklog", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// =============================================================================
// DERIVED VIEWS
// =============================================================================

// GetSummary returns current and previous month totals with the
// monthly comment for the current total.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	records, err := h.logs(r).List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list worklogs", err)
		return
	}

	summary := worklog.Summarize(records, h.now())
	writeJSON(w, http.StatusOK, SummaryDTO{
		Current:  toMonthTotalDTO(summary.Current),
		Previous: toMonthTotalDTO(summary.Previous),
		Comment:  worklog.MonthlyComment(summary.Current.TotalHours),
	})
}

// GetHeatmap returns the 28-day intensity grid.
func (h *Handler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	records, err := h.logs(r).List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list worklogs", err)
		return
	}

	cells := worklog.BuildGrid(records, h.now())
	dtos := make([]HeatmapCellDTO, len(cells))
	for i, c := range cells {
		hours, _ := c.TotalHours.Float64()
		dtos[i] = HeatmapCellDTO{
			Day:         c.Day.ISO(),
			Hours:       hours,
			Level:       c.Level,
			MonthAnchor: c.MonthAnchor,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cells": dtos})
}

// ExportWorklogs streams the month report as a CSV attachment.
// Defaults to the month before the current one; year and month query
// parameters (1-based month) override.
func (h *Handler) ExportWorklogs(w http.ResponseWriter, r *http.Request) {
	today := h.now()
	target := worklog.NewCalendarDay(today.Year, today.Month-1, 1)
	year, month := target.Year, target.Month

	if y := r.URL.Query().Get("year"); y != "" {
		parsed, err := strconv.Atoi(y)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid year", err)
			return
		}
		year = parsed
	}
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := strconv.Atoi(m)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "Invalid month (use 1-12)", err)
			return
		}
		month = time.Month(parsed)
	}

	records, err := h.logs(r).List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list worklogs", err)
		return
	}

	csv, err := worklog.ExportMonth(records, year, month)
	if err != nil {
		if errors.Is(err, worklog.ErrEmptyReport) {
			// Informational, not a failure.
			writeJSON(w, http.StatusOK, NoticeResponse{
				Status:  "empty_report",
				Message: fmt.Sprintf("No worklogs recorded in %d-%02d", year, int(month)),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to export worklogs", err)
		return
	}

	filename := fmt.Sprintf("overtime_%d_%02d.csv", year, int(month))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(csv))
}

// =============================================================================
// HELPERS
// =============================================================================

// decodeCandidate parses and validates the shared create/update body.
// Writes the error response itself and returns ok=false on failure.
func (h *Handler) decodeCandidate(w http.ResponseWriter, r *http.Request) (WorklogRequest, worklog.Candidate, bool) {
	var req WorklogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return req, worklog.Candidate{}, false
	}

	hours := decimal.Zero
	if req.DurationHours != "" {
		parsed, err := decimal.NewFromString(req.DurationHours.String())
		if err != nil {
			// Non-numeric duration counts as out of range.
			writeError(w, http.StatusBadRequest, "duration_hours: must be between 0 and 24", nil)
			return req, worklog.Candidate{}, false
		}
		hours = parsed
	}

	candidate := worklog.Candidate{
		Date:          req.Date,
		DurationHours: hours,
		Reason:        req.Reason,
		Notes:         req.Notes,
	}
	if err := worklog.ValidateCandidate(candidate); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return req, worklog.Candidate{}, false
	}
	return req, candidate, true
}

func toWorklogDTO(rec worklog.WorklogRecord) WorklogDTO {
	hours, _ := rec.DurationHours.Float64()
	dto := WorklogDTO{
		ID:            rec.ID,
		Date:          rec.Date,
		DurationHours: hours,
		Reason:        rec.Reason,
		Notes:         rec.Notes,
	}
	if day, err := rec.Day(); err == nil && !day.IsZero() {
		dto.Day = day.ISO()
	}
	return dto
}

func toMonthTotalDTO(b worklog.MonthBucket) MonthTotalDTO {
	total, _ := b.TotalHours.Float64()
	return MonthTotalDTO{
		Year:       b.Year,
		Month:      int(b.Month),
		TotalHours: total,
		Entries:    len(b.Records),
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
