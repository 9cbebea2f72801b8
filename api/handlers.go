/*
handlers.go - HTTP handlers over the assignment engine

PURPOSE:
  Thin orchestration: each handler reloads the roster and both ledgers
  fresh from the stores, calls the engine, persists the outcome, and maps
  engine results onto wire types. No business rule lives here.

ERROR MAPPING:
  gate block          -> 409 with the structured reason payload
  validation errors   -> 422 with the complete error list
  duplicate / quota   -> 422
  unknown month/brand -> 400
  influencer missing  -> 404
  store failures      -> 500

STATE MODEL:
  Read-entire-file, compute, write-entire-file per request. One operation
  at a time; there is no session state to invalidate.
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/engine"
	"github.com/fnfcrew/assignment-engine/store/csvfile"
	"github.com/fnfcrew/assignment-engine/xlsxio"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handler carries the stores and defaults shared by all endpoints.
type Handler struct {
	Roster *csvfile.RosterStore
	Ledger *csvfile.LedgerStore
	Season crew.Season
	Log    *logrus.Logger
}

func NewHandler(roster *csvfile.RosterStore, ledger *csvfile.LedgerStore, season crew.Season, log *logrus.Logger) *Handler {
	return &Handler{Roster: roster, Ledger: ledger, Season: season, Log: log}
}

// =============================================================================
// ROSTER
// =============================================================================

// ListRoster GET /api/roster
func (h *Handler) ListRoster(w http.ResponseWriter, r *http.Request) {
	roster, err := h.Roster.Load()
	if err != nil {
		h.fail(w, err)
		return
	}
	out := make([]InfluencerDTO, 0, len(roster))
	for _, inf := range roster {
		out = append(out, toInfluencerDTO(inf))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// RosterSummary GET /api/roster/summary[?format=xlsx]
func (h *Handler) RosterSummary(w http.ResponseWriter, r *http.Request) {
	season := h.season(r.URL.Query().Get("season"))
	roster, err := h.Roster.Load()
	if err != nil {
		h.fail(w, err)
		return
	}
	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		h.fail(w, err)
		return
	}

	summaries := engine.SummarizeRoster(season, roster, assignments)

	if wantsXLSX(r) {
		h.sendXLSX(w, "influencer_summary", func(w2 http.ResponseWriter) error {
			return xlsxio.WriteInfluencerSummary(w2, season, summaries)
		})
		return
	}
	out := make([]SummaryDTO, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, toSummaryDTO(s))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

// RunAssignment POST /api/assignments/run
func (h *Handler) RunAssignment(w http.ResponseWriter, r *http.Request) {
	var req RunAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	season := h.season(req.Season)
	month := crew.Month(req.Month)

	requests := make(engine.AllocationRequest, len(req.Requests))
	for name, qty := range req.Requests {
		brand, ok := crew.ParseBrand(name)
		if !ok {
			h.badRequest(w, fmt.Sprintf("unknown brand %q", name))
			return
		}
		requests[brand] = qty
	}

	roster, assignments, executions, err := h.loadAll()
	if err != nil {
		h.fail(w, err)
		return
	}

	decision, err := engine.CheckMonthGate(season, month, assignments, executions)
	if err != nil {
		h.fail(w, err)
		return
	}
	if !decision.Allowed {
		h.gateBlocked(w, decision)
		return
	}

	result := engine.Allocate(month, requests, roster, assignments, executions)
	if len(result.Records) > 0 {
		if err := h.Ledger.SaveAssignments(append(assignments, result.Records...)); err != nil {
			h.fail(w, err)
			return
		}
	}
	h.Log.WithFields(logrus.Fields{
		"month":   month,
		"records": len(result.Records),
	}).Info("assignment run complete")

	resp := RunAssignmentResponse{
		Month:    string(result.Month),
		Assigned: make(map[string]int, len(result.Assigned)),
	}
	for b, n := range result.Assigned {
		resp.Assigned[string(b)] = n
	}
	for _, rec := range result.Records {
		resp.Records = append(resp.Records, toRecordDTO(rec))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ManualAssignment POST /api/assignments/manual
func (h *Handler) ManualAssignment(w http.ResponseWriter, r *http.Request) {
	var req ManualAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return
	}
	brand, ok := crew.ParseBrand(req.Brand)
	if !ok {
		h.badRequest(w, fmt.Sprintf("unknown brand %q", req.Brand))
		return
	}

	roster, assignments, executions, err := h.loadAll()
	if err != nil {
		h.fail(w, err)
		return
	}

	rec, err := engine.AssignOne(h.season(req.Season), crew.Month(req.Month), brand,
		crew.InfluencerID(req.InfluencerID), roster, assignments, executions)
	if err != nil {
		h.fail(w, err)
		return
	}
	if err := h.Ledger.SaveAssignments(append(assignments, rec)); err != nil {
		h.fail(w, err)
		return
	}
	h.Log.WithFields(logrus.Fields{
		"influencer": rec.InfluencerID,
		"brand":      rec.Brand,
		"month":      rec.Month,
	}).Info("manual assignment saved")
	h.writeJSON(w, http.StatusCreated, toRecordDTO(rec))
}

// ListAssignments GET /api/assignments[?month=&brand=&format=xlsx]
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	season := h.season(r.URL.Query().Get("season"))
	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		h.fail(w, err)
		return
	}
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		h.fail(w, err)
		return
	}

	report := engine.Reconcile(assignments, executions)
	rows := engine.FilterRows(report.Rows,
		crew.Month(r.URL.Query().Get("month")),
		crew.Brand(r.URL.Query().Get("brand")))

	if wantsXLSX(r) {
		engine.SortRowsForExport(season, rows)
		h.sendXLSX(w, "assignment_results", func(w2 http.ResponseWriter) error {
			return xlsxio.WriteAssignmentReport(w2, rows)
		})
		return
	}
	out := make([]AssignmentRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toAssignmentRowDTO(row))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// ResetAssignments DELETE /api/assignments[?month=]
// Month-scoped resets cascade to every later season month; no month means
// a full reset of both ledgers.
func (h *Handler) ResetAssignments(w http.ResponseWriter, r *http.Request) {
	season := h.season(r.URL.Query().Get("season"))
	month := crew.Month(r.URL.Query().Get("month"))

	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		h.fail(w, err)
		return
	}
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		h.fail(w, err)
		return
	}

	var result engine.ResetResult
	if month == "" {
		result = engine.ResetAll(assignments, executions)
		if err := h.Ledger.RemoveAssignmentLedger(); err != nil {
			h.fail(w, err)
			return
		}
	} else {
		result, err = engine.ResetFromMonth(season, month, assignments, executions)
		if err != nil {
			h.fail(w, err)
			return
		}
		if err := h.Ledger.SaveAssignments(result.Assignments); err != nil {
			h.fail(w, err)
			return
		}
	}
	if err := h.Ledger.SaveExecutions(result.Executions); err != nil {
		h.fail(w, err)
		return
	}
	h.Log.WithFields(logrus.Fields{
		"month":               month,
		"removed_assignments": result.RemovedAssignments,
		"removed_executions":  result.RemovedExecutions,
	}).Info("reset complete")

	resp := ResetResponse{
		RemovedAssignments: result.RemovedAssignments,
		RemovedExecutions:  result.RemovedExecutions,
	}
	for _, m := range result.RemovedMonths {
		resp.RemovedMonths = append(resp.RemovedMonths, string(m))
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Mismatches GET /api/reconciliation/mismatches
func (h *Handler) Mismatches(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		h.fail(w, err)
		return
	}
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		h.fail(w, err)
		return
	}
	report := engine.Reconcile(assignments, executions)
	out := make([]AssignmentRowDTO, 0, len(report.Mismatches))
	for _, rec := range report.Mismatches {
		out = append(out, toRecordDTO(rec))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// =============================================================================
// EXECUTIONS
// =============================================================================

// ListExecutions GET /api/executions[?format=xlsx]
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		h.fail(w, err)
		return
	}
	if wantsXLSX(r) {
		h.sendXLSX(w, "current_execution_status", func(w2 http.ResponseWriter) error {
			return xlsxio.WriteExecutions(w2, executions)
		})
		return
	}
	out := make([]ExecutionRowDTO, 0, len(executions))
	for _, rec := range executions {
		out = append(out, toExecutionRowDTO(rec))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// ExecutionTemplate GET /api/executions/template
// Always xlsx: this is the file operators fill in and upload back.
func (h *Handler) ExecutionTemplate(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		h.fail(w, err)
		return
	}
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		h.fail(w, err)
		return
	}
	template := engine.BuildExecutionTemplate(assignments, executions)
	h.sendXLSX(w, "execution_template", func(w2 http.ResponseWriter) error {
		return xlsxio.WriteExecutionTemplate(w2, template)
	})
}

// UploadExecutions POST /api/executions
// Accepts either a JSON body of rows or a multipart form with an xlsx
// file under the "file" field. The batch is all-or-nothing.
func (h *Handler) UploadExecutions(w http.ResponseWriter, r *http.Request) {
	batch, ok := h.parseExecutionUpload(w, r)
	if !ok {
		return
	}

	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		h.fail(w, err)
		return
	}
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		h.fail(w, err)
		return
	}

	if verrs := engine.ValidateExecutionIntake(batch, assignments, executions); len(verrs) > 0 {
		h.validationFailed(w, verrs)
		return
	}
	if err := h.Ledger.SaveExecutions(append(executions, batch...)); err != nil {
		h.fail(w, err)
		return
	}
	h.Log.WithField("rows", len(batch)).Info("execution upload saved")

	out := make([]ExecutionRowDTO, 0, len(batch))
	for _, rec := range batch {
		out = append(out, toExecutionRowDTO(rec))
	}
	h.writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) parseExecutionUpload(w http.ResponseWriter, r *http.Request) ([]crew.ExecutionRecord, bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.badRequest(w, "multipart upload requires a \"file\" field")
			return nil, false
		}
		defer file.Close()

		batch, verrs, err := xlsxio.ParseExecutionUpload(file)
		if err != nil {
			h.fail(w, err)
			return nil, false
		}
		if len(verrs) > 0 {
			h.validationFailed(w, verrs)
			return nil, false
		}
		return batch, true
	}

	var req UploadExecutionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid JSON body")
		return nil, false
	}
	batch := make([]crew.ExecutionRecord, 0, len(req.Rows))
	for _, dto := range req.Rows {
		rec := fromExecutionRowDTO(dto)
		if rec.PlannedQty == 0 {
			rec.PlannedQty = 1
		}
		batch = append(batch, rec)
	}
	return batch, true
}

// =============================================================================
// PLUMBING
// =============================================================================

func (h *Handler) loadAll() ([]crew.Influencer, []crew.AssignmentRecord, []crew.ExecutionRecord, error) {
	roster, err := h.Roster.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	assignments, err := h.Ledger.LoadAssignments()
	if err != nil {
		return nil, nil, nil, err
	}
	executions, err := h.Ledger.LoadExecutions()
	if err != nil {
		return nil, nil, nil, err
	}
	return roster, assignments, executions, nil
}

// season resolves a per-request season override against the default.
func (h *Handler) season(override string) crew.Season {
	if s, ok := crew.ParseSeason(override); ok {
		return s
	}
	return h.Season
}

func wantsXLSX(r *http.Request) bool {
	return r.URL.Query().Get("format") == "xlsx"
}

func (h *Handler) sendXLSX(w http.ResponseWriter, baseName string, write func(http.ResponseWriter) error) {
	filename := fmt.Sprintf("%s_%s.xlsx", baseName, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	if err := write(w); err != nil {
		h.Log.WithError(err).Error("xlsx export failed")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Log.WithError(err).Error("response encode failed")
	}
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func (h *Handler) gateBlocked(w http.ResponseWriter, d engine.GateDecision) {
	h.writeJSON(w, http.StatusConflict, ErrorResponse{
		Error: "month gate blocked",
		Gate:  toGateBlockDTO(d),
	})
}

func (h *Handler) validationFailed(w http.ResponseWriter, verrs engine.ValidationErrors) {
	h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:      "validation failed",
		Validation: toValidationDTOs(verrs),
	})
}

// fail maps engine errors onto HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	var blocked *engine.GateBlockedError
	if errors.As(err, &blocked) {
		h.gateBlocked(w, blocked.Decision)
		return
	}
	var verrs engine.ValidationErrors
	if errors.As(err, &verrs) {
		h.validationFailed(w, verrs)
		return
	}
	switch {
	case errors.Is(err, engine.ErrInfluencerNotFound):
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrDuplicateAssignment), errors.Is(err, engine.ErrQuotaExhausted):
		h.writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, engine.ErrUnknownMonth), errors.Is(err, engine.ErrUnknownBrand):
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		h.Log.WithError(err).Error("internal error")
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
