/*
dto.go - Request/response shapes for the HTTP API

The wire types keep the core package types out of the JSON contract, so
ledger columns and API fields can evolve separately.
*/
package api

import (
	"github.com/fnfcrew/assignment-engine/crew"
	"github.com/fnfcrew/assignment-engine/engine"
)

// =============================================================================
// REQUESTS
// =============================================================================

// RunAssignmentRequest triggers one allocator run.
type RunAssignmentRequest struct {
	Season   string         `json:"season,omitempty"`
	Month    string         `json:"month"`
	Requests map[string]int `json:"requests"` // brand -> requested qty
}

// ManualAssignmentRequest assigns a single influencer to a brand.
type ManualAssignmentRequest struct {
	Season       string `json:"season,omitempty"`
	Month        string `json:"month"`
	Brand        string `json:"brand"`
	InfluencerID string `json:"influencer_id"`
}

// ExecutionRowDTO mirrors one execution ledger row.
type ExecutionRowDTO struct {
	Brand          string `json:"brand"`
	InfluencerID   string `json:"influencer_id"`
	InfluencerName string `json:"influencer_name"`
	Month          string `json:"month"`
	PlannedQty     int    `json:"planned_qty"`
	ActualQty      int    `json:"actual_qty"`
}

// UploadExecutionsRequest carries pre-parsed execution rows as JSON. The
// same endpoint also accepts a multipart xlsx upload.
type UploadExecutionsRequest struct {
	Rows []ExecutionRowDTO `json:"rows"`
}

// =============================================================================
// RESPONSES
// =============================================================================

// AssignmentRowDTO is one enriched assignment row. The actual counts are
// the live reconciled sums.
type AssignmentRowDTO struct {
	Brand          string `json:"brand"`
	InfluencerID   string `json:"influencer_id"`
	InfluencerName string `json:"influencer_name"`
	Month          string `json:"month"`
	Follower       int    `json:"follower"`
	BrandContract  int    `json:"brand_contract_qty"`
	BrandActual    int    `json:"brand_actual_qty"`
	BrandRemaining int    `json:"brand_remaining"`
	TotalContract  int    `json:"total_contract_qty"`
	TotalActual    int    `json:"total_actual_qty"`
	TotalRemaining int    `json:"total_remaining"`
}

// RunAssignmentResponse reports one allocator run.
type RunAssignmentResponse struct {
	Month    string             `json:"month"`
	Assigned map[string]int     `json:"assigned"`
	Records  []AssignmentRowDTO `json:"records"`
}

// InfluencerDTO is one roster row.
type InfluencerDTO struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Follower      int            `json:"follower"`
	UnitFee       string         `json:"unit_fee"`
	ContractedQty map[string]int `json:"contracted_qty"`
	TotalQty      int            `json:"total_qty"`
}

// SummaryDTO is the per-influencer cross-tab row.
type SummaryDTO struct {
	ID             string            `json:"id"`
	Name           string            `json:"name"`
	Follower       int               `json:"follower"`
	UnitFee        string            `json:"unit_fee"`
	TotalContract  int               `json:"total_contract_qty"`
	TotalAssigned  int               `json:"total_assigned"`
	BrandRemaining map[string]int    `json:"brand_remaining"`
	MonthlyBrands  map[string]string `json:"monthly_brands"`
}

// ResetResponse reports what a reset removed.
type ResetResponse struct {
	RemovedAssignments int      `json:"removed_assignments"`
	RemovedExecutions  int      `json:"removed_executions"`
	RemovedMonths      []string `json:"removed_months,omitempty"`
}

// GateBlockDTO is the 409 payload for a blocked month gate, carrying the
// offending rows the operator must remediate.
type GateBlockDTO struct {
	Reason      string             `json:"reason"`
	Month       string             `json:"month"`
	Executions  []ExecutionRowDTO  `json:"executions,omitempty"`
	Assignments []AssignmentRowDTO `json:"assignments,omitempty"`
}

// ValidationErrorDTO is one entry of a 422 error list.
type ValidationErrorDTO struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Brand        string `json:"brand,omitempty"`
	InfluencerID string `json:"influencer_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Month        string `json:"month,omitempty"`
}

// ErrorResponse is the generic error envelope.
type ErrorResponse struct {
	Error      string               `json:"error"`
	Gate       *GateBlockDTO        `json:"gate,omitempty"`
	Validation []ValidationErrorDTO `json:"validation,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAssignmentRowDTO(row engine.ReportRow) AssignmentRowDTO {
	return AssignmentRowDTO{
		Brand:          string(row.Brand),
		InfluencerID:   string(row.InfluencerID),
		InfluencerName: row.InfluencerName,
		Month:          string(row.Month),
		Follower:       row.Follower,
		BrandContract:  row.BrandContract,
		BrandActual:    row.BrandActualTotal,
		BrandRemaining: row.BrandRemaining,
		TotalContract:  row.TotalContract,
		TotalActual:    row.TotalActualTotal,
		TotalRemaining: row.TotalRemaining,
	}
}

// toRecordDTO renders a bare assignment record with its at-assignment
// snapshots (used for freshly emitted records, before reconciliation).
func toRecordDTO(rec crew.AssignmentRecord) AssignmentRowDTO {
	return AssignmentRowDTO{
		Brand:          string(rec.Brand),
		InfluencerID:   string(rec.InfluencerID),
		InfluencerName: rec.InfluencerName,
		Month:          string(rec.Month),
		Follower:       rec.Follower,
		BrandContract:  rec.BrandContract,
		BrandActual:    rec.BrandActual,
		BrandRemaining: rec.BrandRemaining,
		TotalContract:  rec.TotalContract,
		TotalActual:    rec.TotalActual,
		TotalRemaining: rec.TotalRemaining,
	}
}

func toExecutionRowDTO(rec crew.ExecutionRecord) ExecutionRowDTO {
	return ExecutionRowDTO{
		Brand:          string(rec.Brand),
		InfluencerID:   string(rec.InfluencerID),
		InfluencerName: rec.InfluencerName,
		Month:          string(rec.Month),
		PlannedQty:     rec.PlannedQty,
		ActualQty:      rec.ActualQty,
	}
}

func fromExecutionRowDTO(dto ExecutionRowDTO) crew.ExecutionRecord {
	return crew.ExecutionRecord{
		Brand:          crew.Brand(dto.Brand),
		InfluencerID:   crew.InfluencerID(dto.InfluencerID),
		InfluencerName: dto.InfluencerName,
		Month:          crew.Month(dto.Month),
		PlannedQty:     dto.PlannedQty,
		ActualQty:      dto.ActualQty,
	}
}

func toInfluencerDTO(inf crew.Influencer) InfluencerDTO {
	dto := InfluencerDTO{
		ID:            string(inf.ID),
		Name:          inf.Name,
		Follower:      inf.Follower,
		UnitFee:       inf.UnitFee.String(),
		ContractedQty: make(map[string]int, len(inf.ContractedQty)),
		TotalQty:      inf.TotalContractedQty,
	}
	for b, qty := range inf.ContractedQty {
		dto.ContractedQty[string(b)] = qty
	}
	return dto
}

func toSummaryDTO(s engine.InfluencerSummary) SummaryDTO {
	dto := SummaryDTO{
		ID:             string(s.ID),
		Name:           s.Name,
		Follower:       s.Follower,
		UnitFee:        s.UnitFee.String(),
		TotalContract:  s.TotalContract,
		TotalAssigned:  s.TotalAssigned,
		BrandRemaining: make(map[string]int, len(s.BrandRemaining)),
		MonthlyBrands:  make(map[string]string, len(s.MonthlyBrands)),
	}
	for b, n := range s.BrandRemaining {
		dto.BrandRemaining[string(b)] = n
	}
	for m, brands := range s.MonthlyBrands {
		dto.MonthlyBrands[string(m)] = brands
	}
	return dto
}

func toGateBlockDTO(d engine.GateDecision) *GateBlockDTO {
	dto := &GateBlockDTO{
		Reason: string(d.Reason),
		Month:  string(d.Month),
	}
	for _, exec := range d.Executions {
		dto.Executions = append(dto.Executions, toExecutionRowDTO(exec))
	}
	for _, rec := range d.Assignments {
		dto.Assignments = append(dto.Assignments, toRecordDTO(rec))
	}
	return dto
}

func toValidationDTOs(errs engine.ValidationErrors) []ValidationErrorDTO {
	out := make([]ValidationErrorDTO, 0, len(errs))
	for _, ve := range errs {
		out = append(out, ValidationErrorDTO{
			Code:         string(ve.Code),
			Message:      ve.Message,
			Brand:        string(ve.Key.Brand),
			InfluencerID: string(ve.Key.InfluencerID),
			Name:         ve.Name,
			Month:        string(ve.Key.Month),
		})
	}
	return out
}
