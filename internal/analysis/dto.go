package analysis

import (
	"time"

	"github.com/get2salam/price-matrix-demo/internal/pricing"
	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalyzeInput carries one raw sales report against a matrix.
type AnalyzeInput struct {
	MatrixID uuid.UUID
	CSV      string
}

// RecommendInput is the caller's profit goal for a stored analysis.
type RecommendInput struct {
	Kind  string
	Value float64
}

// PinInput locks one tier's multiplier for subsequent solves.
type PinInput struct {
	Position   int
	Multiplier float64
}

// TargetView reports the goal a session has stored, including the resolved
// dollar target later pins will re-solve against.
type TargetView struct {
	Kind     string  `json:"kind"`
	Value    float64 `json:"value"`
	Resolved *string `json:"resolved,omitempty"`
}

// AnalysisResult is the session snapshot returned by analyze/get/reset.
// Money totals are fixed to two decimal places.
type AnalysisResult struct {
	AnalysisID        uuid.UUID              `json:"analysis_id"`
	MatrixID          uuid.UUID              `json:"matrix_id"`
	RecordCount       int                    `json:"record_count"`
	SkippedCount      int                    `json:"skipped_count"`
	UnclassifiedCount int                    `json:"unclassified_count"`
	DetectedColumns   []string               `json:"detected_columns"`
	TotalCost         string                 `json:"total_cost"`
	TotalRevenue      string                 `json:"total_revenue"`
	CurrentProfit     string                 `json:"current_profit"`
	Tiers             []pricing.TierAnalysis `json:"tiers"`
	Target            *TargetView            `json:"target,omitempty"`
	Locks             map[int]float64        `json:"locks"`
	CreatedAt         time.Time              `json:"created_at"`
}

// RunResult is the durable audit view of one ingestion. It is backed by the
// ingestion_runs row, so it stays available after the session expires.
type RunResult struct {
	AnalysisID        uuid.UUID `json:"analysis_id"`
	MatrixID          uuid.UUID `json:"matrix_id"`
	RecordCount       int       `json:"record_count"`
	SkippedCount      int       `json:"skipped_count"`
	UnclassifiedCount int       `json:"unclassified_count"`
	TotalCost         string    `json:"total_cost"`
	TotalRetail       string    `json:"total_retail"`
	DetectedColumns   []string  `json:"detected_columns"`
	CreatedAt         time.Time `json:"created_at"`
}

func toRunResult(run *models.IngestionRun) *RunResult {
	return &RunResult{
		AnalysisID:        run.AnalysisID,
		MatrixID:          run.MatrixID,
		RecordCount:       run.RecordCount,
		SkippedCount:      run.SkippedCount,
		UnclassifiedCount: run.UnclassifiedCount,
		TotalCost:         run.TotalCost.StringFixed(2),
		TotalRetail:       run.TotalRetail.StringFixed(2),
		DetectedColumns:   run.DetectedColumns,
		CreatedAt:         run.CreatedAt,
	}
}

func toResult(session *Session) *AnalysisResult {
	result := &AnalysisResult{
		AnalysisID:        session.AnalysisID,
		MatrixID:          session.MatrixID,
		RecordCount:       session.RecordCount,
		SkippedCount:      session.SkippedCount,
		UnclassifiedCount: session.UnclassifiedCount,
		DetectedColumns:   session.DetectedColumns,
		TotalCost:         money(session.TotalCost),
		TotalRevenue:      money(session.TotalRevenue),
		CurrentProfit:     money(session.CurrentProfit),
		Tiers:             session.Tiers,
		Locks:             session.Ledger.Locks,
		CreatedAt:         session.CreatedAt,
	}
	if session.TargetSpec != nil {
		view := &TargetView{
			Kind:  session.TargetSpec.Kind.String(),
			Value: session.TargetSpec.Value,
		}
		if target, ok := session.Ledger.Target(); ok {
			resolved := money(target)
			view.Resolved = &resolved
		}
		result.Target = view
	}
	return result
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
