package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/get2salam/price-matrix-demo/internal/ingest"
	"github.com/get2salam/price-matrix-demo/internal/pricing"
	"github.com/get2salam/price-matrix-demo/internal/solver"
	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	"github.com/get2salam/price-matrix-demo/pkg/enums"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	"github.com/get2salam/price-matrix-demo/pkg/metrics"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// defaultRunListLimit bounds run history reads when the caller sends no limit.
const defaultRunListLimit = 20

type matrixProvider interface {
	GetMatrix(ctx context.Context, id uuid.UUID) (*pricing.Matrix, error)
}

type sessionsStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, analysisID uuid.UUID) (*Session, error)
}

type runsRepository interface {
	CreateRun(ctx context.Context, run *models.IngestionRun) (*models.IngestionRun, error)
	FindRunByAnalysisID(ctx context.Context, analysisID uuid.UUID) (*models.IngestionRun, error)
	ListRunsByMatrix(ctx context.Context, matrixID uuid.UUID, limit int) ([]models.IngestionRun, error)
}

// Service runs the analysis lifecycle: ingest a report against a matrix,
// hand out recommendations for a profit target, and re-solve around pins.
type Service interface {
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error)
	Get(ctx context.Context, analysisID uuid.UUID) (*AnalysisResult, error)
	Run(ctx context.Context, analysisID uuid.UUID) (*RunResult, error)
	RunsForMatrix(ctx context.Context, matrixID uuid.UUID, limit int) ([]RunResult, error)
	Recommend(ctx context.Context, analysisID uuid.UUID, input RecommendInput) (*solver.RecommendationSet, error)
	Pin(ctx context.Context, analysisID uuid.UUID, input PinInput) (*solver.RecommendationSet, error)
	ResetLocks(ctx context.Context, analysisID uuid.UUID) (*AnalysisResult, error)
}

type service struct {
	matrices matrixProvider
	sessions sessionsStore
	runs     runsRepository
	engine   *metrics.EngineMetrics
}

// NewService wires the analysis service. Metrics may be nil in tests.
func NewService(matrices matrixProvider, sessions sessionsStore, runs runsRepository, engine *metrics.EngineMetrics) (Service, error) {
	if matrices == nil {
		return nil, fmt.Errorf("analysis service requires a matrix provider")
	}
	if sessions == nil {
		return nil, fmt.Errorf("analysis service requires a session store")
	}
	if runs == nil {
		return nil, fmt.Errorf("analysis service requires a runs repository")
	}
	return &service{matrices: matrices, sessions: sessions, runs: runs, engine: engine}, nil
}

func (s *service) Analyze(ctx context.Context, input AnalyzeInput) (*AnalysisResult, error) {
	if input.MatrixID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matrix id required")
	}
	if input.CSV == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "report body required")
	}

	matrix, err := s.matrices.GetMatrix(ctx, input.MatrixID)
	if err != nil {
		return nil, err
	}

	ingested, err := ingest.Ingest(input.CSV)
	if err != nil {
		s.engine.IncAnalysis("rejected")
		return nil, err
	}
	s.engine.AddSkippedRows(ingested.SkippedCount)

	agg := AggregateTiers(matrix, ingested.Records)

	session := &Session{
		AnalysisID:        uuid.New(),
		MatrixID:          matrix.ID,
		RecordCount:       len(ingested.Records),
		SkippedCount:      ingested.SkippedCount,
		UnclassifiedCount: agg.UnclassifiedCount,
		DetectedColumns:   ingested.Columns.Detected(),
		TotalCost:         agg.TotalCost,
		TotalRevenue:      agg.TotalRevenue,
		CurrentProfit:     agg.CurrentProfit,
		Tiers:             agg.Tiers,
		Ledger:            NewLedger(),
		CreatedAt:         time.Now().UTC(),
	}

	run := &models.IngestionRun{
		ID:                uuid.New(),
		MatrixID:          matrix.ID,
		AnalysisID:        session.AnalysisID,
		RecordCount:       session.RecordCount,
		SkippedCount:      session.SkippedCount,
		UnclassifiedCount: session.UnclassifiedCount,
		TotalCost:         decimal.NewFromFloat(agg.TotalCost).Round(2),
		TotalRetail:       decimal.NewFromFloat(agg.TotalRevenue).Round(2),
		DetectedColumns:   pq.StringArray(session.DetectedColumns),
	}
	if _, err := s.runs.CreateRun(ctx, run); err != nil {
		s.engine.IncAnalysis("failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record ingestion run")
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		s.engine.IncAnalysis("failed")
		return nil, err
	}

	s.engine.IncAnalysis("completed")
	return toResult(session), nil
}

func (s *service) Get(ctx context.Context, analysisID uuid.UUID) (*AnalysisResult, error) {
	session, err := s.loadSession(ctx, analysisID)
	if err != nil {
		return nil, err
	}
	return toResult(session), nil
}

// Run returns the durable audit row for an analysis. Unlike Get it still
// answers once the session TTL has passed.
func (s *service) Run(ctx context.Context, analysisID uuid.UUID) (*RunResult, error) {
	if analysisID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "analysis id required")
	}
	run, err := s.runs.FindRunByAnalysisID(ctx, analysisID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ingestion run not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ingestion run")
	}
	return toRunResult(run), nil
}

// RunsForMatrix returns the newest audit rows recorded against a matrix.
func (s *service) RunsForMatrix(ctx context.Context, matrixID uuid.UUID, limit int) ([]RunResult, error) {
	if matrixID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matrix id required")
	}
	if limit <= 0 {
		limit = defaultRunListLimit
	}
	runs, err := s.runs.ListRunsByMatrix(ctx, matrixID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ingestion runs")
	}
	results := make([]RunResult, len(runs))
	for i := range runs {
		results[i] = *toRunResult(&runs[i])
	}
	return results, nil
}

func (s *service) Recommend(ctx context.Context, analysisID uuid.UUID, input RecommendInput) (*solver.RecommendationSet, error) {
	kind, err := enums.ParseTargetKind(input.Kind)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target")
	}

	session, err := s.loadSession(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	// A fresh recommendation always re-resolves the target and overwrites
	// the stored one; only pins reuse it.
	spec := TargetSpec{Kind: kind, Value: input.Value}
	target := ResolveTarget(spec, session.CurrentProfit, session.TotalCost)
	session.TargetSpec = &spec
	session.Ledger.SetTarget(target)

	set := s.solve(session, target, "recommend")

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *service) Pin(ctx context.Context, analysisID uuid.UUID, input PinInput) (*solver.RecommendationSet, error) {
	session, err := s.loadSession(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	if !tierExists(session.Tiers, input.Position) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
	}

	target, ok := session.Ledger.Target()
	if !ok {
		if session.TargetSpec == nil {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no profit target recorded; request recommendations first")
		}
		target = ResolveTarget(*session.TargetSpec, session.CurrentProfit, session.TotalCost)
		session.Ledger.SetTarget(target)
	}

	if err := session.Ledger.Pin(input.Position, input.Multiplier); err != nil {
		return nil, err
	}

	set := s.solve(session, target, "pin")

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *service) ResetLocks(ctx context.Context, analysisID uuid.UUID) (*AnalysisResult, error) {
	session, err := s.loadSession(ctx, analysisID)
	if err != nil {
		return nil, err
	}

	// The recorded TargetSpec survives a reset; only the resolved dollar
	// target is dropped, so the next solve re-resolves it fresh.
	session.Ledger.ResetAll()

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return toResult(session), nil
}

func (s *service) solve(session *Session, target float64, trigger string) *solver.RecommendationSet {
	started := time.Now()
	set := solver.Solve(solver.Input{
		Tiers:        session.Tiers,
		TargetProfit: target,
		Locks:        session.Ledger.Locks,
	})
	s.engine.ObserveSolve(trigger, time.Since(started), set.Iterations)
	if !set.Converged {
		s.engine.IncBudgetExhausted()
	}
	return set
}

func (s *service) loadSession(ctx context.Context, analysisID uuid.UUID) (*Session, error) {
	if analysisID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "analysis id required")
	}
	return s.sessions.Load(ctx, analysisID)
}

func tierExists(tiers []pricing.TierAnalysis, position int) bool {
	for _, tier := range tiers {
		if tier.Position == position {
			return true
		}
	}
	return false
}
