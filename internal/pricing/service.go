package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/get2salam/price-matrix-demo/pkg/db"
	"github.com/get2salam/price-matrix-demo/pkg/db/models"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	pkgpagination "github.com/get2salam/price-matrix-demo/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type matricesRepository interface {
	Create(ctx context.Context, matrix *models.TierMatrix) (*models.TierMatrix, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TierMatrix, error)
	List(ctx context.Context, opts listQuery) ([]models.TierMatrix, error)
	Update(ctx context.Context, matrix *models.TierMatrix) error
	ReplaceTiers(ctx context.Context, matrixID uuid.UUID, tiers []models.PricingTier) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes tier matrix management: CRUD on matrices plus band-level
// edits that keep positions contiguous and markups consistent.
type Service interface {
	CreateMatrix(ctx context.Context, input CreateMatrixInput) (*Matrix, error)
	GetMatrix(ctx context.Context, id uuid.UUID) (*Matrix, error)
	ListMatrices(ctx context.Context, params ListParams) (*ListResult, error)
	UpdateMatrix(ctx context.Context, id uuid.UUID, input UpdateMatrixInput) (*Matrix, error)
	DeleteMatrix(ctx context.Context, id uuid.UUID) error
	AddTier(ctx context.Context, matrixID uuid.UUID, input TierInput) (*Matrix, error)
	EditTier(ctx context.Context, matrixID uuid.UUID, position int, input EditTierInput) (*Matrix, error)
	RemoveTier(ctx context.Context, matrixID uuid.UUID, position int) (*Matrix, error)
}

type service struct {
	repo matricesRepository
}

// NewService wires the matrix service.
func NewService(repo matricesRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricing service requires a repository")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateMatrix(ctx context.Context, input CreateMatrixInput) (*Matrix, error) {
	matrix := &Matrix{ID: uuid.New(), Name: input.Name}

	if len(input.Tiers) == 0 {
		matrix.Tiers = DefaultTiers()
	} else {
		matrix.Tiers = make([]Tier, 0, len(input.Tiers))
		for _, tierInput := range input.Tiers {
			tier, err := tierFromInput(tierInput)
			if err != nil {
				return nil, err
			}
			matrix.Tiers = append(matrix.Tiers, tier)
		}
	}

	matrix.Normalize()
	if err := matrix.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid matrix")
	}

	row := &models.TierMatrix{
		ID:    matrix.ID,
		Name:  matrix.Name,
		Tiers: toModelTiers(matrix.ID, matrix.Tiers),
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		if db.IsUniqueViolation(err, "tier_matrices") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "matrix name already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create matrix")
	}
	return toDomainMatrix(created), nil
}

func (s *service) GetMatrix(ctx context.Context, id uuid.UUID) (*Matrix, error) {
	row, err := s.loadMatrix(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomainMatrix(row), nil
}

func (s *service) ListMatrices(ctx context.Context, params ListParams) (*ListResult, error) {
	limit := pkgpagination.NormalizeLimit(params.Limit)
	query := listQuery{limit: pkgpagination.LimitWithBuffer(params.Limit)}
	if params.Cursor != "" {
		cursor, err := pkgpagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list matrices")
	}

	// The cursor names the last row of this page; List's filter is exclusive.
	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		nextCursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]MatrixSummary, len(rows))
	for i, row := range rows {
		items[i] = toMatrixSummary(row)
	}
	return &ListResult{Items: items, Cursor: nextCursor}, nil
}

func (s *service) UpdateMatrix(ctx context.Context, id uuid.UUID, input UpdateMatrixInput) (*Matrix, error) {
	if input.Name == "" && input.Tiers == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update")
	}
	row, err := s.loadMatrix(ctx, id)
	if err != nil {
		return nil, err
	}

	matrix := toDomainMatrix(row)
	if input.Name != "" {
		matrix.Name = input.Name
	}
	if input.Tiers != nil {
		tiers := make([]Tier, 0, len(input.Tiers))
		for _, tierInput := range input.Tiers {
			tier, err := tierFromInput(tierInput)
			if err != nil {
				return nil, err
			}
			tiers = append(tiers, tier)
		}
		matrix.Tiers = tiers
	}

	// Validate the whole result before persisting anything so a rejected
	// replacement cannot leave a half-applied rename behind.
	matrix.Normalize()
	if err := matrix.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid matrix")
	}

	if input.Name != "" && input.Name != row.Name {
		row.Name = input.Name
		if err := s.repo.Update(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "tier_matrices") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "matrix name already in use")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename matrix")
		}
	}
	if input.Tiers != nil {
		if err := s.repo.ReplaceTiers(ctx, matrix.ID, toModelTiers(matrix.ID, matrix.Tiers)); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace tiers")
		}
	}
	return matrix, nil
}

func (s *service) DeleteMatrix(ctx context.Context, id uuid.UUID) error {
	if _, err := s.loadMatrix(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete matrix")
	}
	return nil
}

func (s *service) AddTier(ctx context.Context, matrixID uuid.UUID, input TierInput) (*Matrix, error) {
	matrix, err := s.GetMatrix(ctx, matrixID)
	if err != nil {
		return nil, err
	}
	if len(matrix.Tiers) >= MaxTiers {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("matrix allows at most %d tiers", MaxTiers))
	}

	tier, err := tierFromInput(input)
	if err != nil {
		return nil, err
	}
	matrix.Tiers = append(matrix.Tiers, tier)

	return s.saveTiers(ctx, matrix)
}

func (s *service) EditTier(ctx context.Context, matrixID uuid.UUID, position int, input EditTierInput) (*Matrix, error) {
	matrix, err := s.GetMatrix(ctx, matrixID)
	if err != nil {
		return nil, err
	}
	idx := tierIndex(matrix.Tiers, position)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
	}

	tier := &matrix.Tiers[idx]
	if input.MinCost != nil {
		tier.MinCost = *input.MinCost
	}
	switch {
	case input.OpenEnded:
		tier.MaxCost = nil
	case input.MaxCost != nil:
		max := *input.MaxCost
		tier.MaxCost = &max
	}
	if input.Multiplier != nil || input.GrossProfitPct != nil {
		markup, err := markupFromInput(input.Multiplier, input.GrossProfitPct)
		if err != nil {
			return nil, err
		}
		tier.Markup = markup
	}

	return s.saveTiers(ctx, matrix)
}

func (s *service) RemoveTier(ctx context.Context, matrixID uuid.UUID, position int) (*Matrix, error) {
	matrix, err := s.GetMatrix(ctx, matrixID)
	if err != nil {
		return nil, err
	}
	if len(matrix.Tiers) <= MinTiers {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("matrix needs at least %d tiers", MinTiers))
	}
	idx := tierIndex(matrix.Tiers, position)
	if idx < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
	}

	matrix.Tiers = append(matrix.Tiers[:idx], matrix.Tiers[idx+1:]...)

	return s.saveTiers(ctx, matrix)
}

// saveTiers normalizes, validates, and persists the full tier set.
func (s *service) saveTiers(ctx context.Context, matrix *Matrix) (*Matrix, error) {
	matrix.Normalize()
	if err := matrix.Validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid matrix")
	}
	if err := s.repo.ReplaceTiers(ctx, matrix.ID, toModelTiers(matrix.ID, matrix.Tiers)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace tiers")
	}
	return matrix, nil
}

func (s *service) loadMatrix(ctx context.Context, id uuid.UUID) (*models.TierMatrix, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "matrix id required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "matrix not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load matrix")
	}
	return row, nil
}

func tierIndex(tiers []Tier, position int) int {
	for i, tier := range tiers {
		if tier.Position == position {
			return i
		}
	}
	return -1
}

func tierFromInput(input TierInput) (Tier, error) {
	markup, err := markupFromInput(input.Multiplier, input.GrossProfitPct)
	if err != nil {
		return Tier{}, err
	}
	tier := Tier{MinCost: input.MinCost, Markup: markup}
	if input.MaxCost != nil {
		max := *input.MaxCost
		tier.MaxCost = &max
	}
	return tier, nil
}

func markupFromInput(multiplier, grossPct *float64) (Markup, error) {
	switch {
	case multiplier != nil && grossPct != nil:
		return Markup{}, pkgerrors.New(pkgerrors.CodeValidation, "provide either multiplier or gross_profit_pct, not both")
	case multiplier != nil:
		return MarkupFromMultiplier(*multiplier), nil
	case grossPct != nil:
		return MarkupFromGrossProfit(*grossPct), nil
	default:
		return Markup{}, pkgerrors.New(pkgerrors.CodeValidation, "multiplier or gross_profit_pct required")
	}
}
