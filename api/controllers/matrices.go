package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/get2salam/price-matrix-demo/api/responses"
	"github.com/get2salam/price-matrix-demo/api/validators"
	"github.com/get2salam/price-matrix-demo/internal/pricing"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	"github.com/get2salam/price-matrix-demo/pkg/logger"
	"github.com/get2salam/price-matrix-demo/pkg/pagination"
)

type tierRequest struct {
	MinCost        float64  `json:"min_cost" validate:"gte=0"`
	MaxCost        *float64 `json:"max_cost,omitempty" validate:"omitempty,gt=0"`
	Multiplier     *float64 `json:"multiplier,omitempty" validate:"omitempty,gt=1"`
	GrossProfitPct *float64 `json:"gross_profit_pct,omitempty" validate:"omitempty,gt=0,lt=100"`
}

func (t tierRequest) toInput() pricing.TierInput {
	return pricing.TierInput{
		MinCost:        t.MinCost,
		MaxCost:        t.MaxCost,
		Multiplier:     t.Multiplier,
		GrossProfitPct: t.GrossProfitPct,
	}
}

type createMatrixRequest struct {
	Name  string        `json:"name" validate:"required,min=1,max=120"`
	Tiers []tierRequest `json:"tiers,omitempty" validate:"omitempty,dive"`
}

func (r createMatrixRequest) toInput() pricing.CreateMatrixInput {
	input := pricing.CreateMatrixInput{Name: validators.SanitizeString(r.Name, 120)}
	for _, tier := range r.Tiers {
		input.Tiers = append(input.Tiers, tier.toInput())
	}
	return input
}

type updateMatrixRequest struct {
	Name  string        `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Tiers []tierRequest `json:"tiers,omitempty" validate:"omitempty,dive"`
}

// toInput keeps the nil/empty distinction: an absent tiers key leaves the
// bands alone while an explicit empty array asks for a (rejected) wipe.
func (r updateMatrixRequest) toInput() pricing.UpdateMatrixInput {
	input := pricing.UpdateMatrixInput{Name: validators.SanitizeString(r.Name, 120)}
	if r.Tiers != nil {
		input.Tiers = make([]pricing.TierInput, 0, len(r.Tiers))
		for _, tier := range r.Tiers {
			input.Tiers = append(input.Tiers, tier.toInput())
		}
	}
	return input
}

type editTierRequest struct {
	MinCost        *float64 `json:"min_cost,omitempty" validate:"omitempty,gte=0"`
	MaxCost        *float64 `json:"max_cost,omitempty" validate:"omitempty,gt=0"`
	OpenEnded      bool     `json:"open_ended,omitempty"`
	Multiplier     *float64 `json:"multiplier,omitempty" validate:"omitempty,gt=1"`
	GrossProfitPct *float64 `json:"gross_profit_pct,omitempty" validate:"omitempty,gt=0,lt=100"`
}

func (r editTierRequest) toInput() pricing.EditTierInput {
	return pricing.EditTierInput{
		MinCost:        r.MinCost,
		MaxCost:        r.MaxCost,
		OpenEnded:      r.OpenEnded,
		Multiplier:     r.Multiplier,
		GrossProfitPct: r.GrossProfitPct,
	}
}

type tierView struct {
	Position       int      `json:"position"`
	Label          string   `json:"label"`
	MinCost        float64  `json:"min_cost"`
	MaxCost        *float64 `json:"max_cost,omitempty"`
	Multiplier     float64  `json:"multiplier"`
	GrossProfitPct float64  `json:"gross_profit_pct"`
}

type matrixResponse struct {
	ID    uuid.UUID  `json:"id"`
	Name  string     `json:"name"`
	Tiers []tierView `json:"tiers"`
}

func newMatrixResponse(matrix *pricing.Matrix) matrixResponse {
	resp := matrixResponse{
		ID:    matrix.ID,
		Name:  matrix.Name,
		Tiers: make([]tierView, len(matrix.Tiers)),
	}
	for i, tier := range matrix.Tiers {
		resp.Tiers[i] = tierView{
			Position:       tier.Position,
			Label:          tier.Label(),
			MinCost:        tier.MinCost,
			MaxCost:        tier.MaxCost,
			Multiplier:     tier.Markup.Multiplier,
			GrossProfitPct: tier.Markup.GrossProfitPct,
		}
	}
	return resp
}

func matrixIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "matrixId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid matrix id")
	}
	return id, nil
}

// warnCoverage logs band gaps and overlaps after a mutation. Both are legal
// and kept, so the caller only ever hears about them here.
func warnCoverage(r *http.Request, logg *logger.Logger, matrix *pricing.Matrix) {
	if logg == nil || matrix == nil {
		return
	}
	warnings := matrix.CoverageWarnings()
	if len(warnings) == 0 {
		return
	}
	ctx := logg.WithMatrixID(r.Context(), matrix.ID.String())
	for _, warning := range warnings {
		logg.Warn(ctx, "matrix coverage: "+warning)
	}
}

func tierPositionParam(r *http.Request) (int, error) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier position")
	}
	return position, nil
}

// MatrixCreate builds a new matrix; with no tiers in the payload the default
// band set is seeded.
func MatrixCreate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload createMatrixRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := svc.CreateMatrix(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warnCoverage(r, logg, matrix)
		responses.WriteSuccessStatus(w, http.StatusCreated, newMatrixResponse(matrix))
	}
}

// MatrixList pages through matrix summaries newest-first.
func MatrixList(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pricing.ListParams{}
		params.Limit = limit
		params.Cursor = r.URL.Query().Get("cursor")

		result, err := svc.ListMatrices(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// MatrixGet returns one matrix with its full band set.
func MatrixGet(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		id, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := svc.GetMatrix(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newMatrixResponse(matrix))
	}
}

// MatrixUpdate renames a matrix and/or replaces its tier set in one call.
func MatrixUpdate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		id, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateMatrixRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := svc.UpdateMatrix(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warnCoverage(r, logg, matrix)
		responses.WriteSuccess(w, newMatrixResponse(matrix))
	}
}

// MatrixDelete removes a matrix and its bands.
func MatrixDelete(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		id, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteMatrix(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// TierAdd inserts a band; the service renumbers positions afterward.
func TierAdd(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		id, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := svc.AddTier(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warnCoverage(r, logg, matrix)
		responses.WriteSuccessStatus(w, http.StatusCreated, newMatrixResponse(matrix))
	}
}

// TierEdit applies partial updates to the band at a position.
func TierEdit(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		id, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		position, err := tierPositionParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload editTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := svc.EditTier(r.Context(), id, position, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warnCoverage(r, logg, matrix)
		responses.WriteSuccess(w, newMatrixResponse(matrix))
	}
}

// TierRemove drops the band at a position and renumbers the rest.
func TierRemove(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		id, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		position, err := tierPositionParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrix, err := svc.RemoveTier(r.Context(), id, position)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		warnCoverage(r, logg, matrix)
		responses.WriteSuccess(w, newMatrixResponse(matrix))
	}
}
