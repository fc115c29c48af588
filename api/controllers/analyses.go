package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/get2salam/price-matrix-demo/api/responses"
	"github.com/get2salam/price-matrix-demo/api/validators"
	"github.com/get2salam/price-matrix-demo/internal/analysis"
	"github.com/get2salam/price-matrix-demo/pkg/config"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	"github.com/get2salam/price-matrix-demo/pkg/logger"
)

type analyzeRequest struct {
	MatrixID string `json:"matrix_id" validate:"required"`
	CSV      string `json:"csv" validate:"required"`
}

type targetRequest struct {
	Kind  string  `json:"kind" validate:"required"`
	Value float64 `json:"value" validate:"gte=0"`
}

type recommendRequest struct {
	Target targetRequest `json:"target" validate:"required"`
}

type pinRequest struct {
	Tier       int     `json:"tier" validate:"required,gte=1"`
	Multiplier float64 `json:"multiplier" validate:"required,gt=0"`
}

func analysisIDParam(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "analysisId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid analysis id")
	}
	return id, nil
}

// AnalysisCreate ingests a raw sales report against a matrix and opens an
// analysis session. The body is capped at the configured report size.
func AnalysisCreate(svc analysis.Service, cfg config.EngineConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		if cfg.MaxCSVBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxCSVBytes)
		}

		var payload analyzeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		matrixID, err := uuid.Parse(payload.MatrixID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid matrix id"))
			return
		}

		result, err := svc.Analyze(r.Context(), analysis.AnalyzeInput{
			MatrixID: matrixID,
			CSV:      payload.CSV,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AnalysisGet returns the stored session snapshot.
func AnalysisGet(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		id, err := analysisIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AnalysisRunGet returns the durable ingestion audit row. It keeps answering
// after the session snapshot has expired.
func AnalysisRunGet(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		id, err := analysisIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		run, err := svc.Run(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, run)
	}
}

// AnalysisRunsList returns the newest ingestion audit rows for a matrix.
func AnalysisRunsList(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		matrixID, err := matrixIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		runs, err := svc.RunsForMatrix(r.Context(), matrixID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, runs)
	}
}

// AnalysisRecommend solves multiplier recommendations for a profit target.
func AnalysisRecommend(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		id, err := analysisIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recommendRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		set, err := svc.Recommend(r.Context(), id, analysis.RecommendInput{
			Kind:  payload.Target.Kind,
			Value: payload.Target.Value,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, set)
	}
}

// AnalysisPin locks one tier's multiplier and re-solves the rest around it.
func AnalysisPin(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		id, err := analysisIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload pinRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		set, err := svc.Pin(r.Context(), id, analysis.PinInput{
			Position:   payload.Tier,
			Multiplier: payload.Multiplier,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, set)
	}
}

// AnalysisResetLocks clears every pinned tier on the session.
func AnalysisResetLocks(svc analysis.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}

		id, err := analysisIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResetLocks(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
