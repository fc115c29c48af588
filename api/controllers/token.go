package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/get2salam/price-matrix-demo/api/responses"
	"github.com/get2salam/price-matrix-demo/api/validators"
	"github.com/get2salam/price-matrix-demo/pkg/auth"
	"github.com/get2salam/price-matrix-demo/pkg/config"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	"github.com/get2salam/price-matrix-demo/pkg/logger"
)

type tokenRequest struct {
	ShopName  string `json:"shop_name" validate:"omitempty,max=120"`
	SubjectID string `json:"subject_id" validate:"omitempty,uuid4"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	SubjectID uuid.UUID `json:"subject_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DevToken mints a bearer token for local and staging use. The router only
// mounts it outside production.
func DevToken(cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tokenRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		subjectID := uuid.New()
		if raw := strings.TrimSpace(payload.SubjectID); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid subject_id"))
				return
			}
			subjectID = parsed
		}

		now := time.Now()
		token, err := auth.MintAccessToken(cfg.JWT, now, auth.AccessTokenPayload{
			SubjectID: subjectID,
			ShopName:  validators.SanitizeString(payload.ShopName, 120),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint token"))
			return
		}

		responses.WriteSuccess(w, tokenResponse{
			Token:     token,
			SubjectID: subjectID,
			ExpiresAt: now.Add(cfg.JWT.Expiration()).UTC(),
		})
	}
}
