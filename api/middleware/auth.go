package middleware

import (
	"net/http"
	"strings"

	"github.com/get2salam/price-matrix-demo/api/responses"
	pkgAuth "github.com/get2salam/price-matrix-demo/pkg/auth"
	"github.com/get2salam/price-matrix-demo/pkg/config"
	pkgerrors "github.com/get2salam/price-matrix-demo/pkg/errors"
	"github.com/get2salam/price-matrix-demo/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithSubjectID(r.Context(), claims.SubjectID.String())
			if claims.ShopName != "" {
				ctx = WithShopName(ctx, claims.ShopName)
			}

			if logg != nil {
				ctx = logg.WithSubject(ctx, claims.SubjectID.String())
				if claims.ShopName != "" {
					ctx = logg.WithField(ctx, "shop_name", claims.ShopName)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
