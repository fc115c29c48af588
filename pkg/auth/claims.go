package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/get2salam/price-matrix-demo/pkg/config"
)

// AccessTokenPayload is the caller-supplied identity baked into a minted
// token. JTI is optional; a random one is assigned when empty.
type AccessTokenPayload struct {
	SubjectID uuid.UUID
	ShopName  string
	JTI       string
}

func (p AccessTokenPayload) validate() error {
	if p.SubjectID == uuid.Nil {
		return fmt.Errorf("subject id is required")
	}
	return nil
}

// claims expands the payload into the full claim set for cfg at now.
func (p AccessTokenPayload) claims(cfg config.JWTConfig, now time.Time) AccessTokenClaims {
	jti := strings.TrimSpace(p.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	issued := jwt.NewNumericDate(now)
	return AccessTokenClaims{
		SubjectID: p.SubjectID,
		ShopName:  strings.TrimSpace(p.ShopName),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Subject:   p.SubjectID.String(),
			IssuedAt:  issued,
			NotBefore: issued,
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration())),
			ID:        jti,
		},
	}
}

// AccessTokenClaims is the decoded claim set handed to middleware after a
// successful parse.
type AccessTokenClaims struct {
	SubjectID uuid.UUID `json:"subject_id"`
	ShopName  string    `json:"shop_name,omitempty"`
	jwt.RegisteredClaims
}
