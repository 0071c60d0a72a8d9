package verification

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"beam/pkg/domain"
	dErrors "beam/pkg/domain-errors"
)

// Claims are the signed contents of an email verification link.
type Claims struct {
	CompanyID string `json:"company_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and validates verification tokens. Tokens are HS256 JWTs
// carrying a jti so the store can enforce single use.
type TokenIssuer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewTokenIssuer(signingKey string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		signingKey: []byte(signingKey),
		issuer:     "beam-api",
		ttl:        ttl,
	}
}

// TTL reports how long issued tokens stay valid.
func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Issue signs a token for the given company and email. The returned jti
// identifies this token in the one-shot store.
func (t *TokenIssuer) Issue(companyID domain.CompanyID, email string, now time.Time) (token string, jti string, err error) {
	jti = uuid.NewString()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CompanyID: string(companyID),
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    t.issuer,
			ID:        jti,
		},
	})

	token, err = newToken.SignedString(t.signingKey)
	if err != nil {
		return "", "", err
	}
	return token, jti, nil
}

// Validate parses a token string and returns its claims.
func (t *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return t.signingKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "verification token has expired")
		}
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid verification token")
	}

	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid verification token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid verification token claims")
	}

	return claims, nil
}
