// Package jwttoken issues and validates the HS256 access tokens used by the
// REST API. Logout works through a revocation list keyed by the token's JTI.
package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mobywatel/internal/identity"
	"mobywatel/internal/platform/config"
	"mobywatel/internal/platform/middleware"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

// Claims are the access-token claims.
type Claims struct {
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// Manager creates and validates tokens. A nil revocation list disables
// revocation checks; tokens then expire naturally.
type Manager struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	revocation RevocationList
}

func NewManager(cfg config.JWT, revocation RevocationList) *Manager {
	return &Manager{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		ttl:        cfg.TTL,
		revocation: revocation,
	}
}

// Generate signs a fresh access token for the account.
func (m *Manager) Generate(accountID id.UserID, role identity.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID.String(),
		Role:      string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    m.issuer,
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to sign token")
	}
	return signed, nil
}

// ValidateToken parses and verifies a token and checks the revocation list.
// It satisfies the auth middleware's validator interface.
func (m *Manager) ValidateToken(ctx context.Context, tokenString string) (*middleware.JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "token has expired")
		}
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid token")
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "invalid token claims")
	}

	if m.revocation != nil {
		revoked, err := m.revocation.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to check token revocation")
		}
		if revoked {
			return nil, apperrors.New(apperrors.CodeUnauthorized, "token has been revoked")
		}
	}

	return &middleware.JWTClaims{
		AccountID: claims.AccountID,
		Role:      claims.Role,
		TokenID:   claims.ID,
	}, nil
}

// Revoke puts a token's JTI on the revocation list for the token lifetime.
// Without a revocation list this is a no-op.
func (m *Manager) Revoke(ctx context.Context, jti string) error {
	if m.revocation == nil || jti == "" {
		return nil
	}
	if err := m.revocation.Revoke(ctx, jti, m.ttl); err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to revoke token")
	}
	return nil
}
