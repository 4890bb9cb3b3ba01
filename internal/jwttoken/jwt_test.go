package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobywatel/internal/identity"
	"mobywatel/internal/platform/config"
	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
)

func testConfig() config.JWT {
	return config.JWT{
		SigningKey: "unit-test-signing-key",
		Issuer:     "mobywatel-test",
		TTL:        time.Hour,
	}
}

func TestGenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testConfig(), NewInMemoryRevocationList())

	accountID := id.NewUserID()
	token, err := manager.Generate(accountID, identity.RoleOfficial)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, accountID.String(), claims.AccountID)
	assert.Equal(t, "OFFICIAL", claims.Role)
	assert.NotEmpty(t, claims.TokenID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testConfig(), NewInMemoryRevocationList())

	_, err := manager.ValidateToken(ctx, "not.a.token")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}

func TestValidateRejectsForeignKey(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testConfig(), nil)

	other := NewManager(config.JWT{SigningKey: "some-other-key", Issuer: "x", TTL: time.Hour}, nil)
	token, err := other.Generate(id.NewUserID(), identity.RoleCitizen)
	require.NoError(t, err)

	_, err = manager.ValidateToken(ctx, token)
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))
}

func TestValidateRejectsExpired(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.TTL = -time.Minute
	manager := NewManager(cfg, nil)

	token, err := manager.Generate(id.NewUserID(), identity.RoleCitizen)
	require.NoError(t, err)

	_, err = manager.ValidateToken(ctx, token)
	require.Error(t, err)
	assert.Equal(t, "token has expired", apperrors.MessageOf(err))
}

func TestRevokeInvalidatesToken(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testConfig(), NewInMemoryRevocationList())

	token, err := manager.Generate(id.NewUserID(), identity.RoleCitizen)
	require.NoError(t, err)

	claims, err := manager.ValidateToken(ctx, token)
	require.NoError(t, err)

	require.NoError(t, manager.Revoke(ctx, claims.TokenID))

	_, err = manager.ValidateToken(ctx, token)
	require.Error(t, err)
	assert.Equal(t, "token has been revoked", apperrors.MessageOf(err))
}

func TestRevokeWithoutListIsNoOp(t *testing.T) {
	ctx := context.Background()
	manager := NewManager(testConfig(), nil)
	assert.NoError(t, manager.Revoke(ctx, "any-jti"))
}

func TestInMemoryRevocationListExpiry(t *testing.T) {
	ctx := context.Background()
	list := NewInMemoryRevocationList()

	require.NoError(t, list.Revoke(ctx, "jti-1", time.Hour))
	revoked, err := list.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Entry whose TTL already passed is treated as expired.
	require.NoError(t, list.Revoke(ctx, "jti-2", -time.Second))
	revoked, err = list.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = list.IsRevoked(ctx, "")
	require.NoError(t, err)
	assert.False(t, revoked)
}
