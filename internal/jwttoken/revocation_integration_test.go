//go:build integration

package jwttoken_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mobywatel/internal/jwttoken"
	"mobywatel/pkg/testutil/containers"
)

type RedisRevocationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	list  *jwttoken.RedisRevocationList
}

func TestRedisRevocationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisRevocationSuite))
}

func (s *RedisRevocationSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.list = jwttoken.NewRedisRevocationList(s.redis.Client)
}

func (s *RedisRevocationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisRevocationSuite) TestRevokeAndCheck() {
	ctx := context.Background()

	revoked, err := s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.False(revoked)

	s.Require().NoError(s.list.Revoke(ctx, "jti-1", time.Minute))

	revoked, err = s.list.IsRevoked(ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)
}

func (s *RedisRevocationSuite) TestEntryExpiresWithTTL() {
	ctx := context.Background()

	s.Require().NoError(s.list.Revoke(ctx, "jti-short", 500*time.Millisecond))

	s.Eventually(func() bool {
		revoked, err := s.list.IsRevoked(ctx, "jti-short")
		return err == nil && !revoked
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *RedisRevocationSuite) TestEmptyJTIIsIgnored() {
	ctx := context.Background()
	s.Require().NoError(s.list.Revoke(ctx, "", time.Minute))
	revoked, err := s.list.IsRevoked(ctx, "")
	s.Require().NoError(err)
	s.False(revoked)
}
