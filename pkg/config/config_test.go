package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("COGNITO_USER_POOL_ID", "ap-northeast-1_abc")
	t.Setenv("COGNITO_USER_POOL_CLIENT_ID", "client")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Stage)
	assert.Equal(t, ":4000", cfg.Server.ListenAddress)
	assert.Equal(t, "manifest.toml", cfg.Server.Manifest)
	assert.Equal(t, "ap-northeast-1", cfg.AWS.Region)
	assert.Equal(t, "terakoya-dev-booking", cfg.DynamoDB.BookingTable)
	assert.Equal(t, "terakoya-dev-user", cfg.DynamoDB.UserTable)
	assert.Equal(t, 10*time.Minute, cfg.Auth.JWKSCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.Auth.Leeway)
	assert.False(t, cfg.IsProd())
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("STAGE", "PROD")
	t.Setenv("AWS_DEFAULT_REGION", "us-east-1")
	t.Setenv("COGNITO_USER_POOL_ID", "us-east-1_pool")
	t.Setenv("COGNITO_USER_POOL_CLIENT_ID", "client")
	t.Setenv("DYNAMODB_BOOKING_TABLE", "bookings")
	t.Setenv("AUTH_JWKS_CACHE_TTL", "0s")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProd())
	assert.Equal(t, "bookings", cfg.DynamoDB.BookingTable)
	assert.Equal(t, "terakoya-prod-user", cfg.DynamoDB.UserTable)
	assert.Zero(t, cfg.Auth.JWKSCacheTTL)
	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_pool", cfg.Issuer())
	assert.Equal(t, "https://cognito-idp.us-east-1.amazonaws.com/us-east-1_pool/.well-known/jwks.json", cfg.JWKSURL())
}

func TestNewConfig_MissingPool(t *testing.T) {
	t.Setenv("COGNITO_USER_POOL_ID", "")
	t.Setenv("COGNITO_USER_POOL_CLIENT_ID", "")

	_, err := NewConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COGNITO_USER_POOL_ID")
	assert.Contains(t, err.Error(), "COGNITO_USER_POOL_CLIENT_ID")
}

func TestNewConfig_BadDuration(t *testing.T) {
	t.Setenv("COGNITO_USER_POOL_ID", "p")
	t.Setenv("COGNITO_USER_POOL_CLIENT_ID", "c")
	t.Setenv("AUTH_JWKS_CACHE_TTL", "soon")

	_, err := NewConfig()
	require.Error(t, err)
}
