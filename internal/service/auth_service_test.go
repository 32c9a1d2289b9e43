package service_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lcutils/internal/config"
	"lcutils/internal/domain"
	"lcutils/internal/service"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Secret:      "test-secret-key-for-unit-tests",
		Issuer:      "lcutils-test",
		TokenExpiry: 15 * time.Minute,
	}
}

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := service.NewAuthService(testAuthConfig())

	tok, err := svc.IssueToken("rpms-merge", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "rpms-merge", claims.Subject)
	assert.Equal(t, "lcutils-test", claims.Issuer)
}

func TestAuthService_IssueToken_EmptySubject(t *testing.T) {
	svc := service.NewAuthService(testAuthConfig())
	_, err := svc.IssueToken("", time.Hour)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestAuthService_IssueToken_NoSecret(t *testing.T) {
	svc := service.NewAuthService(config.AuthConfig{Issuer: "x"})
	_, err := svc.IssueToken("sub", time.Hour)
	assert.Error(t, err)
}

func TestAuthService_ValidateToken_WrongSecret(t *testing.T) {
	issuer := service.NewAuthService(testAuthConfig())
	tok, err := issuer.IssueToken("sub", time.Hour)
	require.NoError(t, err)

	cfg := testAuthConfig()
	cfg.Secret = "another-secret"
	_, err = service.NewAuthService(cfg).ValidateToken(tok.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_Expired(t *testing.T) {
	cfg := testAuthConfig()
	claims := jwt.RegisteredClaims{
		Subject:   "sub",
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		Audience:  jwt.ClaimStrings{"access"},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = service.NewAuthService(cfg).ValidateToken(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_WrongAudience(t *testing.T) {
	cfg := testAuthConfig()
	claims := jwt.RegisteredClaims{
		Subject:   "sub",
		Issuer:    cfg.Issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		Audience:  jwt.ClaimStrings{"refresh"},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	require.NoError(t, err)

	_, err = service.NewAuthService(cfg).ValidateToken(signed)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ValidateToken_WrongIssuer(t *testing.T) {
	tok, err := service.NewAuthService(testAuthConfig()).IssueToken("sub", time.Hour)
	require.NoError(t, err)

	cfg := testAuthConfig()
	cfg.Issuer = "someone-else"
	_, err = service.NewAuthService(cfg).ValidateToken(tok.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}
