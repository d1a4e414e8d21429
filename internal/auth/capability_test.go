package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyAdminToken(t *testing.T) {
	svc := NewService("test-secret")

	token, err := svc.IssueAdminToken("admin-addr", time.Hour)
	require.NoError(t, err)

	subject, ok := svc.VerifyAdmin(token)
	assert.True(t, ok)
	assert.Equal(t, "admin-addr", subject)
	assert.True(t, svc.HasAdminCapability(token))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-a")
	verifier := NewService("secret-b")

	token, err := issuer.IssueAdminToken("admin-addr", time.Hour)
	require.NoError(t, err)

	_, ok := verifier.VerifyAdmin(token)
	assert.False(t, ok)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService("test-secret")

	token, err := svc.IssueAdminToken("admin-addr", -time.Minute)
	require.NoError(t, err)

	_, ok := svc.VerifyAdmin(token)
	assert.False(t, ok)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService("test-secret")

	_, ok := svc.VerifyAdmin("")
	assert.False(t, ok)
	_, ok = svc.VerifyAdmin("not.a.token")
	assert.False(t, ok)
}

func TestVerifyRejectsTokenWithoutCapabilityClaim(t *testing.T) {
	secret := "test-secret"
	svc := NewService(secret)

	// a valid signature is not enough; the cap claim must match
	claims := jwt.MapClaims{
		"sub": "someone",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := raw.SignedString([]byte(secret))
	require.NoError(t, err)

	_, ok := svc.VerifyAdmin(token)
	assert.False(t, ok)
}
