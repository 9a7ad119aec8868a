package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agro-telemetry-backend/config"
)

var testUsers = []config.User{
	{ID: 1, Username: "admin", Password: "admin123", Role: "admin"},
	{ID: 2, Username: "operator", Password: "op123", Role: "operator"},
}

func TestStaticProviderAuthenticate(t *testing.T) {
	provider := NewStaticProvider(testUsers)

	principal, err := provider.Authenticate("operator", "op123")
	require.NoError(t, err)
	assert.Equal(t, int64(2), principal.ID)
	assert.Equal(t, "operator", principal.Role)

	_, err = provider.Authenticate("operator", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = provider.Authenticate("ghost", "op123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthorize(t *testing.T) {
	assert.True(t, Authorize(&Principal{Role: "operator"}, "operator"))
	assert.True(t, Authorize(&Principal{Role: "admin"}, "operator"))
	assert.False(t, Authorize(&Principal{Role: "operator"}, "admin"))
	assert.False(t, Authorize(nil, "operator"))
}

func TestLoginAndVerifyRoundtrip(t *testing.T) {
	svc := NewService(NewStaticProvider(testUsers), "test-secret", time.Hour)

	token, principal, err := svc.Login("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", principal.Username)
	require.NotEmpty(t, token)

	verified, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, principal.ID, verified.ID)
	assert.Equal(t, principal.Role, verified.Role)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	svc := NewService(NewStaticProvider(testUsers), "test-secret", time.Hour)

	_, err := svc.Verify("not-a-token")
	assert.Error(t, err)

	// Tokens signed with a different secret must not verify.
	other := NewService(NewStaticProvider(testUsers), "other-secret", time.Hour)
	token, _, err := other.Login("admin", "admin123")
	require.NoError(t, err)
	_, err = svc.Verify(token)
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	svc := NewService(NewStaticProvider(testUsers), "test-secret", -time.Minute)

	token, _, err := svc.Login("admin", "admin123")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.Error(t, err)
}
