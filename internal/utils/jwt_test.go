package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken("test-secret", "user-1", "Admin", 60)
	require.NoError(t, err)
	assert.NotEmpty(t, at.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), at.Exp, 5*time.Second)

	claims, err := ParseAccessToken("test-secret", at.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "Admin", claims.Role)
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	at, err := NewAccessToken("test-secret", "user-1", "User", 60)
	require.NoError(t, err)

	_, err = ParseAccessToken("other-secret", at.Token)
	assert.Error(t, err)
}

func TestParseAccessTokenExpired(t *testing.T) {
	at, err := NewAccessToken("test-secret", "user-1", "User", -1)
	require.NoError(t, err)

	_, err = ParseAccessToken("test-secret", at.Token)
	assert.Error(t, err)
}

func TestRefreshTokenHashStable(t *testing.T) {
	rt, err := NewRefreshToken(15)
	require.NoError(t, err)
	assert.Len(t, rt.Raw, 96)

	other, err := NewRefreshToken(15)
	require.NoError(t, err)
	assert.NotEqual(t, rt.Raw, other.Raw)

	assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
	assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Inception", "inception"},
		{"The Dark Knight ", "the-dark-knight"},
		{"  Spaced   Out!! ", "spaced-out"},
		{"Уже-слаг", "уже-слаг"},
		{"UPPER_case.mixed", "upper-case-mixed"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}
