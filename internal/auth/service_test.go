package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocvh/backend-cho/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Store:          &store.Store{},
		Secret:         "test-secret-test-secret-test-secret",
		AccessTokenTTL: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, expiry, err := svc.signAccessToken("user-1", []string{RoleCustomer, RoleShipper})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiry, time.Minute)

	subject, roles, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", subject)
	assert.Equal(t, []string{RoleCustomer, RoleShipper}, roles)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc := newTestService(t)

	past := time.Now().Add(-2 * time.Hour)
	svc.WithNow(func() time.Time { return past })
	token, _, err := svc.signAccessToken("user-1", nil)
	require.NoError(t, err)

	svc.WithNow(time.Now)
	_, _, err = svc.ParseAccessToken(token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService(Config{Store: &store.Store{}, Secret: "another-secret-entirely-here"})
	require.NoError(t, err)

	token, _, err := svc.signAccessToken("user-1", nil)
	require.NoError(t, err)

	_, _, err = other.ParseAccessToken(token)
	require.Error(t, err)
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.ParseAccessToken("")
	assert.Error(t, err)

	_, _, err = svc.ParseAccessToken("not.a.jwt")
	assert.Error(t, err)
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(Config{Secret: "x"})
	assert.Error(t, err)

	_, err = NewService(Config{Store: &store.Store{}})
	assert.Error(t, err)
}
