package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/config"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func newAuthFixture(t *testing.T) (*AuthService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            testBcryptCost,
	}, &fakeUserRepo{store: store})
	return svc, store
}

func TestLoginSucceedsCaseInsensitive(t *testing.T) {
	svc, store := newAuthFixture(t)
	seedUser(t, store, "root@x.com", "secret-pw", nil)

	user, token, _, err := svc.Login(context.Background(), "ROOT@X.COM", "secret-pw")
	require.NoError(t, err)
	assert.Equal(t, "root@x.com", user.Email)
	require.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestLoginFailureDoesNotRevealWhichFactorFailed(t *testing.T) {
	svc, store := newAuthFixture(t)
	seedUser(t, store, "root@x.com", "secret-pw", nil)

	_, _, _, unknownErr := svc.Login(context.Background(), "ghost@x.com", "secret-pw")
	require.Error(t, unknownErr)
	_, _, _, wrongErr := svc.Login(context.Background(), "root@x.com", "wrong-pw")
	require.Error(t, wrongErr)

	unknown := apperrors.ToDomainError(unknownErr)
	wrong := apperrors.ToDomainError(wrongErr)
	assert.Equal(t, 401, unknown.HTTPStatus)
	assert.Equal(t, 401, wrong.HTTPStatus)
	assert.Equal(t, unknown.Message, wrong.Message)
	assert.Equal(t, unknown.Code, wrong.Code)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	svc, store := newAuthFixture(t)
	seedUser(t, store, "root@x.com", "secret-pw", nil)

	_, token, _, err := svc.Login(context.Background(), "root@x.com", "secret-pw")
	require.NoError(t, err)

	_, err = svc.TokenManager().ParseToken(token + "x")
	assert.Error(t, err)
}
