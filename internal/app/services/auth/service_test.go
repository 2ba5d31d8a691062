package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freebie/internal/app/services/auth"
	domainuser "freebie/internal/domain/user"
	"freebie/internal/infra/security"
	"freebie/internal/infra/storage/memory"
)

func newTestService() *auth.Service {
	return &auth.Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: security.BcryptHasher{Cost: 4},
		Tokens:    security.RandomTokenGenerator{},
	}
}

func TestRegisterAndResolveToken(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	result, err := service.Register(ctx, auth.RegisterParams{
		Email:    "Ada@Example.com",
		Name:     "Ada",
		Password: "correct horse",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", result.User.Email)
	assert.NotEmpty(t, result.Token)
	assert.Contains(t, result.User.AvatarURL, "ui-avatars.com")

	user, err := service.ResolveToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, user.ID)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	service := newTestService()
	_, err := service.Register(context.Background(), auth.RegisterParams{
		Email:    "ada@example.com",
		Name:     "Ada",
		Password: "short",
	})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	_, err := service.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correct horse"})
	require.NoError(t, err)

	_, err = service.Register(ctx, auth.RegisterParams{Email: "ADA@example.com", Name: "Imposter", Password: "correct horse"})
	assert.ErrorIs(t, err, domainuser.ErrEmailTaken)
}

func TestLoginVerifiesCredentials(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	_, err := service.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correct horse"})
	require.NoError(t, err)

	result, err := service.Login(ctx, auth.LoginParams{Email: "ada@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = service.Login(ctx, auth.LoginParams{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = service.Login(ctx, auth.LoginParams{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	result, err := service.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, service.Logout(ctx, result.Token))
	_, err = service.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestResolveTokenExpires(t *testing.T) {
	service := newTestService()
	service.SessionTTL = time.Millisecond
	ctx := context.Background()
	result, err := service.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correct horse"})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = service.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestDeleteAccountRunsCleanupAndDropsSessions(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	result, err := service.Register(ctx, auth.RegisterParams{Email: "ada@example.com", Name: "Ada", Password: "correct horse"})
	require.NoError(t, err)

	var cleaned []domainuser.ID
	cleanup := func(ctx context.Context, id domainuser.ID) error {
		cleaned = append(cleaned, id)
		return nil
	}
	require.NoError(t, service.DeleteAccount(ctx, result.User.ID, cleanup))
	assert.Equal(t, []domainuser.ID{result.User.ID}, cleaned)

	_, err = service.ResolveToken(ctx, result.Token)
	assert.ErrorIs(t, err, auth.ErrSessionNotFound)
	_, err = service.Users.ByID(ctx, result.User.ID)
	assert.ErrorIs(t, err, domainuser.ErrNotFound)
}
