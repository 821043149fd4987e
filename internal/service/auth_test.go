package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/civicreport/civicreport/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "service-test-secret-0123456789abcdef"

type authFixture struct {
	svc     *AuthService
	users   *memUserStore
	tokens  *auth.TokenManager
	metrics *metrics.InMemoryRecorder
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tm, err := auth.NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	users := newMemUserStore()
	rec := metrics.NewInMemory()
	return &authFixture{
		svc:     NewAuthService(users, tm, discardLogger(), rec),
		users:   users,
		tokens:  tm,
		metrics: rec,
	}
}

func TestRegister_IssuesTokenForCreatedUser(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{
		Name:     "A",
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	identity, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, identity.UserID)
	assert.Equal(t, model.RoleCitizen, identity.Role)
	assert.Equal(t, model.RoleCitizen, res.User.Role)
	assert.Empty(t, res.User.PasswordHash, "result must not carry the hash")
	assert.Equal(t, uint64(1), f.metrics.Snapshot().UsersRegistered)
}

func TestRegister_StoresOneWayHash(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "A", Email: "a@x.com", Password: "secret1",
	})
	require.NoError(t, err)

	stored := f.users.stored("a@x.com")
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.NotContains(t, stored.PasswordHash, "secret1")

	ok, err := auth.VerifyPassword("secret1", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_NormalizesEmailAndName(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	res, err := f.svc.Register(context.Background(), RegisterInput{
		Name: "  Ada  ", Email: "  Ada@Example.COM ", Password: "secret1", Role: model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "Ada", res.User.Name)
	assert.Equal(t, model.RoleAdmin, res.User.Role)
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   RegisterInput
		wantMsg string
	}{
		{
			name:    "missing name",
			input:   RegisterInput{Email: "a@x.com", Password: "secret1"},
			wantMsg: "Please add a name",
		},
		{
			name:    "blank name",
			input:   RegisterInput{Name: "   ", Email: "a@x.com", Password: "secret1"},
			wantMsg: "Please add a name",
		},
		{
			name:    "missing email",
			input:   RegisterInput{Name: "A", Password: "secret1"},
			wantMsg: "Please add an email",
		},
		{
			name:    "invalid email",
			input:   RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"},
			wantMsg: "Please add a valid email",
		},
		{
			name:    "missing password",
			input:   RegisterInput{Name: "A", Email: "a@x.com"},
			wantMsg: "Please add a password",
		},
		{
			name:    "short password",
			input:   RegisterInput{Name: "A", Email: "a@x.com", Password: "12345"},
			wantMsg: "Password must be at least 6 characters",
		},
		{
			name:    "unknown role",
			input:   RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1", Role: "superuser"},
			wantMsg: "Role must be citizen or admin",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newAuthFixture(t)

			_, err := f.svc.Register(context.Background(), tc.input)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tc.wantMsg, vErr.Message)
			assert.Empty(t, f.users.byID, "nothing may be stored")
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterInput{Name: "B", Email: "A@X.com", Password: "secret2"})
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr), "got %v", err)
	assert.Equal(t, "Email is already registered", vErr.Message)
}

func TestRegister_StoreFailure(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.users.err = errStoreDown

	_, err := f.svc.Register(context.Background(), RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, errStoreDown)

	var vErr *ValidationError
	assert.False(t, errors.As(err, &vErr))
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := f.svc.Login(ctx, LoginInput{Email: "A@x.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, res.User.ID)
	assert.Empty(t, res.User.PasswordHash)

	identity, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, identity.UserID)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().LoginsSucceeded)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := f.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "wrong"})
	_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "nobody@x.com", Password: "secret1"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, uint64(2), f.metrics.Snapshot().LoginsFailed)
}

func TestLogin_MissingFields(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	for _, in := range []LoginInput{
		{},
		{Email: "a@x.com"},
		{Password: "secret1"},
		{Email: "   ", Password: "secret1"},
	} {
		_, err := f.svc.Login(context.Background(), in)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), "input %+v: got %v", in, err)
		assert.Equal(t, "Please provide an email and password", vErr.Message)
	}
}

func TestLogin_CorruptStoredHash(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)

	require.NoError(t, f.users.CreateUser(context.Background(), &model.User{
		ID: "u1", Name: "A", Email: "a@x.com", PasswordHash: "not-a-phc-string", Role: model.RoleCitizen,
	}))

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_StoreFailureIsNotCredentialError(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	f.users.err = errStoreDown

	_, err := f.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "secret1"})
	assert.ErrorIs(t, err, errStoreDown)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.svc.Register(ctx, RegisterInput{Name: "A", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := f.svc.CurrentUser(ctx, &model.Identity{UserID: reg.User.ID, Role: model.RoleCitizen})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Empty(t, user.PasswordHash)

	_, err = f.svc.CurrentUser(ctx, &model.Identity{UserID: "gone"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.CurrentUser(ctx, nil)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
