package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop/internal/auth"
	"workshop/internal/db"
	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

type env struct {
	store    repository.Store
	recorder *events.Recorder
	jwt      *auth.JWTService
	tokens   *auth.TokenStore
	auth     AuthService
	users    UserService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gormDB))
	t.Cleanup(func() { _ = db.Close(gormDB) })

	store := repository.NewStore(gormDB)
	e := &env{
		store:    store,
		recorder: &events.Recorder{},
		jwt:      auth.NewJWTService("test-secret", time.Hour),
		tokens:   auth.NewTokenStore(nil),
	}
	e.auth = NewAuthService(store.Users(), store.PasswordResets(), e.jwt, e.tokens, e.recorder,
		AuthOptions{BcryptCost: testCost, ResetTokenTTL: 30 * time.Minute})
	e.users = NewUserService(store.Users(), e.tokens, testCost)
	return e
}

func (e *env) register(t *testing.T, first, email, password string) *AuthResult {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{FirstName: first, LastName: "Kowalski", Email: email, Password: password})
	require.NoError(t, err)
	return res
}

func TestScenario_RegisterLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg := e.register(t, "Jan", "jan@x.pl", "secret123")
	assert.Equal(t, model.RoleUser, reg.User.Role)

	login, err := e.auth.Login(ctx, "jan@x.pl", "secret123")
	require.NoError(t, err)
	claims, err := e.jwt.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	identity, err := e.auth.Authorize(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, identity.UserID)

	_, err = e.auth.Login(ctx, "jan@x.pl", "wrong-password")
	assert.Equal(t, ErrInvalidCredentials, err)

	_, err = e.auth.Register(ctx, RegisterInput{FirstName: "Jan", LastName: "K", Email: "JAN@x.pl", Password: "secret123"})
	assert.Equal(t, ErrUserAlreadyExists, err)
}

func TestBlockedUserLosesAccessImmediately(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	admin, err := e.users.CreateUser(ctx, CreateUserInput{FirstName: "Ada", LastName: "Admin", Email: "admin@x.pl", Password: "admin123", Role: model.RoleAdmin})
	require.NoError(t, err)
	adminIdentity := auth.Identity{UserID: admin.ID, Email: admin.Email, Role: admin.Role}

	reg := e.register(t, "Jan", "jan@x.pl", "secret123")
	claims, err := e.jwt.ValidateToken(reg.Token)
	require.NoError(t, err)
	_, err = e.auth.Authorize(ctx, claims)
	require.NoError(t, err)

	blocked := model.UserStatusBlocked
	_, err = e.users.UpdateUser(ctx, adminIdentity, reg.User.ID, UserPatch{Status: &blocked})
	require.NoError(t, err)

	_, err = e.auth.Authorize(ctx, claims)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindUnauthorized, apperrors.KindOf(err))

	_, err = e.auth.Login(ctx, "jan@x.pl", "secret123")
	assert.Equal(t, ErrAccountBlocked, err)

	// Promotion is also seen on the next request.
	active, admins := model.UserStatusActive, model.RoleAdmin
	_, err = e.users.UpdateUser(ctx, adminIdentity, reg.User.ID, UserPatch{Status: &active, Role: &admins})
	require.NoError(t, err)
	identity, err := e.auth.Authorize(ctx, claims)
	require.NoError(t, err)
	assert.True(t, identity.IsAdmin())
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestUserService_UpdateUserGuards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin, err := e.users.CreateUser(ctx, CreateUserInput{FirstName: "Ada", LastName: "Admin", Email: "admin@x.pl", Password: "admin123", Role: model.RoleAdmin})
	require.NoError(t, err)
	caller := auth.Identity{UserID: admin.ID, Role: model.RoleAdmin}

	blocked := model.UserStatusBlocked
	_, err = e.users.UpdateUser(ctx, caller, admin.ID, UserPatch{Status: &blocked})
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))

	_, err = e.users.UpdateUser(ctx, caller, admin.ID, UserPatch{})
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))

	bogus := model.Role("owner")
	_, err = e.users.UpdateUser(ctx, caller, admin.ID, UserPatch{Role: &bogus})
	var typed *apperrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, []string{"user", "admin", "mechanic"}, typed.Allowed)

	_, err = e.users.UpdateUser(ctx, caller, 999, UserPatch{Status: &blocked})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = e.users.CreateUser(ctx, CreateUserInput{FirstName: "A", LastName: "B", Email: "admin@x.pl", Password: "admin123"})
	assert.Equal(t, ErrUserAlreadyExists, err)
}

func TestUserService_ResetUserPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin, err := e.users.CreateUser(ctx, CreateUserInput{FirstName: "Ada", LastName: "Admin", Email: "admin@x.pl", Password: "admin123", Role: model.RoleAdmin})
	require.NoError(t, err)
	adminIdentity := auth.Identity{UserID: admin.ID, Email: admin.Email, Role: model.RoleAdmin}
	reg := e.register(t, "Jan", "jan@x.pl", "secret123")
	userIdentity := auth.Identity{UserID: reg.User.ID, Email: reg.User.Email, Role: model.RoleUser}

	tests := []struct {
		name     string
		caller   auth.Identity
		id       uint
		password string
		want     apperrors.Kind
	}{
		{name: "non-admin caller", caller: userIdentity, id: admin.ID, password: "taken-over", want: apperrors.KindForbidden},
		{name: "short password", caller: adminIdentity, id: reg.User.ID, password: "abc", want: apperrors.KindBadRequest},
		{name: "unknown user", caller: adminIdentity, id: 999, password: "new-secret", want: apperrors.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.users.ResetUserPassword(ctx, tt.caller, tt.id, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.want, apperrors.KindOf(err))
		})
	}

	require.NoError(t, e.users.ResetUserPassword(ctx, adminIdentity, reg.User.ID, "new-secret"))
	_, err = e.auth.Login(ctx, "jan@x.pl", "secret123")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = e.auth.Login(ctx, "jan@x.pl", "new-secret")
	require.NoError(t, err)
}

func TestPasswordReset_SingleUse(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "Jan", "jan@x.pl", "secret123")

	require.NoError(t, e.auth.RequestPasswordReset(ctx, "jan@x.pl"))
	sent := e.recorder.OfType(events.PasswordResetRequested)
	require.Len(t, sent, 1)
	token := sent[0].(events.PasswordResetRequestedEvent).Token

	// The first-name answer of the old flow no longer resets anything.
	assert.Equal(t, ErrInvalidResetToken, e.auth.ResetPassword(ctx, "jan@x.pl", "Jan", "hijacked1"))

	require.NoError(t, e.auth.ResetPassword(ctx, "jan@x.pl", token, "brand-new"))
	assert.Equal(t, ErrInvalidResetToken, e.auth.ResetPassword(ctx, "jan@x.pl", token, "again-new"))

	_, err := e.auth.Login(ctx, "jan@x.pl", "secret123")
	assert.Equal(t, ErrInvalidCredentials, err)
	_, err = e.auth.Login(ctx, "jan@x.pl", "brand-new")
	assert.NoError(t, err)
}

func TestPasswordReset_Expired(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "Jan", "jan@x.pl", "secret123")

	require.NoError(t, e.auth.RequestPasswordReset(ctx, "jan@x.pl"))
	token := e.recorder.OfType(events.PasswordResetRequested)[0].(events.PasswordResetRequestedEvent).Token

	e.auth.(*authService).now = func() time.Time { return time.Now().UTC().Add(time.Hour) }
	assert.Equal(t, ErrInvalidResetToken, e.auth.ResetPassword(ctx, "jan@x.pl", token, "brand-new"))
}

func TestPasswordReset_NewRequestReplacesOld(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.register(t, "Jan", "jan@x.pl", "secret123")

	require.NoError(t, e.auth.RequestPasswordReset(ctx, "jan@x.pl"))
	require.NoError(t, e.auth.RequestPasswordReset(ctx, "jan@x.pl"))
	sent := e.recorder.OfType(events.PasswordResetRequested)
	require.Len(t, sent, 2)
	first := sent[0].(events.PasswordResetRequestedEvent).Token
	second := sent[1].(events.PasswordResetRequestedEvent).Token

	assert.Equal(t, ErrInvalidResetToken, e.auth.ResetPassword(ctx, "jan@x.pl", first, "brand-new"))
	assert.NoError(t, e.auth.ResetPassword(ctx, "jan@x.pl", second, "brand-new"))
}

func TestProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := e.register(t, "Jan", "jan@x.pl", "secret123")

	_, err := e.auth.UpdateProfile(ctx, reg.User.ID, ProfilePatch{})
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))

	phone := "+48 600 100 200"
	updated, err := e.auth.UpdateProfile(ctx, reg.User.ID, ProfilePatch{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Jan", updated.FirstName)

	err = e.auth.ChangePassword(ctx, reg.User.ID, "not-mine", "another1")
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))
	require.NoError(t, e.auth.ChangePassword(ctx, reg.User.ID, "secret123", "another1"))
	_, err = e.auth.Login(ctx, "jan@x.pl", "another1")
	assert.NoError(t, err)
}
