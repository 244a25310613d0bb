package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/kvstore"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/signal"
)

type fakeAuthAPI struct {
	register      func(ctx context.Context, req gateway.RegisterRequest) (*gateway.RegisterResponse, error)
	login         func(ctx context.Context, req gateway.LoginRequest) (*gateway.AuthSession, error)
	profile       func(ctx context.Context, token string) (*gateway.User, error)
	updateProfile func(ctx context.Context, token string, patch gateway.ProfilePatch) (*gateway.User, error)
	verifyOtp     func(ctx context.Context, phone, code string) (*gateway.AuthSession, error)
	setUsername   func(ctx context.Context, token, username string) (*gateway.User, error)
	signOut       func(ctx context.Context, token string) error
}

func (f *fakeAuthAPI) Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.RegisterResponse, error) {
	if f.register != nil {
		return f.register(ctx, req)
	}
	return &gateway.RegisterResponse{Message: "ok"}, nil
}

func (f *fakeAuthAPI) Login(ctx context.Context, req gateway.LoginRequest) (*gateway.AuthSession, error) {
	if f.login != nil {
		return f.login(ctx, req)
	}
	return &gateway.AuthSession{Token: "tok"}, nil
}

func (f *fakeAuthAPI) Profile(ctx context.Context, token string) (*gateway.User, error) {
	if f.profile != nil {
		return f.profile(ctx, token)
	}
	return &gateway.User{ID: "u1", Role: "user"}, nil
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, token string, patch gateway.ProfilePatch) (*gateway.User, error) {
	if f.updateProfile != nil {
		return f.updateProfile(ctx, token, patch)
	}
	return &gateway.User{ID: "u1", Role: "user"}, nil
}

func (f *fakeAuthAPI) SendPhoneOtp(context.Context, string) error { return nil }

func (f *fakeAuthAPI) VerifyPhoneOtp(ctx context.Context, phone, code string) (*gateway.AuthSession, error) {
	if f.verifyOtp != nil {
		return f.verifyOtp(ctx, phone, code)
	}
	return &gateway.AuthSession{Token: "otp-tok", User: &gateway.User{ID: "u1", Phone: phone, Role: "user"}}, nil
}

func (f *fakeAuthAPI) VerifyPhoneAndSetUsername(ctx context.Context, token, username string) (*gateway.User, error) {
	if f.setUsername != nil {
		return f.setUsername(ctx, token, username)
	}
	return &gateway.User{ID: "u1", Username: username, Role: "user"}, nil
}

func (f *fakeAuthAPI) ResendVerificationEmail(context.Context, string) error { return nil }

func (f *fakeAuthAPI) SignOut(ctx context.Context, token string) error {
	if f.signOut != nil {
		return f.signOut(ctx, token)
	}
	return nil
}

func newTestAuthStore(t *testing.T, api AuthAPI) (*AuthStore, *signal.Bus, *kvstore.Store) {
	t.Helper()
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	bus := signal.NewBus(zap.NewNop())
	return NewAuthStore(api, bus, kv, zap.NewNop()), bus, kv
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	api := &fakeAuthAPI{
		register: func(_ context.Context, req gateway.RegisterRequest) (*gateway.RegisterResponse, error) {
			return &gateway.RegisterResponse{
				Message: "Check your email to verify your account",
				User:    &gateway.User{Email: req.Email, Username: req.Username, Role: "user"},
			}, nil
		},
	}
	s, _, _ := newTestAuthStore(t, api)

	resp, err := s.Register(context.Background(), "a@b.com", "secret123", "abc")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
	assert.False(t, s.IsAuthenticated(), "registration must not establish a session")
	assert.Empty(t, s.Token())
}

func TestLoginSuccessStoresIdentityAndToken(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(_ context.Context, req gateway.LoginRequest) (*gateway.AuthSession, error) {
			assert.Equal(t, "a@b.com", req.Email)
			assert.Empty(t, req.Phone)
			return &gateway.AuthSession{Token: "sess-1"}, nil
		},
		profile: func(_ context.Context, token string) (*gateway.User, error) {
			assert.Equal(t, "sess-1", token)
			return &gateway.User{ID: "u1", Email: "a@b.com", Role: "prouser", ProfileCompleted: true}, nil
		},
	}
	s, _, kv := newTestAuthStore(t, api)

	require.NoError(t, s.Login(context.Background(), "a@b.com", "secret123"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "prouser", s.CurrentUser().Role)

	var rec authRecord
	ok, err := kv.Get(authKey, &rec)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "sess-1", rec.Token, "token is the durable subset")
}

func TestLoginFailureLeavesPreviousIdentityUntouched(t *testing.T) {
	api := &fakeAuthAPI{
		login: func(context.Context, gateway.LoginRequest) (*gateway.AuthSession, error) {
			return nil, &gateway.APIError{StatusCode: 401, Message: "Invalid login credentials"}
		},
	}
	s, bus, _ := newTestAuthStore(t, api)

	err := s.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	assert.Nil(t, s.CurrentUser(), "previous identity (nil) unchanged")
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, AuthErrorInvalidCredentials, ClassifyAuthError(err))
	assert.Equal(t, "Invalid login credentials", bus.GlobalError())
}

func TestCheckAuthFailsClosed(t *testing.T) {
	kv, err := kvstore.Open(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	require.NoError(t, kv.Set(authKey, authRecord{Token: "stale-tok", Onboarded: true}))

	api := &fakeAuthAPI{
		profile: func(context.Context, string) (*gateway.User, error) {
			return nil, &gateway.APIError{StatusCode: 401, Message: "invalid token"}
		},
	}
	bus := signal.NewBus(zap.NewNop())
	s := NewAuthStore(api, bus, kv, zap.NewNop())

	require.Error(t, s.CheckAuth(context.Background()))
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token(), "credential cleared, not left half-valid")

	var rec authRecord
	_, err = kv.Get(authKey, &rec)
	require.NoError(t, err)
	assert.Empty(t, rec.Token)
	assert.True(t, rec.Onboarded, "onboarding flag survives logout")
}

func TestCheckAuthWithoutTokenIsANoop(t *testing.T) {
	called := false
	api := &fakeAuthAPI{
		profile: func(context.Context, string) (*gateway.User, error) {
			called = true
			return nil, errors.New("unreachable")
		},
	}
	s, _, _ := newTestAuthStore(t, api)
	require.NoError(t, s.CheckAuth(context.Background()))
	assert.False(t, called)
}

func TestLogoutSucceedsLocallyWhenRemoteFails(t *testing.T) {
	api := &fakeAuthAPI{
		signOut: func(context.Context, string) error { return errors.New("network down") },
	}
	s, _, _ := newTestAuthStore(t, api)
	require.NoError(t, s.Login(context.Background(), "a@b.com", "secret123"))
	require.True(t, s.IsAuthenticated())

	s.Logout(context.Background())
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.Token())
}

func TestVerifyPhoneAndSetUsernameKeepsSessionOnStepTwoFailure(t *testing.T) {
	api := &fakeAuthAPI{
		setUsername: func(context.Context, string, string) (*gateway.User, error) {
			return nil, &gateway.APIError{StatusCode: 409, Message: "username already taken"}
		},
	}
	s, bus, _ := newTestAuthStore(t, api)

	err := s.VerifyPhoneAndSetUsername(context.Background(), "+9198765", "123456", "abc")
	require.Error(t, err)

	// The OTP step already verified the phone: the session from step one
	// stays so a retry only repeats the username step.
	assert.Equal(t, "otp-tok", s.Token())
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "username already taken", bus.GlobalError())
}

func TestOnboardedFlagPersistsAcrossRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	kv, err := kvstore.Open(path)
	require.NoError(t, err)
	bus := signal.NewBus(zap.NewNop())
	s := NewAuthStore(&fakeAuthAPI{}, bus, kv, zap.NewNop())
	s.SetOnboarded(true)

	kv2, err := kvstore.Open(path)
	require.NoError(t, err)
	s2 := NewAuthStore(&fakeAuthAPI{}, bus, kv2, zap.NewNop())
	assert.True(t, s2.Onboarded())
}

func TestClassifyAuthError(t *testing.T) {
	cases := []struct {
		err  error
		want AuthErrorClass
	}{
		{&gateway.APIError{StatusCode: 401, Message: "Invalid login credentials"}, AuthErrorInvalidCredentials},
		{&gateway.APIError{StatusCode: 400, Message: "Email not confirmed"}, AuthErrorNotVerified},
		{&gateway.APIError{StatusCode: 429, Message: "whatever"}, AuthErrorRateLimited},
		{&gateway.APIError{StatusCode: 400, Message: "Rate limit exceeded"}, AuthErrorRateLimited},
		{&gateway.APIError{StatusCode: 500, Message: "internal"}, AuthErrorGeneric},
		{errors.New("connection refused"), AuthErrorGeneric},
		{nil, AuthErrorGeneric},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyAuthError(tc.err), "err=%v", tc.err)
	}
}
