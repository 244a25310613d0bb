// Package store holds the client-side state containers: one per concern
// (auth, meals, notifications), each guarding its state behind a mutex,
// calling the gateway for I/O and publishing on the signal bus after
// successful mutations.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Udayam-Bangalore/Longevix-App-sub001/gateway"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/kvstore"
	"github.com/Udayam-Bangalore/Longevix-App-sub001/signal"
)

// AuthAPI is the slice of the gateway the auth store depends on.
type AuthAPI interface {
	Register(ctx context.Context, req gateway.RegisterRequest) (*gateway.RegisterResponse, error)
	Login(ctx context.Context, req gateway.LoginRequest) (*gateway.AuthSession, error)
	Profile(ctx context.Context, token string) (*gateway.User, error)
	UpdateProfile(ctx context.Context, token string, patch gateway.ProfilePatch) (*gateway.User, error)
	SendPhoneOtp(ctx context.Context, phone string) error
	VerifyPhoneOtp(ctx context.Context, phone, code string) (*gateway.AuthSession, error)
	VerifyPhoneAndSetUsername(ctx context.Context, token, username string) (*gateway.User, error)
	ResendVerificationEmail(ctx context.Context, email string) error
	SignOut(ctx context.Context, token string) error
}

// Identity is the in-memory view of the signed-in user.
type Identity struct {
	ID               string
	Email            string
	Phone            string
	Username         string
	Role             string
	ProfileCompleted bool
}

// authRecord is the durable projection of auth state: only this subset
// survives a restart.
type authRecord struct {
	Token     string `json:"token"`
	Onboarded bool   `json:"onboarded"`
}

const authKey = "auth"

type AuthStore struct {
	mu      sync.Mutex
	api     AuthAPI
	signals *signal.Bus
	kv      *kvstore.Store
	log     *zap.Logger

	user      *Identity
	token     string
	onboarded bool
	loading   bool
	lastError string
}

func NewAuthStore(api AuthAPI, signals *signal.Bus, kv *kvstore.Store, log *zap.Logger) *AuthStore {
	s := &AuthStore{api: api, signals: signals, kv: kv, log: log}
	var rec authRecord
	if ok, err := kv.Get(authKey, &rec); err != nil {
		log.Warn("failed to read persisted auth record", zap.Error(err))
	} else if ok {
		s.token = rec.Token
		s.onboarded = rec.Onboarded
	}
	return s
}

// Token exposes the bearer credential for the other stores' gateway calls.
func (s *AuthStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *AuthStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil && s.token != ""
}

// CurrentUser returns a copy; callers never see torn state.
func (s *AuthStore) CurrentUser() *Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *AuthStore) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *AuthStore) Onboarded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onboarded
}

func (s *AuthStore) SetOnboarded(done bool) {
	s.mu.Lock()
	s.onboarded = done
	s.persistLocked()
	s.mu.Unlock()
}

// Login signs in with an email or phone handle. On failure the previous
// identity is left untouched and the error propagates; nothing auto-retries.
func (s *AuthStore) Login(ctx context.Context, handle, password string) error {
	s.setLoading(true)
	s.signals.IncrementPending()
	defer func() {
		s.signals.DecrementPending()
		s.setLoading(false)
	}()

	req := gateway.LoginRequest{Password: password}
	if strings.Contains(handle, "@") {
		req.Email = handle
	} else {
		req.Phone = handle
	}

	sess, err := s.api.Login(ctx, req)
	if err != nil {
		return s.fail("login failed", err)
	}

	profile, err := s.api.Profile(ctx, sess.Token)
	if err != nil {
		return s.fail("profile fetch after login failed", err)
	}

	s.mu.Lock()
	s.token = sess.Token
	s.user = identityFrom(profile)
	s.lastError = ""
	s.persistLocked()
	s.mu.Unlock()

	s.signals.Publish(signal.EventIdentityChanged)
	return nil
}

// Register never establishes a session: the provider requires verification
// first, so a successful response must not be treated as authenticated.
func (s *AuthStore) Register(ctx context.Context, email, password, username string) (*gateway.RegisterResponse, error) {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	resp, err := s.api.Register(ctx, gateway.RegisterRequest{Email: email, Password: password, Username: username})
	if err != nil {
		return nil, s.fail("registration failed", err)
	}
	return resp, nil
}

// CheckAuth runs once at startup. Any failure (missing token, network
// error, expired session) ends in a full local logout rather than a
// half-valid state.
func (s *AuthStore) CheckAuth(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return nil
	}

	s.setLoading(true)
	defer s.setLoading(false)

	profile, err := s.api.Profile(ctx, token)
	if err != nil {
		s.log.Warn("startup auth check failed, logging out", zap.Error(err))
		s.Logout(ctx)
		return err
	}

	s.mu.Lock()
	s.user = identityFrom(profile)
	s.lastError = ""
	s.mu.Unlock()
	s.signals.Publish(signal.EventIdentityChanged)
	return nil
}

// Logout clears local state unconditionally; a failing remote sign-out is
// logged and otherwise ignored.
func (s *AuthStore) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token != "" {
		if err := s.api.SignOut(ctx, token); err != nil {
			s.log.Warn("remote sign-out failed", zap.Error(err))
		}
	}

	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.persistLocked()
	s.mu.Unlock()
	s.signals.Publish(signal.EventIdentityChanged)
}

func (s *AuthStore) SendPhoneOtp(ctx context.Context, phone string) error {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()
	if err := s.api.SendPhoneOtp(ctx, phone); err != nil {
		return s.fail("sending OTP failed", err)
	}
	return nil
}

func (s *AuthStore) VerifyPhoneOtp(ctx context.Context, phone, code string) error {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	sess, err := s.api.VerifyPhoneOtp(ctx, phone, code)
	if err != nil {
		return s.fail("OTP verification failed", err)
	}

	s.mu.Lock()
	s.token = sess.Token
	if sess.User != nil {
		s.user = identityFrom(sess.User)
	}
	s.lastError = ""
	s.persistLocked()
	s.mu.Unlock()
	s.signals.Publish(signal.EventIdentityChanged)
	return nil
}

// VerifyPhoneAndSetUsername is the second step after a successful OTP
// verification. If it fails the phone stays verified provider-side; the
// session from step one is kept so a retry only repeats this step.
func (s *AuthStore) VerifyPhoneAndSetUsername(ctx context.Context, phone, code, username string) error {
	if err := s.VerifyPhoneOtp(ctx, phone, code); err != nil {
		return err
	}

	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	user, err := s.api.VerifyPhoneAndSetUsername(ctx, s.Token(), username)
	if err != nil {
		return s.fail("setting username failed", err)
	}

	s.mu.Lock()
	s.user = identityFrom(user)
	s.lastError = ""
	s.mu.Unlock()
	return nil
}

func (s *AuthStore) ResendVerificationEmail(ctx context.Context, email string) error {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()
	if err := s.api.ResendVerificationEmail(ctx, email); err != nil {
		return s.fail("resending verification email failed", err)
	}
	return nil
}

// UpdateProfile patches the remote profile and replaces the local identity
// with the server's response. Setting ProfileCompleted happens only here.
func (s *AuthStore) UpdateProfile(ctx context.Context, patch gateway.ProfilePatch) error {
	s.signals.IncrementPending()
	defer s.signals.DecrementPending()

	user, err := s.api.UpdateProfile(ctx, s.Token(), patch)
	if err != nil {
		return s.fail("profile update failed", err)
	}

	s.mu.Lock()
	s.user = identityFrom(user)
	s.lastError = ""
	s.mu.Unlock()
	s.signals.Publish(signal.EventIdentityChanged)
	return nil
}

// fail records the error locally, forwards it to the global error slot and
// returns it so UI callers can react too.
func (s *AuthStore) fail(msg string, err error) error {
	s.mu.Lock()
	s.lastError = userMessage(err)
	s.mu.Unlock()
	s.signals.SetGlobalError(userMessage(err))
	s.log.Warn(msg, zap.Error(err))
	return err
}

func (s *AuthStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// persistLocked writes the durable projection; caller holds the lock.
func (s *AuthStore) persistLocked() {
	rec := authRecord{Token: s.token, Onboarded: s.onboarded}
	if err := s.kv.Set(authKey, rec); err != nil {
		s.log.Error("failed to persist auth record", zap.Error(err))
	}
}

func identityFrom(u *gateway.User) *Identity {
	return &Identity{
		ID:               u.ID,
		Email:            u.Email,
		Phone:            u.Phone,
		Username:         u.Username,
		Role:             u.Role,
		ProfileCompleted: u.ProfileCompleted,
	}
}

// userMessage extracts the server-supplied message when the error is a typed
// gateway failure, else falls back to a generic string.
func userMessage(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Something went wrong. Please try again."
}
