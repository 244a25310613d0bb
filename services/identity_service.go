// services/identity_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// IdentityService is the outbound client for the third-party identity
// provider. The provider's error messages are free text; they are passed
// through untouched so the app can show them (sanitized in production).
type IdentityService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewIdentityService() *IdentityService {
	return &IdentityService{
		baseURL: os.Getenv("IDP_URL"),
		apiKey:  os.Getenv("IDP_API_KEY"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// ProviderUser is the subset of the provider's user record we consume.
type ProviderUser struct {
	ID               string `json:"id"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	EmailConfirmedAt string `json:"email_confirmed_at"`
	PhoneConfirmedAt string `json:"phone_confirmed_at"`
}

// ProviderSession is nil when the provider requires verification first.
type ProviderSession struct {
	AccessToken string `json:"access_token"`
}

type providerAuthResponse struct {
	AccessToken string        `json:"access_token"`
	User        *ProviderUser `json:"user"`
}

type providerError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
}

// ProviderFailure keeps the provider's own message and status so callers can
// surface it.
type ProviderFailure struct {
	StatusCode int
	Message    string
}

func (e *ProviderFailure) Error() string {
	return fmt.Sprintf("identity provider error %d: %s", e.StatusCode, e.Message)
}

func (s *IdentityService) post(ctx context.Context, path, bearer string, in, out any) error {
	return s.call(ctx, http.MethodPost, path, bearer, in, out)
}

func (s *IdentityService) call(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal provider request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider call failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var pe providerError
		_ = json.Unmarshal(raw, &pe)
		msg := pe.Message
		if msg == "" {
			msg = pe.ErrorDescription
		}
		if msg == "" {
			msg = "identity provider request failed"
		}
		return &ProviderFailure{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to parse provider response: %w", err)
		}
	}
	return nil
}

// SignUp registers an email user. The returned session is nil until the
// email is verified.
func (s *IdentityService) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*ProviderUser, *ProviderSession, error) {
	body := map[string]any{"email": email, "password": password, "data": metadata}
	var out providerAuthResponse
	if err := s.post(ctx, "/signup", "", body, &out); err != nil {
		return nil, nil, err
	}
	var sess *ProviderSession
	if out.AccessToken != "" {
		sess = &ProviderSession{AccessToken: out.AccessToken}
	}
	return out.User, sess, nil
}

// SignInWithPassword accepts either handle; the provider keys the grant on
// whichever of email/phone is present.
func (s *IdentityService) SignInWithPassword(ctx context.Context, email, phone, password string) (*ProviderUser, *ProviderSession, error) {
	body := map[string]string{"password": password}
	if email != "" {
		body["email"] = email
	} else {
		body["phone"] = phone
	}
	var out providerAuthResponse
	if err := s.post(ctx, "/token?grant_type=password", "", body, &out); err != nil {
		return nil, nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, nil, &ProviderFailure{StatusCode: 502, Message: "provider returned no session"}
	}
	return out.User, &ProviderSession{AccessToken: out.AccessToken}, nil
}

func (s *IdentityService) SendOtp(ctx context.Context, phone string) error {
	return s.post(ctx, "/otp", "", map[string]string{"phone": phone}, nil)
}

func (s *IdentityService) VerifyOtp(ctx context.Context, phone, code string) (*ProviderUser, *ProviderSession, error) {
	body := map[string]string{"phone": phone, "token": code, "type": "sms"}
	var out providerAuthResponse
	if err := s.post(ctx, "/verify", "", body, &out); err != nil {
		return nil, nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, nil, &ProviderFailure{StatusCode: 502, Message: "provider returned no session"}
	}
	return out.User, &ProviderSession{AccessToken: out.AccessToken}, nil
}

// GetUser reads the full user record for a session. The auth exchanges
// return a user inline but some (OTP verify) send a sparse one.
func (s *IdentityService) GetUser(ctx context.Context, accessToken string) (*ProviderUser, error) {
	var out ProviderUser
	if err := s.call(ctx, http.MethodGet, "/user", accessToken, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *IdentityService) ResendVerification(ctx context.Context, email string) error {
	body := map[string]string{"type": "signup", "email": email}
	return s.post(ctx, "/resend", "", body, nil)
}
