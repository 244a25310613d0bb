package gateway

import (
	"context"
	"net/http"
)

// User is the backend's profile shape. Exactly one of Email/Phone is the
// primary login handle.
type User struct {
	ID               string  `json:"id"`
	Email            string  `json:"email,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Username         string  `json:"username,omitempty"`
	Role             string  `json:"role"`
	ProfileCompleted bool    `json:"profileCompleted"`
	Age              int     `json:"age,omitempty"`
	Sex              string  `json:"sex,omitempty"`
	HeightCm         float64 `json:"heightCm,omitempty"`
	WeightKg         float64 `json:"weightKg,omitempty"`
	ActivityLevel    string  `json:"activityLevel,omitempty"`
	DietType         string  `json:"dietType,omitempty"`
	HealthGoal       string  `json:"healthGoal,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
}

// RegisterResponse never carries a session: the identity provider requires
// verification before the first login.
type RegisterResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password"`
}

type AuthSession struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// ProfilePatch carries only the fields being changed. ProfileCompleted is a
// pointer so "leave it alone" and "set it false" stay distinguishable.
type ProfilePatch struct {
	Username         *string  `json:"username,omitempty"`
	Age              *int     `json:"age,omitempty"`
	Sex              *string  `json:"sex,omitempty"`
	HeightCm         *float64 `json:"heightCm,omitempty"`
	WeightKg         *float64 `json:"weightKg,omitempty"`
	ActivityLevel    *string  `json:"activityLevel,omitempty"`
	DietType         *string  `json:"dietType,omitempty"`
	HealthGoal       *string  `json:"healthGoal,omitempty"`
	ProfileCompleted *bool    `json:"profileCompleted,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthSession, error) {
	var out AuthSession
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, "/auth/profile", token, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendPhoneOtp(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return c.do(ctx, http.MethodPost, "/auth/send-phone-otp", "", body, nil)
}

func (c *Client) VerifyPhoneOtp(ctx context.Context, phone, code string) (*AuthSession, error) {
	body := map[string]string{"phone": phone, "code": code}
	var out AuthSession
	if err := c.do(ctx, http.MethodPost, "/auth/verify-phone-otp", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterPhone(ctx context.Context, phone string) error {
	body := map[string]string{"phone": phone}
	return c.do(ctx, http.MethodPost, "/auth/register-phone", "", body, nil)
}

func (c *Client) VerifyPhoneAndSetUsername(ctx context.Context, token, username string) (*User, error) {
	body := map[string]string{"username": username}
	var out User
	if err := c.do(ctx, http.MethodPost, "/auth/verify-phone-and-set-username", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ResendVerificationEmail(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/auth/resend-verification-email", "", body, nil)
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}
