package wayplansdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a typed HTTP client for the WayPlan API. The zero value is not
// usable; construct one with NewClient.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, e.g. to inject a
// test transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpc = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (ProfileResponse, error) {
	var out ProfileResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/register", "", req, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var out LoginResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", "", req, &out)
	return out, err
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/refresh", "", RefreshRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, refreshToken string) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/logout", "", LogoutRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/forgot-password", "", ForgotPasswordRequest{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/v1/auth/reset-password", "", ResetPasswordRequest{Token: token, NewPassword: newPassword}, nil)
}

func (c *Client) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	req := ChangePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/v1/auth/change-password", accessToken, req, nil)
}

func (c *Client) CreateTrip(ctx context.Context, accessToken string, req TripRequest) (TripResponse, error) {
	var out TripResponse
	err := c.do(ctx, http.MethodPost, "/v1/trips", accessToken, req, &out)
	return out, err
}

func (c *Client) ListTrips(ctx context.Context, accessToken string) ([]TripResponse, error) {
	var out TripListResponse
	err := c.do(ctx, http.MethodGet, "/v1/trips", accessToken, nil, &out)
	return out.Trips, err
}

func (c *Client) GetTrip(ctx context.Context, accessToken, id string) (TripResponse, error) {
	var out TripResponse
	err := c.do(ctx, http.MethodGet, "/v1/trips/"+id, accessToken, nil, &out)
	return out, err
}

func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/livez", "", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path, accessToken string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr := json.NewDecoder(resp.Body).Decode(apiErr); decodeErr != nil || apiErr.Code == "" {
			apiErr.Code = "unexpected_response"
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
