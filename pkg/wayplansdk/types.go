// Package wayplansdk provides the wire types for the WayPlan HTTP API and a
// small typed client for talking to it. The server's handlers marshal these
// same structs, so the two sides can never drift apart.
package wayplansdk

import "time"

// RegisterRequest creates a new account.
type RegisterRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest exchanges credentials for a token pair.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest rotates a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revokes a refresh token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ForgotPasswordRequest starts the password-reset flow.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest completes the password-reset flow.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// ChangePasswordRequest swaps the password for an authenticated account.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// MessageResponse is the body of endpoints that succeed with only a
// human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileResponse is the public projection of an account.
type ProfileResponse struct {
	ID        string    `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse carries a freshly issued access+refresh pair. ExpiresIn is
// the access token lifetime in seconds.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResponse is a token pair plus the profile of the account it belongs to.
type LoginResponse struct {
	TokenResponse
	Profile ProfileResponse `json:"profile"`
}

// TripRequest creates a trip. Dates are calendar days in "2006-01-02" form.
type TripRequest struct {
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartsOn    string `json:"starts_on"`
	EndsOn      string `json:"ends_on"`
}

// TripResponse is a stored trip.
type TripResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Destination string `json:"destination"`
	StartsOn    string `json:"starts_on"`
	EndsOn      string `json:"ends_on"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// TripListResponse wraps a trip listing.
type TripListResponse struct {
	Trips []TripResponse `json:"trips"`
}

// HealthResponse is returned by the livez and readyz probes.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
