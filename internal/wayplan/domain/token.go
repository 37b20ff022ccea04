package domain

import "time"

// TokenPair is what the login and refresh endpoints return: the short-lived
// access token (JWT) and the refresh token exchangeable for the next pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	TokenType    string        // typically "Bearer"
	ExpiresIn    time.Duration // access token lifetime
}

// Principal is the authenticated identity derived from a verified access
// token, valid for one request. It is passed explicitly wherever identity
// matters - in particular into store session acquisition, where it is bound
// into engine-level session state for row-level security.
type Principal struct {
	AccountID string
	Roles     []string
}
