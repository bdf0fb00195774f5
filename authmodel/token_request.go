package authmodel

// LoginRequest is the body sent to the login endpoint.
// The endpoint accepts requests without a bearer token.
type LoginRequest struct {
	// Username as registered with the travels API.
	// Example: "jane"
	Username string `json:"username"`

	// Password is sent in clear over the configured transport.
	// Security: Never log or expose this value
	Password string `json:"password"`
}

// RefreshRequest is the body sent to the token refresh endpoint.
type RefreshRequest struct {
	// Refresh is the long-lived refresh token held in the session.
	// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."
	// Behavior: The refresh token itself is not rotated by this endpoint
	Refresh string `json:"refresh"`
}
