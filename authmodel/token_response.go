package authmodel

import "encoding/json"

// LoginResponse is returned by the login endpoint on success.
type LoginResponse struct {
	// Access is the short-lived JWT attached as "Authorization: Bearer <access>".
	// Lifespan: Short-lived (minutes)
	Access string `json:"access"`

	// Refresh is exchanged at the refresh endpoint for a new access token.
	// Lifespan: Long-lived (days)
	Refresh string `json:"refresh"`

	// IsAdmin marks administrator accounts. Absent on older API versions,
	// in which case the access token claims are consulted instead.
	IsAdmin *bool `json:"is_admin,omitempty"`

	// UserID is the numeric account id. Kept raw because the API has sent it
	// both as a number and as a string.
	UserID json.RawMessage `json:"user_id,omitempty"`
}

// RefreshResponse is returned by the refresh endpoint on success.
type RefreshResponse struct {
	Access string `json:"access"`

	// Refresh is only present when the API rotates refresh tokens.
	Refresh string `json:"refresh,omitempty"`
}

// MessageResponse is the generic {"message": "..."} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
