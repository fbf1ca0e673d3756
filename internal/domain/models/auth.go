package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims represents the JWT claims issued by the identity provider
// for named sessions. Name/picture come from the provider profile.
type SessionClaims struct {
	jwt.RegisteredClaims
	Email        string                 `json:"email"`
	Name         string                 `json:"name"`
	Picture      string                 `json:"picture"`
	Role         string                 `json:"role"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	IsAnonymous  bool                   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}

// DisplayName picks the best available name: explicit claim, then
// provider metadata (full_name, name, user_name), then the email.
func (c *SessionClaims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	for _, key := range []string{"full_name", "name", "user_name"} {
		if v, ok := c.UserMetadata[key].(string); ok && v != "" {
			return v
		}
	}
	return c.Email
}

// AnonymousClaims are the claims of our own anonymous session token.
type AnonymousClaims struct {
	jwt.RegisteredClaims
	IsAnonymous bool `json:"is_anonymous"`
}
