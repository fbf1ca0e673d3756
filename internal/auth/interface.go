package auth

import "formzen/internal/domain/models"

// JWTVerifier verifies sessions issued by the external identity provider.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}

// AnonymousSessions issues and verifies our own anonymous session tokens
type AnonymousSessions interface {
	IssueAnonymous(userID string) (string, error)
	VerifyAnonymous(tokenString string) (*models.AnonymousClaims, error)
}
