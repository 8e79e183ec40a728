package auth

import "cartograph/internal/domain/models"

// JWTVerifier validates bearer tokens for the explorer API
type JWTVerifier interface {
	// VerifyToken validates a JWT and returns its claims.
	// Returns domain.ErrUnauthorized if the token is invalid, expired, or has a bad signature.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases resources held by the verifier
	Close() error
}
