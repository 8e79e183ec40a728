package models

import "github.com/golang-jwt/jwt/v5"

// SupabaseClaims represents the JWT claims issued by Supabase Auth.
// See: https://supabase.com/docs/guides/auth/jwts
type SupabaseClaims struct {
	jwt.RegisteredClaims
	Email       string `json:"email"`
	Role        string `json:"role"` // "authenticated" or "anon"
	SessionID   string `json:"session_id"`
	IsAnonymous bool   `json:"is_anonymous"`
}

// GetUserID returns the user ID from the subject claim
func (c *SupabaseClaims) GetUserID() string {
	return c.Subject
}
