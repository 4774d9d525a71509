package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims identifies the catalog user whose favorites a request touches.
type JWTClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
