package models

import "github.com/golang-jwt/jwt/v5"

// OperatorRole represents the back office roles for the RBAC system.
type OperatorRole string

const (
	RoleAdmin     OperatorRole = "ADMIN"
	RoleReception OperatorRole = "RECEPTION"
	RoleCoach     OperatorRole = "COACH"
)

// Valid reports whether the role is known.
func (r OperatorRole) Valid() bool {
	return r == RoleAdmin || r == RoleReception || r == RoleCoach
}

// JWTClaims represents the JWT payload for operator access tokens.
type JWTClaims struct {
	UserID string       `json:"user_id"`
	Role   OperatorRole `json:"role"`
	Name   string       `json:"name"`
	jwt.RegisteredClaims
}
