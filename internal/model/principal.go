package model

import "github.com/google/uuid"

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Principal is the authenticated actor extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) IsZero() bool {
	return p.UserID == uuid.Nil
}
