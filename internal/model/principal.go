package model

import "github.com/google/uuid"

const (
	RoleAdmin   = "ADMIN"
	RolePlanner = "PLANNER"
	RoleViewer  = "VIEWER"
)

type Principal struct {
	UserID           uuid.UUID
	BusinessEntityID *uuid.UUID
	Role             string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) CanWrite() bool {
	return p.Role == RoleAdmin || p.Role == RolePlanner
}

// CanAccess reports whether the principal may see records owned by businessID.
func (p Principal) CanAccess(businessID uuid.UUID) bool {
	if p.IsAdmin() {
		return true
	}
	return p.BusinessEntityID != nil && *p.BusinessEntityID == businessID
}
