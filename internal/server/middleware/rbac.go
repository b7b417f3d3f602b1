package middleware

import (
	"context"
	"slices"
)

// Role constants define the supported user roles.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
	RoleViewer = "viewer"
)

// HasRole reports whether the role stored in ctx is one of roles. Handlers
// that share a router with read-only operations use it to gate writes.
func HasRole(ctx context.Context, roles ...string) bool {
	role, ok := RoleFromContext(ctx)
	return ok && role != "" && slices.Contains(roles, role)
}

// CanWrite reports whether the caller may mutate boards.
func CanWrite(ctx context.Context) bool {
	return HasRole(ctx, RoleAdmin, RoleMember)
}
