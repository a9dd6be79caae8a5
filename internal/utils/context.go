package utils

import (
	"context"
	"slices"
)

type contextKey string

const (
	UserIDKey          contextKey = "user_id"
	UsernameKey        contextKey = "username"
	UserRoleKey        contextKey = "role"
	UserPermissionsKey contextKey = "permissions"
)

const RoleSuperAdmin = "superadmin"

// SetUserContext sets user info into context (called by middleware)
func SetUserContext(ctx context.Context, id, username, role string, permissions []string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, id)
	ctx = context.WithValue(ctx, UsernameKey, username)
	ctx = context.WithValue(ctx, UserRoleKey, role)
	ctx = context.WithValue(ctx, UserPermissionsKey, permissions)
	return ctx
}

// GetUserIDFromContext retrieves userID safely
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func GetUsernameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(UsernameKey).(string)
	return name
}

func GetUserRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// HasPermission reports whether the authenticated user may use the given
// admin section. Superadmins may use all of them.
func HasPermission(ctx context.Context, permission string) bool {
	if _, ok := GetUserIDFromContext(ctx); !ok {
		return false
	}
	if GetUserRoleFromContext(ctx) == RoleSuperAdmin {
		return true
	}
	perms, _ := ctx.Value(UserPermissionsKey).([]string)
	return slices.Contains(perms, permission)
}
