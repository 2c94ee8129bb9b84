package utils

import (
	"context"

	"github.com/Darkprince404-ops/Police-force-tax-control-system-backend/appctx"
)

var (
	ContextKeyUserId        = appctx.ContextKeyUserId
	ContextKeyUsername      = appctx.ContextKeyUsername
	ContextKeyUserName      = appctx.ContextKeyUserName
	ContextKeyUserRole      = appctx.ContextKeyUserRole
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetUserIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyUserId)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetUserNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserName)
}

func GetUserRoleFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUserRole)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetUserIdInContext(ctx context.Context, userId int) context.Context {
	return appctx.Set(ctx, ContextKeyUserId, userId)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetUserNameInContext(ctx context.Context, userName string) context.Context {
	return appctx.Set(ctx, ContextKeyUserName, userName)
}

func SetUserRoleInContext(ctx context.Context, role string) context.Context {
	return appctx.Set(ctx, ContextKeyUserRole, role)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

// DetachedActorContext copies actor identity onto a fresh background context.
// Used when work outlives the originating request (import batch loop).
func DetachedActorContext(ctx context.Context) context.Context {
	detached := context.Background()
	if id, ok := GetUserIdFromContext(ctx); ok {
		detached = SetUserIdInContext(detached, id)
	}
	if username, ok := GetUsernameFromContext(ctx); ok {
		detached = SetUsernameInContext(detached, username)
	}
	if name, ok := GetUserNameFromContext(ctx); ok {
		detached = SetUserNameInContext(detached, name)
	}
	if role, ok := GetUserRoleFromContext(ctx); ok {
		detached = SetUserRoleInContext(detached, role)
	}
	if correlationId, ok := GetCorrelationIdFromContext(ctx); ok {
		detached = SetCorrelationIdInContext(detached, correlationId)
	}
	return detached
}
