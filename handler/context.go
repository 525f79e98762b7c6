package handler

import (
	"context"
	"errors"

	"phishtrack/entity"
)

type contextKey int

const userContextKey contextKey = iota

var ErrUserNotInContext = errors.New("user not found in context")

func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func GetUserFromContext(ctx context.Context) *entity.User {
	if user, ok := ctx.Value(userContextKey).(*entity.User); ok {
		return user
	}
	return nil
}

// ContextInfo carries the authenticated user into request structs that
// embed it.
type ContextInfo struct {
	User *entity.User
}

func (c *ContextInfo) FillFromContext(ctx context.Context) error {
	user := GetUserFromContext(ctx)
	if user == nil {
		return ErrUserNotInContext
	}
	c.User = user

	return nil
}

func (c *ContextInfo) SetUser(u *entity.User) {
	c.User = u
}

func (c *ContextInfo) GetUserID() uint64 {
	return c.User.GetID()
}
