package repo

import (
	"context"
	"errors"
	"time"

	"phishtrack/entity"
)

var ErrSessionNotFound = errors.New("session not found")

const sessionCachePrefix = "session"

// SessionRepo stores sessions in the in-process cache, keyed by token
// hash. Sessions do not survive a restart; admins simply log in again.
type SessionRepo interface {
	Create(ctx context.Context, session *entity.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
}

type sessionRepo struct {
	baseCache BaseCache
}

func NewSessionRepo(_ context.Context, baseCache BaseCache) SessionRepo {
	return &sessionRepo{
		baseCache: baseCache,
	}
}

func (r *sessionRepo) Create(ctx context.Context, session *entity.Session) error {
	expiry := time.Until(time.Unix(int64(session.GetExpireTime()), 0))
	if expiry <= 0 {
		return errors.New("session already expired")
	}

	r.baseCache.SetWithExpiry(ctx, sessionCachePrefix, session.GetTokenHash(), session, expiry)
	return nil
}

func (r *sessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	v, ok := r.baseCache.Get(ctx, sessionCachePrefix, tokenHash)
	if !ok {
		return nil, ErrSessionNotFound
	}

	session, ok := v.(*entity.Session)
	if !ok || session.IsExpired() {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

func (r *sessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	r.baseCache.Del(ctx, sessionCachePrefix, tokenHash)
	return nil
}
