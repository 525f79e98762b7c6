package middleware

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"phishtrack/handler"
	"phishtrack/pkg/errutil"
	"phishtrack/pkg/goutil"
	"phishtrack/pkg/httputil"
	"phishtrack/pkg/router"
	"phishtrack/repo"
)

const sessionHeader = "X-Session-ID"

var ErrInvalidSession = errors.New("invalid or expired session")

type auth struct {
	sessionRepo repo.SessionRepo
	userRepo    repo.UserRepo
}

// NewAuth builds a route middleware that resolves the session token in
// the X-Session-ID header into a user and rejects the request otherwise.
func NewAuth(sessionRepo repo.SessionRepo, userRepo repo.UserRepo) router.Middleware {
	return &auth{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
	}
}

func (m *auth) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := goutil.Base64Decode(r.Header.Get(sessionHeader))
		if err != nil {
			log.Ctx(ctx).Error().Msgf("decode session token err: %v", err)
			httputil.ReturnServerResponse(w, nil, errutil.UnauthorizedError(ErrInvalidSession))
			return
		}

		session, err := m.sessionRepo.GetByTokenHash(ctx, goutil.Sha256(token))
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get session err: %v", err)
			httputil.ReturnServerResponse(w, nil, errutil.UnauthorizedError(ErrInvalidSession))
			return
		}

		user, err := m.userRepo.GetByID(ctx, session.GetUserID())
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get session user err: %v", err)
			httputil.ReturnServerResponse(w, nil, errutil.UnauthorizedError(ErrInvalidSession))
			return
		}

		next.ServeHTTP(w, r.WithContext(handler.WithUser(ctx, user)))
	})
}
