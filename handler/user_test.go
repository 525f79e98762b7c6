package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
	"phishtrack/repo"
)

type fakeSessionRepo struct {
	byTokenHash map[string]*entity.Session
}

func (f *fakeSessionRepo) Create(_ context.Context, session *entity.Session) error {
	f.byTokenHash[session.GetTokenHash()] = session
	return nil
}

func (f *fakeSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*entity.Session, error) {
	if s, ok := f.byTokenHash[tokenHash]; ok && !s.IsExpired() {
		return s, nil
	}
	return nil, repo.ErrSessionNotFound
}

func (f *fakeSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	delete(f.byTokenHash, tokenHash)
	return nil
}

func newUserFixture() (UserHandler, *fakeUserRepo, *fakeSessionRepo) {
	userRepo := &fakeUserRepo{users: make(map[uint64]*entity.User)}
	sessionRepo := &fakeSessionRepo{byTokenHash: make(map[string]*entity.Session)}
	return NewUserHandler(userRepo, sessionRepo), userRepo, sessionRepo
}

func TestCreateUser(t *testing.T) {
	h, userRepo, _ := newUserFixture()

	req := &CreateUserRequest{
		Email:       goutil.String("sec.ops@example.com"),
		DisplayName: goutil.String("Sec Ops"),
		Password:    goutil.String("correct-horse"),
	}
	res := new(CreateUserResponse)

	require.NoError(t, h.CreateUser(context.Background(), req, res))
	require.NotNil(t, res.User)
	assert.Equal(t, "sec.ops", res.User.GetUsername())
	assert.NotEqual(t, "correct-horse", res.User.GetPassword())
	assert.Len(t, userRepo.users, 1)

	// duplicate email rejected
	err := h.CreateUser(context.Background(), req, new(CreateUserResponse))
	require.Error(t, err)
	assert.Len(t, userRepo.users, 1)
}

func TestCreateUser_InvalidEmail(t *testing.T) {
	h, userRepo, _ := newUserFixture()

	req := &CreateUserRequest{
		Email:    goutil.String("not-an-email"),
		Password: goutil.String("correct-horse"),
	}

	require.Error(t, h.CreateUser(context.Background(), req, new(CreateUserResponse)))
	assert.Empty(t, userRepo.users)
}

func TestLogInLogOut(t *testing.T) {
	h, _, sessionRepo := newUserFixture()

	createReq := &CreateUserRequest{
		Email:    goutil.String("sec.ops@example.com"),
		Password: goutil.String("correct-horse"),
	}
	createRes := new(CreateUserResponse)
	require.NoError(t, h.CreateUser(context.Background(), createReq, createRes))

	// wrong password
	err := h.LogIn(context.Background(), &LogInRequest{
		Email:    goutil.String("sec.ops@example.com"),
		Password: goutil.String("wrong"),
	}, new(LogInResponse))
	require.Error(t, err)

	res := new(LogInResponse)
	require.NoError(t, h.LogIn(context.Background(), &LogInRequest{
		Email:    goutil.String("sec.ops@example.com"),
		Password: goutil.String("correct-horse"),
	}, res))
	require.NotNil(t, res.Session)
	assert.NotEmpty(t, res.Session.GetToken())
	assert.Len(t, sessionRepo.byTokenHash, 1)

	logOutReq := &LogOutRequest{
		Token: res.Session.Token,
	}
	logOutReq.SetUser(createRes.User)
	require.NoError(t, h.LogOut(context.Background(), logOutReq, new(LogOutResponse)))
	assert.Empty(t, sessionRepo.byTokenHash)
}
