package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"phishtrack/entity"
	"phishtrack/pkg/errutil"
	"phishtrack/pkg/goutil"
	"phishtrack/pkg/validator"
	"phishtrack/repo"
)

type UserHandler interface {
	CreateUser(ctx context.Context, req *CreateUserRequest, res *CreateUserResponse) error
	LogIn(ctx context.Context, req *LogInRequest, res *LogInResponse) error
	LogOut(ctx context.Context, req *LogOutRequest, _ *LogOutResponse) error
}

type userHandler struct {
	userRepo    repo.UserRepo
	sessionRepo repo.SessionRepo
}

func NewUserHandler(userRepo repo.UserRepo, sessionRepo repo.SessionRepo) UserHandler {
	return &userHandler{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

type CreateUserRequest struct {
	Email       *string `json:"email,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	Password    *string `json:"password,omitempty"`
}

func (r *CreateUserRequest) GetEmail() string {
	if r != nil && r.Email != nil {
		return *r.Email
	}
	return ""
}

func (r *CreateUserRequest) GetDisplayName() string {
	if r != nil && r.DisplayName != nil {
		return *r.DisplayName
	}
	return ""
}

func (r *CreateUserRequest) GetPassword() string {
	if r != nil && r.Password != nil {
		return *r.Password
	}
	return ""
}

func (r *CreateUserRequest) ToUser() (*entity.User, error) {
	return entity.NewUser(r.GetEmail(), r.GetPassword(), r.GetDisplayName())
}

type CreateUserResponse struct {
	User *entity.User `json:"user,omitempty"`
}

var CreateUserValidator = validator.MustForm(map[string]validator.Validator{
	"email":        EmailValidator(false),
	"display_name": DisplayNameValidator(true),
	"password":     PasswordValidator(false),
})

func (h *userHandler) CreateUser(ctx context.Context, req *CreateUserRequest, res *CreateUserResponse) error {
	if err := CreateUserValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	_, err := h.userRepo.Get(ctx, &repo.UserFilter{
		Email: req.Email,
	})
	if err == nil {
		return errutil.ConflictError(errors.New("user already exists"))
	}

	if !errors.Is(err, repo.ErrUserNotFound) {
		log.Ctx(ctx).Error().Msgf("get user err: %v", err)
		return err
	}

	user, err := req.ToUser()
	if err != nil {
		log.Ctx(ctx).Error().Msgf("convert to user err: %v", err)
		return err
	}

	id, err := h.userRepo.Create(ctx, user)
	if err != nil {
		log.Ctx(ctx).Error().Msgf("create user err: %v", err)
		return err
	}

	user.ID = goutil.Uint64(id)
	res.User = user

	return nil
}

type LogInRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (r *LogInRequest) GetEmail() string {
	if r != nil && r.Email != nil {
		return *r.Email
	}
	return ""
}

func (r *LogInRequest) GetPassword() string {
	if r != nil && r.Password != nil {
		return *r.Password
	}
	return ""
}

type LogInResponse struct {
	Session *entity.Session `json:"session,omitempty"`
}

var LogInValidator = validator.MustForm(map[string]validator.Validator{
	"email":    &validator.String{},
	"password": &validator.String{},
})

func (h *userHandler) LogIn(ctx context.Context, req *LogInRequest, res *LogInResponse) error {
	if err := LogInValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	stdErr := errutil.UnauthorizedError(errors.New("incorrect email or password"))

	user, err := h.userRepo.Get(ctx, &repo.UserFilter{
		Email: req.Email,
	})
	if err != nil {
		log.Ctx(ctx).Error().Msgf("get user err: %v", err)
		return stdErr
	}

	if !user.ComparePassword(req.GetPassword()) {
		return stdErr
	}

	sess, err := entity.NewSession(user.GetID())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("new session err: %v", err)
		return err
	}

	if err := h.sessionRepo.Create(ctx, sess); err != nil {
		log.Ctx(ctx).Error().Msgf("create session err: %v", err)
		return err
	}

	res.Session = sess

	return nil
}

type LogOutRequest struct {
	ContextInfo

	Token *string `json:"token,omitempty"`
}

func (r *LogOutRequest) GetToken() string {
	if r != nil && r.Token != nil {
		return *r.Token
	}
	return ""
}

type LogOutResponse struct{}

var LogOutValidator = validator.MustForm(map[string]validator.Validator{
	"ContextInfo": ContextInfoValidator,
	"token":       &validator.String{},
})

func (h *userHandler) LogOut(ctx context.Context, req *LogOutRequest, _ *LogOutResponse) error {
	if err := LogOutValidator.Validate(req); err != nil {
		return errutil.ValidationError(err)
	}

	token, err := goutil.Base64Decode(req.GetToken())
	if err != nil {
		log.Ctx(ctx).Error().Msgf("decode session token err: %v", err)
		return errutil.BadRequestError(err)
	}

	if err := h.sessionRepo.DeleteByTokenHash(ctx, goutil.Sha256(token)); err != nil {
		log.Ctx(ctx).Error().Msgf("delete session err: %v", err)
		return err
	}

	return nil
}
