package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"phishtrack/entity"
	"phishtrack/pkg/goutil"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID          *uint64
	Email       *string
	Username    *string
	Password    *string
	DisplayName *string
	Status      *uint32
	CreateTime  *uint64
	UpdateTime  *uint64
}

func (m *User) TableName() string {
	return "user_tab"
}

func (m *User) GetID() uint64 {
	if m != nil && m.ID != nil {
		return *m.ID
	}
	return 0
}

type UserFilter struct {
	ID    *uint64
	Email *string
}

type UserRepo interface {
	Create(ctx context.Context, user *entity.User) (uint64, error)
	Get(ctx context.Context, f *UserFilter) (*entity.User, error)
	GetByID(ctx context.Context, id uint64) (*entity.User, error)
}

type userRepo struct {
	baseRepo BaseRepo
}

func NewUserRepo(_ context.Context, baseRepo BaseRepo) UserRepo {
	return &userRepo{
		baseRepo: baseRepo,
	}
}

func (r *userRepo) Create(ctx context.Context, user *entity.User) (uint64, error) {
	userModel := ToUserModel(user)

	if err := r.baseRepo.Create(ctx, userModel); err != nil {
		return 0, err
	}
	user.ID = userModel.ID

	return userModel.GetID(), nil
}

func (r *userRepo) Get(ctx context.Context, f *UserFilter) (*entity.User, error) {
	userModel := new(User)
	if err := r.baseRepo.Get(ctx, userModel, &Filter{
		Conditions: []*Condition{
			{
				Field:         "id",
				Value:         f.ID,
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "email",
				Value: f.Email,
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return ToUser(userModel), nil
}

func (r *userRepo) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	return r.Get(ctx, &UserFilter{ID: goutil.Uint64(id)})
}

func ToUserModel(user *entity.User) *User {
	return &User{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		Password:    user.Password,
		DisplayName: user.DisplayName,
		Status:      goutil.Uint32(uint32(user.GetStatus())),
		CreateTime:  user.CreateTime,
		UpdateTime:  user.UpdateTime,
	}
}

func ToUser(m *User) *entity.User {
	var status entity.UserStatus
	if m.Status != nil {
		status = entity.UserStatus(*m.Status)
	}

	return &entity.User{
		ID:          m.ID,
		Email:       m.Email,
		Username:    m.Username,
		Password:    m.Password,
		DisplayName: m.DisplayName,
		Status:      status,
		CreateTime:  m.CreateTime,
		UpdateTime:  m.UpdateTime,
	}
}
