package entity

import (
	"fmt"
	"strings"
	"time"

	"phishtrack/pkg/goutil"
)

type UserStatus uint32

const (
	UserStatusUnknown UserStatus = iota
	UserStatusNormal
	UserStatusDeleted
)

// User is an administrator of the training platform.
type User struct {
	ID          *uint64    `json:"id,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Username    *string    `json:"username,omitempty"`
	Password    *string    `json:"-"`
	DisplayName *string    `json:"display_name,omitempty"`
	Status      UserStatus `json:"status,omitempty"`
	CreateTime  *uint64    `json:"create_time,omitempty"`
	UpdateTime  *uint64    `json:"update_time,omitempty"`
}

func NewUser(email, password, displayName string) (*User, error) {
	now := uint64(time.Now().Unix())

	username, err := extractUsernameFromEmail(email)
	if err != nil {
		return nil, err
	}

	passwordHash, err := goutil.BCrypt(password)
	if err != nil {
		return nil, err
	}

	return &User{
		Email:       goutil.String(email),
		Username:    goutil.String(username),
		Password:    goutil.String(passwordHash),
		DisplayName: goutil.String(displayName),
		Status:      UserStatusNormal,
		CreateTime:  goutil.Uint64(now),
		UpdateTime:  goutil.Uint64(now),
	}, nil
}

func (e *User) ComparePassword(input string) bool {
	return goutil.CompareBCrypt(e.GetPassword(), input) == nil
}

func (e *User) GetID() uint64 {
	if e != nil && e.ID != nil {
		return *e.ID
	}
	return 0
}

func (e *User) GetEmail() string {
	if e != nil && e.Email != nil {
		return *e.Email
	}
	return ""
}

func (e *User) GetUsername() string {
	if e != nil && e.Username != nil {
		return *e.Username
	}
	return ""
}

func (e *User) GetPassword() string {
	if e != nil && e.Password != nil {
		return *e.Password
	}
	return ""
}

func (e *User) GetDisplayName() string {
	if e != nil && e.DisplayName != nil {
		return *e.DisplayName
	}
	return ""
}

func (e *User) GetStatus() UserStatus {
	if e != nil {
		return e.Status
	}
	return UserStatusUnknown
}

func extractUsernameFromEmail(email string) (string, error) {
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" {
		return "", fmt.Errorf("invalid email: %v", email)
	}
	return parts[0], nil
}
