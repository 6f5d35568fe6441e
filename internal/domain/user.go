// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 64
)

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

type UserID string

type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// ParseRole maps any unknown role string to student.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleStudent
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User is the identity currently bound to one connection. Many users
// may share the same ID across reconnects; the connection id stays
// unique per transport session.
type User struct {
	ID   UserID `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// NewGuest is the identity a connection carries before it announces
// itself.
func NewGuest() User {
	return User{ID: UserID(uuid.NewString()), Name: "guest", Role: RoleStudent}
}

func (u *User) SetName(name string) error {
	if len(name) == 0 {
		return ErrUsernameEmpty
	}
	if len(name) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	u.Name = name
	return nil
}

// Refine applies announce/join-time fields in place. Later values win;
// empty fields leave the current value untouched.
func (u *User) Refine(id, name string, role *Role) {
	if id != "" {
		if len(id) > MaxUserIDLen {
			id = id[:MaxUserIDLen]
		}
		u.ID = UserID(id)
	}
	if name != "" {
		if len(name) > MaxUsernameLen {
			name = name[:MaxUsernameLen]
		}
		u.Name = name
	}
	if role != nil {
		u.Role = *role
	}
}
