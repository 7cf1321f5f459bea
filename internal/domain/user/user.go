package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// The password field is stored and returned verbatim. The upstream contract
// expects /login to hand back the stored record as-is, so it is deliberately
// not masked in JSON.
type User struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Password  string    `json:"password"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
)

type RegisterRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=80"`
	LastName  string `json:"lastName" binding:"required,min=1,max=80"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	Phone     string `json:"phone" binding:"omitempty,max=20"`
	Balance   int64  `json:"balance" binding:"omitempty,min=0"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// builds a User from the incoming registration DTO

func NewFromRegisterRequest(req RegisterRequest) User {
	now := time.Now().UTC()

	return User{
		ID:        uuid.NewString(),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Password:  req.Password,
		Balance:   req.Balance,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
