package domain

import (
	"context"
	"time"
)

type Service interface {
	SignUp(ctx context.Context, req SignUpRequest) (*User, error)
	SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error)
	SignOut(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Session, error)
	GetUser(ctx context.Context, id int64) (*User, error)
	ChangePassword(ctx context.Context, userID int64, newPassword string) error
}

type SignUpRequest struct {
	Email    string
	Password string
	FullName string
}

type SignInRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type SignInResult struct {
	User      *User
	RawToken  string
	ExpiresAt time.Time
	SessionID int64
}
