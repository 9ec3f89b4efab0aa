package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/vendly/vendly/internal/auth/domain"
	"github.com/vendly/vendly/internal/auth/repository"
	"github.com/vendly/vendly/pkg/db"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) authdomain.Service {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	repo, sessionRepo := repository.New(dbConn)
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	return New(zap.NewNop(), repo, sessionRepo, node)
}

func TestSignInWrongPassword(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "alice@example.com",
		Password: "correct-password",
	})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user")
	}

	_, err = svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "alice@example.com",
		Password: "wrong-password",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "bob@example.com",
		Password: "strong-password",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "Bob@Example.com",
		Password: "another-password",
	})
	if err != authdomain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestSignUpRejectsShortPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "carol@example.com",
		Password: "short",
	})
	if err != authdomain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRoundTrip(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	result, err := svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "dave@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}
	if result.RawToken == "" {
		t.Fatal("expected raw session token")
	}

	session, err := svc.Authenticate(context.Background(), result.RawToken)
	if err != nil {
		t.Fatalf("failed to authenticate: %v", err)
	}
	if session.UserID != result.User.ID {
		t.Fatalf("expected session for user %d, got %d", result.User.ID, session.UserID)
	}
}

func TestSignOutRevokesSession(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.SignUp(context.Background(), authdomain.SignUpRequest{
		Email:    "erin@example.com",
		Password: "strong-password",
	}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	result, err := svc.SignIn(context.Background(), authdomain.SignInRequest{
		Email:    "erin@example.com",
		Password: "strong-password",
	})
	if err != nil {
		t.Fatalf("failed to sign in: %v", err)
	}

	if err := svc.SignOut(context.Background(), result.RawToken); err != nil {
		t.Fatalf("failed to sign out: %v", err)
	}

	_, err = svc.Authenticate(context.Background(), result.RawToken)
	if err != authdomain.ErrSessionRevoked {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}
