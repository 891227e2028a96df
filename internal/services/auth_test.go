package services

import (
	"context"
	"testing"
	"time"

	"github.com/edukita/edukita-backend/internal/requestdata"
	"github.com/edukita/edukita-backend/internal/types"
)

func newAuthFixture(t *testing.T) (AuthService, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo()
	svc := NewAuthService(testDB(t), testLogger(t), users, "test-secret", time.Hour)
	return svc, users
}

func TestRegisterNormalizesAndHashes(t *testing.T) {
	svc, users := newAuthFixture(t)

	user := &types.User{
		Username: "  NewUser ",
		Email:    " New@Example.COM ",
		Password: "secret123",
	}
	if err := svc.RegisterUser(context.Background(), user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	stored := users.users[user.ID]
	if stored == nil {
		t.Fatalf("user not persisted")
	}
	if stored.Username != "newuser" || stored.Email != "new@example.com" {
		t.Fatalf("fields not normalized: %q %q", stored.Username, stored.Email)
	}
	if stored.Password == "secret123" || stored.Password == "" {
		t.Fatalf("password not hashed")
	}
	if stored.Role != types.RoleUser {
		t.Fatalf("role default: want=%q got=%q", types.RoleUser, stored.Role)
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if err := svc.RegisterUser(context.Background(), &types.User{Username: "x", Email: "x@example.com"}); err == nil {
		t.Fatalf("want error for missing password")
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	first := &types.User{Username: "dup", Email: "dup@example.com", Password: "secret123"}
	if err := svc.RegisterUser(ctx, first); err != nil {
		t.Fatalf("RegisterUser first: %v", err)
	}
	second := &types.User{Username: "dup", Email: "other@example.com", Password: "secret123"}
	if err := svc.RegisterUser(ctx, second); err == nil {
		t.Fatalf("want error for duplicate username")
	}
}

func TestLoginAndTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Username: "login", Email: "login@example.com", Password: "secret123"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}

	token, err := svc.LoginUser(ctx, "Login@Example.com", "secret123")
	if err != nil {
		t.Fatalf("LoginUser: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}

	withRD, err := svc.SetContextFromToken(ctx, token)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := requestdata.GetRequestData(withRD)
	if rd == nil {
		t.Fatalf("request data missing from context")
	}
	if rd.UserID != user.ID {
		t.Fatalf("user id: want=%s got=%s", user.ID, rd.UserID)
	}
	if rd.Role != types.RoleUser {
		t.Fatalf("role: want=%q got=%q", types.RoleUser, rd.Role)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	user := &types.User{Username: "login2", Email: "login2@example.com", Password: "secret123"}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if _, err := svc.LoginUser(ctx, "login2@example.com", "wrong"); err == nil {
		t.Fatalf("want error for wrong password")
	}
	if _, err := svc.LoginUser(ctx, "nobody@example.com", "secret123"); err == nil {
		t.Fatalf("want error for unknown email")
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, err := svc.SetContextFromToken(context.Background(), "not-a-token"); err == nil {
		t.Fatalf("want error for malformed token")
	}
	if _, err := svc.SetContextFromToken(context.Background(), ""); err == nil {
		t.Fatalf("want error for empty token")
	}
}
