package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"coopsite/internal/apperr"
	"coopsite/internal/repos"
	"coopsite/internal/services"
)

const strongPw = "Orto-2025!"

func newAuth(t *testing.T, now *time.Time) (*services.AuthService, *repos.UserRepo) {
	users := repos.NewUserRepo(memdb(t))
	svc := services.NewAuthService(users, time.Hour)
	svc.Cost = bcrypt.MinCost
	svc.Now = func() time.Time { return *now }
	return svc, users
}

func TestAuth_LoginBadPasswordLeavesLastLogin(t *testing.T) {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	svc, users := newAuth(t, &now)
	ctx := context.Background()

	u, err := svc.CreateAdmin(ctx, "Staff", strongPw, "staff@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.Username != "staff" {
		t.Fatalf("username should be normalized, got %q", u.Username)
	}

	if _, err := svc.Login(ctx, "staff", "wrong"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	stored, err := users.ByID(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.LastLogin != nil {
		t.Fatalf("last_login changed on failure: %v", *stored.LastLogin)
	}

	if _, err := svc.Login(ctx, "nobody", strongPw); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("unknown user: want ErrBadCreds, got %v", err)
	}

	now = now.Add(90 * time.Minute)
	got, err := svc.Login(ctx, " STAFF ", strongPw)
	if err != nil {
		t.Fatal(err)
	}
	want := repos.Timestamp(now)
	if got.LastLogin == nil || *got.LastLogin != want {
		t.Fatalf("want last_login %s, got %v", want, got.LastLogin)
	}
	stored, _ = users.ByID(ctx, u.ID)
	if stored.LastLogin == nil || *stored.LastLogin != want {
		t.Fatalf("last_login not stored: %v", stored.LastLogin)
	}
}

func TestAuth_SessionsExpireAndFollowActiveFlag(t *testing.T) {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	svc, _ := newAuth(t, &now)
	ctx := context.Background()

	u, err := svc.CreateAdmin(ctx, "staff", strongPw, "")
	if err != nil {
		t.Fatal(err)
	}
	sess, err := svc.StartSession(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if cur, err := svc.CurrentAdmin(ctx, sess.Token); err != nil || cur.ID != u.ID {
		t.Fatalf("session not resolved: %v %v", cur, err)
	}

	if err := svc.SetActive(ctx, "staff", false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CurrentAdmin(ctx, sess.Token); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("inactive admin must lose session, got %v", err)
	}
	if _, err := svc.Login(ctx, "staff", strongPw); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("inactive admin must not log in, got %v", err)
	}
	if err := svc.SetActive(ctx, "staff", true); err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Hour)
	if _, err := svc.CurrentAdmin(ctx, sess.Token); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expired session accepted: %v", err)
	}

	sess, err = svc.StartSession(ctx, u.ID)
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.Logout(ctx, sess.Token); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CurrentAdmin(ctx, sess.Token); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("session survived logout: %v", err)
	}
}

func TestAuth_CreateAdminRules(t *testing.T) {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	svc, _ := newAuth(t, &now)
	ctx := context.Background()

	if _, err := svc.CreateAdmin(ctx, "staff", "password", ""); apperr.FieldOf(err) != "password" {
		t.Fatalf("weak password accepted: %v", err)
	}
	if _, err := svc.CreateAdmin(ctx, "x", strongPw, ""); apperr.FieldOf(err) != "username" {
		t.Fatalf("short username accepted: %v", err)
	}
	if _, err := svc.CreateAdmin(ctx, "staff", strongPw, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateAdmin(ctx, "staff", strongPw, ""); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("duplicate username: want conflict, got %v", err)
	}
}

func TestAuth_SeedAdminOnlyOnce(t *testing.T) {
	now := time.Date(2025, 6, 9, 8, 0, 0, 0, time.UTC)
	svc, _ := newAuth(t, &now)
	ctx := context.Background()

	created, err := svc.SeedAdmin(ctx, strongPw)
	if err != nil || !created {
		t.Fatalf("first seed: created=%v err=%v", created, err)
	}
	created, err = svc.SeedAdmin(ctx, strongPw)
	if err != nil || created {
		t.Fatalf("second seed: created=%v err=%v", created, err)
	}
	if _, err := svc.Login(ctx, "admin", strongPw); err != nil {
		t.Fatalf("seeded admin cannot log in: %v", err)
	}
}
