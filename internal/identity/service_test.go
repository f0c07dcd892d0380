package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/moneyfer/moneyfer/internal/apperr"
	"github.com/moneyfer/moneyfer/internal/latency"
	"github.com/moneyfer/moneyfer/internal/logging"
	"github.com/moneyfer/moneyfer/internal/store"
)

func newTestService(t *testing.T) (*Service, *StoreRepository) {
	t.Helper()
	repo := NewStoreRepository(store.New(store.NewMemoryBackend(), logging.Discard()))
	svc := NewService(repo, latency.None(), DefaultSessionTTL)
	svc.hashCost = bcrypt.MinCost
	return svc, repo
}

func TestSignupThenLoginReturnsSameUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Signup(ctx, Registration{Email: "a@x.com", Password: "secret1", Name: "Ada"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user.KYCVerified {
		t.Fatalf("expected new user to be unverified")
	}

	again, err := svc.Login(ctx, "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if again.ID != user.ID || again.Email != user.Email || again.Name != "Ada" {
		t.Fatalf("expected same user, got %+v vs %+v", again, user)
	}
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.Signup(ctx, Registration{Email: "a@x.com", Password: "secret1", Name: "Ada"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	_, err = svc.Signup(ctx, Registration{Email: "a@x.com", Password: "another1", Name: "Eve"})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	stored, ok := repo.User(ctx)
	if !ok || stored.ID != first.ID || stored.Name != "Ada" {
		t.Fatalf("expected original record untouched, got %+v", stored)
	}
}

func TestLoginValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		email, password, msg string
	}{
		{"", "secret1", "email and password are required"},
		{"a@x.com", "", "email and password are required"},
		{"a@x.com", "123", "password must be at least 6 characters"},
	}
	for _, tc := range cases {
		_, err := svc.Login(ctx, tc.email, tc.password)
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", tc, err)
		}
		if apperr.Message(err) != tc.msg {
			t.Fatalf("expected %q, got %q", tc.msg, apperr.Message(err))
		}
	}
}

func TestSignupRequiresAllFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Signup(context.Background(), Registration{Email: "a@x.com", Password: "secret1"})
	if !errors.Is(err, apperr.ErrValidation) || apperr.Message(err) != "all fields are required" {
		t.Fatalf("expected all fields required, got %v", err)
	}
}

func TestLoginCreatesUserFromEmail(t *testing.T) {
	svc, _ := newTestService(t)
	user, err := svc.Login(context.Background(), "bob@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Name != "bob" {
		t.Fatalf("expected name from email local part, got %q", user.Name)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, Registration{Email: "a@x.com", Password: "secret1", Name: "Ada"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	if _, err := svc.Login(ctx, "a@x.com", "wrong-password"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCurrentUserExpiresSession(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user, err := svc.Signup(ctx, Registration{Email: "a@x.com", Password: "secret1", Name: "Ada"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	current, ok, err := svc.CurrentUser(ctx)
	if err != nil || !ok || current.ID != user.ID {
		t.Fatalf("expected active user, got %+v ok=%v err=%v", current, ok, err)
	}

	now = now.Add(DefaultSessionTTL + time.Second)
	if _, ok, err := svc.CurrentUser(ctx); err != nil || ok {
		t.Fatalf("expected no user after expiry, ok=%v err=%v", ok, err)
	}
	if _, ok := repo.Session(ctx); ok {
		t.Fatalf("expected expired session to be purged")
	}
}

func TestLogoutKeepsUserRecord(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	user, err := svc.Signup(ctx, Registration{Email: "a@x.com", Password: "secret1", Name: "Ada"})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := svc.CurrentUser(ctx); ok {
		t.Fatalf("expected no current user after logout")
	}
	if stored, ok := repo.User(ctx); !ok || stored.ID != user.ID {
		t.Fatalf("expected user record to survive logout")
	}

	again, err := svc.Login(ctx, "a@x.com", "secret1")
	if err != nil || again.ID != user.ID {
		t.Fatalf("expected re-login to recover user, got %+v err=%v", again, err)
	}
}

func TestUpdateKYCStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.UpdateKYCStatus(ctx, true); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found without user, got %v", err)
	}

	if _, err := svc.Signup(ctx, Registration{Email: "a@x.com", Password: "secret1", Name: "Ada"}); err != nil {
		t.Fatalf("signup: %v", err)
	}
	user, err := svc.UpdateKYCStatus(ctx, true)
	if err != nil {
		t.Fatalf("update kyc: %v", err)
	}
	if !user.KYCVerified {
		t.Fatalf("expected verified user")
	}
	current, _, _ := svc.CurrentUser(ctx)
	if !current.KYCVerified {
		t.Fatalf("expected verification to persist")
	}
}
