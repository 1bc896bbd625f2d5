package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/aryanarora07/podlyze/internal/platform/storage"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "auth_test.db"))
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	return NewService(storage.NewUserRepository(db), "test-secret", time.Hour, nil)
}

func TestService_SignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	account, token, err := svc.Signup(ctx, "Ada", "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if account.Email != "ada@example.com" || account.ID == 0 {
		t.Errorf("Signup() account = %+v", account)
	}
	if token == "" {
		t.Fatal("Signup() returned empty token")
	}

	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken() error = %v", err)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("claims.Email = %q", claims.Email)
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 50*time.Minute || ttl > time.Hour {
		t.Errorf("token ttl = %v, want about an hour", ttl)
	}

	got, _, err := svc.Login(ctx, "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("Login() account = %+v, want %+v", got, account)
	}
}

func TestService_SignupDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, _, err := svc.Signup(ctx, "Ada", "ada@example.com", "pw"); err != nil {
		t.Fatalf("first Signup() error = %v", err)
	}
	_, _, err := svc.Signup(ctx, "Imposter", "ada@example.com", "pw2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("Signup() error = %v, want ErrEmailTaken", err)
	}
}

func TestService_LoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.Signup(ctx, "Ada", "ada@example.com", "correct")

	if _, _, err := svc.Login(ctx, "ada@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(bad password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_VerifyTokenRejectsForeignSecret(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	_, token, err := svc.Signup(ctx, "Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}

	other := NewService(nil, "different-secret", time.Hour, nil)
	if _, err := other.VerifyToken(token); err == nil {
		t.Error("VerifyToken() with wrong secret should fail")
	}
}
