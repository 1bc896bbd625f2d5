// Package testing holds shared test fixtures.
package testing

import (
	"testing"
	"time"

	"github.com/aryanarora07/podlyze/internal/platform/config"
	"github.com/aryanarora07/podlyze/internal/platform/logging"
)

func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Port = 0
	cfg.Server.Auth.JWTSecret = "test-secret"
	cfg.Log.Dir = t.TempDir()
	cfg.Fetch.TempDir = t.TempDir()
	cfg.Fetch.RetryDelay = time.Millisecond
	cfg.Database.DSN = t.TempDir() + "/test.db"
	return cfg
}

func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.New(logging.Config{
		Level:    "DEBUG",
		Dir:      t.TempDir(),
		Filename: "test.log",
	})
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	return logger
}

func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error but got nil")
	}
}
