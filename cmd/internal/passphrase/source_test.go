package passphrase

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSourcePrefersEnvironment(t *testing.T) {
	t.Setenv("LOYALTY_TEST_TOKEN", "  token-value \n")
	src := NewSource("LOYALTY_TEST_TOKEN", "rpc token")
	got, err := src.Get()
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "token-value" {
		t.Fatalf("unexpected value %q", got)
	}

	t.Setenv("LOYALTY_TEST_TOKEN", "rotated")
	again, err := src.Get()
	if err != nil || again != "token-value" {
		t.Fatalf("expected cached value, got %q (%v)", again, err)
	}
}

func TestSourceRejectsEmptyEnvironment(t *testing.T) {
	t.Setenv("LOYALTY_TEST_TOKEN", "   ")
	if _, err := NewSource("LOYALTY_TEST_TOKEN", "rpc token").Get(); err == nil {
		t.Fatalf("expected error for blank value")
	}
}

func TestSourceRequiresTerminal(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "stdin"))
	if err != nil {
		t.Fatalf("create stdin: %v", err)
	}
	defer f.Close()

	src := NewSource("LOYALTY_TEST_TOKEN_UNSET", "rpc token")
	src.stdin = f
	_, err = src.Get()
	if err == nil || !strings.Contains(err.Error(), "LOYALTY_TEST_TOKEN_UNSET") {
		t.Fatalf("expected hint naming the variable, got %v", err)
	}
}
