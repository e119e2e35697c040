package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGetToken_NoneConfigured(t *testing.T) {
	t.Setenv(EnvToken, "")
	ti, err := GetToken(t.TempDir())
	if err != nil || ti != nil {
		t.Fatalf("GetToken = %+v, %v; want nil, nil", ti, err)
	}
}

func TestSetGetDelete(t *testing.T) {
	t.Setenv(EnvToken, "")
	dir := filepath.Join(t.TempDir(), "data")

	if err := SetToken(dir, "  Bearer abc123 "); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, credFileName))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("credentials mode = %o, want 600", perm)
	}

	ti, err := GetToken(dir)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if ti.Token != "abc123" || ti.Source != "file" {
		t.Fatalf("token = %+v, want abc123 from file", ti)
	}
	if !ti.Matches("Bearer abc123") || ti.Matches("abc") {
		t.Fatalf("Matches gave the wrong answer")
	}

	if err := DeleteToken(dir); err != nil {
		t.Fatalf("DeleteToken: %v", err)
	}
	if err := DeleteToken(dir); err != nil {
		t.Fatalf("DeleteToken(missing) = %v, want nil", err)
	}
	if ti, _ := GetToken(dir); ti != nil {
		t.Fatalf("GetToken after delete = %+v, want nil", ti)
	}
}

func TestGetToken_EnvWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvToken, "")
	if err := SetToken(dir, "from-file"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	t.Setenv(EnvToken, "bearer from-env")

	ti, err := GetToken(dir)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if ti.Token != "from-env" || ti.Source != "env" {
		t.Fatalf("token = %+v, want from-env via env", ti)
	}
}

func TestSetToken_Empty(t *testing.T) {
	if err := SetToken(t.TempDir(), "   "); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("SetToken(blank) = %v, want ErrEmptyToken", err)
	}
}

func TestMatches_NilInfo(t *testing.T) {
	var ti *TokenInfo
	if ti.Matches("x") {
		t.Fatalf("nil TokenInfo matched")
	}
}
