// Package testutil provides shared test helpers to reduce boilerplate
// across unit tests.
package testutil

import (
	"strings"
	"testing"

	"github.com/arkhamnet/arkhamctl/internal/ledger"
)

// TempDir creates a temporary directory that is automatically cleaned
// up when the test finishes.
func TempDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// AssertErrorContains asserts that err is non-nil and its message
// contains substr.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error containing %q, got nil", substr)
	}
	if !strings.Contains(err.Error(), substr) {
		t.Fatalf("expected error containing %q, got %q", substr, err.Error())
	}
}

// Addr builds a deterministic address literal from a single byte.
func Addr(b byte) ledger.Address {
	var a ledger.Address
	for i := range a {
		a[i] = b
	}
	return a
}

// MustKeypair generates a keypair, failing the test on error.
func MustKeypair(t *testing.T) *ledger.Keypair {
	t.Helper()
	kp, err := ledger.GenerateKeypair()
	if err != nil {
		t.Fatalf("generating keypair: %v", err)
	}
	return kp
}
