package shareable

import (
	"strings"
	"testing"
)

const testKey = "8e3a1f0b6c5d4e2f9a8b7c6d5e4f3a2b1c0d9e8f7a6b5c4d3e2f1a0b9c8d7e6f"

func newTestEncrypter(t *testing.T) *Encrypter {
	t.Helper()
	e, err := New(testKey)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return e
}

func TestEncryptIDDeterministic(t *testing.T) {
	e := newTestEncrypter(t)
	first := e.EncryptID("plaid-acct-123")
	second := e.EncryptID("plaid-acct-123")
	if first != second {
		t.Errorf("same account id produced different shareable ids: %s vs %s", first, second)
	}
}

func TestEncryptIDDistinctInputs(t *testing.T) {
	e := newTestEncrypter(t)
	if e.EncryptID("acct-a") == e.EncryptID("acct-b") {
		t.Error("different account ids produced the same shareable id")
	}
}

func TestDecryptIDRoundTrip(t *testing.T) {
	e := newTestEncrypter(t)
	sealed := e.EncryptID("plaid-acct-123")
	opened, err := e.DecryptID(sealed)
	if err != nil {
		t.Fatalf("DecryptID failed: %v", err)
	}
	if opened != "plaid-acct-123" {
		t.Errorf("round trip returned %q", opened)
	}
}

func TestDecryptIDWrongKey(t *testing.T) {
	e := newTestEncrypter(t)
	other, err := New(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	sealed := e.EncryptID("plaid-acct-123")
	if _, err := other.DecryptID(sealed); err == nil {
		t.Error("expected DecryptID under a different key to fail")
	}
}

func TestNewRejectsBadKeys(t *testing.T) {
	if _, err := New("not-hex"); err == nil {
		t.Error("expected error for non-hex key")
	}
	if _, err := New("abcd"); err == nil {
		t.Error("expected error for short key")
	}
}
