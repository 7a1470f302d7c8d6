// Package shareable derives external-safe references for aggregator account
// ids. The derivation is deterministic keyed encryption: the same account id
// always yields the same shareable id, and only the key holder can map it
// back.
package shareable

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// Encrypter seals and opens account ids under a fixed 32-byte key.
type Encrypter struct {
	key [32]byte
}

// New expects the key as 64 hex characters.
func New(hexKey string) (*Encrypter, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("shareable key is not valid hex: %v", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("shareable key must be 32 bytes, got %d", len(raw))
	}
	e := &Encrypter{}
	copy(e.key[:], raw)
	return e, nil
}

// EncryptID seals an account id into its shareable form. The nonce is
// derived from the id itself, which is what makes the output deterministic:
// encrypting the same id twice yields the same string.
func (e *Encrypter) EncryptID(accountID string) string {
	var nonce [nonceSize]byte
	mac := hmac.New(sha256.New, e.key[:])
	mac.Write([]byte(accountID))
	copy(nonce[:], mac.Sum(nil))

	sealed := secretbox.Seal(nonce[:], []byte(accountID), &nonce, &e.key)
	return base64.URLEncoding.EncodeToString(sealed)
}

// DecryptID maps a shareable id back to the account id it was derived from.
func (e *Encrypter) DecryptID(shareableID string) (string, error) {
	sealed, err := base64.URLEncoding.DecodeString(shareableID)
	if err != nil {
		return "", fmt.Errorf("shareable id is not valid base64: %v", err)
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("shareable id too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	opened, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &e.key)
	if !ok {
		return "", fmt.Errorf("shareable id did not open under this key")
	}
	return string(opened), nil
}
