// Package cryptox hashes the passwords kept for offline login. A password is
// stretched with argon2id over a random salt; only the SHA-256 verifier of the
// derived key is stored, never the key itself.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/franckludovic/travelbuddy/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	scheme  = "argon2id"
	saltLen = 16
)

var ErrMalformedHash = errors.New("malformed password hash")

func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword returns "argon2id$<salt hex>$<verifier hex>".
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltLen)
	return encode(salt, MakeVerifier(DeriveMasterKey(password, salt)))
}

// VerifyPassword checks password against a value produced by HashPassword.
// Comparison is constant-time.
func VerifyPassword(encoded string, password []byte) (bool, error) {
	salt, verifier, err := decode(encoded)
	if err != nil {
		return false, err
	}
	candidate := MakeVerifier(DeriveMasterKey(password, salt))
	return subtle.ConstantTimeCompare(verifier, candidate) == 1, nil
}

func encode(salt, verifier []byte) string {
	return strings.Join([]string{scheme, hex.EncodeToString(salt), hex.EncodeToString(verifier)}, "$")
}

func decode(encoded string) (salt, verifier []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 3 || parts[0] != scheme {
		return nil, nil, ErrMalformedHash
	}
	if salt, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, ErrMalformedHash
	}
	if verifier, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, ErrMalformedHash
	}
	return salt, verifier, nil
}
