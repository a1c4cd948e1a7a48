package domain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/atomic-swap-net/swapcoordd/pkg/helpers"
)

// TokenSize is the length in bytes of a raw capability token.
const TokenSize = 64

// HashSize is the length in bytes of a hashed token or a swap key.
const HashSize = 32

// Sha256D returns SHA-256(SHA-256(b)), the hash used throughout the
// capability-token and swap-key scheme.
func Sha256D(b []byte) [HashSize]byte {
	return [HashSize]byte(chainhash.DoubleHashH(b))
}

// NewRawToken generates a new cryptographically random raw token.
func NewRawToken() ([]byte, error) {
	raw, err := helpers.GenerateSecureRandom(TokenSize)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return raw, nil
}

// EncodeToken base58-encodes a raw token for presentation to a client.
func EncodeToken(raw []byte) string {
	return base58.Encode(raw)
}

// DecodeToken decodes a base58 token string back into raw bytes. It rejects
// any input containing characters outside the base58 alphabet or that does
// not decode to a TokenSize-byte value.
func DecodeToken(token string) ([]byte, error) {
	if token == "" {
		return nil, fmt.Errorf("empty token")
	}
	for _, c := range token {
		if !isBase58Char(byte(c)) {
			return nil, fmt.Errorf("invalid base58 character %q", c)
		}
	}
	raw := base58.Decode(token)
	if len(raw) != TokenSize {
		return nil, fmt.Errorf("decoded token has wrong length: got %d, want %d", len(raw), TokenSize)
	}
	return raw, nil
}

const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

func isBase58Char(c byte) bool {
	for i := 0; i < len(base58Alphabet); i++ {
		if base58Alphabet[i] == c {
			return true
		}
	}
	return false
}

// HashedToken is a convenience wrapper computing sha256d(decode(token)).
func HashedToken(token string) ([HashSize]byte, error) {
	raw, err := DecodeToken(token)
	if err != nil {
		return [HashSize]byte{}, err
	}
	return Sha256D(raw), nil
}
