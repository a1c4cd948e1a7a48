package coordinator

import (
	"fmt"
	"time"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// IssueToken generates a new capability token, persists it as NOT_USED, and
// returns the base58 text handed to the client.
func (c *Coordinator) IssueToken() (string, error) {
	raw, err := domain.NewRawToken()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	hashed := domain.Sha256D(raw)

	unlock := c.locks.lockOne(hashed)
	defer unlock()

	rec := domain.TokenRecord{CreatedAt: time.Now().Unix(), Status: domain.TokenNotUsed}
	if err := c.stores.Tokens.Put(hashed, rec); err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}

	return domain.EncodeToken(raw), nil
}

// VerifyResult is the outcome of VerifyToken.
type VerifyResult struct {
	Exists    bool
	CreatedAt int64
}

// VerifyToken reports whether a token is known, and if so, when it was
// issued. An invalid or unknown token simply reports Exists=false; this
// endpoint never returns an error to the caller.
func (c *Coordinator) VerifyToken(token string) VerifyResult {
	raw, err := domain.DecodeToken(token)
	if err != nil {
		return VerifyResult{}
	}
	hashed := domain.Sha256D(raw)

	rec, ok, err := c.stores.Tokens.Get(hashed)
	if err != nil || !ok {
		return VerifyResult{}
	}
	return VerifyResult{Exists: true, CreatedAt: rec.CreatedAt}
}
