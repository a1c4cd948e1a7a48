// Package storage adapts the generic ordered kv.Store to the two record
// types the coordinator deals in: tokens and swaps.
package storage

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
	"github.com/atomic-swap-net/swapcoordd/internal/kv"
)

// Stores bundles both process-wide singleton stores, opened once at startup
// and closed at shutdown.
type Stores struct {
	Tokens *TokenStore
	Swaps  *SwapStore
}

// Config points each store at its own directory under a shared base path,
// matching the "each in its own directory" persisted-state layout.
type Config struct {
	BasePath string
}

// Open opens both stores, creating their directories and schemas if needed.
func Open(cfg Config) (*Stores, error) {
	tokenKV, err := kv.Open(kv.Config{DataDir: cfg.BasePath + "/tokens", FileName: "tokens.db"})
	if err != nil {
		return nil, fmt.Errorf("open tokens store: %w", err)
	}
	swapKV, err := kv.Open(kv.Config{DataDir: cfg.BasePath + "/swaps", FileName: "swaps.db"})
	if err != nil {
		tokenKV.Close()
		return nil, fmt.Errorf("open swaps store: %w", err)
	}
	return &Stores{
		Tokens: &TokenStore{kv: tokenKV},
		Swaps:  &SwapStore{kv: swapKV},
	}, nil
}

// Close closes both underlying stores.
func (s *Stores) Close() error {
	tokenErr := s.Tokens.kv.Close()
	swapErr := s.Swaps.kv.Close()
	if tokenErr != nil {
		return tokenErr
	}
	return swapErr
}

// TokenStore persists domain.TokenRecord values keyed by hashed token.
type TokenStore struct {
	kv *kv.Store
}

// Get looks up the token record for a hashed token. ok is false when the
// token has never been issued.
func (t *TokenStore) Get(hashedToken [domain.HashSize]byte) (domain.TokenRecord, bool, error) {
	raw, ok, err := t.kv.Get(hashedToken[:])
	if err != nil {
		return domain.TokenRecord{}, false, err
	}
	if !ok {
		return domain.TokenRecord{}, false, nil
	}
	rec, err := domain.DecodeTokenRecord(raw)
	if err != nil {
		return domain.TokenRecord{}, false, fmt.Errorf("decode token record: %w", err)
	}
	return rec, true, nil
}

// Put writes the token record for a hashed token, overwriting any existing one.
func (t *TokenStore) Put(hashedToken [domain.HashSize]byte, rec domain.TokenRecord) error {
	return t.kv.Put(hashedToken[:], domain.EncodeTokenRecord(rec))
}

// SwapStore persists domain.SwapRecord values keyed by swap key.
type SwapStore struct {
	kv *kv.Store
}

// Get looks up the swap record for a swap key. ok is false when no swap has
// been registered at that key.
func (s *SwapStore) Get(swapKey [domain.HashSize]byte) (domain.SwapRecord, bool, error) {
	raw, ok, err := s.kv.Get(swapKey[:])
	if err != nil {
		return domain.SwapRecord{}, false, err
	}
	if !ok {
		return domain.SwapRecord{}, false, nil
	}
	rec, err := domain.DecodeSwapRecord(raw)
	if err != nil {
		return domain.SwapRecord{}, false, fmt.Errorf("decode swap record: %w", err)
	}
	return rec, true, nil
}

// Put writes the swap record for a swap key, overwriting any existing one.
func (s *SwapStore) Put(swapKey [domain.HashSize]byte, rec domain.SwapRecord) error {
	return s.kv.Put(swapKey[:], domain.EncodeSwapRecord(rec))
}

// SwapEntry is one row returned by ScanAll.
type SwapEntry struct {
	Key    [domain.HashSize]byte
	Record domain.SwapRecord
}

// ScanAll returns every swap record in the store. Records that fail to
// decode are skipped rather than aborting the whole scan, since a single
// corrupted record should not make every other swap invisible to listing.
func (s *SwapStore) ScanAll() ([]SwapEntry, error) {
	entries, err := s.kv.Scan()
	if err != nil {
		return nil, err
	}
	out := make([]SwapEntry, 0, len(entries))
	for _, e := range entries {
		if len(e.Key) != domain.HashSize {
			continue
		}
		rec, err := domain.DecodeSwapRecord(e.Value)
		if err != nil {
			continue
		}
		var key [domain.HashSize]byte
		copy(key[:], e.Key)
		out = append(out, SwapEntry{Key: key, Record: rec})
	}
	return out, nil
}
