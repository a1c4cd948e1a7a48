package coordinator

import (
	"encoding/hex"
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// InitiateSwapParams is what the initiator supplies to accept a posted offer.
type InitiateSwapParams struct {
	Token          string
	SelectedSwap   string // hex-encoded swap key
	Contract       string
	RawTransaction string
	ReceiveAddress string
}

// InitiateSwap flips the caller's token to INITIATOR and advances the
// selected swap from REGISTERED to INITIATED, stamping it with the
// initiator's hashed token and opaque contract/transaction strings.
func (c *Coordinator) InitiateSwap(p InitiateSwapParams) error {
	swapKey, err := decodeSwapKey(p.SelectedSwap)
	if err != nil {
		return ErrSwapInvalid
	}

	initiatorHash, err := c.checkToken(p.Token, []domain.TokenStatus{domain.TokenNotUsed}, true)
	if err != nil {
		return err
	}

	unlock := c.locks.lockTwo(initiatorHash, swapKey)
	defer unlock()

	// Re-verify the token under lock: checkToken ran before any lock was
	// held, so another request could have consumed this token meanwhile.
	tokenRec, ok, err := c.stores.Tokens.Get(initiatorHash)
	if err != nil {
		return fmt.Errorf("look up token: %w", err)
	}
	if !ok || tokenRec.Status != domain.TokenNotUsed {
		return ErrTokenStatusInvalid
	}

	swapRec, ok, err := c.stores.Swaps.Get(swapKey)
	if err != nil {
		return fmt.Errorf("look up swap: %w", err)
	}
	if !ok {
		// Check lookup success before touching swapRec.Status: this is the
		// null-dereference the source has at this exact point.
		return ErrSwapInvalid
	}
	if swapRec.Status != domain.SwapRegistered {
		return ErrSwapProgress
	}

	swapRec.Status = domain.SwapInitiated
	swapRec.IContract = p.Contract
	swapRec.IRawTx = p.RawTransaction
	swapRec.IAddr = p.ReceiveAddress
	swapRec.ITokenHash = append([]byte(nil), initiatorHash[:]...)

	tokenRec.Status = domain.TokenInitiator
	if err := c.stores.Tokens.Put(initiatorHash, tokenRec); err != nil {
		return fmt.Errorf("Failed to update token status: %w", err)
	}

	if err := c.stores.Swaps.Put(swapKey, swapRec); err != nil {
		return fmt.Errorf("Failed to update swap data: %w", err)
	}

	c.emitEvent(swapKey, domain.SwapInitiated)
	return nil
}

func decodeSwapKey(hexKey string) ([domain.HashSize]byte, error) {
	var key [domain.HashSize]byte
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return key, fmt.Errorf("decode swap key: %w", err)
	}
	if len(b) != domain.HashSize {
		return key, fmt.Errorf("swap key has wrong length: got %d, want %d", len(b), domain.HashSize)
	}
	copy(key[:], b)
	return key, nil
}
