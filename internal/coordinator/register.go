package coordinator

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// RegisterSwapParams is what the participator supplies to post an offer.
type RegisterSwapParams struct {
	Token          string
	WantCurrency   string
	WantAmount     int64
	SendCurrency   string
	SendAmount     int64
	ReceiveAddress string
}

// RegisterSwap flips the caller's token to PARTICIPATOR and writes a new
// REGISTERED swap record keyed by the caller's hashed token.
//
// Naming inversion: the participator declares what it wants (becomes the
// initiator-side fields) and what it sends (becomes the participator-side
// fields), so that "what one side sends, the other receives."
func (c *Coordinator) RegisterSwap(p RegisterSwapParams) ([domain.HashSize]byte, error) {
	hashed, err := c.checkToken(p.Token, []domain.TokenStatus{domain.TokenNotUsed}, true)
	if err != nil {
		return hashed, err
	}

	unlock := c.locks.lockOne(hashed)
	defer unlock()

	tokenRec, ok, err := c.stores.Tokens.Get(hashed)
	if err != nil {
		return hashed, fmt.Errorf("look up token: %w", err)
	}
	if !ok || tokenRec.Status != domain.TokenNotUsed {
		// Re-check under the lock: another request may have consumed this
		// token between checkToken and acquiring the lock.
		return hashed, ErrTokenStatusInvalid
	}

	tokenRec.Status = domain.TokenParticipator
	if err := c.stores.Tokens.Put(hashed, tokenRec); err != nil {
		return hashed, fmt.Errorf("Failed to update token status: %w", err)
	}

	swapRec := domain.SwapRecord{
		ICurrency:      p.WantCurrency,
		IReceiveAmount: p.SendAmount,
		PCurrency:      p.SendCurrency,
		PReceiveAmount: p.WantAmount,
		PAddr:          p.ReceiveAddress,
		Status:         domain.SwapRegistered,
	}
	if err := c.stores.Swaps.Put(hashed, swapRec); err != nil {
		return hashed, fmt.Errorf("Failed to update swap data: %w", err)
	}

	c.emitEvent(hashed, domain.SwapRegistered)
	return hashed, nil
}
