package coordinator

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// CompleteSwapParams is what the participator supplies once it has
// broadcast its own redeem transaction using the recovered pre-image.
type CompleteSwapParams struct {
	Token          string
	RawTransaction string
}

// CompleteSwap advances the caller's own swap from REDEEMED to COMPLETED.
func (c *Coordinator) CompleteSwap(p CompleteSwapParams) error {
	hashed, err := c.checkToken(p.Token, []domain.TokenStatus{domain.TokenParticipator}, false)
	if err != nil {
		return err
	}

	unlock := c.locks.lockOne(hashed)
	defer unlock()

	swapRec, ok, err := c.stores.Swaps.Get(hashed)
	if err != nil {
		return fmt.Errorf("look up swap: %w", err)
	}
	if !ok {
		return ErrSwapInvalid
	}
	if swapRec.Status != domain.SwapRedeemed {
		return ErrSwapProgress
	}

	swapRec.Status = domain.SwapCompleted
	swapRec.PRedeemRawTx = p.RawTransaction

	if err := c.stores.Swaps.Put(hashed, swapRec); err != nil {
		return fmt.Errorf("Failed to update swap data: %w", err)
	}

	c.emitEvent(hashed, domain.SwapCompleted)
	return nil
}
