package coordinator

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// ParticipateSwapParams is what the participator supplies once the
// initiator has locked funds.
type ParticipateSwapParams struct {
	Token          string
	Contract       string
	RawTransaction string
}

// ParticipateSwap advances the caller's own swap (keyed by its own hashed
// token) from INITIATED to PARTICIPATED.
func (c *Coordinator) ParticipateSwap(p ParticipateSwapParams) error {
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
	if swapRec.Status != domain.SwapInitiated {
		return ErrSwapProgress
	}

	swapRec.Status = domain.SwapParticipated
	swapRec.PContract = p.Contract
	swapRec.PRawTx = p.RawTransaction

	if err := c.stores.Swaps.Put(hashed, swapRec); err != nil {
		return fmt.Errorf("Failed to update swap data: %w", err)
	}

	c.emitEvent(hashed, domain.SwapParticipated)
	return nil
}
