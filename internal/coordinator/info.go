package coordinator

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// InitiatorInfo is what the participator learns once an initiator has
// accepted its offer.
type InitiatorInfo struct {
	InitiatorAddress       string
	InitiateContract       string
	InitiateRawTransaction string
	TokenHash              [domain.HashSize]byte
}

// GetInitiatorInfo returns the initiator's side of the caller's own swap.
// It is available any time after initiation and before completion
// (INITIATED, PARTICIPATED, or REDEEMED) — matching the source's open
// interval check rather than a single exact status.
func (c *Coordinator) GetInitiatorInfo(token string) (InitiatorInfo, error) {
	hashed, err := c.checkToken(token, []domain.TokenStatus{domain.TokenParticipator}, false)
	if err != nil {
		return InitiatorInfo{}, err
	}

	swapRec, ok, err := c.stores.Swaps.Get(hashed)
	if err != nil {
		return InitiatorInfo{}, fmt.Errorf("look up swap: %w", err)
	}
	if !ok {
		return InitiatorInfo{}, ErrSwapInvalid
	}
	if !(swapRec.Status > domain.SwapRegistered && swapRec.Status < domain.SwapCompleted) {
		return InitiatorInfo{}, ErrSwapInvalid
	}

	var info InitiatorInfo
	info.InitiatorAddress = swapRec.IAddr
	info.InitiateContract = swapRec.IContract
	info.InitiateRawTransaction = swapRec.IRawTx
	copy(info.TokenHash[:], swapRec.ITokenHash)
	return info, nil
}

// ParticipatorInfo is what the initiator learns once the participator has
// locked funds in turn.
type ParticipatorInfo struct {
	ParticipateContract       string
	ParticipateRawTransaction string
}

// GetParticipatorInfo returns the participator's side of the selected swap.
// It is available any time after participation and before completion
// (PARTICIPATED or REDEEMED), so the initiator can read the participator's
// contract before redeeming it.
func (c *Coordinator) GetParticipatorInfo(token, selectedSwap string) (ParticipatorInfo, error) {
	swapKey, err := decodeSwapKey(selectedSwap)
	if err != nil {
		return ParticipatorInfo{}, ErrSwapInvalid
	}

	if _, err := c.checkToken(token, []domain.TokenStatus{domain.TokenInitiator}, false); err != nil {
		return ParticipatorInfo{}, err
	}

	swapRec, ok, err := c.stores.Swaps.Get(swapKey)
	if err != nil {
		return ParticipatorInfo{}, fmt.Errorf("look up swap: %w", err)
	}
	if !ok {
		return ParticipatorInfo{}, ErrSwapInvalid
	}
	if !(swapRec.Status > domain.SwapInitiated && swapRec.Status < domain.SwapCompleted) {
		return ParticipatorInfo{}, ErrSwapInvalid
	}

	return ParticipatorInfo{
		ParticipateContract:       swapRec.PContract,
		ParticipateRawTransaction: swapRec.PRawTx,
	}, nil
}
