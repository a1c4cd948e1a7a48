package coordinator

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// OpenSwap is one entry of GetSwapList's result: the offer fields of a
// swap still waiting for an initiator.
type OpenSwap struct {
	SwapKey                   [domain.HashSize]byte
	InitiatorCurrency         string
	InitiatorReceiveAmount    int64
	ParticipatorCurrency      string
	ParticipatorReceiveAmount int64
	ParticipatorAddress       string
}

// GetSwapList returns every swap still in REGISTERED status. Completed or
// in-progress swaps are never exposed here.
func (c *Coordinator) GetSwapList() ([]OpenSwap, error) {
	entries, err := c.stores.Swaps.ScanAll()
	if err != nil {
		return nil, fmt.Errorf("scan swaps: %w", err)
	}

	out := make([]OpenSwap, 0, len(entries))
	for _, e := range entries {
		if e.Record.Status != domain.SwapRegistered {
			continue
		}
		out = append(out, OpenSwap{
			SwapKey:                   e.Key,
			InitiatorCurrency:         e.Record.ICurrency,
			InitiatorReceiveAmount:    e.Record.IReceiveAmount,
			ParticipatorCurrency:      e.Record.PCurrency,
			ParticipatorReceiveAmount: e.Record.PReceiveAmount,
			ParticipatorAddress:       e.Record.PAddr,
		})
	}
	return out, nil
}
