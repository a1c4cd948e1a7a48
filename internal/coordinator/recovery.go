package coordinator

import (
	"fmt"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// Reconcile is the startup recovery pass for the two-store atomicity gap
// described in the design notes: the token role flip and the swap write
// during register/initiate are two separate writes against two separate
// SQLite databases. The token is written first, so a crash between the two
// writes leaves a token holding its role with no swap record; Reconcile
// leaves that state as it is. What it repairs is the reverse state: a swap
// record whose participator or initiator token is still NOT_USED. Since the
// swap record is the source of truth for who holds which role, a full scan
// is enough to restore it: every swap's key is the participator's hashed
// token, and every swap with an initiator token hash recorded names the
// initiator's hashed token too.
func (c *Coordinator) Reconcile() error {
	swaps, err := c.stores.Swaps.ScanAll()
	if err != nil {
		return fmt.Errorf("scan swaps: %w", err)
	}

	for _, entry := range swaps {
		if err := c.reconcileRole(entry.Key, domain.TokenParticipator); err != nil {
			return err
		}
		if len(entry.Record.ITokenHash) == domain.HashSize {
			var initiatorHash [domain.HashSize]byte
			copy(initiatorHash[:], entry.Record.ITokenHash)
			if err := c.reconcileRole(initiatorHash, domain.TokenInitiator); err != nil {
				return err
			}
		}
	}

	return nil
}

// reconcileRole sets a token's role if it is still NOT_USED. A token
// already holding a role (correct or otherwise) is left untouched: role
// assignment is monotonic, and reconciliation must never downgrade or
// silently overwrite it.
func (c *Coordinator) reconcileRole(hashedToken [domain.HashSize]byte, role domain.TokenStatus) error {
	rec, ok, err := c.stores.Tokens.Get(hashedToken)
	if err != nil {
		return fmt.Errorf("look up token %x: %w", hashedToken, err)
	}
	if !ok {
		// The token record itself is missing (e.g. its write never
		// landed either). There is nothing to reconcile it against.
		return nil
	}
	if rec.Status != domain.TokenNotUsed {
		return nil
	}
	rec.Status = role
	if err := c.stores.Tokens.Put(hashedToken, rec); err != nil {
		return fmt.Errorf("reconcile token %x to %s: %w", hashedToken, role, err)
	}
	c.log.Debug("reconciled token role after restart", "token", fmt.Sprintf("%x", hashedToken), "role", role.String())
	return nil
}
