package coordinator

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
)

// RedeemSwapParams is what the initiator supplies once it has broadcast the
// transaction revealing the pre-image.
type RedeemSwapParams struct {
	Token          string
	SelectedSwap   string
	RawTransaction string
}

// RedeemSwap advances the selected swap from PARTICIPATED to REDEEMED,
// recording the initiator's redeem transaction for later pre-image
// extraction.
func (c *Coordinator) RedeemSwap(p RedeemSwapParams) error {
	swapKey, err := decodeSwapKey(p.SelectedSwap)
	if err != nil {
		return ErrSwapInvalid
	}

	if _, err := c.checkToken(p.Token, []domain.TokenStatus{domain.TokenInitiator}, false); err != nil {
		return err
	}

	unlock := c.locks.lockOne(swapKey)
	defer unlock()

	swapRec, ok, err := c.stores.Swaps.Get(swapKey)
	if err != nil {
		return fmt.Errorf("look up swap: %w", err)
	}
	if !ok {
		return ErrSwapInvalid
	}
	if swapRec.Status != domain.SwapParticipated {
		return ErrSwapProgress
	}

	swapRec.Status = domain.SwapRedeemed
	swapRec.IRedeemRawTx = p.RawTransaction

	if err := c.stores.Swaps.Put(swapKey, swapRec); err != nil {
		return fmt.Errorf("Failed to update swap data: %w", err)
	}

	c.emitEvent(swapKey, domain.SwapRedeemed)
	return nil
}

// GetRedeemToken recovers the initiator's raw token from its redeem
// transaction: the same pre-image the initiator committed to, revealed
// on-chain to unlock the HTLC.
func (c *Coordinator) GetRedeemToken(token string) (string, error) {
	hashed, err := c.checkToken(token, []domain.TokenStatus{domain.TokenParticipator}, false)
	if err != nil {
		return "", err
	}

	swapRec, ok, err := c.stores.Swaps.Get(hashed)
	if err != nil {
		return "", fmt.Errorf("look up swap: %w", err)
	}
	if !ok {
		return "", ErrSwapInvalid
	}
	if swapRec.Status != domain.SwapRedeemed {
		return "", ErrSwapProgress
	}

	preimage, err := extractPreimage(swapRec.IRedeemRawTx, swapRec.ITokenHash)
	if err != nil {
		return "", ErrFatal
	}

	return hex.EncodeToString(preimage), nil
}

// extractPreimage parses a hex-encoded Bitcoin-family transaction and scans
// every input's literal data pushes — both legacy scriptSig pushes and, for
// SegWit inputs, witness stack items — for a payload whose sha256d matches
// tokenHash. It never evaluates the script; it only compares hashes of the
// literal data an unlocking script or witness pushes.
func extractPreimage(rawTxHex string, tokenHash []byte) ([]byte, error) {
	if len(tokenHash) != domain.HashSize {
		return nil, fmt.Errorf("swap has no recorded initiator token hash")
	}

	txBytes, err := hex.DecodeString(rawTxHex)
	if err != nil {
		return nil, fmt.Errorf("decode raw transaction: %w", err)
	}

	var tx wire.MsgTx
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}

	for _, in := range tx.TxIn {
		if match := scanScriptPushes(in.SignatureScript, tokenHash); match != nil {
			return match, nil
		}
		for _, witnessItem := range in.Witness {
			if match := matchPush(witnessItem, tokenHash); match != nil {
				return match, nil
			}
		}
	}

	return nil, fmt.Errorf("no matching pre-image found")
}

// scanScriptPushes tokenizes a script and returns the first literal data
// push whose sha256d matches tokenHash, or nil if none does.
func scanScriptPushes(script []byte, tokenHash []byte) []byte {
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		if match := matchPush(tokenizer.Data(), tokenHash); match != nil {
			return match
		}
	}
	return nil
}

func matchPush(data []byte, tokenHash []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	hashed := domain.Sha256D(data)
	if bytes.Equal(hashed[:], tokenHash) {
		return data
	}
	return nil
}

