package coordinator

import (
	"bytes"
	"encoding/hex"
	"os"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/atomic-swap-net/swapcoordd/internal/domain"
	"github.com/atomic-swap-net/swapcoordd/internal/storage"
)

func newTestCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	dir, err := os.MkdirTemp("", "coordinator-test-*")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	stores, err := storage.Open(storage.Config{BasePath: dir})
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })

	c, err := New(Config{Stores: stores})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	return c
}

func TestTokenRoundTrip(t *testing.T) {
	c := newTestCoordinator(t)

	token, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	result := c.VerifyToken(token)
	if !result.Exists {
		t.Fatal("expected issued token to exist")
	}

	raw, err := domain.NewRawToken()
	if err != nil {
		t.Fatalf("new raw token: %v", err)
	}
	unissued := domain.EncodeToken(raw)
	if c.VerifyToken(unissued).Exists {
		t.Fatal("expected unissued token to not exist")
	}
}

func TestRegisterSwapDuplicate(t *testing.T) {
	c := newTestCoordinator(t)
	token, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	params := RegisterSwapParams{
		Token:          token,
		WantCurrency:   "BTC",
		WantAmount:     10000,
		SendCurrency:   "LTC",
		SendAmount:     100000000,
		ReceiveAddress: "12dRugNcdxK39288NjcDV4GX7rMsKCGn6B",
	}

	if _, err := c.RegisterSwap(params); err != nil {
		t.Fatalf("first register: %v", err)
	}

	if _, err := c.RegisterSwap(params); err != ErrTokenStatusInvalid {
		t.Fatalf("second register: got %v, want ErrTokenStatusInvalid", err)
	}
}

func TestRegisterSwapInvalidToken(t *testing.T) {
	c := newTestCoordinator(t)
	raw, _ := domain.NewRawToken()
	unissued := domain.EncodeToken(raw)

	_, err := c.RegisterSwap(RegisterSwapParams{Token: unissued})
	if err != ErrTokenInvalid {
		t.Fatalf("got %v, want ErrTokenInvalid", err)
	}
}

func TestRegisterAndList(t *testing.T) {
	c := newTestCoordinator(t)
	token, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	hashed, err := c.RegisterSwap(RegisterSwapParams{
		Token:          token,
		WantCurrency:   "BTC",
		WantAmount:     10000,
		SendCurrency:   "LTC",
		SendAmount:     100000000,
		ReceiveAddress: "12dRugNcdxK39288NjcDV4GX7rMsKCGn6B",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	list, err := c.GetSwapList()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d swaps, want 1", len(list))
	}
	entry := list[0]
	if entry.SwapKey != hashed {
		t.Fatalf("key mismatch")
	}
	if entry.InitiatorCurrency != "BTC" || entry.InitiatorReceiveAmount != 100000000 ||
		entry.ParticipatorCurrency != "LTC" || entry.ParticipatorReceiveAmount != 10000 ||
		entry.ParticipatorAddress != "12dRugNcdxK39288NjcDV4GX7rMsKCGn6B" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestFullInitiateFlow(t *testing.T) {
	c := newTestCoordinator(t)

	participatorToken, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue participator token: %v", err)
	}
	initiatorToken, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue initiator token: %v", err)
	}

	swapKey, err := c.RegisterSwap(RegisterSwapParams{
		Token:          participatorToken,
		WantCurrency:   "BTC",
		WantAmount:     10000,
		SendCurrency:   "LTC",
		SendAmount:     100000000,
		ReceiveAddress: "12dRugNcdxK39288NjcDV4GX7rMsKCGn6B",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	err = c.InitiateSwap(InitiateSwapParams{
		Token:          initiatorToken,
		SelectedSwap:   hex.EncodeToString(swapKey[:]),
		Contract:       "deadbeef",
		RawTransaction: "cafebabe",
		ReceiveAddress: "initiator-addr",
	})
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}

	info, err := c.GetInitiatorInfo(participatorToken)
	if err != nil {
		t.Fatalf("get initiator info: %v", err)
	}

	wantHash, err := domain.HashedToken(initiatorToken)
	if err != nil {
		t.Fatalf("hash initiator token: %v", err)
	}
	if info.InitiatorAddress != "initiator-addr" || info.InitiateContract != "deadbeef" ||
		info.InitiateRawTransaction != "cafebabe" || info.TokenHash != wantHash {
		t.Fatalf("unexpected initiator info: %+v", info)
	}
}

func TestInitiateSwapMissingSwap(t *testing.T) {
	c := newTestCoordinator(t)
	token, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var bogusKey [domain.HashSize]byte
	err = c.InitiateSwap(InitiateSwapParams{
		Token:        token,
		SelectedSwap: hex.EncodeToString(bogusKey[:]),
	})
	if err != ErrSwapInvalid {
		t.Fatalf("got %v, want ErrSwapInvalid", err)
	}
}

// buildRedeemTx constructs a minimal transaction whose sole input's
// signature script pushes the given secret, mirroring the shape of an HTLC
// claim's unlocking script.
func buildRedeemTx(t *testing.T, secret []byte) string {
	t.Helper()
	builder := txscript.NewScriptBuilder()
	builder.AddData(secret)
	script, err := builder.Script()
	if err != nil {
		t.Fatalf("build script: %v", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	txIn := wire.NewTxIn(&wire.OutPoint{}, script, nil)
	tx.AddTxIn(txIn)

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		t.Fatalf("serialize tx: %v", err)
	}
	return hex.EncodeToString(buf.Bytes())
}

func TestPreimageExtractionSuccess(t *testing.T) {
	c := newTestCoordinator(t)

	participatorToken, _ := c.IssueToken()
	initiatorToken, _ := c.IssueToken()

	swapKey, err := c.RegisterSwap(RegisterSwapParams{Token: participatorToken, WantCurrency: "BTC", SendCurrency: "LTC"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.InitiateSwap(InitiateSwapParams{Token: initiatorToken, SelectedSwap: hex.EncodeToString(swapKey[:])}); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := c.ParticipateSwap(ParticipateSwapParams{Token: participatorToken}); err != nil {
		t.Fatalf("participate: %v", err)
	}

	initiatorRaw, err := domain.DecodeToken(initiatorToken)
	if err != nil {
		t.Fatalf("decode initiator token: %v", err)
	}
	redeemTxHex := buildRedeemTx(t, initiatorRaw)

	if err := c.RedeemSwap(RedeemSwapParams{Token: initiatorToken, SelectedSwap: hex.EncodeToString(swapKey[:]), RawTransaction: redeemTxHex}); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	got, err := c.GetRedeemToken(participatorToken)
	if err != nil {
		t.Fatalf("get redeem token: %v", err)
	}
	if got != hex.EncodeToString(initiatorRaw) {
		t.Fatalf("got %s, want %s", got, hex.EncodeToString(initiatorRaw))
	}
}

func TestPreimageExtractionNoMatch(t *testing.T) {
	c := newTestCoordinator(t)

	participatorToken, _ := c.IssueToken()
	initiatorToken, _ := c.IssueToken()

	swapKey, err := c.RegisterSwap(RegisterSwapParams{Token: participatorToken})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.InitiateSwap(InitiateSwapParams{Token: initiatorToken, SelectedSwap: hex.EncodeToString(swapKey[:])}); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := c.ParticipateSwap(ParticipateSwapParams{Token: participatorToken}); err != nil {
		t.Fatalf("participate: %v", err)
	}

	wrongSecret := bytes.Repeat([]byte{0x42}, domain.TokenSize)
	redeemTxHex := buildRedeemTx(t, wrongSecret)

	if err := c.RedeemSwap(RedeemSwapParams{Token: initiatorToken, SelectedSwap: hex.EncodeToString(swapKey[:]), RawTransaction: redeemTxHex}); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	if _, err := c.GetRedeemToken(participatorToken); err != ErrFatal {
		t.Fatalf("got %v, want ErrFatal", err)
	}
}

func TestReconcileAfterSimulatedCrash(t *testing.T) {
	dir, err := os.MkdirTemp("", "coordinator-reconcile-*")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	stores, err := storage.Open(storage.Config{BasePath: dir})
	if err != nil {
		t.Fatalf("open stores: %v", err)
	}
	t.Cleanup(func() { stores.Close() })

	c, err := New(Config{Stores: stores})
	if err != nil {
		t.Fatalf("new coordinator: %v", err)
	}
	token, err := c.IssueToken()
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	hashed, err := domain.HashedToken(token)
	if err != nil {
		t.Fatalf("hash token: %v", err)
	}

	// Simulate a crash that lost the token-flip write but kept the swap
	// write: the swap record exists in REGISTERED status, but the token is
	// still NOT_USED.
	if err := stores.Swaps.Put(hashed, domain.SwapRecord{Status: domain.SwapRegistered}); err != nil {
		t.Fatalf("put swap: %v", err)
	}

	c2, err := New(Config{Stores: stores})
	if err != nil {
		t.Fatalf("new coordinator (recovery): %v", err)
	}

	result := c2.VerifyToken(token)
	if !result.Exists {
		t.Fatal("expected token to still exist")
	}

	tokenRec, ok, err := stores.Tokens.Get(hashed)
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if !ok {
		t.Fatal("expected token record to exist")
	}
	if tokenRec.Status != domain.TokenParticipator {
		t.Fatalf("got status %s, want PARTICIPATOR after reconciliation", tokenRec.Status)
	}
}
