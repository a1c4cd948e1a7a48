package domain

import "testing"

func TestTokenRecordRoundTrip(t *testing.T) {
	rec := TokenRecord{CreatedAt: 1700000000, Status: TokenParticipator}
	decoded, err := DecodeTokenRecord(EncodeTokenRecord(rec))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != rec {
		t.Fatalf("got %+v, want %+v", decoded, rec)
	}
}

func TestDecodeTokenRecordRejectsTruncated(t *testing.T) {
	if _, err := DecodeTokenRecord([]byte{recordVersion1, 0, 0}); err == nil {
		t.Fatal("expected error for truncated record")
	}
}

func TestDecodeTokenRecordRejectsBadVersion(t *testing.T) {
	rec := EncodeTokenRecord(TokenRecord{})
	rec[0] = 0xFF
	if _, err := DecodeTokenRecord(rec); err == nil {
		t.Fatal("expected error for bad version")
	}
}

func TestSwapRecordRoundTrip(t *testing.T) {
	rec := SwapRecord{
		PCurrency:      "LTC",
		PReceiveAmount: 10000,
		PAddr:          "12dRugNcdxK39288NjcDV4GX7rMsKCGn6B",
		PContract:      "",
		PRawTx:         "",
		PRedeemRawTx:   "",
		ICurrency:      "BTC",
		IReceiveAmount: 100000000,
		IAddr:          "",
		IContract:      "deadbeef",
		IRawTx:         "cafebabe",
		IRedeemRawTx:   "",
		ITokenHash:     make([]byte, HashSize),
		Status:         SwapInitiated,
	}
	for i := range rec.ITokenHash {
		rec.ITokenHash[i] = byte(i)
	}

	decoded, err := DecodeSwapRecord(EncodeSwapRecord(rec))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.PCurrency != rec.PCurrency || decoded.IContract != rec.IContract ||
		decoded.Status != rec.Status || decoded.PReceiveAmount != rec.PReceiveAmount {
		t.Fatalf("got %+v, want %+v", decoded, rec)
	}
	if string(decoded.ITokenHash) != string(rec.ITokenHash) {
		t.Fatalf("token hash mismatch: got %x want %x", decoded.ITokenHash, rec.ITokenHash)
	}
}

func TestSwapRecordRoundTripNoTokenHash(t *testing.T) {
	rec := SwapRecord{PCurrency: "BTC", Status: SwapRegistered}
	decoded, err := DecodeSwapRecord(EncodeSwapRecord(rec))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ITokenHash != nil {
		t.Fatalf("expected nil token hash, got %x", decoded.ITokenHash)
	}
}

func TestDecodeSwapRecordRejectsCorrupted(t *testing.T) {
	rec := EncodeSwapRecord(SwapRecord{PCurrency: "BTC"})
	corrupted := rec[:len(rec)-3]
	if _, err := DecodeSwapRecord(corrupted); err == nil {
		t.Fatal("expected error for corrupted record")
	}
}

func TestDecodeSwapRecordRejectsBadStatus(t *testing.T) {
	rec := EncodeSwapRecord(SwapRecord{})
	rec[len(rec)-1] = 0xFF
	if _, err := DecodeSwapRecord(rec); err == nil {
		t.Fatal("expected error for invalid status byte")
	}
}
