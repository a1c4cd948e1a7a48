package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Record values are serialized with a small tagged/length-prefixed binary
// codec instead of a language-specific pickler, so that a value written by
// one build can always be read by another. A version byte fronts each
// encoding; decoding validates every length prefix before trusting a field
// and rejects a record outright rather than silently zeroing a bad field.

const recordVersion1 = 1

// EncodeTokenRecord serializes a TokenRecord.
func EncodeTokenRecord(r TokenRecord) []byte {
	var buf bytes.Buffer
	buf.WriteByte(recordVersion1)
	var createdAt [8]byte
	binary.BigEndian.PutUint64(createdAt[:], uint64(r.CreatedAt))
	buf.Write(createdAt[:])
	buf.WriteByte(byte(r.Status))
	return buf.Bytes()
}

// DecodeTokenRecord deserializes a TokenRecord, rejecting truncated or
// version-mismatched input.
func DecodeTokenRecord(b []byte) (TokenRecord, error) {
	if len(b) < 1 || b[0] != recordVersion1 {
		return TokenRecord{}, fmt.Errorf("token record: unsupported version")
	}
	if len(b) != 1+8+1 {
		return TokenRecord{}, fmt.Errorf("token record: wrong length %d", len(b))
	}
	createdAt := int64(binary.BigEndian.Uint64(b[1:9]))
	status := TokenStatus(b[9])
	if status > TokenParticipator {
		return TokenRecord{}, fmt.Errorf("token record: invalid status %d", status)
	}
	return TokenRecord{CreatedAt: createdAt, Status: status}, nil
}

// EncodeSwapRecord serializes a SwapRecord.
func EncodeSwapRecord(r SwapRecord) []byte {
	var buf bytes.Buffer
	buf.WriteByte(recordVersion1)

	writeString(&buf, r.PCurrency)
	writeInt64(&buf, r.PReceiveAmount)
	writeString(&buf, r.PAddr)
	writeString(&buf, r.PContract)
	writeString(&buf, r.PRawTx)
	writeString(&buf, r.PRedeemRawTx)

	writeString(&buf, r.ICurrency)
	writeInt64(&buf, r.IReceiveAmount)
	writeString(&buf, r.IAddr)
	writeString(&buf, r.IContract)
	writeString(&buf, r.IRawTx)
	writeString(&buf, r.IRedeemRawTx)

	if len(r.ITokenHash) == HashSize {
		buf.WriteByte(1)
		buf.Write(r.ITokenHash)
	} else {
		buf.WriteByte(0)
	}

	buf.WriteByte(byte(r.Status))

	return buf.Bytes()
}

// DecodeSwapRecord deserializes a SwapRecord, validating every length prefix
// before trusting it.
func DecodeSwapRecord(b []byte) (SwapRecord, error) {
	if len(b) < 1 || b[0] != recordVersion1 {
		return SwapRecord{}, fmt.Errorf("swap record: unsupported version")
	}
	r := bytes.NewReader(b[1:])
	var rec SwapRecord
	var err error

	if rec.PCurrency, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: p_currency: %w", err)
	}
	if rec.PReceiveAmount, err = readInt64(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: p_receive_amount: %w", err)
	}
	if rec.PAddr, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: p_addr: %w", err)
	}
	if rec.PContract, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: p_contract: %w", err)
	}
	if rec.PRawTx, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: p_raw_tx: %w", err)
	}
	if rec.PRedeemRawTx, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: p_redeem_raw_tx: %w", err)
	}

	if rec.ICurrency, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_currency: %w", err)
	}
	if rec.IReceiveAmount, err = readInt64(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_receive_amount: %w", err)
	}
	if rec.IAddr, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_addr: %w", err)
	}
	if rec.IContract, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_contract: %w", err)
	}
	if rec.IRawTx, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_raw_tx: %w", err)
	}
	if rec.IRedeemRawTx, err = readString(r); err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_redeem_raw_tx: %w", err)
	}

	hasTokenHash, err := r.ReadByte()
	if err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: i_token_hash presence: %w", err)
	}
	switch hasTokenHash {
	case 0:
	case 1:
		hash := make([]byte, HashSize)
		if _, err := readFull(r, hash); err != nil {
			return SwapRecord{}, fmt.Errorf("swap record: i_token_hash: %w", err)
		}
		rec.ITokenHash = hash
	default:
		return SwapRecord{}, fmt.Errorf("swap record: invalid i_token_hash presence flag %d", hasTokenHash)
	}

	statusByte, err := r.ReadByte()
	if err != nil {
		return SwapRecord{}, fmt.Errorf("swap record: status: %w", err)
	}
	if SwapStatus(statusByte) > SwapCanceled {
		return SwapRecord{}, fmt.Errorf("swap record: invalid status %d", statusByte)
	}
	rec.Status = SwapStatus(statusByte)

	if r.Len() != 0 {
		return SwapRecord{}, fmt.Errorf("swap record: %d trailing bytes", r.Len())
	}

	return rec, nil
}

func writeString(buf *bytes.Buffer, s string) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	buf.Write(lenBuf[:n])
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	length, err := binary.ReadUvarint(r)
	if err != nil {
		return "", fmt.Errorf("length prefix: %w", err)
	}
	if int(length) > r.Len() {
		return "", fmt.Errorf("length prefix %d exceeds remaining %d bytes", length, r.Len())
	}
	out := make([]byte, length)
	if _, err := readFull(r, out); err != nil {
		return "", err
	}
	return string(out), nil
}

func writeInt64(buf *bytes.Buffer, v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	buf.Write(b[:])
}

func readInt64(r *bytes.Reader) (int64, error) {
	var b [8]byte
	if _, err := readFull(r, b[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

func readFull(r *bytes.Reader, out []byte) (int, error) {
	n, err := r.Read(out)
	if err != nil {
		return n, err
	}
	if n != len(out) {
		return n, fmt.Errorf("short read: got %d want %d", n, len(out))
	}
	return n, nil
}
