// Package domain holds the record types, hashing, and canonical encoding
// shared by the coordinator and the storage layer.
package domain

// TokenStatus is the role a capability token has been bound to.
type TokenStatus uint8

const (
	TokenNotUsed TokenStatus = iota
	TokenInitiator
	TokenParticipator
)

func (s TokenStatus) String() string {
	switch s {
	case TokenNotUsed:
		return "NOT_USED"
	case TokenInitiator:
		return "INITIATOR"
	case TokenParticipator:
		return "PARTICIPATOR"
	default:
		return "UNKNOWN"
	}
}

// TokenRecord is the value stored under a hashed token in the tokens store.
type TokenRecord struct {
	CreatedAt int64
	Status    TokenStatus
}

// SwapStatus is a swap's position in the registration-to-completion pipeline.
type SwapStatus uint8

const (
	SwapRegistered SwapStatus = iota
	SwapInitiated
	SwapParticipated
	SwapRedeemed
	SwapCompleted
	SwapCanceled
)

func (s SwapStatus) String() string {
	switch s {
	case SwapRegistered:
		return "REGISTERED"
	case SwapInitiated:
		return "INITIATED"
	case SwapParticipated:
		return "PARTICIPATED"
	case SwapRedeemed:
		return "REDEEMED"
	case SwapCompleted:
		return "COMPLETED"
	case SwapCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

// SwapRecord is the value stored under a swap key in the swaps store.
//
// The naming is inverted relative to who sends what: the participator
// registers the swap declaring the currency it sends (PCurrency) and the
// currency it wants (ICurrency); each ReceiveAmount is what that side
// receives. These offer fields are set at registration; the remaining I
// fields are filled in once an initiator accepts.
type SwapRecord struct {
	PCurrency      string
	PReceiveAmount int64
	PAddr          string
	PContract      string
	PRawTx         string
	PRedeemRawTx   string

	ICurrency      string
	IReceiveAmount int64
	IAddr          string
	IContract      string
	IRawTx         string
	IRedeemRawTx   string
	ITokenHash     []byte // 32 bytes once the swap has an initiator

	Status SwapStatus
}
