package coordinator

import "errors"

// Sentinel errors returned by coordinator operations. Their messages are
// part of the wire contract: the HTTP facade surfaces Error() verbatim.
var (
	ErrTokenInvalid       = errors.New("Token is not registered or is invalid.")
	ErrTokenStatusInvalid = errors.New("Inappropriate token status.")
	ErrTokenUsed          = errors.New("Token is already used.")
	ErrSwapInvalid        = errors.New("Selected swap is not registered or is invalid.")
	ErrSwapProgress       = errors.New("Selected swap is already in progress or completed.")
	ErrFatal              = errors.New("pre-image not found in redeem transaction")
)
