package domain

// This file documents, rather than parses, the witness shape a redeem
// transaction is expected to reveal the pre-image in.
//
// The claim path of the HTLC script this server's redeemers spend against
// pushes its witness stack as:
//
//	<signature>
//	<secret>
//	<1>           (selects the OP_IF / claim branch)
//	<htlc_script>
//
// extractPreimage in the coordinator package never evaluates this script
// or relies on this exact stack order — it scans every witness item (and
// every legacy scriptSig push, for non-segwit inputs) and tests each one's
// sha256d against the swap's recorded token hash. That is deliberately
// more permissive than this shape: redeemers on other chain families may
// push the secret in a different position, and the generic scan still
// finds it. This comment exists to tie the scan back to a concrete script
// family rather than leaving "some push somewhere" unmotivated.
