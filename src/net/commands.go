package net

import (
	"github.com/slatechain/slate/src/chain"
)

// SyncRequest is the catch-up request. It asks the target for the blocks
// above FromHeight, at most Limit of them.
type SyncRequest struct {
	FromID     uint32
	FromHeight int
	Limit      int
}

// SyncResponse returns consecutive blocks as requested by a SyncRequest.
// Head indicates the responder's chain head so the requester knows whether to
// keep pulling.
type SyncResponse struct {
	FromID uint32
	Blocks []*chain.Block
	Head   int
}

// AnnounceRequest actively pushes a freshly-authored block to a peer.
type AnnounceRequest struct {
	FromID uint32
	Block  *chain.Block
}

// AnnounceResponse indicates whether the announced block was accepted.
type AnnounceResponse struct {
	FromID  uint32
	Success bool
}

// TxSubmitRequest forwards raw transactions to a peer's pool.
type TxSubmitRequest struct {
	FromID uint32
	Txs    [][]byte
}

// TxSubmitResponse returns the pool hashes of the forwarded transactions.
// Rejected transactions have an empty hash at their position.
type TxSubmitResponse struct {
	FromID uint32
	Hashes []string
}
