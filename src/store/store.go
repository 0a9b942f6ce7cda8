package store

import "github.com/slatechain/slate/src/chain"

// Store is the block-storage contract of a slate node. Blocks are indexed by
// height and by header hash; the store also tracks the chain head and the
// last finalized height.
type Store interface {
	// CacheSize returns the size limit of the in-memory caches.
	CacheSize() int

	// GetBlock returns the block at the given height.
	GetBlock(height int) (*chain.Block, error)

	// GetBlockByHash returns the block with the given hex header hash.
	GetBlockByHash(hex string) (*chain.Block, error)

	// SetBlock stores a block. Heights must be set consecutively.
	SetBlock(block *chain.Block) error

	// LastBlockHeight returns the height of the chain head, or -1 on an
	// empty store.
	LastBlockHeight() int

	// LastFinalizedHeight returns the height below which blocks are
	// irreversible.
	LastFinalizedHeight() int

	// SetFinalizedHeight advances the finalized height. It never goes
	// backwards.
	SetFinalizedHeight(height int) error

	// NeedBootstrap reports whether the store was loaded from an existing
	// database and the node should rebuild its state from stored blocks.
	NeedBootstrap() bool

	// Close releases underlying resources.
	Close() error
}
