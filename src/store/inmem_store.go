package store

import (
	"strconv"

	"github.com/slatechain/slate/src/chain"
	cm "github.com/slatechain/slate/src/common"
)

// InmemStore implements the Store interface with in-memory caches. When the
// caches are full, older items are evicted, so InmemStore is not suitable for
// long-running deployments where joining nodes expect to sync from the
// beginning of the chain.
type InmemStore struct {
	cacheSize       int
	blockCache      *cm.RollingIndex //height => *chain.Block
	hashIndex       *cm.LRU          //hex hash => height
	lastBlockHeight int
	finalizedHeight int
}

// NewInmemStore creates a new InmemStore where caches are limited to
// cacheSize items.
func NewInmemStore(cacheSize int) *InmemStore {
	return &InmemStore{
		cacheSize:       cacheSize,
		blockCache:      cm.NewRollingIndex("BlockCache", cacheSize),
		hashIndex:       cm.NewLRU(cacheSize, nil),
		lastBlockHeight: -1,
		finalizedHeight: -1,
	}
}

// CacheSize implements the Store interface.
func (s *InmemStore) CacheSize() int {
	return s.cacheSize
}

// GetBlock implements the Store interface.
func (s *InmemStore) GetBlock(height int) (*chain.Block, error) {
	res, err := s.blockCache.GetItem(height)
	if err != nil {
		return nil, err
	}
	return res.(*chain.Block), nil
}

// GetBlockByHash implements the Store interface.
func (s *InmemStore) GetBlockByHash(hex string) (*chain.Block, error) {
	height, ok := s.hashIndex.Get(hex)
	if !ok {
		return nil, cm.NewStoreErr("HashIndex", cm.KeyNotFound, hex)
	}
	return s.GetBlock(height.(int))
}

// SetBlock implements the Store interface.
func (s *InmemStore) SetBlock(block *chain.Block) error {
	height := block.Height()

	if _, err := s.GetBlock(height); err == nil {
		return cm.NewStoreErr("BlockCache", cm.KeyAlreadyExists, strconv.Itoa(height))
	}

	if err := s.blockCache.Set(block, height); err != nil {
		return err
	}

	s.hashIndex.Add(block.HexHash(), height)

	if height > s.lastBlockHeight {
		s.lastBlockHeight = height
	}

	return nil
}

// LastBlockHeight implements the Store interface.
func (s *InmemStore) LastBlockHeight() int {
	return s.lastBlockHeight
}

// LastFinalizedHeight implements the Store interface.
func (s *InmemStore) LastFinalizedHeight() int {
	return s.finalizedHeight
}

// SetFinalizedHeight implements the Store interface.
func (s *InmemStore) SetFinalizedHeight(height int) error {
	if height > s.finalizedHeight {
		s.finalizedHeight = height
	}
	return nil
}

// NeedBootstrap implements the Store interface.
func (s *InmemStore) NeedBootstrap() bool {
	return false
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
