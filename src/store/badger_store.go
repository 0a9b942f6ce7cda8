package store

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"github.com/slatechain/slate/src/chain"
	cm "github.com/slatechain/slate/src/common"
)

const (
	blockPrefix  = "block"
	hashPrefix   = "hash"
	metaHeadKey  = "meta_head"
	metaFinalKey = "meta_finalized"
)

// BadgerStore wraps an InmemStore write-through cache around a badger
// database. Reads hit the cache first and fall back to disk; writes go to
// both.
type BadgerStore struct {
	inmemStore *InmemStore
	db         *badger.DB
	path       string
	needBoot   bool
}

// NewBadgerStore creates a brand new store over a fresh database.
func NewBadgerStore(cacheSize int, path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger db in %s", path)
	}

	store := &BadgerStore{
		inmemStore: NewInmemStore(cacheSize),
		db:         handle,
		path:       path,
	}

	return store, nil
}

// LoadBadgerStore creates a store from an existing database.
func LoadBadgerStore(cacheSize int, path string) (*BadgerStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path)
	opts.SyncWrites = false
	opts.Logger = nil

	handle, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening badger db in %s", path)
	}

	store := &BadgerStore{
		inmemStore: NewInmemStore(cacheSize),
		db:         handle,
		path:       path,
		needBoot:   true,
	}

	head, err := store.dbGetMetaInt(metaHeadKey)
	if err != nil {
		if !cm.IsStore(err, cm.KeyNotFound) {
			return nil, err
		}
		head = -1
	}
	store.inmemStore.lastBlockHeight = head

	finalized, err := store.dbGetMetaInt(metaFinalKey)
	if err != nil {
		if !cm.IsStore(err, cm.KeyNotFound) {
			return nil, err
		}
		finalized = -1
	}
	store.inmemStore.finalizedHeight = finalized

	return store, nil
}

// LoadOrCreateBadgerStore tries to load an existing database and falls back
// to creating a new one.
func LoadOrCreateBadgerStore(cacheSize int, path string) (*BadgerStore, error) {
	store, err := LoadBadgerStore(cacheSize, path)
	if err != nil {
		store, err = NewBadgerStore(cacheSize, path)
		if err != nil {
			return nil, err
		}
	}
	return store, nil
}

//==============================================================================
//Keys

func blockKey(height int) []byte {
	return []byte(fmt.Sprintf("%s_%09d", blockPrefix, height))
}

func hashKey(hex string) []byte {
	return []byte(fmt.Sprintf("%s_%s", hashPrefix, hex))
}

//==============================================================================
//Implement the Store interface

// CacheSize ...
func (s *BadgerStore) CacheSize() int {
	return s.inmemStore.CacheSize()
}

// GetBlock ...
func (s *BadgerStore) GetBlock(height int) (*chain.Block, error) {
	//try to get it from cache
	block, err := s.inmemStore.GetBlock(height)
	//if not in cache, try to get it from db
	if err != nil {
		block, err = s.dbGetBlock(height)
	}
	return block, mapError(err, "Block", strconv.Itoa(height))
}

// GetBlockByHash ...
func (s *BadgerStore) GetBlockByHash(hex string) (*chain.Block, error) {
	block, err := s.inmemStore.GetBlockByHash(hex)
	if err != nil {
		block, err = s.dbGetBlockByHash(hex)
	}
	return block, mapError(err, "Block", hex)
}

// SetBlock ...
func (s *BadgerStore) SetBlock(block *chain.Block) error {
	if err := s.inmemStore.SetBlock(block); err != nil {
		return err
	}
	if err := s.dbSetBlock(block); err != nil {
		return err
	}
	return s.dbSetMetaInt(metaHeadKey, s.inmemStore.LastBlockHeight())
}

// LastBlockHeight ...
func (s *BadgerStore) LastBlockHeight() int {
	return s.inmemStore.LastBlockHeight()
}

// LastFinalizedHeight ...
func (s *BadgerStore) LastFinalizedHeight() int {
	return s.inmemStore.LastFinalizedHeight()
}

// SetFinalizedHeight ...
func (s *BadgerStore) SetFinalizedHeight(height int) error {
	if err := s.inmemStore.SetFinalizedHeight(height); err != nil {
		return err
	}
	return s.dbSetMetaInt(metaFinalKey, s.inmemStore.LastFinalizedHeight())
}

// NeedBootstrap ...
func (s *BadgerStore) NeedBootstrap() bool {
	return s.needBoot
}

// Close ...
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

//==============================================================================
//DB Methods

func (s *BadgerStore) dbGetBlock(height int) (*chain.Block, error) {
	var blockBytes []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(blockKey(height))
		if err != nil {
			return err
		}
		blockBytes, err = item.ValueCopy(nil)
		return err
	})

	if err != nil {
		return nil, err
	}

	block := new(chain.Block)
	if err := block.Unmarshal(blockBytes); err != nil {
		return nil, err
	}

	return block, nil
}

func (s *BadgerStore) dbGetBlockByHash(hex string) (*chain.Block, error) {
	var height int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(hashKey(hex))
		if err != nil {
			return err
		}
		heightBytes, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		height, err = strconv.Atoi(string(heightBytes))
		return err
	})

	if err != nil {
		return nil, err
	}

	return s.dbGetBlock(height)
}

func (s *BadgerStore) dbSetBlock(block *chain.Block) error {
	blockBytes, err := block.Marshal()
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(blockKey(block.Height()), blockBytes); err != nil {
			return errors.Wrap(err, "writing block")
		}
		heightBytes := []byte(strconv.Itoa(block.Height()))
		if err := txn.Set(hashKey(block.HexHash()), heightBytes); err != nil {
			return errors.Wrap(err, "writing block hash index")
		}
		return nil
	})
}

func (s *BadgerStore) dbGetMetaInt(key string) (int, error) {
	var res int
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		valBytes, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		res, err = strconv.Atoi(string(valBytes))
		return err
	})

	if err != nil {
		return 0, mapError(err, "Meta", key)
	}

	return res, nil
}

func (s *BadgerStore) dbSetMetaInt(key string, val int) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(strconv.Itoa(val)))
	})
}

// mapError turns badger's not-found into the typed store error.
func mapError(err error, dataType, key string) error {
	if err != nil {
		if errors.Cause(err) == badger.ErrKeyNotFound {
			return cm.NewStoreErr(dataType, cm.KeyNotFound, key)
		}
	}
	return err
}
