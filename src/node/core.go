package node

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/chainspec"
	"github.com/slatechain/slate/src/crypto/keys"
	"github.com/slatechain/slate/src/store"
	"github.com/slatechain/slate/src/txpool"
)

// Core implements the chain logic of a node: proposing blocks for slots,
// verifying and executing incoming blocks, and tracking finality. It wires
// together the chain spec, the account state, the block store and the
// transaction pool; the surrounding Node drives it from timers and transport
// events.
type Core struct {
	coreLock sync.Mutex

	key       *ecdsa.PrivateKey
	pubKeyHex string

	spec  *chainspec.ChainSpec
	state *chain.State
	store store.Store
	pool  txpool.Pool

	maxBlockTxs       int
	confirmationDepth int

	logger *logrus.Entry
}

// NewCore ...
func NewCore(
	key *ecdsa.PrivateKey,
	spec *chainspec.ChainSpec,
	st store.Store,
	pool txpool.Pool,
	maxBlockTxs int,
	confirmationDepth int,
	logger *logrus.Entry,
) *Core {
	return &Core{
		key:               key,
		pubKeyHex:         keys.PublicKeyHex(&key.PublicKey),
		spec:              spec,
		state:             spec.GenesisState(),
		store:             st,
		pool:              pool,
		maxBlockTxs:       maxBlockTxs,
		confirmationDepth: confirmationDepth,
		logger:            logger,
	}
}

// PubKeyHex returns the validator's public key in hex format.
func (c *Core) PubKeyHex() string {
	return c.pubKeyHex
}

// IsAuthority reports whether the validator belongs to the authority set.
func (c *Core) IsAuthority() bool {
	return c.spec.AuthorityIndex(c.pubKeyHex) >= 0
}

// Bootstrap replays all stored blocks through a fresh genesis state. It is
// called when the store was loaded from an existing database.
func (c *Core) Bootstrap() error {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	st := c.spec.GenesisState()

	head := c.store.LastBlockHeight()
	for height := 0; height <= head; height++ {
		block, err := c.store.GetBlock(height)
		if err != nil {
			return fmt.Errorf("bootstrap: reading block %d: %v", height, err)
		}
		if err := st.ApplyBlock(block); err != nil {
			return fmt.Errorf("bootstrap: %v", err)
		}
	}

	c.state = st

	c.logger.WithField("head", head).Debug("Bootstrapped from store")

	return nil
}

// HeadHeight returns the height of the chain head, -1 for an empty chain.
func (c *Core) HeadHeight() int {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()
	return c.store.LastBlockHeight()
}

// FinalizedHeight returns the height below which blocks are irreversible.
func (c *Core) FinalizedHeight() int {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()
	return c.store.LastFinalizedHeight()
}

// GetBlock returns the block at the given height. Reads take the core lock so
// they do not race a concurrent import.
func (c *Core) GetBlock(height int) (*chain.Block, error) {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()
	return c.store.GetBlock(height)
}

// Pool returns the transaction pool.
func (c *Core) Pool() txpool.Pool {
	return c.pool
}

// State returns the committed ledger.
func (c *Core) State() *chain.State {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()
	return c.state
}

// parentHash returns the hash of the current head, or an empty slice for the
// genesis parent.
func (c *Core) parentHash() ([]byte, error) {
	head := c.store.LastBlockHeight()
	if head < 0 {
		return []byte{}, nil
	}
	headBlock, err := c.store.GetBlock(head)
	if err != nil {
		return nil, err
	}
	return headBlock.Hash()
}

// OwnSlot reports whether the validator is the author assigned to slot.
func (c *Core) OwnSlot(slot uint64) bool {
	return c.spec.SlotAuthor(slot) == c.pubKeyHex
}

// ProposeBlock fills a block for the given slot from the pool's ready
// iterator, executes it on a copy of state, and signs the header.
// Transactions that fail execution are reported back to the pool through the
// iterator and skipped.
func (c *Core) ProposeBlock(slot uint64) (*chain.Block, error) {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	if !c.OwnSlot(slot) {
		return nil, fmt.Errorf("slot %d belongs to %s", slot, c.spec.SlotAuthor(slot))
	}

	height := c.store.LastBlockHeight() + 1

	parentHash, err := c.parentHash()
	if err != nil {
		return nil, err
	}

	trial := c.state.Copy()

	txs := [][]byte{}
	it := c.pool.ReadyAt(height)
	for it.HasNext() && len(txs) < c.maxBlockTxs {
		ptx := it.Next()
		if err := trial.ApplyTransaction(ptx.Transaction()); err != nil {
			c.logger.WithFields(logrus.Fields{
				"hash":  ptx.HashString(),
				"error": err,
			}).Debug("Dropping invalid transaction from proposal")
			it.ReportInvalid(ptx)
			continue
		}
		txs = append(txs, ptx.Data)
	}

	block := chain.NewBlock(height, parentHash, slot, c.pubKeyHex, trial.Root(), txs)

	if err := block.Sign(c.key); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"height": height,
		"slot":   slot,
		"txs":    len(txs),
	}).Debug("Proposed block")

	return block, nil
}

// ImportBlock verifies a block against the chain rules, executes it, and
// commits it: parent linkage, round-robin slot author, author signature,
// transaction root, and state root must all check out.
func (c *Core) ImportBlock(block *chain.Block) error {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	expected := c.store.LastBlockHeight() + 1
	if block.Height() != expected {
		return fmt.Errorf("wrong height %d, expected %d", block.Height(), expected)
	}

	parentHash, err := c.parentHash()
	if err != nil {
		return err
	}
	if !bytes.Equal(block.ParentHash(), parentHash) {
		return fmt.Errorf("block %d does not extend the chain head", block.Height())
	}

	author := c.spec.SlotAuthor(block.Header.Slot)
	if block.Header.Author != author {
		return fmt.Errorf("block %d: slot %d belongs to %s, authored by %s",
			block.Height(), block.Header.Slot, author, block.Header.Author)
	}

	ok, err := block.Verify(block.Header.Author)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("block %d: invalid author signature", block.Height())
	}

	if !bytes.Equal(block.Header.TxRoot, chain.HashTransactions(block.Transactions)) {
		return fmt.Errorf("block %d: transaction root mismatch", block.Height())
	}

	newState := c.state.Copy()
	if err := newState.ApplyBlock(block); err != nil {
		return err
	}

	if !bytes.Equal(newState.Root(), block.Header.StateRoot) {
		return fmt.Errorf("block %d: state root mismatch", block.Height())
	}

	if err := c.store.SetBlock(block); err != nil {
		return err
	}

	c.state = newState

	c.pool.RemoveCommitted(block)

	// depth-based finality: the stand-in for an external voting gadget
	if finalized := block.Height() - c.confirmationDepth; finalized >= 0 {
		if err := c.store.SetFinalizedHeight(finalized); err != nil {
			return err
		}
	}

	c.logger.WithFields(logrus.Fields{
		"height":    block.Height(),
		"txs":       len(block.Transactions),
		"finalized": c.store.LastFinalizedHeight(),
	}).Debug("Imported block")

	return nil
}
