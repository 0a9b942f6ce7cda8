package txpool

import (
	"context"
	"errors"

	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto"
)

// DefaultLongevity is the number of blocks a transaction is expected to
// remain valid once admitted. The pool does not re-validate on every block;
// longevity bounds how long an entry may sit in the pool before it is
// re-checked against state.
const DefaultLongevity = uint64(64)

// Pool admission errors.
var (
	// ErrAlreadyKnown is returned when submitting a transaction whose hash is
	// already in the pool.
	ErrAlreadyKnown = errors.New("transaction already in pool")

	// ErrPoolFull is returned when the pool is at capacity.
	ErrPoolFull = errors.New("pool is full")

	// ErrFeeTooLow is returned when a transaction's fee is below the pool's
	// fee floor.
	ErrFeeTooLow = errors.New("fee below pool minimum")

	// ErrTooLarge is returned when the encoded transaction exceeds the
	// per-transaction size cap.
	ErrTooLarge = errors.New("transaction too large")

	// ErrUnsupported is returned by pool facades that do not accept
	// submissions.
	ErrUnsupported = errors.New("operation not supported by this pool")
)

// PoolTransaction wraps an opaque encoded transaction blob together with its
// content hash and the decoded fields the pool orders by.
type PoolTransaction struct {
	Data []byte

	hash []byte
	tx   *chain.Transaction
}

// NewPoolTransaction decodes a raw transaction blob and wraps it for the
// pool.
func NewPoolTransaction(raw []byte) (*PoolTransaction, error) {
	tx := new(chain.Transaction)
	if err := tx.Unmarshal(raw); err != nil {
		return nil, err
	}

	return &PoolTransaction{
		Data: raw,
		hash: crypto.SHA256(raw),
		tx:   tx,
	}, nil
}

// FromTransaction wraps an already-decoded transaction.
func FromTransaction(tx *chain.Transaction) (*PoolTransaction, error) {
	raw, err := tx.Marshal()
	if err != nil {
		return nil, err
	}
	return &PoolTransaction{
		Data: raw,
		hash: crypto.SHA256(raw),
		tx:   tx,
	}, nil
}

// Hash returns the content hash of the raw blob.
func (p *PoolTransaction) Hash() []byte {
	return p.hash
}

// HashString returns the hex form of the content hash.
func (p *PoolTransaction) HashString() string {
	return common.EncodeToString(p.hash)
}

// Transaction returns the decoded transaction.
func (p *PoolTransaction) Transaction() *chain.Transaction {
	return p.tx
}

// Priority is the ordering weight of the transaction. It is the declared fee.
func (p *PoolTransaction) Priority() uint64 {
	return p.tx.Fee
}

// Longevity is the number of blocks the admission check is trusted for.
func (p *PoolTransaction) Longevity() uint64 {
	return DefaultLongevity
}

// Sender ...
func (p *PoolTransaction) Sender() string {
	return p.tx.Sender
}

// Nonce ...
func (p *PoolTransaction) Nonce() uint64 {
	return p.tx.Nonce
}

// ReadyIterator iterates over a snapshot of ready transactions, best first.
// The consumer may report individual items as invalid while iterating;
// reported items are evicted from the underlying pool where the pool supports
// eviction.
type ReadyIterator interface {
	// HasNext returns true while the iterator is not exhausted.
	HasNext() bool

	// Next returns the next ready transaction, or nil when exhausted.
	Next() *PoolTransaction

	// ReportInvalid flags a transaction yielded by this iterator as invalid.
	ReportInvalid(tx *PoolTransaction)
}

// PoolStatus is a snapshot of pool occupancy.
type PoolStatus struct {
	Pending int `json:"pending"`
	Future  int `json:"future"`
}

// Pool is the transaction-pool contract consumed by the block proposer and
// the HTTP service.
type Pool interface {
	// SubmitOne imports one unverified raw transaction and returns its hash.
	SubmitOne(raw []byte) (string, error)

	// SubmitBatch imports a batch of unverified raw transactions. It returns
	// one result per input, in order.
	SubmitBatch(raws [][]byte) ([]string, []error)

	// Ready returns an iterator over the currently ready transactions.
	Ready() ReadyIterator

	// ReadyAt returns an iterator over the transactions ready for inclusion
	// in the block at the given height.
	ReadyAt(height int) ReadyIterator

	// ReportInvalid evicts the given hashes from the pool and returns the
	// evicted transactions.
	ReportInvalid(hashes []string) []*PoolTransaction

	// RemoveCommitted prunes all transactions included in the given block.
	RemoveCommitted(block *chain.Block)

	// Status returns pool occupancy.
	Status() PoolStatus

	// HashOf returns the pool hash of a raw transaction blob.
	HashOf(raw []byte) string

	// Drain streams the pool content in fee order as chunks. The channel is
	// closed when the pool is exhausted or ctx is cancelled.
	Drain(ctx context.Context) <-chan []*PoolTransaction
}
