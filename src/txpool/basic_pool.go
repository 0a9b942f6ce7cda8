package txpool

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto"
)

// Options control BasicPool admission.
type Options struct {
	// MaxPending is the maximum number of transactions held in the pool.
	MaxPending int

	// MaxTxBytes is the per-transaction size cap on the encoded blob.
	MaxTxBytes int

	// MinFee is the fee floor. Transactions declaring a lower fee are
	// rejected outright.
	MinFee uint64
}

// DefaultOptions returns the options used by a regular node.
func DefaultOptions() Options {
	return Options{
		MaxPending: 8192,
		MaxTxBytes: 64 * 1024,
		MinFee:     1,
	}
}

// CheckFunc validates a decoded transaction against current state during
// admission. A nil CheckFunc admits everything that passes the static checks.
type CheckFunc func(tx *chain.Transaction) error

// BasicPool is the in-memory transaction pool of a running node. Pending
// transactions are kept unordered; ordering happens on a snapshot when a
// ready iterator is requested, so submission and iteration do not contend on
// a sorted structure.
type BasicPool struct {
	lock sync.RWMutex

	opts    Options
	check   CheckFunc
	pending []*PoolTransaction
	byHash  map[string]*PoolTransaction

	// recently evicted hashes, so invalidated transactions are not
	// immediately re-admitted by gossip
	dropped *common.LRU

	logger *logrus.Entry
}

// NewBasicPool creates an empty pool.
func NewBasicPool(opts Options, check CheckFunc, logger *logrus.Entry) *BasicPool {
	if logger == nil {
		log := logrus.New()
		logger = log.WithField("prefix", "txpool")
	}

	return &BasicPool{
		opts:    opts,
		check:   check,
		byHash:  make(map[string]*PoolTransaction),
		dropped: common.NewLRU(opts.MaxPending, nil),
		logger:  logger,
	}
}

// SubmitOne implements the Pool interface.
func (p *BasicPool) SubmitOne(raw []byte) (string, error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.submit(raw)
}

// SubmitBatch implements the Pool interface.
func (p *BasicPool) SubmitBatch(raws [][]byte) ([]string, []error) {
	p.lock.Lock()
	defer p.lock.Unlock()

	hashes := make([]string, len(raws))
	errs := make([]error, len(raws))
	for i, raw := range raws {
		hashes[i], errs[i] = p.submit(raw)
	}
	return hashes, errs
}

// submit runs admission for one transaction. Callers must hold the lock.
func (p *BasicPool) submit(raw []byte) (string, error) {
	if p.opts.MaxTxBytes > 0 && len(raw) > p.opts.MaxTxBytes {
		return "", ErrTooLarge
	}

	ptx, err := NewPoolTransaction(raw)
	if err != nil {
		return "", err
	}

	hash := ptx.HashString()

	if _, ok := p.byHash[hash]; ok {
		return hash, ErrAlreadyKnown
	}

	if p.dropped.Contains(hash) {
		return hash, ErrAlreadyKnown
	}

	if ptx.Priority() < p.opts.MinFee {
		return hash, ErrFeeTooLow
	}

	if p.opts.MaxPending > 0 && len(p.pending) >= p.opts.MaxPending {
		return hash, ErrPoolFull
	}

	if p.check != nil {
		if err := p.check(ptx.Transaction()); err != nil {
			return hash, err
		}
	}

	p.pending = append(p.pending, ptx)
	p.byHash[hash] = ptx

	p.logger.WithFields(logrus.Fields{
		"hash":    hash,
		"fee":     ptx.Priority(),
		"pending": len(p.pending),
	}).Debug("Admitted transaction")

	return hash, nil
}

// snapshot returns a copy of pending, ordered for inclusion.
func (p *BasicPool) snapshot() []*PoolTransaction {
	p.lock.RLock()
	pendingCopy := append(p.pending[:0:0], p.pending...)
	p.lock.RUnlock()

	sort.Sort(byFeeAndNonce(pendingCopy))
	return pendingCopy
}

// Ready implements the Pool interface.
func (p *BasicPool) Ready() ReadyIterator {
	return newPoolIterator(p.snapshot(), p)
}

// ReadyAt implements the Pool interface. The BasicPool holds no per-height
// views; readiness is always relative to the latest known state.
func (p *BasicPool) ReadyAt(height int) ReadyIterator {
	return p.Ready()
}

// ReportInvalid implements the Pool interface.
func (p *BasicPool) ReportInvalid(hashes []string) []*PoolTransaction {
	p.lock.Lock()
	defer p.lock.Unlock()

	evicted := []*PoolTransaction{}
	for _, hash := range hashes {
		if ptx := p.remove(hash); ptx != nil {
			p.dropped.Add(hash, struct{}{})
			evicted = append(evicted, ptx)
		}
	}

	if len(evicted) > 0 {
		p.logger.WithField("count", len(evicted)).Debug("Evicted invalid transactions")
	}

	return evicted
}

// RemoveCommitted implements the Pool interface.
func (p *BasicPool) RemoveCommitted(block *chain.Block) {
	p.lock.Lock()
	defer p.lock.Unlock()

	removed := 0
	for _, raw := range block.Transactions {
		hash := common.EncodeToString(crypto.SHA256(raw))
		if p.remove(hash) != nil {
			removed++
		}
	}

	if removed > 0 {
		p.logger.WithFields(logrus.Fields{
			"block":   block.Height(),
			"removed": removed,
			"pending": len(p.pending),
		}).Debug("Pruned committed transactions")
	}
}

// remove drops a transaction by hash. It is idempotent. Callers must hold the
// lock.
func (p *BasicPool) remove(hash string) *PoolTransaction {
	ptx, ok := p.byHash[hash]
	if !ok {
		return nil
	}

	delete(p.byHash, hash)
	for i, cur := range p.pending {
		if cur == ptx {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			break
		}
	}

	return ptx
}

// Status implements the Pool interface.
func (p *BasicPool) Status() PoolStatus {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return PoolStatus{Pending: len(p.pending)}
}

// HashOf implements the Pool interface.
func (p *BasicPool) HashOf(raw []byte) string {
	return common.EncodeToString(crypto.SHA256(raw))
}

// DrainChunk is the number of transactions per Drain chunk.
const DrainChunk = 256

// Drain implements the Pool interface. The snapshot is cut into fixed-size
// chunks which are written to the returned channel until exhaustion or
// cancellation.
func (p *BasicPool) Drain(ctx context.Context) <-chan []*PoolTransaction {
	chunks := make(chan []*PoolTransaction)

	snapshot := p.snapshot()

	go func() {
		defer close(chunks)

		for start := 0; start < len(snapshot); start += DrainChunk {
			end := start + DrainChunk
			if end > len(snapshot) {
				end = len(snapshot)
			}

			select {
			case chunks <- snapshot[start:end]:
			case <-ctx.Done():
				p.logger.Warn("Cancelled draining pool")
				return
			}
		}
	}()

	return chunks
}
