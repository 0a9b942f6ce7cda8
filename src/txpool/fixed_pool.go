package txpool

import (
	"context"

	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto"
)

// FixedPool feeds a fixed, pre-generated batch of transactions to a block
// proposer. It exists for the construction benchmark, where the cost being
// measured is block filling, not pool admission: submission and per-height
// views are deliberately unsupported, and only ready-iteration and
// invalidity reporting are real.
type FixedPool struct {
	txs    []*PoolTransaction
	byHash map[string]int //hash => index in txs
}

// NewFixedPool wraps a pre-generated batch. The batch order is preserved; the
// generator is expected to have produced transactions in inclusion order.
func NewFixedPool(txs []*PoolTransaction) *FixedPool {
	byHash := make(map[string]int, len(txs))
	for i, tx := range txs {
		byHash[tx.HashString()] = i
	}
	return &FixedPool{txs: txs, byHash: byHash}
}

// SubmitOne implements the Pool interface. FixedPool does not accept
// submissions.
func (p *FixedPool) SubmitOne(raw []byte) (string, error) {
	return "", ErrUnsupported
}

// SubmitBatch implements the Pool interface. FixedPool does not accept
// submissions.
func (p *FixedPool) SubmitBatch(raws [][]byte) ([]string, []error) {
	hashes := make([]string, len(raws))
	errs := make([]error, len(raws))
	for i := range raws {
		errs[i] = ErrUnsupported
	}
	return hashes, errs
}

// Ready implements the Pool interface.
func (p *FixedPool) Ready() ReadyIterator {
	return newPoolIterator(append(p.txs[:0:0], p.txs...), nil)
}

// ReadyAt implements the Pool interface. The batch is the same at every
// height.
func (p *FixedPool) ReadyAt(height int) ReadyIterator {
	return p.Ready()
}

// ReportInvalid implements the Pool interface. Reported hashes are dropped
// from the batch.
func (p *FixedPool) ReportInvalid(hashes []string) []*PoolTransaction {
	evicted := []*PoolTransaction{}
	for _, hash := range hashes {
		i, ok := p.byHash[hash]
		if !ok {
			continue
		}
		evicted = append(evicted, p.txs[i])
		p.txs = append(p.txs[:i], p.txs[i+1:]...)
		delete(p.byHash, hash)
		for h, j := range p.byHash {
			if j > i {
				p.byHash[h] = j - 1
			}
		}
	}
	return evicted
}

// RemoveCommitted implements the Pool interface. It is a no-op: the benchmark
// rebuilds the pool for every run.
func (p *FixedPool) RemoveCommitted(block *chain.Block) {}

// Status implements the Pool interface.
func (p *FixedPool) Status() PoolStatus {
	return PoolStatus{Pending: len(p.txs)}
}

// HashOf implements the Pool interface.
func (p *FixedPool) HashOf(raw []byte) string {
	return common.EncodeToString(crypto.SHA256(raw))
}

// Drain implements the Pool interface.
func (p *FixedPool) Drain(ctx context.Context) <-chan []*PoolTransaction {
	chunks := make(chan []*PoolTransaction, 1)
	chunks <- append(p.txs[:0:0], p.txs...)
	close(chunks)
	return chunks
}
