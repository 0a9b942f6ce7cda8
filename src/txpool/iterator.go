package txpool

// evicter is the part of a pool that an iterator reports invalid items to.
type evicter interface {
	ReportInvalid(hashes []string) []*PoolTransaction
}

// poolIterator walks a snapshot of ready transactions. Invalidity reports are
// forwarded to the owning pool so the offending entries are evicted.
type poolIterator struct {
	txs   []*PoolTransaction
	state int
	pool  evicter
}

func newPoolIterator(txs []*PoolTransaction, pool evicter) *poolIterator {
	return &poolIterator{txs: txs, pool: pool}
}

// HasNext implements the ReadyIterator interface.
func (i *poolIterator) HasNext() bool {
	return i.state < len(i.txs)
}

// Next implements the ReadyIterator interface.
func (i *poolIterator) Next() *PoolTransaction {
	if i.state < len(i.txs) {
		cur := i.txs[i.state]
		i.state++
		return cur
	}
	return nil
}

// ReportInvalid implements the ReadyIterator interface.
func (i *poolIterator) ReportInvalid(tx *PoolTransaction) {
	if i.pool == nil || tx == nil {
		return
	}
	i.pool.ReportInvalid([]string{tx.HashString()})
}
