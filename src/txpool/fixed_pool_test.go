package txpool

import (
	"context"
	"testing"

	"github.com/slatechain/slate/src/chain"
)

func fixedPoolBatch(t *testing.T, count int) []*PoolTransaction {
	txs := []*PoolTransaction{}
	for i := 0; i < count; i++ {
		tx := chain.NewTransaction("0XAAA", "0XBBB", 1, 10, uint64(i), nil)
		ptx, err := FromTransaction(tx)
		if err != nil {
			t.Fatal(err)
		}
		txs = append(txs, ptx)
	}
	return txs
}

func TestFixedPoolSubmitUnsupported(t *testing.T) {
	pool := NewFixedPool(fixedPoolBatch(t, 3))

	if _, err := pool.SubmitOne([]byte("tx")); err != ErrUnsupported {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}

	_, errs := pool.SubmitBatch([][]byte{[]byte("tx1"), []byte("tx2")})
	for _, err := range errs {
		if err != ErrUnsupported {
			t.Fatalf("expected ErrUnsupported, got %v", err)
		}
	}

	if got := pool.Status().Pending; got != 3 {
		t.Fatalf("pool should still hold 3 transactions, not %d", got)
	}
}

func TestFixedPoolReadyPreservesOrder(t *testing.T) {
	batch := fixedPoolBatch(t, 5)
	pool := NewFixedPool(batch)

	it := pool.ReadyAt(1)

	for i := 0; it.HasNext(); i++ {
		if got := it.Next(); got != batch[i] {
			t.Fatalf("iterator should preserve batch order at position %d", i)
		}
	}

	// a fresh iterator starts over
	it2 := pool.Ready()
	if it2.Next() != batch[0] {
		t.Fatal("a fresh iterator should start from the beginning")
	}
}

func TestFixedPoolReportInvalid(t *testing.T) {
	batch := fixedPoolBatch(t, 3)
	pool := NewFixedPool(batch)

	evicted := pool.ReportInvalid([]string{batch[1].HashString()})

	if len(evicted) != 1 || evicted[0] != batch[1] {
		t.Fatalf("should have evicted the middle transaction, got %v", evicted)
	}

	if got := pool.Status().Pending; got != 2 {
		t.Fatalf("pool should hold 2 transactions, not %d", got)
	}

	it := pool.Ready()
	if it.Next() != batch[0] || it.Next() != batch[2] {
		t.Fatal("the remaining transactions should keep their relative order")
	}

	// unknown hashes are ignored
	if again := pool.ReportInvalid([]string{batch[1].HashString()}); len(again) != 0 {
		t.Fatal("re-reporting an evicted transaction should be a no-op")
	}
}

func TestFixedPoolIteratorReportInvalid(t *testing.T) {
	batch := fixedPoolBatch(t, 3)
	pool := NewFixedPool(batch)

	it := pool.Ready()

	// the snapshot is unaffected, the pool is
	first := it.Next()
	it.ReportInvalid(first)

	if got := pool.Status().Pending; got != 3 {
		t.Fatal("a snapshot-only iterator must not evict from the pool")
	}
}

func TestFixedPoolDrain(t *testing.T) {
	batch := fixedPoolBatch(t, 4)
	pool := NewFixedPool(batch)

	total := 0
	for chunk := range pool.Drain(context.Background()) {
		total += len(chunk)
	}
	if total != 4 {
		t.Fatalf("drain should yield 4 transactions, not %d", total)
	}
}
