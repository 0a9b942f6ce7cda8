package node

import (
	"bytes"
	"crypto/ecdsa"
	"sync"
	"testing"

	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/chainspec"
	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto/keys"
	"github.com/slatechain/slate/src/store"
	"github.com/slatechain/slate/src/txpool"
)

func devCore(t *testing.T, st store.Store) (*Core, *txpool.BasicPool) {
	spec := chainspec.Development()

	pool := txpool.NewBasicPool(txpool.DefaultOptions(), nil, common.NewTestEntry(t, "txpool"))

	core := NewCore(
		keys.FromSeed("alice"),
		spec,
		st,
		pool,
		100,
		2,
		common.NewTestEntry(t, "core"),
	)

	return core, pool
}

func submitTransfer(t *testing.T, pool txpool.Pool, key *ecdsa.PrivateKey, fee, nonce uint64) string {
	sender := keys.PublicKeyHex(&key.PublicKey)

	tx := chain.NewTransaction(sender, "0XRECIPIENT", 100, fee, nonce, nil)
	raw, err := tx.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	hash, err := pool.SubmitOne(raw)
	if err != nil {
		t.Fatal(err)
	}
	return hash
}

func TestProposeAndImportBlock(t *testing.T) {
	core, pool := devCore(t, store.NewInmemStore(100))

	alice := keys.FromSeed("alice")

	submitTransfer(t, pool, alice, 10, 0)
	submitTransfer(t, pool, alice, 10, 1)

	// alice authors every slot on the dev chain
	block, err := core.ProposeBlock(0)
	if err != nil {
		t.Fatal(err)
	}

	if block.Height() != 0 {
		t.Fatalf("first block height should be 0, not %d", block.Height())
	}
	if len(block.Transactions) != 2 {
		t.Fatalf("block should contain 2 transactions, not %d", len(block.Transactions))
	}

	// proposing does not commit
	if core.HeadHeight() != -1 {
		t.Fatal("proposing a block should not advance the head")
	}

	if err := core.ImportBlock(block); err != nil {
		t.Fatal(err)
	}

	if core.HeadHeight() != 0 {
		t.Fatalf("head should be 0, not %d", core.HeadHeight())
	}

	// committed transactions are pruned from the pool
	if got := pool.Status().Pending; got != 0 {
		t.Fatalf("pool should be empty, not %d", got)
	}

	// the ledger reflects the transfers
	recipient := core.State().GetAccount("0XRECIPIENT")
	if recipient.Balance != 200 {
		t.Fatalf("recipient balance should be 200, not %d", recipient.Balance)
	}
}

func TestProposeReportsInvalid(t *testing.T) {
	core, pool := devCore(t, store.NewInmemStore(100))

	alice := keys.FromSeed("alice")

	submitTransfer(t, pool, alice, 10, 0)
	// nonce gap: admissible in the pool, not executable yet
	submitTransfer(t, pool, alice, 10, 5)

	block, err := core.ProposeBlock(0)
	if err != nil {
		t.Fatal(err)
	}

	if len(block.Transactions) != 1 {
		t.Fatalf("block should contain 1 transaction, not %d", len(block.Transactions))
	}

	// the non-executable transaction was reported invalid and evicted
	if got := pool.Status().Pending; got != 1 {
		t.Fatalf("pool should hold 1 transaction, not %d", got)
	}
}

func TestProposeWrongSlot(t *testing.T) {
	spec := chainspec.LocalTestnet()

	pool := txpool.NewBasicPool(txpool.DefaultOptions(), nil, common.NewTestEntry(t, "txpool"))

	// alice only owns every other slot on the local testnet
	core := NewCore(keys.FromSeed("alice"), spec, store.NewInmemStore(100), pool, 100, 2,
		common.NewTestEntry(t, "core"))

	aliceIdx := spec.AuthorityIndex(core.PubKeyHex())

	ownSlot := uint64(aliceIdx)
	otherSlot := uint64(aliceIdx + 1)

	if !core.OwnSlot(ownSlot) {
		t.Fatal("alice should own her slot")
	}
	if core.OwnSlot(otherSlot) {
		t.Fatal("alice should not own bob's slot")
	}

	if _, err := core.ProposeBlock(otherSlot); err == nil {
		t.Fatal("proposing for another validator's slot should fail")
	}
}

func TestImportBlockRejections(t *testing.T) {
	core, pool := devCore(t, store.NewInmemStore(100))

	alice := keys.FromSeed("alice")
	submitTransfer(t, pool, alice, 10, 0)

	block, err := core.ProposeBlock(0)
	if err != nil {
		t.Fatal(err)
	}

	// wrong height
	badHeight := chain.NewBlock(5, block.ParentHash(), 0, block.Header.Author,
		block.Header.StateRoot, block.Transactions)
	badHeight.Sign(alice)
	if err := core.ImportBlock(badHeight); err == nil {
		t.Fatal("expected an error for a wrong height")
	}

	// wrong parent
	badParent := chain.NewBlock(0, []byte("bogus"), 0, block.Header.Author,
		block.Header.StateRoot, block.Transactions)
	badParent.Sign(alice)
	if err := core.ImportBlock(badParent); err == nil {
		t.Fatal("expected an error for a wrong parent hash")
	}

	// author not matching the slot schedule
	bob := keys.FromSeed("bob")
	badAuthor := chain.NewBlock(0, block.ParentHash(), 0, keys.PublicKeyHex(&bob.PublicKey),
		block.Header.StateRoot, block.Transactions)
	badAuthor.Sign(bob)
	if err := core.ImportBlock(badAuthor); err == nil {
		t.Fatal("expected an error for a wrong slot author")
	}

	// missing author signature
	unsigned := chain.NewBlock(0, block.ParentHash(), 0, block.Header.Author,
		block.Header.StateRoot, block.Transactions)
	if err := core.ImportBlock(unsigned); err == nil {
		t.Fatal("expected an error for a missing signature")
	}

	// wrong state root
	badRoot := chain.NewBlock(0, block.ParentHash(), 0, block.Header.Author,
		[]byte("bogus"), block.Transactions)
	badRoot.Sign(alice)
	if err := core.ImportBlock(badRoot); err == nil {
		t.Fatal("expected an error for a state root mismatch")
	}

	// the pristine block still imports
	if err := core.ImportBlock(block); err != nil {
		t.Fatal(err)
	}
}

func TestDepthFinality(t *testing.T) {
	core, _ := devCore(t, store.NewInmemStore(100))

	// confirmation depth is 2
	for i := 0; i < 4; i++ {
		block, err := core.ProposeBlock(uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		if err := core.ImportBlock(block); err != nil {
			t.Fatal(err)
		}
	}

	if core.HeadHeight() != 3 {
		t.Fatalf("head should be 3, not %d", core.HeadHeight())
	}
	if core.FinalizedHeight() != 1 {
		t.Fatalf("finalized height should be 1, not %d", core.FinalizedHeight())
	}
}

func TestConcurrentReads(t *testing.T) {
	core, _ := devCore(t, store.NewInmemStore(100))

	// service and RPC goroutines read while the import path writes
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			core.FinalizedHeight()
			if h := core.HeadHeight(); h >= 0 {
				if _, err := core.GetBlock(h); err != nil {
					t.Error(err)
					return
				}
			}
		}
	}()

	for i := 0; i < 20; i++ {
		block, err := core.ProposeBlock(uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		if err := core.ImportBlock(block); err != nil {
			t.Fatal(err)
		}
	}

	close(stop)
	wg.Wait()
}

func TestBootstrap(t *testing.T) {
	st := store.NewInmemStore(100)

	core, pool := devCore(t, st)

	alice := keys.FromSeed("alice")
	submitTransfer(t, pool, alice, 10, 0)

	for i := 0; i < 3; i++ {
		block, err := core.ProposeBlock(uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		if err := core.ImportBlock(block); err != nil {
			t.Fatal(err)
		}
	}

	// a fresh core over the same store replays to the same state
	rebuilt, _ := devCore(t, st)
	if err := rebuilt.Bootstrap(); err != nil {
		t.Fatal(err)
	}

	if rebuilt.HeadHeight() != core.HeadHeight() {
		t.Fatalf("rebuilt head should be %d, not %d", core.HeadHeight(), rebuilt.HeadHeight())
	}
	if !bytes.Equal(rebuilt.State().Root(), core.State().Root()) {
		t.Fatal("rebuilt state root should match")
	}
}
