package chain

import (
	"bytes"
	"math"
	"testing"
)

func TestApplyTransaction(t *testing.T) {
	state := NewState(map[string]uint64{"0XAAA": 1000})

	tx := NewTransaction("0XAAA", "0XBBB", 100, 5, 0, nil)
	if err := state.ApplyTransaction(tx); err != nil {
		t.Fatal(err)
	}

	sender := state.GetAccount("0XAAA")
	if sender.Balance != 895 {
		t.Fatalf("sender balance should be 895, not %d", sender.Balance)
	}
	if sender.Nonce != 1 {
		t.Fatalf("sender nonce should be 1, not %d", sender.Nonce)
	}

	recipient := state.GetAccount("0XBBB")
	if recipient.Balance != 100 {
		t.Fatalf("recipient balance should be 100, not %d", recipient.Balance)
	}
}

func TestApplyTransactionWrongNonce(t *testing.T) {
	state := NewState(map[string]uint64{"0XAAA": 1000})

	tx := NewTransaction("0XAAA", "0XBBB", 100, 5, 3, nil)
	if err := state.ApplyTransaction(tx); err == nil {
		t.Fatal("expected an error for a nonce gap")
	}
}

func TestApplyTransactionInsufficientBalance(t *testing.T) {
	state := NewState(map[string]uint64{"0XAAA": 10})

	tx := NewTransaction("0XAAA", "0XBBB", 100, 5, 0, nil)
	if err := state.ApplyTransaction(tx); err == nil {
		t.Fatal("expected an error for insufficient balance")
	}
}

func TestApplyTransactionOverflow(t *testing.T) {
	state := NewState(map[string]uint64{"0XAAA": 10})

	// amount+fee wraps around uint64; must not pass the balance check
	tx := NewTransaction("0XAAA", "0XBBB", math.MaxUint64, 2, 0, nil)

	if err := state.CheckTransaction(tx); err == nil {
		t.Fatal("admission should reject a wrapping amount")
	}
	if err := state.ApplyTransaction(tx); err == nil {
		t.Fatal("execution should reject a wrapping amount")
	}

	if got := state.GetAccount("0XAAA").Balance; got != 10 {
		t.Fatalf("sender balance should be untouched, not %d", got)
	}
	if got := state.GetAccount("0XBBB").Balance; got != 0 {
		t.Fatalf("recipient balance should be 0, not %d", got)
	}

	// the exact boundary is still spendable
	boundary := NewTransaction("0XAAA", "0XBBB", 8, 2, 0, nil)
	if err := state.ApplyTransaction(boundary); err != nil {
		t.Fatal(err)
	}
}

func TestCheckTransactionAllowsNonceGaps(t *testing.T) {
	state := NewState(map[string]uint64{"0XAAA": 1000})

	// future nonce: admissible in the pool, not yet executable
	future := NewTransaction("0XAAA", "0XBBB", 100, 5, 7, nil)
	if err := state.CheckTransaction(future); err != nil {
		t.Fatal(err)
	}

	if err := state.ApplyTransaction(NewTransaction("0XAAA", "0XBBB", 1, 1, 0, nil)); err != nil {
		t.Fatal(err)
	}

	// stale nonce: rejected
	stale := NewTransaction("0XAAA", "0XBBB", 100, 5, 0, nil)
	if err := state.CheckTransaction(stale); err == nil {
		t.Fatal("expected an error for a stale nonce")
	}
}

func TestStateRoot(t *testing.T) {
	state1 := NewState(map[string]uint64{"0XAAA": 1000, "0XBBB": 500})
	state2 := NewState(map[string]uint64{"0XBBB": 500, "0XAAA": 1000})

	if !bytes.Equal(state1.Root(), state2.Root()) {
		t.Fatal("state root should not depend on allocation order")
	}

	if err := state1.ApplyTransaction(NewTransaction("0XAAA", "0XBBB", 100, 5, 0, nil)); err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(state1.Root(), state2.Root()) {
		t.Fatal("state root should change after a transaction")
	}
}

func TestStateCopy(t *testing.T) {
	state := NewState(map[string]uint64{"0XAAA": 1000})

	cp := state.Copy()
	if err := cp.ApplyTransaction(NewTransaction("0XAAA", "0XBBB", 100, 5, 0, nil)); err != nil {
		t.Fatal(err)
	}

	if got := state.GetAccount("0XAAA").Balance; got != 1000 {
		t.Fatalf("original state should be untouched, sender balance is %d", got)
	}

	if got := cp.GetAccount("0XAAA").Balance; got != 895 {
		t.Fatalf("copy should be modified, sender balance is %d", got)
	}
}
