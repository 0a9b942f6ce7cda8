package chain

import (
	"bytes"
	"reflect"
	"testing"
)

func TestTransactionMarshal(t *testing.T) {
	tx := NewTransaction("0XAAA", "0XBBB", 100, 5, 2, []byte("payload"))

	raw, err := tx.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded := new(Transaction)
	if err := decoded.Unmarshal(raw); err != nil {
		t.Fatal(err)
	}

	if decoded.Sender != tx.Sender ||
		decoded.Recipient != tx.Recipient ||
		decoded.Amount != tx.Amount ||
		decoded.Fee != tx.Fee ||
		decoded.Nonce != tx.Nonce {
		t.Fatalf("decoded transaction %v does not match %v", decoded, tx)
	}

	if !reflect.DeepEqual(decoded.Payload, tx.Payload) {
		t.Fatalf("decoded payload %v does not match %v", decoded.Payload, tx.Payload)
	}
}

func TestTransactionHashDeterministic(t *testing.T) {
	tx1 := NewTransaction("0XAAA", "0XBBB", 100, 5, 2, nil)
	tx2 := NewTransaction("0XAAA", "0XBBB", 100, 5, 2, nil)

	h1, err := tx1.Hash()
	if err != nil {
		t.Fatal(err)
	}
	h2, err := tx2.Hash()
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(h1, h2) {
		t.Fatal("identical transactions should have identical hashes")
	}

	tx3 := NewTransaction("0XAAA", "0XBBB", 100, 5, 3, nil)
	h3, _ := tx3.Hash()
	if bytes.Equal(h1, h3) {
		t.Fatal("different transactions should have different hashes")
	}
}

func TestHashTransactions(t *testing.T) {
	txs := [][]byte{[]byte("tx1"), []byte("tx2")}

	root := HashTransactions(txs)
	if len(root) != 32 {
		t.Fatalf("root should be 32 bytes, not %d", len(root))
	}

	if bytes.Equal(root, HashTransactions([][]byte{[]byte("tx2"), []byte("tx1")})) {
		t.Fatal("transaction root should depend on order")
	}

	if !bytes.Equal(root, HashTransactions(txs)) {
		t.Fatal("transaction root should be deterministic")
	}
}
