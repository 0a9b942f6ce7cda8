package chain

import (
	"bytes"
	"fmt"

	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto"
	"github.com/ugorji/go/codec"
)

// Transaction is a value transfer between two accounts. Sender and Recipient
// are hex-encoded public keys. The Payload is opaque to the chain; it is
// carried along and hashed but never interpreted.
type Transaction struct {
	Sender    string
	Recipient string
	Amount    uint64
	Fee       uint64
	Nonce     uint64
	Payload   []byte

	//cache
	hash []byte
}

// NewTransaction ...
func NewTransaction(sender, recipient string, amount, fee, nonce uint64, payload []byte) *Transaction {
	return &Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Fee:       fee,
		Nonce:     nonce,
		Payload:   payload,
	}
}

// Marshal returns the canonical encoding of the transaction.
func (t *Transaction) Marshal() ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(t); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal parses a canonical encoding as produced by Marshal.
func (t *Transaction) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(t)
}

// Hash returns the SHA256 hash of the canonical encoding. The value is
// computed once and cached.
func (t *Transaction) Hash() ([]byte, error) {
	if len(t.hash) == 0 {
		raw, err := t.Marshal()
		if err != nil {
			return nil, err
		}
		t.hash = crypto.SHA256(raw)
	}
	return t.hash, nil
}

// HashString returns the hex representation of the transaction hash.
func (t *Transaction) HashString() string {
	hash, err := t.Hash()
	if err != nil {
		return ""
	}
	return common.EncodeToString(hash)
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{%s -> %s, amount: %d, fee: %d, nonce: %d}",
		shortKey(t.Sender), shortKey(t.Recipient), t.Amount, t.Fee, t.Nonce)
}

func shortKey(k string) string {
	if len(k) > 10 {
		return k[:10] + "..."
	}
	return k
}

// HashTransactions computes the root hash of a list of raw transactions. It is
// the hash of the concatenation of the individual transaction hashes, which is
// enough to commit a header to its transaction list without a full tree.
func HashTransactions(txs [][]byte) []byte {
	acc := []byte{}
	for _, tx := range txs {
		acc = append(acc, crypto.SHA256(tx)...)
	}
	return crypto.SHA256(acc)
}
