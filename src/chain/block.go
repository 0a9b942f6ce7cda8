package chain

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"

	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto"
	"github.com/slatechain/slate/src/crypto/keys"
)

// Header identifies a block and commits it to its content, its position in
// the chain, and the authoring slot.
type Header struct {
	Height     int
	ParentHash []byte
	StateRoot  []byte
	TxRoot     []byte
	Slot       uint64
	Author     string //hex public key of the slot author
}

// Marshal - json encoding of the header only
func (h *Header) Marshal() ([]byte, error) {
	bf := bytes.NewBuffer([]byte{})
	enc := json.NewEncoder(bf)
	if err := enc.Encode(h); err != nil {
		return nil, err
	}
	return bf.Bytes(), nil
}

// Unmarshal ...
func (h *Header) Unmarshal(data []byte) error {
	b := bytes.NewBuffer(data)
	dec := json.NewDecoder(b)
	return dec.Decode(h)
}

// Hash ...
func (h *Header) Hash() ([]byte, error) {
	hashBytes, err := h.Marshal()
	if err != nil {
		return nil, err
	}
	return crypto.SHA256(hashBytes), nil
}

// Block is a header together with the raw transactions it contains, and the
// signatures collected over the header. The author signature is mandatory;
// additional validator signatures may be attached by the finality layer.
type Block struct {
	Header       Header
	Transactions [][]byte
	Signatures   map[string]string // [validator hex] => signature

	//cache
	hash []byte
	hex  string
}

// NewBlock assembles a block on top of a parent.
func NewBlock(height int, parentHash []byte, slot uint64, author string, stateRoot []byte, txs [][]byte) *Block {
	header := Header{
		Height:     height,
		ParentHash: parentHash,
		StateRoot:  stateRoot,
		TxRoot:     HashTransactions(txs),
		Slot:       slot,
		Author:     author,
	}

	return &Block{
		Header:       header,
		Transactions: txs,
		Signatures:   make(map[string]string),
	}
}

// Height ...
func (b *Block) Height() int {
	return b.Header.Height
}

// ParentHash ...
func (b *Block) ParentHash() []byte {
	return b.Header.ParentHash
}

// Hash returns the SHA256 hash of the header. It is computed once and cached.
func (b *Block) Hash() ([]byte, error) {
	if len(b.hash) == 0 {
		hash, err := b.Header.Hash()
		if err != nil {
			return nil, err
		}
		b.hash = hash
	}
	return b.hash, nil
}

// HexHash ...
func (b *Block) HexHash() string {
	if b.hex == "" {
		hash, err := b.Hash()
		if err != nil {
			return ""
		}
		b.hex = common.EncodeToString(hash)
	}
	return b.hex
}

// Sign signs the block header and attaches the signature.
func (b *Block) Sign(key *ecdsa.PrivateKey) error {
	hash, err := b.Hash()
	if err != nil {
		return err
	}

	r, s, err := keys.Sign(key, hash)
	if err != nil {
		return err
	}

	b.Signatures[keys.PublicKeyHex(&key.PublicKey)] = keys.EncodeSignature(r, s)

	return nil
}

// Verify checks the signature attached for the given hex public key.
func (b *Block) Verify(pubKeyHex string) (bool, error) {
	sig, ok := b.Signatures[pubKeyHex]
	if !ok {
		return false, fmt.Errorf("no signature from %s on block %d", pubKeyHex, b.Height())
	}

	pubBytes, err := common.DecodeFromString(pubKeyHex)
	if err != nil {
		return false, err
	}
	pubKey := keys.ToPublicKey(pubBytes)

	hash, err := b.Hash()
	if err != nil {
		return false, err
	}

	r, s, err := keys.DecodeSignature(sig)
	if err != nil {
		return false, err
	}

	return keys.Verify(pubKey, hash, r, s), nil
}

// Marshal ...
func (b *Block) Marshal() ([]byte, error) {
	bf := bytes.NewBuffer([]byte{})
	enc := json.NewEncoder(bf)
	if err := enc.Encode(b); err != nil {
		return nil, err
	}
	return bf.Bytes(), nil
}

// Unmarshal ...
func (b *Block) Unmarshal(data []byte) error {
	bf := bytes.NewBuffer(data)
	dec := json.NewDecoder(bf)
	return dec.Decode(b)
}

func (b *Block) String() string {
	return fmt.Sprintf("Block{height: %d, slot: %d, txs: %d}", b.Height(), b.Header.Slot, len(b.Transactions))
}
