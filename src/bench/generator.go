package bench

import (
	"encoding/binary"

	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/chainspec"
	"github.com/slatechain/slate/src/txpool"
)

// GenerateTransactions produces count transfers from the endowed alice dev
// account, nonces ascending, fees rotating so ordering has something to chew
// on. The output order is a valid inclusion order.
func GenerateTransactions(count int) ([]*txpool.PoolTransaction, error) {
	alice := chainspec.SeedKeyHex("alice")
	bob := chainspec.SeedKeyHex("bob")

	txs := make([]*txpool.PoolTransaction, 0, count)
	for i := 0; i < count; i++ {
		payload := make([]byte, 8)
		binary.BigEndian.PutUint64(payload, uint64(i))

		tx := chain.NewTransaction(alice, bob, 1, 1+uint64(i%10), uint64(i), payload)

		ptx, err := txpool.FromTransaction(tx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, ptx)
	}
	return txs, nil
}

// GenerateRawTransactions produces the encoded form of GenerateTransactions.
func GenerateRawTransactions(count int) ([][]byte, error) {
	txs, err := GenerateTransactions(count)
	if err != nil {
		return nil, err
	}

	raws := make([][]byte, len(txs))
	for i, tx := range txs {
		raws[i] = tx.Data
	}
	return raws, nil
}
