package bench

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/chainspec"
	"github.com/slatechain/slate/src/crypto/keys"
	"github.com/slatechain/slate/src/node"
	"github.com/slatechain/slate/src/store"
	"github.com/slatechain/slate/src/txpool"
)

// ConstructionBenchmarkDescription measures filling a block from a fixed pool
// of pre-generated transactions through the ready iterator.
type ConstructionBenchmarkDescription struct {
	Size SizeType

	// CustomCount is the transaction count when Size is SizeCustom.
	CustomCount int
}

// Path implements BenchmarkDescription.
func (d *ConstructionBenchmarkDescription) Path() Path {
	return Path{"node", "construct", string(d.Size)}
}

// Name implements BenchmarkDescription.
func (d *ConstructionBenchmarkDescription) Name() string {
	return fmt.Sprintf("Block construction (%d transactions)",
		d.Size.Transactions(d.CustomCount))
}

// Setup implements BenchmarkDescription. It builds a dev-chain core over a
// FixedPool so that the timed run measures block filling only.
func (d *ConstructionBenchmarkDescription) Setup() (Benchmark, error) {
	count := d.Size.Transactions(d.CustomCount)

	txs, err := GenerateTransactions(count)
	if err != nil {
		return nil, err
	}

	spec := chainspec.Development()

	log := logrus.New()
	log.Level = logrus.ErrorLevel

	core := node.NewCore(
		keys.FromSeed("alice"),
		spec,
		store.NewInmemStore(count+1),
		txpool.NewFixedPool(txs),
		count,
		1,
		log.WithField("prefix", "bench"),
	)

	return &constructionBenchmark{core: core, want: count}, nil
}

type constructionBenchmark struct {
	core *node.Core
	want int
}

// Run proposes one block. Slot 0 belongs to alice on the dev chain.
func (b *constructionBenchmark) Run() error {
	block, err := b.core.ProposeBlock(0)
	if err != nil {
		return err
	}

	if got := len(block.Transactions); got != b.want {
		return fmt.Errorf("block contains %d transactions, expected %d", got, b.want)
	}

	return nil
}
