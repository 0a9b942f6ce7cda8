package bench

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/txpool"
)

// SubmissionBenchmarkDescription measures admitting a batch of raw
// transactions into a BasicPool.
type SubmissionBenchmarkDescription struct {
	Size SizeType

	// CustomCount is the transaction count when Size is SizeCustom.
	CustomCount int
}

// Path implements BenchmarkDescription.
func (d *SubmissionBenchmarkDescription) Path() Path {
	return Path{"txpool", "submit", string(d.Size)}
}

// Name implements BenchmarkDescription.
func (d *SubmissionBenchmarkDescription) Name() string {
	return fmt.Sprintf("Pool submission (%d transactions)",
		d.Size.Transactions(d.CustomCount))
}

// Setup implements BenchmarkDescription.
func (d *SubmissionBenchmarkDescription) Setup() (Benchmark, error) {
	count := d.Size.Transactions(d.CustomCount)

	raws, err := GenerateRawTransactions(count)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.Level = logrus.ErrorLevel

	opts := txpool.DefaultOptions()
	if opts.MaxPending < count {
		opts.MaxPending = count
	}

	pool := txpool.NewBasicPool(opts, nil, log.WithField("prefix", "bench"))

	return &submissionBenchmark{pool: pool, raws: raws}, nil
}

type submissionBenchmark struct {
	pool *txpool.BasicPool
	raws [][]byte
}

// Run submits the whole batch.
func (b *submissionBenchmark) Run() error {
	_, errs := b.pool.SubmitBatch(b.raws)
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
