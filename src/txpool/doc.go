// Package txpool holds transactions that have been submitted to a node but
// not yet included in a block. The proposer consumes the pool through a
// ready-transaction iterator ordered by fee, and reports back transactions
// that turn out to be invalid during block construction.
//
// Two implementations are provided: BasicPool, the live pool used by a
// running node, and FixedPool, a facade over a fixed pre-generated batch used
// by the block-construction benchmark.
package txpool
