// Package chain defines the core datatypes of a slate chain: transactions,
// block headers, blocks, and the account state they are applied to. Encoding
// is canonical so that hashes are stable across nodes.
package chain
