// Package keys implements the cryptographic routines used to identify
// validators and sign block headers. Keys and signatures are based on
// elliptic curve cryptography over the secp256k1 curve, the same curve used
// by Bitcoin and Ethereum.
package keys
