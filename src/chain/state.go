package chain

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/slatechain/slate/src/crypto"
	"github.com/ugorji/go/codec"
)

// Account holds the balance and the next expected nonce of an address.
type Account struct {
	Balance uint64
	Nonce   uint64
}

// State is the account ledger. It is a flat map rather than a trie; the root
// hash is computed over the canonical encoding of the sorted account list.
type State struct {
	sync.RWMutex
	accounts map[string]*Account
}

// NewState creates a State from genesis allocations.
func NewState(allocations map[string]uint64) *State {
	accounts := make(map[string]*Account)
	for addr, balance := range allocations {
		accounts[addr] = &Account{Balance: balance}
	}
	return &State{accounts: accounts}
}

// GetAccount returns a copy of the account for addr. Unknown addresses have a
// zero balance and a zero nonce.
func (s *State) GetAccount(addr string) Account {
	s.RLock()
	defer s.RUnlock()

	if acc, ok := s.accounts[addr]; ok {
		return *acc
	}
	return Account{}
}

// CheckTransaction verifies that a transaction could be applied on top of the
// current state, allowing nonce gaps. It is the admission check used by the
// transaction pool: a transaction with a future nonce is acceptable in the
// pool but not yet executable.
func (s *State) CheckTransaction(tx *Transaction) error {
	s.RLock()
	defer s.RUnlock()

	acc := Account{}
	if existing, ok := s.accounts[tx.Sender]; ok {
		acc = *existing
	}

	if tx.Nonce < acc.Nonce {
		return fmt.Errorf("stale nonce %d for %s, expected >= %d", tx.Nonce, shortKey(tx.Sender), acc.Nonce)
	}

	if tx.Amount > math.MaxUint64-tx.Fee {
		return fmt.Errorf("amount plus fee overflows for %s", shortKey(tx.Sender))
	}

	if tx.Amount+tx.Fee > acc.Balance {
		return fmt.Errorf("insufficient balance for %s: have %d, need %d", shortKey(tx.Sender), acc.Balance, tx.Amount+tx.Fee)
	}

	return nil
}

// ApplyTransaction executes a transaction, debiting amount and fee from the
// sender and crediting the recipient. The nonce must be exactly the sender's
// next nonce. Fees are burned.
func (s *State) ApplyTransaction(tx *Transaction) error {
	s.Lock()
	defer s.Unlock()

	sender := s.account(tx.Sender)

	if tx.Nonce != sender.Nonce {
		return fmt.Errorf("wrong nonce %d for %s, expected %d", tx.Nonce, shortKey(tx.Sender), sender.Nonce)
	}

	if tx.Amount > math.MaxUint64-tx.Fee {
		return fmt.Errorf("amount plus fee overflows for %s", shortKey(tx.Sender))
	}

	if tx.Amount+tx.Fee > sender.Balance {
		return fmt.Errorf("insufficient balance for %s: have %d, need %d", shortKey(tx.Sender), sender.Balance, tx.Amount+tx.Fee)
	}

	sender.Balance -= tx.Amount + tx.Fee
	sender.Nonce++
	s.accounts[tx.Sender] = sender

	recipient := s.account(tx.Recipient)
	recipient.Balance += tx.Amount
	s.accounts[tx.Recipient] = recipient

	return nil
}

// ApplyBlock decodes and executes all the transactions in a block, in order.
// A failing transaction aborts the whole block.
func (s *State) ApplyBlock(block *Block) error {
	for i, raw := range block.Transactions {
		tx := new(Transaction)
		if err := tx.Unmarshal(raw); err != nil {
			return fmt.Errorf("decoding transaction %d of block %d: %v", i, block.Height(), err)
		}
		if err := s.ApplyTransaction(tx); err != nil {
			return fmt.Errorf("applying transaction %d of block %d: %v", i, block.Height(), err)
		}
	}
	return nil
}

// Root returns a deterministic hash of the whole ledger.
func (s *State) Root() []byte {
	s.RLock()
	defer s.RUnlock()

	addrs := make([]string, 0, len(s.accounts))
	for addr := range s.accounts {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	type flatAccount struct {
		Address string
		Balance uint64
		Nonce   uint64
	}

	flat := make([]flatAccount, len(addrs))
	for i, addr := range addrs {
		acc := s.accounts[addr]
		flat[i] = flatAccount{Address: addr, Balance: acc.Balance, Nonce: acc.Nonce}
	}

	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)
	if err := enc.Encode(flat); err != nil {
		return nil
	}

	return crypto.SHA256(b.Bytes())
}

// Copy returns a deep copy of the state. It is used by the proposer to trial
// transactions without touching the committed ledger.
func (s *State) Copy() *State {
	s.RLock()
	defer s.RUnlock()

	accounts := make(map[string]*Account, len(s.accounts))
	for addr, acc := range s.accounts {
		cp := *acc
		accounts[addr] = &cp
	}
	return &State{accounts: accounts}
}

// Len returns the number of known accounts.
func (s *State) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.accounts)
}

// account returns the account value for addr without copying. Callers must
// hold the lock.
func (s *State) account(addr string) *Account {
	if acc, ok := s.accounts[addr]; ok {
		return acc
	}
	acc := &Account{}
	s.accounts[addr] = acc
	return acc
}
