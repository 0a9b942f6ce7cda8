package txpool

// byFeeAndNonce orders pool transactions for block inclusion: higher fees
// first, and within one sender, lower nonces first so that sequences remain
// executable.
type byFeeAndNonce []*PoolTransaction

func (s byFeeAndNonce) Len() int      { return len(s) }
func (s byFeeAndNonce) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s byFeeAndNonce) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a.Priority() != b.Priority() {
		return a.Priority() > b.Priority()
	}
	if a.Sender() == b.Sender() {
		return a.Nonce() < b.Nonce()
	}
	// stable tie-break so that all nodes order identically
	return a.HashString() < b.HashString()
}
