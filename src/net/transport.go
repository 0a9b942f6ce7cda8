package net

// Transport provides an interface for network transports to allow a node to
// communicate with other nodes.
type Transport interface {

	// Listen starts the transport listening
	Listen()

	// Consumer returns a channel that can be used to
	// consume and respond to RPC requests.
	Consumer() <-chan RPC

	// LocalAddr is used to return our local address
	LocalAddr() string

	// Sync, Announce and SubmitTxs send the appropriate RPC to the target
	// node.

	Sync(target string, args *SyncRequest, resp *SyncResponse) error

	Announce(target string, args *AnnounceRequest, resp *AnnounceResponse) error

	SubmitTxs(target string, args *TxSubmitRequest, resp *TxSubmitResponse) error

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
