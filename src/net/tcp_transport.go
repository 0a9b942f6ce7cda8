package net

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// NewTCPTransport returns a NetworkTransport that is built on top of a TCP
// streaming transport layer.
func NewTCPTransport(
	bindAddr string,
	maxPool int,
	timeout time.Duration,
	logger *logrus.Entry,
) (*NetworkTransport, error) {
	// Try to bind
	list, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	// Create stream
	stream := &TCPStreamLayer{
		listener: list.(*net.TCPListener),
	}

	// Create the network transport
	trans := NewNetworkTransport(stream, maxPool, timeout, logger)
	return trans, nil
}
