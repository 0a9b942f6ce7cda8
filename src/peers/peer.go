package peers

import (
	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/crypto/keys"
)

// Peer is a participant in the slate network, identified by its public key
// and reachable at NetAddr.
type Peer struct {
	NetAddr   string `json:"NetAddr"`
	PubKeyHex string `json:"PubKeyHex"`
	Moniker   string `json:"Moniker,omitempty"`

	id uint32
}

// NewPeer instantiates a new Peer.
func NewPeer(pubKeyHex, netAddr, moniker string) *Peer {
	return &Peer{
		PubKeyHex: pubKeyHex,
		NetAddr:   netAddr,
		Moniker:   moniker,
	}
}

// ID returns a 32-bit identifier derived from the public key.
func (p *Peer) ID() uint32 {
	if p.id == 0 {
		pubKeyBytes, err := p.PubKeyBytes()
		if err != nil {
			return 0
		}
		p.id = keys.PublicKeyID(pubKeyBytes)
	}
	return p.id
}

// PubKeyString returns the upper-case, 0X-prefixed form of the public key,
// the format under which peers are indexed.
func (p *Peer) PubKeyString() string {
	return p.PubKeyHex
}

// PubKeyBytes decodes the hex public key.
func (p *Peer) PubKeyBytes() ([]byte, error) {
	return common.DecodeFromString(p.PubKeyHex)
}
