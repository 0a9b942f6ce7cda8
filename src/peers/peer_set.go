package peers

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
)

//PeerSet is a set of Peers forming a validator network.
type PeerSet struct {
	Peers    []*Peer          `json:"peers"`
	ByPubKey map[string]*Peer `json:"-"`
	ByID     map[uint32]*Peer `json:"-"`
}

//NewPeerSet creates a new PeerSet from a list of Peers.
func NewPeerSet(peers []*Peer) *PeerSet {
	peerSet := &PeerSet{
		ByPubKey: make(map[string]*Peer),
		ByID:     make(map[uint32]*Peer),
	}

	sorted := append([]*Peer(nil), peers...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PubKeyHex < sorted[j].PubKeyHex
	})

	for _, peer := range sorted {
		peerSet.ByPubKey[peer.PubKeyString()] = peer
		peerSet.ByID[peer.ID()] = peer
	}

	peerSet.Peers = sorted

	return peerSet
}

//NewPeerSetFromPeerSliceBytes creates a new PeerSet from a JSON-encoded peer
//slice.
func NewPeerSetFromPeerSliceBytes(peerSliceBytes []byte) (*PeerSet, error) {
	peers := []*Peer{}

	b := bytes.NewBuffer(peerSliceBytes)
	dec := json.NewDecoder(b)

	if err := dec.Decode(&peers); err != nil {
		return nil, err
	}

	return NewPeerSet(peers), nil
}

//WithNewPeer returns a new PeerSet containing the additional peer.
func (ps *PeerSet) WithNewPeer(peer *Peer) *PeerSet {
	peers := append(append([]*Peer(nil), ps.Peers...), peer)
	return NewPeerSet(peers)
}

//WithRemovedPeer returns a new PeerSet without the given peer.
func (ps *PeerSet) WithRemovedPeer(peer *Peer) *PeerSet {
	peers := []*Peer{}
	for _, p := range ps.Peers {
		if p.PubKeyHex != peer.PubKeyHex {
			peers = append(peers, p)
		}
	}
	return NewPeerSet(peers)
}

//Len returns the number of peers in the set.
func (ps *PeerSet) Len() int {
	return len(ps.ByPubKey)
}

//SuperMajority returns the number of peers that forms a strict 2/3 majority.
func (ps *PeerSet) SuperMajority() int {
	return 2*ps.Len()/3 + 1
}

//Marshal returns the JSON encoding of the peer list.
func (ps *PeerSet) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(ps.Peers); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

//NetAddrs returns the list of peer network addresses, excluding the peer with
//the given public key (usually self).
func (ps *PeerSet) NetAddrs(excludePubKey string) []string {
	addrs := []string{}
	for _, p := range ps.Peers {
		if p.PubKeyHex != excludePubKey {
			addrs = append(addrs, p.NetAddr)
		}
	}
	return addrs
}

//ExcludePeer returns the PeerSet without the peer at the given network
//address, and the index at which it was found.
func (ps *PeerSet) ExcludePeer(netAddr string) (int, *PeerSet) {
	index := math.MaxInt32
	otherPeers := []*Peer{}
	for i, p := range ps.Peers {
		if p.NetAddr != netAddr {
			otherPeers = append(otherPeers, p)
		} else {
			index = i
		}
	}
	return index, NewPeerSet(otherPeers)
}
