package peers

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/slatechain/slate/src/crypto/keys"
)

func newTestPeers(n int) []*Peer {
	peers := []*Peer{}
	for i := 0; i < n; i++ {
		key, _ := keys.GenerateECDSAKey()
		peers = append(peers, NewPeer(
			keys.PublicKeyHex(&key.PublicKey),
			fmt.Sprintf("addr%d:1337", i),
			fmt.Sprintf("peer%d", i),
		))
	}
	return peers
}

func TestNewPeerSet(t *testing.T) {
	peers := newTestPeers(3)
	peerSet := NewPeerSet(peers)

	if peerSet.Len() != 3 {
		t.Fatalf("peer set should have 3 peers, not %d", peerSet.Len())
	}

	// sorted by public key
	for i := 0; i < peerSet.Len()-1; i++ {
		if peerSet.Peers[i].PubKeyHex > peerSet.Peers[i+1].PubKeyHex {
			t.Fatal("peers should be sorted by public key")
		}
	}

	for _, peer := range peers {
		if p, ok := peerSet.ByPubKey[peer.PubKeyHex]; !ok || p != peer {
			t.Fatalf("peer %s missing from ByPubKey", peer.Moniker)
		}
		if p, ok := peerSet.ByID[peer.ID()]; !ok || p != peer {
			t.Fatalf("peer %s missing from ByID", peer.Moniker)
		}
	}
}

func TestSuperMajority(t *testing.T) {
	for n, expected := range map[int]int{1: 1, 2: 2, 3: 3, 4: 3, 5: 4, 6: 5} {
		peerSet := NewPeerSet(newTestPeers(n))
		if got := peerSet.SuperMajority(); got != expected {
			t.Fatalf("SuperMajority of %d peers should be %d, not %d", n, expected, got)
		}
	}
}

func TestWithNewPeer(t *testing.T) {
	peers := newTestPeers(3)
	peerSet := NewPeerSet(peers[:2])

	extended := peerSet.WithNewPeer(peers[2])

	if peerSet.Len() != 2 {
		t.Fatal("the original peer set should be untouched")
	}
	if extended.Len() != 3 {
		t.Fatalf("extended peer set should have 3 peers, not %d", extended.Len())
	}

	reduced := extended.WithRemovedPeer(peers[0])
	if reduced.Len() != 2 {
		t.Fatalf("reduced peer set should have 2 peers, not %d", reduced.Len())
	}
	if _, ok := reduced.ByPubKey[peers[0].PubKeyHex]; ok {
		t.Fatal("removed peer should be gone")
	}
}

func TestNetAddrs(t *testing.T) {
	peers := newTestPeers(3)
	peerSet := NewPeerSet(peers)

	addrs := peerSet.NetAddrs(peers[0].PubKeyHex)

	if len(addrs) != 2 {
		t.Fatalf("NetAddrs should exclude self, got %d addresses", len(addrs))
	}
	for _, addr := range addrs {
		if addr == peers[0].NetAddr {
			t.Fatal("excluded peer's address should not be present")
		}
	}
}

func TestPeerSetMarshal(t *testing.T) {
	peerSet := NewPeerSet(newTestPeers(3))

	raw, err := peerSet.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := NewPeerSetFromPeerSliceBytes(raw)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(decoded.Peers, peerSet.Peers) {
		t.Fatal("peer set did not survive the marshalling round trip")
	}
}
