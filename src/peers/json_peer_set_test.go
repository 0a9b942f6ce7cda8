package peers

import (
	"io/ioutil"
	"os"
	"strings"
	"testing"
)

func TestJSONPeerSet(t *testing.T) {
	dir, err := ioutil.TempDir("", "peers")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// Create the peer set
	store := NewJSONPeerSet(dir, true)

	// Try a read, should get nothing
	if _, err := store.PeerSet(); err == nil {
		t.Fatal("should fail reading from an empty directory")
	}

	peers := newTestPeers(3)

	if err := store.Write(peers); err != nil {
		t.Fatal(err)
	}

	// Try a read, should find the peers
	peerSet, err := store.PeerSet()
	if err != nil {
		t.Fatal(err)
	}

	if peerSet.Len() != 3 {
		t.Fatalf("peer set should have 3 peers, not %d", peerSet.Len())
	}

	for _, peer := range peers {
		read, ok := peerSet.ByPubKey[peer.PubKeyHex]
		if !ok {
			t.Fatalf("peer %s not found", peer.Moniker)
		}
		if read.NetAddr != peer.NetAddr {
			t.Fatalf("peer %s NetAddr should be %s, not %s", peer.Moniker, peer.NetAddr, read.NetAddr)
		}
	}
}

func TestJSONPeerSetCleansing(t *testing.T) {
	dir, err := ioutil.TempDir("", "peers")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	peers := newTestPeers(1)

	// lower-case the stored key
	peers[0].PubKeyHex = strings.ToLower(peers[0].PubKeyHex)

	store := NewJSONPeerSet(dir, true)
	if err := store.Write(peers); err != nil {
		t.Fatal(err)
	}

	peerSet, err := store.PeerSet()
	if err != nil {
		t.Fatal(err)
	}

	read := peerSet.Peers[0]
	if !strings.HasPrefix(read.PubKeyHex, "0X") {
		t.Fatalf("public key should be 0X-prefixed: %s", read.PubKeyHex)
	}
	if read.PubKeyHex != strings.ToUpper(read.PubKeyHex) {
		t.Fatalf("public key should be upper-case: %s", read.PubKeyHex)
	}
}
