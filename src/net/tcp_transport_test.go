package net

import (
	"testing"
	"time"

	"github.com/slatechain/slate/src/common"
)

func TestTCPTransportSync(t *testing.T) {
	trans1, err := NewTCPTransport("127.0.0.1:0", 2, time.Second, common.NewTestEntry(t, "transport1"))
	if err != nil {
		t.Fatal(err)
	}
	defer trans1.Close()
	go trans1.Listen()

	trans2, err := NewTCPTransport("127.0.0.1:0", 2, time.Second, common.NewTestEntry(t, "transport2"))
	if err != nil {
		t.Fatal(err)
	}
	defer trans2.Close()
	go trans2.Listen()

	expectedResp := testSyncResponse()

	go func() {
		rpc := <-trans1.Consumer()

		req := rpc.Command.(*SyncRequest)
		if req.FromHeight != 4 {
			t.Errorf("request FromHeight should be 4, not %d", req.FromHeight)
		}

		rpc.Respond(expectedResp, nil)
	}()

	var resp SyncResponse
	if err := trans2.Sync(trans1.LocalAddr(), testSyncRequest(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.Head != expectedResp.Head {
		t.Fatalf("response head should be %d, not %d", expectedResp.Head, resp.Head)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Height() != 5 {
		t.Fatal("response blocks mismatch")
	}
}

func TestTCPTransportPooledConn(t *testing.T) {
	trans1, err := NewTCPTransport("127.0.0.1:0", 2, time.Second, common.NewTestEntry(t, "transport1"))
	if err != nil {
		t.Fatal(err)
	}
	defer trans1.Close()
	go trans1.Listen()

	trans2, err := NewTCPTransport("127.0.0.1:0", 2, time.Second, common.NewTestEntry(t, "transport2"))
	if err != nil {
		t.Fatal(err)
	}
	defer trans2.Close()
	go trans2.Listen()

	go func() {
		for {
			select {
			case rpc := <-trans1.Consumer():
				rpc.Respond(testSyncResponse(), nil)
			case <-trans1.shutdownCh:
				return
			}
		}
	}()

	// successive RPCs should reuse the pooled connection
	for i := 0; i < 5; i++ {
		var resp SyncResponse
		if err := trans2.Sync(trans1.LocalAddr(), testSyncRequest(), &resp); err != nil {
			t.Fatal(err)
		}
	}
}
