package net

import (
	"reflect"
	"testing"
	"time"

	"github.com/slatechain/slate/src/chain"
)

func testSyncRequest() *SyncRequest {
	return &SyncRequest{
		FromID:     1,
		FromHeight: 4,
		Limit:      100,
	}
}

func testSyncResponse() *SyncResponse {
	return &SyncResponse{
		FromID: 2,
		Blocks: []*chain.Block{
			chain.NewBlock(5, []byte("parent"), 5, "author", []byte("stateroot"), [][]byte{[]byte("tx")}),
		},
		Head: 5,
	}
}

func TestInmemTransportSync(t *testing.T) {
	addr1, trans1 := NewInmemTransport("")
	defer trans1.Close()
	addr2, trans2 := NewInmemTransport("")
	defer trans2.Close()

	trans1.Connect(addr2, trans2)
	trans2.Connect(addr1, trans1)

	expectedReq := testSyncRequest()
	expectedResp := testSyncResponse()

	go func() {
		rpc := <-trans2.Consumer()

		req := rpc.Command.(*SyncRequest)
		if !reflect.DeepEqual(req, expectedReq) {
			t.Errorf("request should be %#v, not %#v", expectedReq, req)
		}

		rpc.Respond(expectedResp, nil)
	}()

	var resp SyncResponse
	if err := trans1.Sync(addr2, expectedReq, &resp); err != nil {
		t.Fatal(err)
	}

	if resp.FromID != expectedResp.FromID || resp.Head != expectedResp.Head {
		t.Fatalf("response should be %#v, not %#v", expectedResp, resp)
	}
	if len(resp.Blocks) != 1 || resp.Blocks[0].Height() != 5 {
		t.Fatal("response blocks mismatch")
	}
}

func TestInmemTransportAnnounce(t *testing.T) {
	_, trans1 := NewInmemTransport("")
	defer trans1.Close()
	addr2, trans2 := NewInmemTransport("")
	defer trans2.Close()

	trans1.Connect(addr2, trans2)

	block := chain.NewBlock(1, []byte("parent"), 1, "author", []byte("stateroot"), [][]byte{})

	go func() {
		rpc := <-trans2.Consumer()

		req := rpc.Command.(*AnnounceRequest)
		if req.Block.Height() != 1 {
			t.Errorf("announced block height should be 1, not %d", req.Block.Height())
		}

		rpc.Respond(&AnnounceResponse{FromID: 2, Success: true}, nil)
	}()

	var resp AnnounceResponse
	if err := trans1.Announce(addr2, &AnnounceRequest{FromID: 1, Block: block}, &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success {
		t.Fatal("announce should have succeeded")
	}
}

func TestInmemTransportSubmitTxs(t *testing.T) {
	_, trans1 := NewInmemTransport("")
	defer trans1.Close()
	addr2, trans2 := NewInmemTransport("")
	defer trans2.Close()

	trans1.Connect(addr2, trans2)

	go func() {
		rpc := <-trans2.Consumer()

		req := rpc.Command.(*TxSubmitRequest)
		hashes := make([]string, len(req.Txs))
		for i := range req.Txs {
			hashes[i] = "0XHASH"
		}

		rpc.Respond(&TxSubmitResponse{FromID: 2, Hashes: hashes}, nil)
	}()

	var resp TxSubmitResponse
	req := &TxSubmitRequest{FromID: 1, Txs: [][]byte{[]byte("tx1"), []byte("tx2")}}
	if err := trans1.SubmitTxs(addr2, req, &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Hashes) != 2 {
		t.Fatalf("response should carry 2 hashes, not %d", len(resp.Hashes))
	}
}

func TestInmemTransportDisconnected(t *testing.T) {
	addr1, trans1 := NewInmemTransport("")
	defer trans1.Close()
	addr2, trans2 := NewInmemTransport("")
	defer trans2.Close()

	trans1.Connect(addr2, trans2)
	trans1.Disconnect(addr2)

	var resp SyncResponse
	if err := trans1.Sync(addr2, testSyncRequest(), &resp); err == nil {
		t.Fatal("expected an error for a disconnected peer")
	}

	_ = addr1
}

func TestInmemTransportTimeout(t *testing.T) {
	addr2, trans2 := NewInmemTransport("")
	defer trans2.Close()

	_, trans1 := NewInmemTransport("")
	defer trans1.Close()

	trans1.Connect(addr2, trans2)

	// nobody consumes trans2's RPCs; expect a timeout rather than a hang
	start := time.Now()

	var resp SyncResponse
	err := trans1.Sync(addr2, testSyncRequest(), &resp)
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took too long: %s", elapsed)
	}
}
