package node

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/common"
	"github.com/slatechain/slate/src/config"
	"github.com/slatechain/slate/src/crypto/keys"
	"github.com/slatechain/slate/src/net"
	"github.com/slatechain/slate/src/peers"
)

// Node is the operational wrapper around the Core. It drives block authoring
// from the slot clock, answers peer RPCs from the transport, and keeps the
// node caught up with its peers.
type Node struct {
	nodeState state

	conf   *config.Config
	logger *logrus.Entry

	id    uint32
	core  *Core
	trans net.Transport
	peers *peers.PeerSet

	shutdownCh chan struct{}
}

// NewNode instantiates a new Node from its wired dependencies.
func NewNode(
	conf *config.Config,
	core *Core,
	trans net.Transport,
	peerSet *peers.PeerSet,
) *Node {
	pubBytes, _ := common.DecodeFromString(core.PubKeyHex())

	node := &Node{
		conf:       conf,
		logger:     conf.Logger().WithField("prefix", "node"),
		id:         keys.PublicKeyID(pubBytes),
		core:       core,
		trans:      trans,
		peers:      peerSet,
		shutdownCh: make(chan struct{}),
	}

	node.nodeState.setState(Suspended)

	return node
}

// Init prepares the node for operation: bootstrap from the store when
// required, then catch up with peers.
func (n *Node) Init(bootstrap bool) error {
	if bootstrap {
		if err := n.core.Bootstrap(); err != nil {
			return err
		}
	}

	n.nodeState.setState(Running)

	return nil
}

// Run starts the transport and enters the main loop. When authoring is true
// and the validator is an authority, the node proposes blocks in its slots.
// This is a blocking call.
func (n *Node) Run(authoring bool) {
	go n.trans.Listen()

	n.catchUp()

	authoring = authoring && n.core.IsAuthority()

	n.logger.WithFields(logrus.Fields{
		"authoring": authoring,
		"head":      n.core.HeadHeight(),
	}).Info("Node running")

	ticker := time.NewTicker(n.conf.SlotDuration / 4)
	defer ticker.Stop()

	var lastSlot uint64

	for {
		select {
		case rpc := <-n.trans.Consumer():
			n.goFunc(func() { n.processRPC(rpc) })

		case t := <-ticker.C:
			if !authoring || n.getState() != Running {
				continue
			}
			slot := uint64(t.UnixNano()) / uint64(n.conf.SlotDuration)
			if slot == lastSlot {
				continue
			}
			lastSlot = slot
			if n.core.OwnSlot(slot) {
				n.authorSlot(slot)
			}

		case <-n.shutdownCh:
			return
		}
	}
}

// RunAsync runs the node in a goroutine.
func (n *Node) RunAsync(authoring bool) {
	go n.Run(authoring)
}

// Shutdown stops the main loop, waits for background routines, and closes
// the transport.
func (n *Node) Shutdown() {
	if n.getState() == Shutdown {
		return
	}

	n.logger.Debug("Shutdown")

	close(n.shutdownCh)
	n.nodeState.setState(Shutdown)

	n.waitRoutines()

	n.trans.Close()
}

func (n *Node) getState() State {
	return n.nodeState.getState()
}

func (n *Node) goFunc(f func()) {
	n.nodeState.goFunc(f)
}

func (n *Node) waitRoutines() {
	n.nodeState.waitRoutines()
}

/*******************************************************************************
Authoring
*******************************************************************************/

// authorSlot proposes, commits, and announces the block for one of our
// slots.
func (n *Node) authorSlot(slot uint64) {
	block, err := n.core.ProposeBlock(slot)
	if err != nil {
		n.logger.WithError(err).Error("Proposing block")
		return
	}

	if err := n.core.ImportBlock(block); err != nil {
		n.logger.WithError(err).Error("Committing own block")
		return
	}

	n.announceBlock(block)
}

// announceBlock pushes a block to every other peer.
func (n *Node) announceBlock(block *chain.Block) {
	for _, addr := range n.peers.NetAddrs(n.core.PubKeyHex()) {
		target := addr
		n.goFunc(func() {
			var resp net.AnnounceResponse
			if err := n.trans.Announce(target, &net.AnnounceRequest{FromID: n.id, Block: block}, &resp); err != nil {
				n.logger.WithFields(logrus.Fields{
					"target": target,
					"error":  err,
				}).Debug("Announcing block")
			}
		})
	}
}

/*******************************************************************************
Catch-up
*******************************************************************************/

// catchUp pulls missing blocks from peers until no peer reports a higher
// head.
func (n *Node) catchUp() {
	if n.peers.Len() < 2 {
		return
	}

	n.nodeState.setState(CatchingUp)
	defer n.nodeState.setState(Running)

	for _, addr := range n.peers.NetAddrs(n.core.PubKeyHex()) {
		for {
			req := net.SyncRequest{
				FromID:     n.id,
				FromHeight: n.core.HeadHeight(),
				Limit:      n.conf.SyncLimit,
			}

			var resp net.SyncResponse
			if err := n.trans.Sync(addr, &req, &resp); err != nil {
				n.logger.WithFields(logrus.Fields{
					"target": addr,
					"error":  err,
				}).Debug("Sync request failed")
				break
			}

			// a peer claiming a higher head must back it with blocks
			if len(resp.Blocks) == 0 {
				break
			}

			for _, block := range resp.Blocks {
				if err := n.core.ImportBlock(block); err != nil {
					n.logger.WithError(err).Error("Importing synced block")
					return
				}
			}

			if n.core.HeadHeight() >= resp.Head {
				break
			}
		}
	}
}

/*******************************************************************************
RPC handlers
*******************************************************************************/

func (n *Node) processRPC(rpc net.RPC) {
	if s := n.getState(); s == Shutdown || s == Suspended {
		n.logger.WithField("state", s.String()).Debug("Discarding RPC request")
		rpc.Respond(nil, nil)
		return
	}

	switch cmd := rpc.Command.(type) {
	case *net.SyncRequest:
		n.processSyncRequest(rpc, cmd)
	case *net.AnnounceRequest:
		n.processAnnounceRequest(rpc, cmd)
	case *net.TxSubmitRequest:
		n.processTxSubmitRequest(rpc, cmd)
	default:
		n.logger.WithField("command", cmd).Error("Unexpected RPC command")
		rpc.Respond(nil, nil)
	}
}

func (n *Node) processSyncRequest(rpc net.RPC, cmd *net.SyncRequest) {
	head := n.core.HeadHeight()

	blocks := []*chain.Block{}
	limit := cmd.Limit
	if limit <= 0 {
		limit = n.conf.SyncLimit
	}

	for height := cmd.FromHeight + 1; height <= head && len(blocks) < limit; height++ {
		block, err := n.core.GetBlock(height)
		if err != nil {
			rpc.Respond(nil, err)
			return
		}
		blocks = append(blocks, block)
	}

	rpc.Respond(&net.SyncResponse{FromID: n.id, Blocks: blocks, Head: head}, nil)
}

func (n *Node) processAnnounceRequest(rpc net.RPC, cmd *net.AnnounceRequest) {
	if cmd.Block == nil {
		rpc.Respond(&net.AnnounceResponse{FromID: n.id, Success: false},
			fmt.Errorf("announce request from %d carries no block", cmd.FromID))
		return
	}

	head := n.core.HeadHeight()

	switch {
	case cmd.Block.Height() <= head:
		// already have it
		rpc.Respond(&net.AnnounceResponse{FromID: n.id, Success: true}, nil)

	case cmd.Block.Height() == head+1:
		if err := n.core.ImportBlock(cmd.Block); err != nil {
			rpc.Respond(&net.AnnounceResponse{FromID: n.id, Success: false}, err)
			return
		}
		rpc.Respond(&net.AnnounceResponse{FromID: n.id, Success: true}, nil)

	default:
		// we are behind; answer then catch up in the background
		rpc.Respond(&net.AnnounceResponse{FromID: n.id, Success: false}, nil)
		n.goFunc(n.catchUp)
	}
}

func (n *Node) processTxSubmitRequest(rpc net.RPC, cmd *net.TxSubmitRequest) {
	hashes, errs := n.core.Pool().SubmitBatch(cmd.Txs)
	for i, err := range errs {
		if err != nil {
			hashes[i] = ""
		}
	}
	rpc.Respond(&net.TxSubmitResponse{FromID: n.id, Hashes: hashes}, nil)
}

/*******************************************************************************
Service facade
*******************************************************************************/

// SubmitTransaction admits a raw transaction locally and forwards it to
// peers.
func (n *Node) SubmitTransaction(raw []byte) (string, error) {
	hash, err := n.core.Pool().SubmitOne(raw)
	if err != nil {
		return hash, err
	}

	for _, addr := range n.peers.NetAddrs(n.core.PubKeyHex()) {
		target := addr
		n.goFunc(func() {
			var resp net.TxSubmitResponse
			if err := n.trans.SubmitTxs(target, &net.TxSubmitRequest{FromID: n.id, Txs: [][]byte{raw}}, &resp); err != nil {
				n.logger.WithFields(logrus.Fields{
					"target": target,
					"error":  err,
				}).Debug("Forwarding transaction")
			}
		})
	}

	return hash, nil
}

// GetBlock returns the block at the given height.
func (n *Node) GetBlock(height int) (*chain.Block, error) {
	return n.core.GetBlock(height)
}

// GetPeers returns the node's peers.
func (n *Node) GetPeers() []*peers.Peer {
	return n.peers.Peers
}

// GetStats returns a summary of the node's status.
func (n *Node) GetStats() map[string]string {
	return map[string]string{
		"state":             n.getState().String(),
		"moniker":           n.conf.Moniker,
		"pubkey":            n.core.PubKeyHex(),
		"is_authority":      strconv.FormatBool(n.core.IsAuthority()),
		"last_block_height": strconv.Itoa(n.core.HeadHeight()),
		"finalized_height":  strconv.Itoa(n.core.FinalizedHeight()),
		"num_peers":         strconv.Itoa(n.peers.Len()),
		"pending_txs":       strconv.Itoa(n.core.Pool().Status().Pending),
	}
}
