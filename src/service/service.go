package service

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/chainspec"
	"github.com/slatechain/slate/src/node"
	"github.com/slatechain/slate/src/peers"
)

// Service is the HTTP API of a slate node. It exposes read endpoints for the
// chain and the transaction pool, and a single write endpoint to submit
// transactions.
type Service struct {
	sync.Mutex

	bindAddress string
	node        *node.Node
	spec        *chainspec.ChainSpec
	logger      *logrus.Entry
}

// NewService ...
func NewService(bindAddress string, n *node.Node, spec *chainspec.ChainSpec, logger *logrus.Entry) *Service {
	service := Service{
		bindAddress: bindAddress,
		node:        n,
		spec:        spec,
		logger:      logger,
	}

	service.registerHandlers()

	return &service
}

// registerHandlers registers the API handlers with the DefaultServerMux of the
// http package. It is possible that another server in the same process is
// simultaneously using the DefaultServerMux. In which case, the handlers will
// be accessible from both servers.
func (s *Service) registerHandlers() {
	s.logger.Debug("Registering slate API handlers")
	http.HandleFunc("/stats", s.makeHandler(s.GetStats))
	http.HandleFunc("/head", s.makeHandler(s.GetHead))
	http.HandleFunc("/block/", s.makeHandler(s.GetBlock))
	http.HandleFunc("/blocks", s.makeHandler(s.GetBlocks))
	http.HandleFunc("/pool", s.makeHandler(s.GetPool))
	http.HandleFunc("/submit", s.makeHandler(s.SubmitTx))
	http.HandleFunc("/chainspec", s.makeHandler(s.GetChainSpec))
	http.HandleFunc("/peers", s.makeHandler(s.GetPeers))
	http.HandleFunc("/genesispeers", s.makeHandler(s.GetGenesisPeers))
}

func (s *Service) makeHandler(fn func(http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Lock()
		defer s.Unlock()

		// enable CORS
		w.Header().Set("Access-Control-Allow-Origin", "*")

		fn(w, r)
	}
}

// Serve calls ListenAndServe. This is a blocking call. It is not necessary to
// call Serve when slate is used in-memory and another server has already been
// started with the DefaultServerMux and the same address:port combination.
// Indeed, slate API handlers have already been registered when the service was
// instantiated.
func (s *Service) Serve() {
	s.logger.WithField("bind_address", s.bindAddress).Debug("Serving slate API")

	// Use the DefaultServerMux
	err := http.ListenAndServe(s.bindAddress, nil)
	if err != nil {
		s.logger.Error(err)
	}
}

// GetStats ...
func (s *Service) GetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(stats)
}

// GetHead returns the block at the tip of the chain.
func (s *Service) GetHead(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	height, err := strconv.Atoi(stats["last_block_height"])
	if err != nil || height < 0 {
		http.Error(w, "empty chain", http.StatusNotFound)
		return
	}

	block, err := s.node.GetBlock(height)
	if err != nil {
		s.logger.WithError(err).Errorf("Retrieving head block %d", height)

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(block)
}

// GetBlock ...
func (s *Service) GetBlock(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Path[len("/block/"):]

	height, err := strconv.Atoi(param)

	if err != nil {
		s.logger.WithError(err).Errorf("Parsing block height parameter %s", param)

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	block, err := s.node.GetBlock(height)

	if err != nil {
		s.logger.WithError(err).Errorf("Retrieving block %d", height)

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(block)
}

// GetBlocks returns a range of blocks from the ?from= height, with an
// optional ?limit= parameter. Ex: /blocks?from=10&limit=5 returns blocks 10
// to 14 included.
func (s *Service) GetBlocks(w http.ResponseWriter, r *http.Request) {
	param := r.URL.Query().Get("from")

	from, err := strconv.Atoi(param)
	if err != nil {
		s.logger.WithError(err).Errorf("Parsing from parameter %s", param)

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	limit := 10
	if ql := r.URL.Query().Get("limit"); ql != "" {
		limit, err = strconv.Atoi(ql)
		if err != nil {
			s.logger.WithError(err).Errorf("Parsing limit parameter %s", ql)

			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}

	blocks := []*chain.Block{}
	for height := from; height < from+limit; height++ {
		block, err := s.node.GetBlock(height)
		if err != nil {
			break
		}
		blocks = append(blocks, block)
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(blocks)
}

// GetPool returns the status of the transaction pool.
func (s *Service) GetPool(w http.ResponseWriter, r *http.Request) {
	stats := s.node.GetStats()

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(map[string]string{
		"pending_txs": stats["pending_txs"],
	})
}

// SubmitTx reads a raw transaction from the request body, submits it to the
// pool, and returns its hash.
func (s *Service) SubmitTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	hash, err := s.node.SubmitTransaction(raw)
	if err != nil {
		s.logger.WithError(err).Debug("Rejecting submitted transaction")

		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(map[string]string{"hash": hash})
}

// GetChainSpec ...
func (s *Service) GetChainSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(s.spec)
}

// GetPeers ...
func (s *Service) GetPeers(w http.ResponseWriter, r *http.Request) {
	returnPeerSet(w, r, s.node.GetPeers())
}

// GetGenesisPeers returns the validators listed in the genesis peer set. The
// authority set is fixed, so this matches the current peers.
func (s *Service) GetGenesisPeers(w http.ResponseWriter, r *http.Request) {
	returnPeerSet(w, r, s.node.GetPeers())
}

func returnPeerSet(w http.ResponseWriter, r *http.Request, peers []*peers.Peer) {
	w.Header().Set("Content-Type", "application/json")

	encoder := json.NewEncoder(w)

	encoder.Encode(peers)
}
