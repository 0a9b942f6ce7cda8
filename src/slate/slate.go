package slate

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slatechain/slate/src/chain"
	"github.com/slatechain/slate/src/chainspec"
	"github.com/slatechain/slate/src/config"
	"github.com/slatechain/slate/src/crypto/keys"
	"github.com/slatechain/slate/src/net"
	"github.com/slatechain/slate/src/node"
	"github.com/slatechain/slate/src/peers"
	"github.com/slatechain/slate/src/service"
	"github.com/slatechain/slate/src/store"
	"github.com/slatechain/slate/src/txpool"
)

// PeersJSON is the name of the file defining peer network addresses.
const PeersJSON = "peers.json"

// Slate is the top-level engine: it assembles the chain spec, key, peers,
// store, transport, pool, node and HTTP service from a Config.
type Slate struct {
	Config    *config.Config
	Spec      *chainspec.ChainSpec
	Peers     *peers.PeerSet
	Store     store.Store
	Transport net.Transport
	Pool      txpool.Pool
	Node      *node.Node
	Service   *service.Service

	core *node.Core
}

// NewSlate ...
func NewSlate(config *config.Config) *Slate {
	engine := &Slate{
		Config: config,
	}

	return engine
}

func (s *Slate) initSpec() error {
	spec, err := chainspec.Load(s.Config.Chain)
	if err != nil {
		return fmt.Errorf("loading chain spec %q: %v", s.Config.Chain, err)
	}

	if err := spec.Validate(); err != nil {
		return err
	}

	s.Spec = spec

	s.Config.Logger().WithField("chain", spec.ID).Debug("Loaded chain spec")

	return nil
}

func (s *Slate) initKey() error {
	if s.Config.Key == nil {
		keyfile := keys.NewSimpleKeyfile(s.Config.Keyfile())

		privKey, err := keyfile.ReadKey()
		if err != nil {
			s.Config.Logger().Warn("Cannot read private key from file", err)

			privKey, err = Keygen(s.Config.Keyfile())
			if err != nil {
				s.Config.Logger().Error("Cannot generate a new private key", err)

				return err
			}

			s.Config.Logger().Info("Created a new key: ", keys.PublicKeyHex(&privKey.PublicKey))
		}

		s.Config.Key = privKey
	}
	return nil
}

func (s *Slate) initPeers() error {
	if s.Peers != nil {
		return nil
	}

	peersPath := filepath.Join(s.Config.DataDir, PeersJSON)

	if _, err := os.Stat(peersPath); err == nil {
		peerStore := peers.NewJSONPeerSet(s.Config.DataDir, true)

		participants, err := peerStore.PeerSet()
		if err != nil {
			return err
		}

		s.Peers = participants

		return nil
	}

	// No peers.json: run standalone with a self-only peer set.
	self := peers.NewPeer(
		keys.PublicKeyHex(&s.Config.Key.PublicKey),
		s.Config.BindAddr,
		s.Config.Moniker,
	)

	s.Peers = peers.NewPeerSet([]*peers.Peer{self})

	s.Config.Logger().Debug("No peers.json, running standalone")

	return nil
}

func (s *Slate) initStore() error {
	if !s.Config.Store {
		s.Store = store.NewInmemStore(s.Config.CacheSize)

		s.Config.Logger().Debug("Created new in-mem store")
	} else {
		var err error

		s.Config.Logger().WithField("path", s.Config.DatabaseDir).Debug("Attempting to load or create database")

		if s.Config.Bootstrap {
			s.Store, err = store.LoadBadgerStore(s.Config.CacheSize, s.Config.DatabaseDir)
		} else {
			s.Store, err = store.LoadOrCreateBadgerStore(s.Config.CacheSize, s.Config.DatabaseDir)
		}

		if err != nil {
			return err
		}

		if s.Store.NeedBootstrap() {
			s.Config.Logger().Debug("Loaded badger store from existing database")
		} else {
			s.Config.Logger().Debug("Created new badger store from fresh database")
		}
	}

	return nil
}

func (s *Slate) initTransport() error {
	transport, err := net.NewTCPTransport(
		s.Config.BindAddr,
		s.Config.MaxPool,
		s.Config.TCPTimeout,
		s.Config.Logger(),
	)

	if err != nil {
		return err
	}

	s.Transport = transport

	return nil
}

func (s *Slate) initNode() error {
	key := s.Config.Key

	// stateful admission check, bound late so it follows the chain head
	check := func(tx *chain.Transaction) error {
		return s.core.State().CheckTransaction(tx)
	}

	opts := txpool.DefaultOptions()
	opts.MinFee = s.Config.MinFee

	s.Pool = txpool.NewBasicPool(opts, check, s.Config.Logger().WithField("prefix", "txpool"))

	s.core = node.NewCore(
		key,
		s.Spec,
		s.Store,
		s.Pool,
		s.Config.MaxBlockTxs,
		s.Config.ConfirmationDepth,
		s.Config.Logger().WithField("prefix", "core"),
	)

	s.Node = node.NewNode(
		s.Config,
		s.core,
		s.Transport,
		s.Peers,
	)

	if err := s.Node.Init(s.Store.NeedBootstrap()); err != nil {
		return fmt.Errorf("initializing node: %v", err)
	}

	return nil
}

func (s *Slate) initService() error {
	if !s.Config.NoService && s.Config.ServiceAddr != "" {
		s.Service = service.NewService(
			s.Config.ServiceAddr,
			s.Node,
			s.Spec,
			s.Config.Logger().WithField("prefix", "service"),
		)
	}
	return nil
}

// Init assembles the engine. It must be called before Run.
func (s *Slate) Init() error {
	if err := s.Config.Validate(); err != nil {
		return err
	}

	if err := s.initSpec(); err != nil {
		return err
	}

	if err := s.initKey(); err != nil {
		return err
	}

	if err := s.initPeers(); err != nil {
		return err
	}

	if err := s.initStore(); err != nil {
		return err
	}

	if err := s.initTransport(); err != nil {
		return err
	}

	if err := s.initNode(); err != nil {
		return err
	}

	if err := s.initService(); err != nil {
		return err
	}

	return nil
}

// Run starts the optional HTTP service and the node. This is a blocking
// call.
func (s *Slate) Run() {
	if s.Service != nil {
		go s.Service.Serve()
	}

	s.Node.Run(true)
}

// Keygen generates a new key pair and writes it to keyPath. It refuses to
// overwrite an existing key.
func Keygen(keyPath string) (*ecdsa.PrivateKey, error) {
	keyfile := keys.NewSimpleKeyfile(keyPath)

	if _, err := keyfile.ReadKey(); err == nil {
		return nil, fmt.Errorf("another key already lives under %s", keyPath)
	}

	privKey, err := keys.GenerateECDSAKey()
	if err != nil {
		return nil, err
	}

	if err := keyfile.WriteKey(privKey); err != nil {
		return nil, err
	}

	return privKey, nil
}
