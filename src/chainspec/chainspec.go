package chainspec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"sync"

	"github.com/slatechain/slate/src/chain"
)

// Chain types.
const (
	// ChainTypeDevelopment is a single-validator throw-away chain.
	ChainTypeDevelopment = "Development"

	// ChainTypeLocal is a multi-validator chain running on one machine.
	ChainTypeLocal = "Local"

	// ChainTypeLive is everything else.
	ChainTypeLive = "Live"
)

// WeightedAuthority is a finality authority together with its voting weight.
type WeightedAuthority struct {
	PubKeyHex string `json:"pubKey"`
	Weight    uint64 `json:"weight"`
}

// Genesis declares the initial state of a chain: endowed balances, the slot
// authorities, the weighted finality authorities, and the sudo key.
type Genesis struct {
	Balances            map[string]uint64   `json:"balances"`
	Authorities         []string            `json:"authorities"`
	FinalityAuthorities []WeightedAuthority `json:"finalityAuthorities"`
	Sudo                string              `json:"sudo,omitempty"`
}

// ChainSpec is the declarative genesis state and network identity of a slate
// chain instance. It is little more than what comes in from the --chain CLI
// option, fleshed out into a document that every node of the chain agrees on.
type ChainSpec struct {
	Name       string                 `json:"name"`
	ID         string                 `json:"id"`
	ChainType  string                 `json:"chainType"`
	Bootnodes  []string               `json:"bootNodes"`
	ProtocolID string                 `json:"protocolId,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Genesis    Genesis                `json:"genesis"`
}

// Validate performs basic sanity checks on a spec.
func (s *ChainSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("chain spec has no id")
	}
	if len(s.Genesis.Authorities) == 0 {
		return fmt.Errorf("chain spec %s defines no authorities", s.ID)
	}
	for _, a := range s.Genesis.FinalityAuthorities {
		if a.Weight == 0 {
			return fmt.Errorf("finality authority %s has zero weight", a.PubKeyHex)
		}
	}
	return nil
}

// GenesisState builds the initial account ledger from the genesis balances.
func (s *ChainSpec) GenesisState() *chain.State {
	return chain.NewState(s.Genesis.Balances)
}

// AuthorityIndex returns the position of a public key in the authority set,
// or -1 when the key is not an authority.
func (s *ChainSpec) AuthorityIndex(pubKeyHex string) int {
	for i, a := range s.Genesis.Authorities {
		if a == pubKeyHex {
			return i
		}
	}
	return -1
}

// SlotAuthor returns the authority expected to author the given slot. Slots
// are assigned round-robin over the authority set.
func (s *ChainSpec) SlotAuthor(slot uint64) string {
	return s.Genesis.Authorities[slot%uint64(len(s.Genesis.Authorities))]
}

// Marshal returns the indented JSON document for the spec.
func (s *ChainSpec) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// JSONSpecFile provides chain-spec persistence on disk in the form of a JSON
// file.
type JSONSpecFile struct {
	l    sync.Mutex
	path string
}

// NewJSONSpecFile creates a JSONSpecFile with reference to the file where the
// JSON document resides.
func NewJSONSpecFile(path string) *JSONSpecFile {
	return &JSONSpecFile{path: path}
}

// Read parses the underlying JSON file and returns the corresponding
// ChainSpec.
func (j *JSONSpecFile) Read() (*ChainSpec, error) {
	j.l.Lock()
	defer j.l.Unlock()

	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	var spec ChainSpec
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&spec); err != nil {
		return nil, err
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// Write persists a ChainSpec to the JSON file.
func (j *JSONSpecFile) Write(spec *ChainSpec) error {
	j.l.Lock()
	defer j.l.Unlock()

	buf, err := spec.Marshal()
	if err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, append(buf, '\n'), 0644)
}
