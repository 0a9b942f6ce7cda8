package keys

import (
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path"
	"sync"
)

// SimpleKeyfile reads and writes a single private key from/to a JSON file.
type SimpleKeyfile struct {
	l    sync.Mutex
	path string
}

type keyfileJSON struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// NewSimpleKeyfile creates a SimpleKeyfile backed by the file at keyPath.
func NewSimpleKeyfile(keyPath string) *SimpleKeyfile {
	return &SimpleKeyfile{path: keyPath}
}

// ReadKey parses the underlying file and returns the private key.
func (k *SimpleKeyfile) ReadKey() (*ecdsa.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	buf, err := ioutil.ReadFile(k.path)
	if err != nil {
		return nil, err
	}

	var j keyfileJSON
	if err := json.Unmarshal(buf, &j); err != nil {
		return nil, err
	}

	if j.PrivateKey == "" {
		return nil, fmt.Errorf("keyfile %s does not contain a private key", k.path)
	}

	raw, err := hex.DecodeString(j.PrivateKey)
	if err != nil {
		return nil, err
	}

	return ParsePrivateKey(raw)
}

// WriteKey persists a private key to the underlying file.
func (k *SimpleKeyfile) WriteKey(key *ecdsa.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	j := keyfileJSON{
		PublicKey:  PublicKeyHex(&key.PublicKey),
		PrivateKey: PrivateKeyHex(key),
	}

	buf, err := json.MarshalIndent(j, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(path.Dir(k.path), 0700); err != nil {
		return err
	}

	return ioutil.WriteFile(k.path, buf, 0600)
}
