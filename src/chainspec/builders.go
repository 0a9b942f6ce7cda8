package chainspec

import (
	"os"

	"github.com/slatechain/slate/src/crypto/keys"
)

// devEndowment is the balance granted to every endowed dev account.
const devEndowment = uint64(1) << 60

// SeedKeyHex derives the well-known public key for a dev seed such as "alice".
func SeedKeyHex(seed string) string {
	key := keys.FromSeed(seed)
	return keys.PublicKeyHex(&key.PublicKey)
}

// Development returns a chain spec with a single authority, alice, who is
// also the sudo key.
func Development() *ChainSpec {
	alice := SeedKeyHex("alice")

	return &ChainSpec{
		Name:      "Development",
		ID:        "dev",
		ChainType: ChainTypeDevelopment,
		Bootnodes: []string{},
		Genesis: Genesis{
			Balances: map[string]uint64{
				alice: devEndowment,
			},
			Authorities: []string{alice},
			FinalityAuthorities: []WeightedAuthority{
				{PubKeyHex: alice, Weight: 1},
			},
			Sudo: alice,
		},
	}
}

// LocalTestnet returns a chain spec with the alice and bob authorities and
// three endowed accounts.
func LocalTestnet() *ChainSpec {
	alice := SeedKeyHex("alice")
	bob := SeedKeyHex("bob")
	charlie := SeedKeyHex("charlie")

	return &ChainSpec{
		Name:      "Local Testnet",
		ID:        "local_testnet",
		ChainType: ChainTypeLocal,
		Bootnodes: []string{},
		Genesis: Genesis{
			Balances: map[string]uint64{
				alice:   devEndowment,
				bob:     devEndowment,
				charlie: devEndowment,
			},
			Authorities: []string{alice, bob},
			FinalityAuthorities: []WeightedAuthority{
				{PubKeyHex: alice, Weight: 1},
				{PubKeyHex: bob, Weight: 1},
			},
			Sudo: alice,
		},
	}
}

// Load resolves a --chain value into a ChainSpec. The well-known ids "dev"
// and "local" map to built-in specs; anything else is interpreted as the path
// of a chain-spec JSON file.
func Load(id string) (*ChainSpec, error) {
	switch id {
	case "", "dev", "development":
		return Development(), nil
	case "local", "local_testnet":
		return LocalTestnet(), nil
	default:
		if _, err := os.Stat(id); err != nil {
			return nil, err
		}
		return NewJSONSpecFile(id).Read()
	}
}
