package config

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/common"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultKeyfile is the default name of the file containing the
	// validator's private key
	DefaultKeyfile = "priv_key"

	// DefaultBadgerFile is the default name of the folder containing the
	// Badger database
	DefaultBadgerFile = "badger_db"
)

// Default configuration values.
const (
	DefaultLogLevel          = "debug"
	DefaultChain             = "dev"
	DefaultBindAddr          = "127.0.0.1:1337"
	DefaultServiceAddr       = "127.0.0.1:8000"
	DefaultSlotDuration      = 1000 * time.Millisecond
	DefaultTCPTimeout        = 1000 * time.Millisecond
	DefaultCacheSize         = 10000
	DefaultSyncLimit         = 1000
	DefaultMaxPool           = 2
	DefaultStore             = false
	DefaultMaxBlockTxs       = 500
	DefaultConfirmationDepth = 3
	DefaultMinFee            = 1
)

// Config contains all the configuration properties of a slate node.
type Config struct {
	// DataDir is the top-level directory containing slate configuration and
	// data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// Chain selects the chain specification: "dev", "local", or the path of
	// a chain-spec JSON file.
	Chain string `mapstructure:"chain"`

	// Moniker defines the friendly name of this node
	Moniker string `mapstructure:"moniker"`

	// BindAddr is the local address:port where this node talks to other
	// nodes.
	BindAddr string `mapstructure:"listen"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the optional HTTP service.
	ServiceAddr string `mapstructure:"service-listen"`

	// MaxPool controls how many connections are pooled per target in the
	// sync routines.
	MaxPool int `mapstructure:"max-pool"`

	// TCPTimeout is the timeout of sync RPC connections.
	TCPTimeout time.Duration `mapstructure:"timeout"`

	// SyncLimit defines the max number of blocks to include in a
	// SyncResponse.
	SyncLimit int `mapstructure:"sync-limit"`

	// Store activates persistent storage.
	Store bool `mapstructure:"store"`

	// DatabaseDir is the directory containing database files.
	DatabaseDir string `mapstructure:"db"`

	// CacheSize is the max number of items in in-memory caches.
	CacheSize int `mapstructure:"cache-size"`

	// Bootstrap determines whether to load the chain from an existing
	// database file. Forces Store.
	Bootstrap bool `mapstructure:"bootstrap"`

	// SlotDuration is the length of an authoring slot.
	SlotDuration time.Duration `mapstructure:"slot-duration"`

	// MaxBlockTxs is the maximum number of transactions per authored block.
	MaxBlockTxs int `mapstructure:"max-block-txs"`

	// ConfirmationDepth is the number of descendant blocks after which a
	// block is considered final.
	ConfirmationDepth int `mapstructure:"confirmation-depth"`

	// MinFee is the transaction-pool fee floor.
	MinFee uint64 `mapstructure:"min-fee"`

	// LogToFile mirrors info and debug logs to files in DataDir.
	LogToFile bool `mapstructure:"log-to-file"`

	// Key is the private key of the validator.
	Key *ecdsa.PrivateKey `mapstructure:"-"`

	logger *logrus.Logger
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	return &Config{
		DataDir:           DefaultDataDir(),
		LogLevel:          DefaultLogLevel,
		Chain:             DefaultChain,
		BindAddr:          DefaultBindAddr,
		ServiceAddr:       DefaultServiceAddr,
		SlotDuration:      DefaultSlotDuration,
		TCPTimeout:        DefaultTCPTimeout,
		CacheSize:         DefaultCacheSize,
		SyncLimit:         DefaultSyncLimit,
		MaxPool:           DefaultMaxPool,
		Store:             DefaultStore,
		DatabaseDir:       DefaultDatabaseDir(),
		MaxBlockTxs:       DefaultMaxBlockTxs,
		ConfirmationDepth: DefaultConfirmationDepth,
		MinFee:            DefaultMinFee,
	}
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	logger := common.NewTestLogger(t)
	logger.Level = level
	config.logger = logger
	return config
}

// Validate checks the values that would break the node at runtime. The slot
// clock divides by SlotDuration, so it must be positive.
func (c *Config) Validate() error {
	if c.SlotDuration <= 0 {
		return fmt.Errorf("slot-duration must be positive, got %s", c.SlotDuration)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache-size must be positive, got %d", c.CacheSize)
	}
	return nil
}

// SetDataDir sets the top-level slate directory, and updates the database
// directory if it is currently set to the default value. If the database
// directory is not currently the default, it means the user has explicitly
// set it to something else, so avoid changing it again here.
func (c *Config) SetDataDir(dataDir string) {
	c.DataDir = dataDir
	if c.DatabaseDir == DefaultDatabaseDir() {
		c.DatabaseDir = filepath.Join(dataDir, DefaultBadgerFile)
	}
}

// Keyfile returns the full path of the file containing the private key.
func (c *Config) Keyfile() string {
	return filepath.Join(c.DataDir, DefaultKeyfile)
}

// Logger returns a formatted logrus Entry, with prefix set to "slate".
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogToFile {
			c.logger.Hooks.Add(lfshook.NewHook(
				lfshook.PathMap{
					logrus.InfoLevel:  filepath.Join(c.DataDir, "slate_info.log"),
					logrus.DebugLevel: filepath.Join(c.DataDir, "slate_debug.log"),
				},
				&logrus.TextFormatter{},
			))
		}
	}
	return c.logger.WithField("prefix", "slate")
}

// DefaultDatabaseDir returns the default path for the badger database files.
func DefaultDatabaseDir() string {
	return filepath.Join(DefaultDataDir(), DefaultBadgerFile)
}

// DefaultDataDir returns the default directory name for top-level slate
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Slate")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Slate")
		} else {
			return filepath.Join(home, ".slate")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
