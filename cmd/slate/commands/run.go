package commands

import (
	"github.com/sirupsen/logrus"
	"github.com/slatechain/slate/src/slate"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a slate node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runSlate,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runSlate(cmd *cobra.Command, args []string) error {
	engine := slate.NewSlate(_config)

	if err := engine.Init(); err != nil {
		_config.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("moniker", _config.Moniker, "Optional name")
	cmd.Flags().Bool("log-to-file", _config.LogToFile, "Mirror logs to files in datadir")

	// Chain
	cmd.Flags().String("chain", _config.Chain, "Chain spec: dev, local, or path of a spec file")

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for slate node")
	cmd.Flags().DurationP("timeout", "t", _config.TCPTimeout, "TCP Timeout")
	cmd.Flags().Int("max-pool", _config.MaxPool, "Connection pool size max")
	cmd.Flags().Int("sync-limit", _config.SyncLimit, "Max number of blocks per sync response")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable the HTTP service")

	// Store
	cmd.Flags().Bool("store", _config.Store, "Use badgerDB instead of in-mem DB")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory")
	cmd.Flags().Bool("bootstrap", _config.Bootstrap, "Load from database")
	cmd.Flags().Int("cache-size", _config.CacheSize, "Number of items in LRU caches")

	// Authoring
	cmd.Flags().Duration("slot-duration", _config.SlotDuration, "Length of an authoring slot")
	cmd.Flags().Int("max-block-txs", _config.MaxBlockTxs, "Max number of transactions per block")
	cmd.Flags().Int("confirmation-depth", _config.ConfirmationDepth, "Depth at which blocks become final")
	cmd.Flags().Uint64("min-fee", _config.MinFee, "Transaction pool fee floor")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	// If --datadir was explicitely set, but not --db, this will update the
	// default database dir to be inside the new datadir
	_config.SetDataDir(_config.DataDir)

	logFields := logrus.Fields{
		"DataDir":           _config.DataDir,
		"Chain":             _config.Chain,
		"BindAddr":          _config.BindAddr,
		"ServiceAddr":       _config.ServiceAddr,
		"NoService":         _config.NoService,
		"MaxPool":           _config.MaxPool,
		"Store":             _config.Store,
		"LogLevel":          _config.LogLevel,
		"Moniker":           _config.Moniker,
		"TCPTimeout":        _config.TCPTimeout,
		"CacheSize":         _config.CacheSize,
		"SyncLimit":         _config.SyncLimit,
		"SlotDuration":      _config.SlotDuration,
		"MaxBlockTxs":       _config.MaxBlockTxs,
		"ConfirmationDepth": _config.ConfirmationDepth,
		"MinFee":            _config.MinFee,
	}

	if _config.Store {
		logFields["DatabaseDir"] = _config.DatabaseDir
		logFields["Bootstrap"] = _config.Bootstrap
	}

	_config.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/slate.toml (.json, .yaml also work)
	viper.SetConfigName("slate")          // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir)  // search root directory

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
	} else {
		return err
	}

	// second unmarshal to read from config file
	return viper.Unmarshal(_config)
}
