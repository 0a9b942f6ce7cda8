package commands

import (
	"github.com/slatechain/slate/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for slate
var RootCmd = &cobra.Command{
	Use:              "slate",
	Short:            "slate proof-of-authority chain node",
	TraverseChildren: true,
}
