package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var purgeConfirmed bool

// NewPurgeCmd produces the command that deletes the chain database.
func NewPurgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "purge-chain",
		Short:   "Delete the chain database",
		PreRunE: loadConfig,
		RunE:    purgeChain,
	}

	AddRunFlags(cmd)
	cmd.Flags().BoolVarP(&purgeConfirmed, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func purgeChain(cmd *cobra.Command, args []string) error {
	if !purgeConfirmed {
		fmt.Printf("Delete %s? [y/N]: ", _config.DatabaseDir)

		var answer string
		fmt.Scanln(&answer)

		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted")
			return nil
		}
	}

	if err := os.RemoveAll(_config.DatabaseDir); err != nil {
		return err
	}

	fmt.Printf("Deleted: %s\n", _config.DatabaseDir)

	return nil
}
