package main

import (
	"os"

	cmd "github.com/slatechain/slate/cmd/slate/commands"
)

func main() {
	rootCmd := cmd.RootCmd

	rootCmd.AddCommand(
		cmd.NewRunCmd(),
		cmd.NewKeygenCmd(),
		cmd.NewBuildSpecCmd(),
		cmd.NewPurgeCmd(),
		cmd.NewBenchCmd(),
		cmd.VersionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
