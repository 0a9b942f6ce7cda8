package commands

import (
	"fmt"

	"github.com/slatechain/slate/src/chainspec"
	"github.com/spf13/cobra"
)

var specOutFile string

// NewBuildSpecCmd produces the command that prints or writes a chain spec.
func NewBuildSpecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build-spec",
		Short: "Export a chain spec as JSON",
		RunE:  buildSpec,
	}

	cmd.Flags().String("chain", _config.Chain, "Chain spec: dev, local, or path of a spec file")
	cmd.Flags().StringVar(&specOutFile, "out", "", "Write the spec to a file instead of stdout")

	return cmd
}

func buildSpec(cmd *cobra.Command, args []string) error {
	chainID, err := cmd.Flags().GetString("chain")
	if err != nil {
		return err
	}

	spec, err := chainspec.Load(chainID)
	if err != nil {
		return err
	}

	if specOutFile != "" {
		if err := chainspec.NewJSONSpecFile(specOutFile).Write(spec); err != nil {
			return err
		}

		fmt.Printf("Chain spec written to: %s\n", specOutFile)

		return nil
	}

	raw, err := spec.Marshal()
	if err != nil {
		return err
	}

	fmt.Println(string(raw))

	return nil
}
