package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/slatechain/slate/src/bench"
	"github.com/spf13/cobra"
)

var (
	benchList bool
	benchJSON bool
	benchMode string
)

// NewBenchCmd produces the command that runs node benchmarks. An optional
// positional argument filters benchmarks by path component, ex:
// "slate bench construct" or "slate bench ::txpool::submit::small".
func NewBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench [filter]",
		Short: "Run node benchmarks",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}

	cmd.Flags().BoolVar(&benchList, "list", false, "List benchmarks without running them")
	cmd.Flags().BoolVar(&benchJSON, "json", false, "Print results as JSON")
	cmd.Flags().StringVar(&benchMode, "mode", string(bench.ModeRegular), "regular or profile")

	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	mode := bench.Mode(benchMode)
	if mode != bench.ModeRegular && mode != bench.ModeProfile {
		return fmt.Errorf("unknown mode %q", benchMode)
	}

	filter := ""
	if len(args) == 1 {
		filter = args[0]
	}

	selected := []bench.BenchmarkDescription{}
	for _, desc := range bench.Registry() {
		if matchBenchmark(desc, filter) {
			selected = append(selected, desc)
		}
	}

	if benchList {
		for _, desc := range selected {
			fmt.Printf("%s: %s\n", desc.Path().Full(), desc.Name())
		}
		return nil
	}

	logger := _config.Logger().WithField("prefix", "bench")

	results := []*bench.Result{}
	for _, desc := range selected {
		result, err := bench.RunBenchmark(desc, mode, logger)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if benchJSON {
		return json.NewEncoder(os.Stdout).Encode(results)
	}

	for _, result := range results {
		fmt.Printf("%s: avg %s, raw avg %s\n",
			result.Name,
			time.Duration(result.AverageNs),
			time.Duration(result.RawAverageNs))
	}

	return nil
}

func matchBenchmark(desc bench.BenchmarkDescription, filter string) bool {
	if filter == "" {
		return true
	}
	if strings.HasPrefix(filter, "::") {
		return strings.HasPrefix(desc.Path().Full(), filter)
	}
	return desc.Path().Has(filter)
}
