// radixbench exercises the device-wide radix sort on a real OCCA backend:
// correctness sweeps against the host reference ordering, and throughput
// benchmarks across element counts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	deviceConfig string
	sweepFile    string
	seed         uint64

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "radixbench",
	Short: "Correctness sweeps and benchmarks for the device radix sort",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceConfig, "device", "",
		`OCCA device config JSON, e.g. {"mode": "CUDA", "device_id": 0}; empty tries the default backend chain`)
	rootCmd.PersistentFlags().StringVar(&sweepFile, "sweep", "",
		"TOML file describing the case sweep; built-in sweep when empty")
	rootCmd.PersistentFlags().Uint64Var(&seed, "seed", 42,
		"seed for data generation and randomized sizes")

	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
