package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetcare/config"
	"github.com/kilianp07/fleetcare/infra/store"
	"github.com/kilianp07/fleetcare/simulator"
)

var seedCfg simulator.Config

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a generated demo fleet into the configured store",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedCfg.Vehicles, "vehicles", 100, "number of vehicles")
	seedCmd.Flags().IntVar(&seedCfg.LoggedVehicles, "logged", 50, "vehicles with a fuel log")
	seedCmd.Flags().IntVar(&seedCfg.Days, "days", 30, "days of fuel log")
	seedCmd.Flags().Int64Var(&seedCfg.Seed, "seed", 42, "random seed")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Store.Driver == "memory" {
		return fmt.Errorf("seed: the memory store does not outlive the command, configure sqlite or postgres")
	}
	gen, err := simulator.New(seedCfg)
	if err != nil {
		return err
	}
	st, err := store.Open(cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			if _, ferr := fmt.Fprintf(cmd.ErrOrStderr(), "error while closing store: %v\n", err); ferr != nil {
				fmt.Println("failed to write to stderr:", ferr)
			}
		}
	}()
	n, rows, err := gen.Seed(cmd.Context(), st, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d vehicles and %d fuel rows into %s\n", n, rows, cfg.Store.Driver)
	return err
}
