package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/fleetcare/core/maintenance"
	"github.com/kilianp07/fleetcare/core/model"
	"github.com/kilianp07/fleetcare/pkg/export"
)

var (
	scoreDate   string
	scorePolicy string
	windowDays  int
	dueDays     int
	format      string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the efficiency and anomaly models and print the outcome",
	Args:  cobra.NoArgs,
	RunE:  runTrain,
}

var scoreCmd = &cobra.Command{
	Use:   "score <vehicle-id>",
	Short: "Evaluate the maintenance need of one vehicle",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Train the models and list fuel anomalies of the fleet",
	Args:  cobra.NoArgs,
	RunE:  runAnomalies,
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List vehicles due for maintenance",
	Args:  cobra.NoArgs,
	RunE:  runAlerts,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreDate, "date", "", "evaluation day (YYYY-MM-DD), today when empty")
	scoreCmd.Flags().StringVar(&scorePolicy, "policy", "", "maintenance policy (interval or schedule)")
	trainCmd.Flags().IntVar(&windowDays, "days", 0, "trailing window in days, engine default when 0")
	anomaliesCmd.Flags().IntVar(&windowDays, "days", 0, "trailing window in days, engine default when 0")
	anomaliesCmd.Flags().StringVar(&format, "format", "json", "output format (json or csv)")
	alertsCmd.Flags().IntVar(&dueDays, "within-days", 0, "due horizon in days, report default when 0")
	alertsCmd.Flags().StringVar(&format, "format", "json", "output format (json or csv)")
	rootCmd.AddCommand(trainCmd, scoreCmd, anomaliesCmd, alertsCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	rep, err := svc.Engine.TrainModels(cmd.Context(), windowDays)
	if err != nil {
		return err
	}
	return printJSON(cmd, rep)
}

func runScore(cmd *cobra.Command, args []string) error {
	at := time.Now()
	if scoreDate != "" {
		d, err := time.Parse(model.DateLayout, scoreDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", scoreDate, err)
		}
		at = d
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)

	policy := svc.Engine.DefaultPolicy()
	if scorePolicy != "" {
		if policy, err = maintenance.ParsePolicyName(scorePolicy); err != nil {
			return err
		}
	}
	if _, err := svc.Train(cmd.Context()); err != nil {
		return err
	}
	ev, err := svc.Engine.ScoreVehicleWith(cmd.Context(), policy, args[0], at)
	if err != nil {
		return err
	}
	return printJSON(cmd, ev)
}

func runAnomalies(cmd *cobra.Command, _ []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	if _, err := svc.Engine.TrainModels(cmd.Context(), windowDays); err != nil {
		return err
	}
	res, err := svc.Engine.DetectFleetAnomalies(cmd.Context(), windowDays)
	if err != nil {
		return err
	}
	return export.WriteAnomalies(cmd.OutOrStdout(), f, res)
}

func runAlerts(cmd *cobra.Command, _ []string) error {
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	svc, err := newService()
	if err != nil {
		return err
	}
	defer closeService(svc)
	due, err := svc.Reports.DueList(cmd.Context(), time.Now(), dueDays)
	if err != nil {
		return err
	}
	return export.WriteDueList(cmd.OutOrStdout(), f, due)
}
