package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var automationCmd = &cobra.Command{
	Use:   "automation",
	Short: "Operator toggle for the outreach automation",
}

var automationOnCmd = &cobra.Command{
	Use:   "on",
	Short: "Enable scheduled outreach runs",
	RunE:  func(cmd *cobra.Command, _ []string) error { return setAutomation(cmd, true) },
}

var automationOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Disable scheduled outreach runs",
	RunE:  func(cmd *cobra.Command, _ []string) error { return setAutomation(cmd, false) },
}

var automationStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the automation state",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		state, err := st.GetAutomationState(ctx)
		if err != nil {
			return eris.Wrap(err, "automation status")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	},
}

func setAutomation(cmd *cobra.Command, running bool) error {
	ctx := cmd.Context()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	if err := st.SetAutomationRunning(ctx, running); err != nil {
		return eris.Wrap(err, "set automation state")
	}

	zap.L().Info("automation state updated", zap.Bool("is_running", running))
	return nil
}

func init() {
	automationCmd.AddCommand(automationOnCmd)
	automationCmd.AddCommand(automationOffCmd)
	automationCmd.AddCommand(automationStatusCmd)
	rootCmd.AddCommand(automationCmd)
}
