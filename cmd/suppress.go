package main

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var suppressCmd = &cobra.Command{
	Use:   "suppress",
	Short: "Manage the suppression list",
}

var suppressAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add an address to the suppression list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		email := strings.TrimSpace(args[0])
		if email == "" || !strings.Contains(email, "@") {
			return eris.Errorf("invalid email address: %q", args[0])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if err := st.AddSuppression(ctx, email); err != nil {
			return eris.Wrap(err, "suppress add")
		}

		zap.L().Info("address suppressed", zap.String("email", strings.ToLower(email)))
		return nil
	},
}

func init() {
	suppressCmd.AddCommand(suppressAddCmd)
	rootCmd.AddCommand(suppressCmd)
}
