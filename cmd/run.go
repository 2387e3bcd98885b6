package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runSender string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one outreach pipeline invocation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx, runSender)
		if err != nil {
			return err
		}
		defer env.Close()

		summary := env.Pipeline.Run(ctx)

		zap.L().Info("invocation finished",
			zap.Bool("success", summary.Success),
			zap.Bool("skipped", summary.Skipped),
			zap.String("query", summary.Query),
			zap.Int("emails_sent", summary.EmailsSent),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	runCmd.Flags().StringVar(&runSender, "sender", "", "sender persona key (default from catalog)")
	rootCmd.AddCommand(runCmd)
}
