package main

import (
	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon health and recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var health struct {
				Status string `json:"status"`
			}
			if err := client.get(cmd.Context(), "/healthz", &health); err != nil {
				return err
			}
			cmd.Printf("Daemon: %s (%s)\n", health.Status, client.base)

			var response struct {
				Runs []runView `json:"runs"`
			}
			if err := client.get(cmd.Context(), "/api/runs?limit=1", &response); err != nil {
				return err
			}
			if len(response.Runs) == 0 {
				cmd.Println("No runs recorded yet.")
				return nil
			}
			run := response.Runs[0]
			cmd.Printf("Last run %d (%s): tried %d, succeeded %d, failed %d\n",
				run.ID, run.Trigger, run.AccountsTried, run.Succeeded, run.Failed)
			return nil
		},
	}
}
