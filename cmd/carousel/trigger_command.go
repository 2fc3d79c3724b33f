package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type runResult struct {
	AccountID int64  `json:"account_id"`
	Username  string `json:"username"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason"`
	ItemName  string `json:"item_name"`
	MediaID   string `json:"media_id"`
}

type runSummary struct {
	RunID   *int64      `json:"run_id"`
	Trigger string      `json:"trigger"`
	Results []runResult `json:"results"`
}

func newTriggerCommand(ctx *commandContext) *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Trigger a publishing run now",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			path := "/api/scheduler/trigger/all"
			if accountID != 0 {
				path = fmt.Sprintf("/api/scheduler/trigger/account/%d", accountID)
			}

			var summary runSummary
			if err := client.post(cmd.Context(), path, nil, &summary); err != nil {
				return err
			}
			printRunSummary(cmd, summary)
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Run only this account instead of all accounts")
	return cmd
}

func printRunSummary(cmd *cobra.Command, summary runSummary) {
	if summary.RunID != nil {
		cmd.Printf("Run %d finished.\n", *summary.RunID)
	} else {
		cmd.Println("Trigger finished.")
	}
	if len(summary.Results) == 0 {
		cmd.Println("No accounts to process.")
		return
	}
	rows := make([][]string, 0, len(summary.Results))
	for _, result := range summary.Results {
		detail := result.Reason
		if result.Outcome == "success" {
			detail = fmt.Sprintf("published %s (media %s)", result.ItemName, result.MediaID)
		}
		rows = append(rows, []string{
			strconv.FormatInt(result.AccountID, 10),
			result.Username,
			result.Outcome,
			detail,
		})
	}
	cmd.Println(renderTable(
		[]string{"Account", "Username", "Outcome", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
}
