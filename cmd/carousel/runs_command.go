package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type runView struct {
	ID            int64  `json:"id"`
	Trigger       string `json:"trigger"`
	StartedAt     string `json:"started_at"`
	EndedAt       string `json:"ended_at"`
	AccountsTried int64  `json:"accounts_tried"`
	Succeeded     int64  `json:"succeeded"`
	Failed        int64  `json:"failed"`
	Images        int64  `json:"images"`
	Videos        int64  `json:"videos"`
}

type attemptView struct {
	ID          int64  `json:"id"`
	AccountID   int64  `json:"account_id"`
	ItemID      *int64 `json:"item_id"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	ErrorReason string `json:"error_reason"`
	StartedAt   string `json:"started_at"`
}

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show run history, or one run with its attempts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				return showRun(cmd, client, id)
			}
			return listRuns(cmd, client, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}

func listRuns(cmd *cobra.Command, client *apiClient, limit int) error {
	var response struct {
		Runs []runView `json:"runs"`
	}
	if err := client.get(cmd.Context(), fmt.Sprintf("/api/runs?limit=%d", limit), &response); err != nil {
		return err
	}
	if len(response.Runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}
	rows := make([][]string, 0, len(response.Runs))
	for _, run := range response.Runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.Trigger,
			run.StartedAt,
			strconv.FormatInt(run.AccountsTried, 10),
			strconv.FormatInt(run.Succeeded, 10),
			strconv.FormatInt(run.Failed, 10),
			strconv.FormatInt(run.Images, 10),
			strconv.FormatInt(run.Videos, 10),
		})
	}
	cmd.Println(renderTable(
		[]string{"ID", "Trigger", "Started", "Tried", "Succeeded", "Failed", "Images", "Videos"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	))
	return nil
}

func showRun(cmd *cobra.Command, client *apiClient, id int64) error {
	var response struct {
		Run      runView       `json:"run"`
		Attempts []attemptView `json:"attempts"`
	}
	if err := client.get(cmd.Context(), fmt.Sprintf("/api/runs/%d", id), &response); err != nil {
		return err
	}
	run := response.Run
	cmd.Printf("Run %d (%s): started %s", run.ID, run.Trigger, run.StartedAt)
	if run.EndedAt != "" {
		cmd.Printf(", ended %s", run.EndedAt)
	}
	cmd.Printf("\nTried %d, succeeded %d, failed %d (%d images, %d videos)\n",
		run.AccountsTried, run.Succeeded, run.Failed, run.Images, run.Videos)

	if len(response.Attempts) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(response.Attempts))
	for _, attempt := range response.Attempts {
		itemID := ""
		if attempt.ItemID != nil {
			itemID = strconv.FormatInt(*attempt.ItemID, 10)
		}
		rows = append(rows, []string{
			strconv.FormatInt(attempt.ID, 10),
			strconv.FormatInt(attempt.AccountID, 10),
			itemID,
			attempt.Kind,
			attempt.Status,
			attempt.ErrorReason,
		})
	}
	cmd.Println(renderTable(
		[]string{"Attempt", "Account", "Item", "Kind", "Status", "Error"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignLeft, alignLeft, alignLeft},
	))
	return nil
}
