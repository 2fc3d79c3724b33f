package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type itemView struct {
	ID        int64  `json:"id"`
	AccountID int64  `json:"account_id"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	SourceURL string `json:"source_url"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func newQueueCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage queued media items",
	}
	cmd.AddCommand(newQueueListCommand(ctx))
	cmd.AddCommand(newQueueAddCommand(ctx))
	cmd.AddCommand(newQueueRemoveCommand(ctx))
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued items",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			path := "/api/items"
			if statusFilter != "" {
				path += "?status=" + statusFilter
			}
			var response struct {
				Items []itemView `json:"items"`
			}
			if err := client.get(cmd.Context(), path, &response); err != nil {
				return err
			}
			if len(response.Items) == 0 {
				cmd.Println("Queue is empty.")
				return nil
			}
			rows := make([][]string, 0, len(response.Items))
			for _, item := range response.Items {
				rows = append(rows, []string{
					strconv.FormatInt(item.ID, 10),
					strconv.FormatInt(item.AccountID, 10),
					item.Name,
					item.Kind,
					item.Status,
					item.SourceURL,
				})
			}
			cmd.Println(renderTable(
				[]string{"ID", "Account", "Name", "Kind", "Status", "Source"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "Filter by item status (pending, posted)")
	return cmd
}

func newQueueAddCommand(ctx *commandContext) *cobra.Command {
	var accountID int64
	var name, kind string

	cmd := &cobra.Command{
		Use:   "add <source-url>",
		Short: "Queue a media item for an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == 0 {
				return fmt.Errorf("--account is required")
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			payload := map[string]any{
				"account_id": accountID,
				"name":       name,
				"kind":       kind,
				"source_url": args[0],
			}
			var item itemView
			if err := client.post(cmd.Context(), "/api/items", payload, &item); err != nil {
				return err
			}
			cmd.Printf("Queued %s item %d for account %d\n", item.Kind, item.ID, item.AccountID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "Owning account id")
	cmd.Flags().StringVar(&name, "name", "", "Caption used when publishing")
	cmd.Flags().StringVar(&kind, "kind", "image", "Media kind (image or video)")
	return cmd
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a queued item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.delete(cmd.Context(), fmt.Sprintf("/api/items/%d", id)); err != nil {
				return err
			}
			cmd.Printf("Removed item %d\n", id)
			return nil
		},
	}
}
