package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type accountView struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	IGUserID       string `json:"ig_user_id"`
	Email          string `json:"email"`
	HasCredentials bool   `json:"has_credentials"`
	CreatedAt      string `json:"created_at"`
}

func newAccountsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage publishing accounts",
	}
	cmd.AddCommand(newAccountsListCommand(ctx))
	cmd.AddCommand(newAccountsAddCommand(ctx))
	cmd.AddCommand(newAccountsRemoveCommand(ctx))
	cmd.AddCommand(newAccountsCredentialsCommand(ctx))
	return cmd
}

func newAccountsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var response struct {
				Accounts []accountView `json:"accounts"`
			}
			if err := client.get(cmd.Context(), "/api/accounts", &response); err != nil {
				return err
			}
			if len(response.Accounts) == 0 {
				cmd.Println("No accounts configured.")
				return nil
			}
			rows := make([][]string, 0, len(response.Accounts))
			for _, account := range response.Accounts {
				credentials := "missing"
				if account.HasCredentials {
					credentials = "ok"
				}
				rows = append(rows, []string{
					strconv.FormatInt(account.ID, 10),
					account.Username,
					account.IGUserID,
					credentials,
					account.Email,
				})
			}
			cmd.Println(renderTable(
				[]string{"ID", "Username", "IG User", "Credentials", "Email"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newAccountsAddCommand(ctx *commandContext) *cobra.Command {
	var igUserID, accessToken, email string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			payload := map[string]string{
				"username":     args[0],
				"ig_user_id":   igUserID,
				"access_token": accessToken,
				"email":        email,
			}
			var account accountView
			if err := client.post(cmd.Context(), "/api/accounts", payload, &account); err != nil {
				return err
			}
			cmd.Printf("Added account %s (id %d)\n", account.Username, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&igUserID, "ig-user-id", "", "Remote platform user id")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Remote platform access token")
	cmd.Flags().StringVar(&email, "email", "", "Contact email")
	return cmd
}

func newAccountsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an account and its queued items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.delete(cmd.Context(), fmt.Sprintf("/api/accounts/%d", id)); err != nil {
				return err
			}
			cmd.Printf("Removed account %d\n", id)
			return nil
		},
	}
}

func newAccountsCredentialsCommand(ctx *commandContext) *cobra.Command {
	var igUserID, accessToken string

	cmd := &cobra.Command{
		Use:   "set-credentials <id>",
		Short: "Update an account's remote platform credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account id %q", args[0])
			}
			client, err := ctx.client()
			if err != nil {
				return err
			}
			payload := map[string]string{
				"ig_user_id":   igUserID,
				"access_token": accessToken,
			}
			var account accountView
			if err := client.put(cmd.Context(), fmt.Sprintf("/api/accounts/%d", id), payload, &account); err != nil {
				return err
			}
			cmd.Printf("Updated credentials for %s\n", account.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&igUserID, "ig-user-id", "", "Remote platform user id")
	cmd.Flags().StringVar(&accessToken, "access-token", "", "Remote platform access token")
	return cmd
}
