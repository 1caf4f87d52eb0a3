package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show who owes whom",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "group <group-id>",
		Short: "Simplified debts inside a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			balances, err := c.client.GroupBalances(cmd.Context(), id)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, balances)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "user <user-id>",
		Short: "Debts involving a user, per group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			balances, err := c.client.UserBalances(cmd.Context(), id)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, balances)
		},
	})

	return cmd
}
