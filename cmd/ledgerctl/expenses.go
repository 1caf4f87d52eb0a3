package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/fsdevblog/splitledger/internal/domain"
	"github.com/fsdevblog/splitledger/internal/transport/api"
)

// expenseFlags - общие флаги create, preview и update.
type expenseFlags struct {
	description string
	amount      string
	paidBy      int64
	splitType   string
	splits      []string
}

func (f *expenseFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.description, "description", "", "expense description")
	cmd.Flags().StringVar(&f.amount, "amount", "", "expense amount, e.g. 12.50")
	cmd.Flags().Int64Var(&f.paidBy, "paid-by", 0, "id of the user who paid")
	cmd.Flags().StringVar(&f.splitType, "split-type", string(domain.SplitTypeEqual), "equal or percentage")
	cmd.Flags().StringSliceVar(&f.splits, "split", nil, "percentage share as user_id=percent, repeatable")
}

func (f *expenseFlags) createParams() (api.CreateExpenseParams, error) {
	amount, err := parseAmount(f.amount)
	if err != nil {
		return api.CreateExpenseParams{}, err
	}
	splits, err := parseSplits(f.splits)
	if err != nil {
		return api.CreateExpenseParams{}, err
	}
	return api.CreateExpenseParams{
		Description: f.description,
		Amount:      amount,
		PaidBy:      f.paidBy,
		SplitType:   domain.SplitType(f.splitType),
		Splits:      splits,
	}, nil
}

func (f *expenseFlags) updateParams(cmd *cobra.Command) (api.UpdateExpenseParams, error) {
	var params api.UpdateExpenseParams
	changed := cmd.Flags().Changed

	if changed("description") {
		params.Description = &f.description
	}
	if changed("amount") {
		amount, err := parseAmount(f.amount)
		if err != nil {
			return params, err
		}
		params.Amount = &amount
	}
	if changed("paid-by") {
		params.PaidBy = &f.paidBy
	}
	if changed("split-type") {
		splitType := domain.SplitType(f.splitType)
		params.SplitType = &splitType
	}
	if changed("split") {
		splits, err := parseSplits(f.splits)
		if err != nil {
			return params, err
		}
		params.Splits = splits
	}
	return params, nil
}

func (c *cli) expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Manage group expenses",
	}

	cmd.AddCommand(c.expensesListCmd())
	cmd.AddCommand(c.expensesCreateCmd(false))
	cmd.AddCommand(c.expensesCreateCmd(true))
	cmd.AddCommand(c.expensesGetCmd())
	cmd.AddCommand(c.expensesUpdateCmd())
	cmd.AddCommand(c.expensesDeleteCmd())
	return cmd
}

func (c *cli) expensesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <group-id>",
		Short: "List expenses of a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID(args[0])
			if err != nil {
				return err
			}
			expenses, err := c.client.ListExpenses(cmd.Context(), groupID)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, expenses)
		},
	}
}

// expensesCreateCmd собирает create или preview: флаги одинаковые, preview ничего не сохраняет.
func (c *cli) expensesCreateCmd(preview bool) *cobra.Command {
	var flags expenseFlags
	cmd := &cobra.Command{
		Use:   "create <group-id>",
		Short: "Add an expense to a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID(args[0])
			if err != nil {
				return err
			}
			params, err := flags.createParams()
			if err != nil {
				return err
			}

			if preview {
				shares, previewErr := c.client.PreviewExpense(cmd.Context(), groupID, params)
				if previewErr != nil {
					return previewErr //nolint:wrapcheck
				}
				return printJSON(cmd, shares)
			}

			expense, err := c.client.CreateExpense(cmd.Context(), groupID, params)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, expense)
		},
	}
	if preview {
		cmd.Use = "preview <group-id>"
		cmd.Short = "Show how an expense would be split without saving it"
	}

	flags.register(cmd)
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("paid-by")
	return cmd
}

func (c *cli) expensesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show an expense with its splits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			expense, err := c.client.GetExpense(cmd.Context(), id)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, expense)
		},
	}
}

func (c *cli) expensesUpdateCmd() *cobra.Command {
	var flags expenseFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change an expense, shares are recomputed when needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			params, err := flags.updateParams(cmd)
			if err != nil {
				return err
			}
			expense, err := c.client.UpdateExpense(cmd.Context(), id, params)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, expense)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *cli) expensesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = c.client.DeleteExpense(cmd.Context(), id); err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, api.MessageResponse{Message: "Expense deleted successfully"})
		},
	}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}

// parseSplits разбирает значения вида "2=40.5".
func parseSplits(raw []string) ([]api.SplitParams, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	splits := make([]api.SplitParams, 0, len(raw))
	for _, item := range raw {
		userRaw, pctRaw, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("invalid split %q, want user_id=percent", item)
		}
		userID, err := parseID(userRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid split %q: %w", item, err)
		}
		pct, err := decimal.NewFromString(pctRaw)
		if err != nil {
			return nil, fmt.Errorf("invalid split %q: bad percentage", item)
		}
		splits = append(splits, api.SplitParams{UserID: userID, Percentage: pct})
	}
	return splits, nil
}
