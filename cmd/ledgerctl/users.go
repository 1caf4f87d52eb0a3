package main

import (
	"github.com/spf13/cobra"

	"github.com/fsdevblog/splitledger/internal/transport/api"
)

func (c *cli) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
	}

	cmd.AddCommand(c.usersListCmd())
	cmd.AddCommand(c.usersCreateCmd())
	cmd.AddCommand(c.usersGetCmd())
	cmd.AddCommand(c.usersUpdateCmd())
	cmd.AddCommand(c.usersDeleteCmd())
	return cmd
}

func (c *cli) usersListCmd() *cobra.Command {
	var skip, limit uint
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.client.ListUsers(cmd.Context(), skip, limit)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, users)
		},
	}
	cmd.Flags().UintVar(&skip, "skip", 0, "number of users to skip")
	cmd.Flags().UintVar(&limit, "limit", 0, "page size (server default when 0)")
	return cmd
}

func (c *cli) usersCreateCmd() *cobra.Command {
	var params api.CreateUserParams
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.client.CreateUser(cmd.Context(), params)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, user)
		},
	}
	cmd.Flags().StringVar(&params.Name, "name", "", "user name")
	cmd.Flags().StringVar(&params.Email, "email", "", "user email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) usersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := c.client.GetUser(cmd.Context(), id)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, user)
		},
	}
}

func (c *cli) usersUpdateCmd() *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update user name or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			// отправляем только явно переданные поля.
			var params api.UpdateUserParams
			if cmd.Flags().Changed("name") {
				params.Name = &name
			}
			if cmd.Flags().Changed("email") {
				params.Email = &email
			}

			user, err := c.client.UpdateUser(cmd.Context(), id, params)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, user)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new user name")
	cmd.Flags().StringVar(&email, "email", "", "new user email")
	return cmd
}

func (c *cli) usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user together with the expenses they take part in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = c.client.DeleteUser(cmd.Context(), id); err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, api.MessageResponse{Message: "User deleted successfully"})
		},
	}
}
