package main

import (
	"github.com/spf13/cobra"

	"github.com/fsdevblog/splitledger/internal/transport/api"
)

func (c *cli) groupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Manage groups and their members",
	}

	cmd.AddCommand(c.groupsListCmd())
	cmd.AddCommand(c.groupsCreateCmd())
	cmd.AddCommand(c.groupsGetCmd())
	cmd.AddCommand(c.groupsUpdateCmd())
	cmd.AddCommand(c.groupsDeleteCmd())
	return cmd
}

func (c *cli) groupsListCmd() *cobra.Command {
	var skip, limit uint
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List groups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			groups, err := c.client.ListGroups(cmd.Context(), skip, limit)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, groups)
		},
	}
	cmd.Flags().UintVar(&skip, "skip", 0, "number of groups to skip")
	cmd.Flags().UintVar(&limit, "limit", 0, "page size (server default when 0)")
	return cmd
}

func (c *cli) groupsCreateCmd() *cobra.Command {
	var params api.CreateGroupParams
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			group, err := c.client.CreateGroup(cmd.Context(), params)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, group)
		},
	}
	cmd.Flags().StringVar(&params.Name, "name", "", "group name")
	cmd.Flags().Int64SliceVar(&params.UserIDs, "members", nil, "member user ids, e.g. 1,2,3")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("members")
	return cmd
}

func (c *cli) groupsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			group, err := c.client.GetGroup(cmd.Context(), id)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, group)
		},
	}
}

func (c *cli) groupsUpdateCmd() *cobra.Command {
	var (
		name    string
		members []int64
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a group or replace its member list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var params api.UpdateGroupParams
			if cmd.Flags().Changed("name") {
				params.Name = &name
			}
			if cmd.Flags().Changed("members") {
				params.UserIDs = members
			}

			group, err := c.client.UpdateGroup(cmd.Context(), id, params)
			if err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, group)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new group name")
	cmd.Flags().Int64SliceVar(&members, "members", nil, "new member list, replaces the current one")
	return cmd
}

func (c *cli) groupsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a group with all its expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err = c.client.DeleteGroup(cmd.Context(), id); err != nil {
				return err //nolint:wrapcheck
			}
			return printJSON(cmd, api.MessageResponse{Message: "Group deleted successfully"})
		},
	}
}
