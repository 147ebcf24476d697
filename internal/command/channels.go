package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewChannelsCmd builds the channel management commands.
func NewChannelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List and manage channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listChannels(cmd)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listChannels(cmd)
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			private, _ := cmd.Flags().GetBool("private")
			created, err := app.client.CreateChannel(cmd.Context(), args[0], private)
			if err != nil {
				return err
			}
			if jsonFlag(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created #%s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	create.Flags().Bool("private", false, "create a private channel")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a channel (messages cascade server-side)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			if err := app.client.DeleteChannel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, create, remove)
	return cmd
}

func listChannels(cmd *cobra.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	channels, err := app.client.Channels(cmd.Context())
	if err != nil {
		return err
	}
	if jsonFlag(cmd) {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(channels)
	}
	for _, ch := range channels {
		mark := " "
		if ch.IsPrivate {
			mark = "*"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s #%-20s %4d members  %s\n", mark, ch.Name, ch.MemberCount, ch.ID)
	}
	return nil
}
