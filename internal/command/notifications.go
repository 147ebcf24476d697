package command

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewNotificationsCmd builds the notification feed commands.
func NewNotificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"notifs"},
		Short:   "List and manage notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNotifications(cmd)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listNotifications(cmd)
		},
	}

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark one notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.client.MarkNotificationRead(cmd.Context(), args[0])
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.client.MarkAllNotificationsRead(cmd.Context())
		},
	}

	remove := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			return app.client.DeleteNotification(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(list, read, readAll, remove)
	return cmd
}

func listNotifications(cmd *cobra.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	notifications, err := app.client.Notifications(cmd.Context())
	if err != nil {
		return err
	}
	if jsonFlag(cmd) {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(notifications)
	}
	for _, n := range notifications {
		mark := " "
		if !n.IsRead {
			mark = "•"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s  %s\n", mark, n.Type, n.CreatedAt.Local().Format("Jan 2 15:04"), n.Content)
	}
	return nil
}
