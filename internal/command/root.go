// Package command wires the huddle CLI.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "huddle"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

// NewRootCmd builds the root command.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Huddle - terminal client for community chat",
		Long:          "Huddle is a polling chat client: channels, messages, mentions, and notifications in the terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("config", "", "path to config file")
	cmd.PersistentFlags().Bool("json", false, "output in JSON format")

	cmd.AddCommand(
		NewChatCmd(),
		NewChannelsCmd(),
		NewNotificationsCmd(),
		NewSendCmd(),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCmd(Version).Execute()
}
