package command

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"huddle/internal/api"
	"huddle/internal/types"
)

// NewSendCmd builds the one-shot message send command.
func NewSendCmd() *cobra.Command {
	var imagePath string

	cmd := &cobra.Command{
		Use:   "send <channel> <message...>",
		Short: "Post a message to a channel without opening the TUI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			content := strings.Join(args[1:], " ")
			if strings.TrimSpace(content) == "" && imagePath == "" {
				return fmt.Errorf("nothing to send: message is empty and no --image given")
			}

			ch, err := resolveChannel(cmd, app.client, args[0])
			if err != nil {
				return err
			}

			req := api.SendMessageRequest{
				Content:     content,
				ChannelID:   ch.ID,
				MessageType: types.MessageTypeText,
			}
			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return err
				}
				defer f.Close()
				url, err := app.client.UploadImage(cmd.Context(), filepath.Base(imagePath), f)
				if err != nil {
					return fmt.Errorf("upload %s: %w", imagePath, err)
				}
				req.ImageURL = url
				req.MessageType = types.MessageTypeImage
			}

			msg, err := app.client.SendMessage(cmd.Context(), req)
			if err != nil {
				return err
			}
			if jsonFlag(cmd) {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s to #%s\n", msg.ID, ch.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "attach an image file")
	return cmd
}

// resolveChannel accepts either a channel name (with or without a leading
// '#') or a raw channel id.
func resolveChannel(cmd *cobra.Command, client *api.Client, ref string) (types.Channel, error) {
	name := strings.TrimPrefix(ref, "#")
	channels, err := client.Channels(cmd.Context())
	if err != nil {
		return types.Channel{}, err
	}
	for _, ch := range channels {
		if ch.Name == name || ch.ID == ref {
			return ch, nil
		}
	}
	return types.Channel{}, fmt.Errorf("no channel named %q", ref)
}
