package command

import (
	"context"

	"github.com/spf13/cobra"

	"huddle/internal/chat"
	"huddle/internal/chatsync"
	"huddle/internal/config"
	"huddle/internal/notify"
	"huddle/internal/store"
	"huddle/internal/types"
)

// NewChatCmd builds the interactive chat UI command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			logger, closeLog := app.openLogger()
			defer closeLog()

			noSound, _ := cmd.Flags().GetBool("no-sound")
			noDesktop, _ := cmd.Flags().GetBool("no-desktop")

			engineCfg := chatsync.Config{
				API: app.client,
				User: types.Author{
					ID:    app.cfg.User.ID,
					Name:  app.cfg.User.Name,
					Image: app.cfg.User.Image,
				},
				Logger:       logger,
				PollInterval: app.cfg.PollInterval(),
			}

			dispatcher := notify.NewDispatcher(app.client, logger)
			engineCfg.Dispatcher = dispatcher

			mutes := notify.NewMuteList(app.cfg.MutedChannels)
			engineCfg.Mutes = mutes
			engineCfg.Alerter = &notify.DesktopAlerter{
				Sound:   !app.cfg.NoSound && !noSound,
				Desktop: !app.cfg.NoDesktop && !noDesktop,
				Logger:  logger,
			}

			if storePath, err := config.DefaultStorePath(); err == nil {
				if st, err := store.Open(storePath); err == nil {
					defer st.Close()
					engineCfg.Store = st
				} else {
					logger.Printf("open local store: %v", err)
				}
			}

			engine := chatsync.New(engineCfg)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			// Initial fetch failures surface in the UI error line; the user
			// re-triggers by switching channels or restarting.
			if err := dispatcher.Initialize(ctx); err != nil {
				logger.Printf("load notifications: %v", err)
			}
			if err := engine.Initialize(ctx); err != nil {
				logger.Printf("initialize: %v", err)
			}

			go func() { _ = engine.Run(ctx) }()
			go func() {
				_ = config.Watch(ctx, app.cfgPath, logger, func(cfg *config.Config) {
					mutes.SetPatterns(cfg.MutedChannels)
				})
			}()

			return chat.Run(ctx, chat.Options{Engine: engine, Dispatcher: dispatcher})
		},
	}

	cmd.Flags().Bool("no-sound", false, "disable the audio cue for new messages")
	cmd.Flags().Bool("no-desktop", false, "disable desktop notifications")
	return cmd
}
