package command

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"huddle/internal/api"
	"huddle/internal/config"
)

// app bundles the collaborators every command needs.
type app struct {
	cfg     *config.Config
	cfgPath string
	client  *api.Client
}

func newApp(cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w (edit %s)", err, path)
	}
	client, err := api.NewClient(cfg.ServerURL, cfg.Token, cfg.ClientID)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, cfgPath: path, client: client}, nil
}

// openLogger returns a logger writing next to the config file. Stderr is
// owned by the TUI, so diagnostics go to a file instead.
func (a *app) openLogger() (*log.Logger, func()) {
	path := filepath.Join(filepath.Dir(a.cfgPath), AppName+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}
	}
	return log.New(file, "", log.LstdFlags), func() { _ = file.Close() }
}

func jsonFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}
