// Command chat runs the terminal chat client. It wires the session store,
// the authorized HTTP client, the query cache, and the screens, then hands
// control to bubbletea.
package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-chat-client/internal/api"
	"github.com/tbourn/go-chat-client/internal/cache"
	"github.com/tbourn/go-chat-client/internal/config"
	"github.com/tbourn/go-chat-client/internal/profile"
	"github.com/tbourn/go-chat-client/internal/services"
	"github.com/tbourn/go-chat-client/internal/session"
	"github.com/tbourn/go-chat-client/internal/sysutil"
	"github.com/tbourn/go-chat-client/internal/tui"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "chat",
		Short:   "Terminal client for the buddy chat backend",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
		SilenceUsage: true,
	}
	root.Flags().String("base-url", "", "backend origin (overrides CHAT_BASE_URL)")
	root.Flags().String("token-path", "", "session token file (overrides CHAT_TOKEN_PATH)")
	root.Flags().String("log-file", "", "write logs to this file instead of discarding them")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("base-url"); v != "" {
		cfg.BaseURL = v
	}
	if v, _ := cmd.Flags().GetString("token-path"); v != "" {
		cfg.TokenPath = v
	}

	// The terminal belongs to the UI, so logs are discarded unless a log file
	// is requested.
	var logOut io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	log := sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty, logOut)

	sessions := session.NewStore(session.NewFileStorage(cfg.TokenPath), log)
	queries := cache.NewStore(log)
	client, err := api.New(cfg.BaseURL, sessions,
		api.WithUserAgent(cfg.UserAgent),
		api.WithLogger(log),
	)
	if err != nil {
		return err
	}

	app := tui.NewApp(&tui.Stack{
		Sessions:    sessions,
		Queries:     queries,
		Reader:      services.NewReader(client, queries, log),
		Coordinator: services.NewCoordinator(client, sessions, queries, log),
		Profile:     profile.New(client, sessions, queries, log),
		Log:         log,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
