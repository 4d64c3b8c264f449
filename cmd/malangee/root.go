package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/malangee/malangee/internal/auth"
	"github.com/malangee/malangee/internal/availability"
	"github.com/malangee/malangee/internal/cache"
	"github.com/malangee/malangee/internal/config"
	"github.com/malangee/malangee/internal/logger"
	"github.com/malangee/malangee/internal/prefs"
	"github.com/malangee/malangee/internal/token"
	"github.com/malangee/malangee/internal/tui"
	"github.com/malangee/malangee/pkg/client"
)

// options holds the persistent flags.
type options struct {
	apiURL string
	json   bool
	debug  bool
}

// env is the wiring every command runs against.
type env struct {
	cfg      *config.Config
	tokens   token.Store
	cache    *cache.Cache
	api      *client.Client
	prefs    *prefs.Store
	session  *auth.Session
	closeLog func() error
}

// newEnv loads config, installs the logger and builds the session. nav
// receives the session's navigation requests; nil ignores them.
func newEnv(opts *options, nav auth.Navigator) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.SetAPIURL(opts.apiURL)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	level := cfg.LogLevel
	if opts.debug {
		level = "debug"
	}
	closeLog, err := logger.Init(logger.Options{
		Level:  level,
		Format: cfg.LogFormat,
		Dir:    cfg.ConfigDir,
		Stderr: opts.debug,
	})
	if err != nil {
		return nil, err
	}
	log := slog.Default()

	tokens := token.Open(cfg.Token, cfg.TokenPath())
	c := cache.New(cfg.UserStaleTime)
	api := client.New(cfg.APIBase(), tokens.Get, client.WithLogger(log))
	p := prefs.New()
	s := auth.NewSession(api, tokens, c, nav,
		auth.WithLogoutHook(p.Clear),
		auth.WithStaleTime(cfg.UserStaleTime),
		auth.WithLogger(log),
	)
	log.Debug("starting", "version", version, "api", cfg.APIBase())

	return &env{cfg: cfg, tokens: tokens, cache: c, api: api, prefs: p, session: s, closeLog: closeLog}, nil
}

func (e *env) Close() {
	e.cache.Close()
	e.closeLog() //nolint:errcheck // best-effort
}

// withEnv adapts a command body that needs the wiring. Subcommands run
// outside the TUI, so navigation requests are only logged.
func withEnv(opts *options, fn func(cmd *cobra.Command, args []string, e *env) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		nav := auth.NavigatorFunc(func(r auth.Route) { slog.Debug("navigate", "route", r) })
		e, err := newEnv(opts, nav)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(cmd, args, e)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "malangee",
		Short: "Practice English conversation with Malang",
		Long: `malangee is the terminal client for MalangEE.

Run without a command to open the interactive app.

Environment Variables:
  MALANGEE_API_URL     Backend URL (default: http://localhost:8080)
  MALANGEE_API_PATH    API root under the backend URL (default: /api/v1)
  MALANGEE_WEB_URL     Web app opened by "malangee web" (default: http://localhost:3000)
  MALANGEE_TOKEN       Access token; overrides the saved token file
  MALANGEE_CONFIG_DIR  Token and debug.log location (default: ~/.malangee)
  LOG_LEVEL            debug, info, warn, error (default: info)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "Backend URL (overrides MALANGEE_API_URL)")
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "Output JSON instead of human-readable text")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Log at debug level to stderr")

	root.AddCommand(
		newLoginCmd(opts),
		newSignupCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newNicknameCmd(opts),
		newHistoryCmd(opts),
		newWebCmd(opts),
		newVersionCmd(opts),
	)
	return root
}

func runTUI(opts *options) error {
	bus := tui.NewBus()
	e, err := newEnv(opts, bus)
	if err != nil {
		return err
	}
	defer e.Close()

	app := tui.NewApp(tui.Deps{
		Session: e.session,
		API:     e.api,
		Prefs:   e.prefs,
		Checks:  availability.Config{Debounce: e.cfg.CheckDebounce},
		Bus:     bus,
		Version: version,
		WebURL:  e.cfg.WebURL,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// printJSON writes v indented, one document per call.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
