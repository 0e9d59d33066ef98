package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	serveradapter "github.com/evanschultz/todo/internal/adapters/server"
	servercommon "github.com/evanschultz/todo/internal/adapters/server/common"
	"github.com/evanschultz/todo/internal/adapters/server/mcpapi"
	"github.com/evanschultz/todo/internal/app"
	"github.com/evanschultz/todo/internal/config"
	"github.com/evanschultz/todo/internal/platform"
	"github.com/evanschultz/todo/internal/render"
	"github.com/evanschultz/todo/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the subset of tea.Program used by the TUI flow.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, session *servercommon.Session, logger serveradapter.Logger) error {
	return serveradapter.Run(ctx, cfg, session, logger)
}

// stdioRunner serves MCP over stdio.
var stdioRunner = func(ctx context.Context, cfg mcpapi.Config, session *servercommon.Session, in io.Reader, out io.Writer) error {
	return mcpapi.ServeStdio(ctx, cfg, session, in, out)
}

// newSessionID returns the id attached to every log line of one run.
var newSessionID = uuid.NewString

// rootOptions holds persistent flag values.
type rootOptions struct {
	configPath  string
	appName     string
	devMode     bool
	printOnExit bool
}

// runtimeEnv is the resolved configuration shared by every command flow.
type runtimeEnv struct {
	opts       rootOptions
	paths      platform.Paths
	configPath string
	cfg        config.Config
	sessionID  string
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes args through fang.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	if args == nil {
		args = []string{}
	}

	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(os.Stdin)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// newRootCommand constructs the todo command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: "todo", devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("TODO_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("TODO_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:           "todo",
		Short:         "A single-session terminal task list",
		Long:          "todo opens an in-memory task list. Nothing is saved when the session ends.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			env, err := resolveRuntime(*opts)
			if err != nil {
				return err
			}
			return runTUI(env, stdout, stderr)
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")
	root.Flags().BoolVar(&opts.printOnExit, "print-on-exit", false, "print the final task list to stdout after the TUI exits")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newConfigCommand(opts, stdout),
		newMCPCommand(opts, stderr),
		newServeCommand(opts, stderr),
	)
	return root
}

// newPathsCommand prints resolved runtime paths.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", resolveConfigPath(opts.configPath, paths))
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", paths.LogDir)
			return nil
		},
	}
}

// newConfigCommand prints the effective config or writes the defaults.
func newConfigCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, err := resolvePaths(*opts)
			if err != nil {
				return err
			}
			configPath := resolveConfigPath(opts.configPath, paths)
			if write {
				created, err := config.WriteDefault(configPath)
				if err != nil {
					return fmt.Errorf("write default config %q: %w", configPath, err)
				}
				if created {
					_, _ = fmt.Fprintf(stdout, "wrote %s\n", configPath)
				} else {
					_, _ = fmt.Fprintf(stdout, "exists %s\n", configPath)
				}
				return nil
			}
			cfg, err := config.Load(configPath, config.Default())
			if err != nil {
				return fmt.Errorf("load config %q: %w", configPath, err)
			}
			encoded, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "# %s\n%s", configPath, encoded)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the default config when none exists")
	return cmd
}

// newMCPCommand serves the MCP tools over stdio.
func newMCPCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve one task list session as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveRuntime(*opts)
			if err != nil {
				return err
			}
			logger, err := openLogger(env, stderr)
			if err != nil {
				return err
			}
			defer closeLogger(logger, stderr)

			session, err := newSession(env, logger)
			if err != nil {
				return err
			}
			logger.Info("command flow start", "command", "mcp")
			mcpCfg := mcpapi.Config{ServerName: env.opts.appName, ServerVersion: version}
			if err := stdioRunner(cmd.Context(), mcpCfg, session, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				logger.Error("command flow failed", "command", "mcp", "err", err)
				return fmt.Errorf("run mcp command: %w", err)
			}
			logger.Info("command flow complete", "command", "mcp")
			return nil
		},
	}
}

// newServeCommand serves the REST API and MCP streamable HTTP endpoints.
func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one task list session over HTTP (REST and MCP)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := resolveRuntime(*opts)
			if err != nil {
				return err
			}
			logger, err := openLogger(env, stderr)
			if err != nil {
				return err
			}
			defer closeLogger(logger, stderr)

			session, err := newSession(env, logger)
			if err != nil {
				return err
			}
			logger.Info("command flow start", "command", "serve")
			err = serveCommandRunner(cmd.Context(), serveradapter.Config{
				HTTPBind:      httpBind,
				APIEndpoint:   apiEndpoint,
				MCPEndpoint:   mcpEndpoint,
				ServerName:    env.opts.appName,
				ServerVersion: version,
			}, session, logger)
			if err != nil {
				logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "127.0.0.1:8080", "HTTP listen address")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "/api/v1", "HTTP API base endpoint")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "/mcp", "MCP streamable HTTP endpoint")
	return cmd
}

// runTUI runs the interactive list until the user quits.
func runTUI(env runtimeEnv, stdout, stderr io.Writer) error {
	logger, err := openLogger(env, stderr)
	if err != nil {
		return err
	}
	// Runtime logs stay in the dev-file sink while the TUI owns the terminal.
	logger.SetConsoleEnabled(false)
	defer closeLogger(logger, stderr)

	idGen, err := newIDGenerator(env.cfg)
	if err != nil {
		return err
	}
	ctrl := app.NewController(idGen)
	m := tui.NewModel(
		ctrl,
		tui.WithLogger(logger),
		tui.WithUIConfig(toTUIUIConfig(env.cfg)),
		tui.WithKeyConfig(toTUIKeyConfig(env.cfg)),
	)

	logger.Info("command flow start", "command", "tui", "id_strategy", env.cfg.IDs.Strategy)
	final, err := programFactory(m).Run()
	if err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	state := ctrl.State()
	if fm, ok := final.(tui.Model); ok {
		state = fm.Controller().State()
	}
	logger.Info("command flow complete", "command", "tui", "tasks", len(state.Tasks))
	if env.opts.printOnExit {
		_, _ = fmt.Fprintln(stdout, render.Table(state))
	}
	return nil
}

// resolvePaths resolves platform paths for opts.
func resolvePaths(opts rootOptions) (platform.Paths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return platform.Paths{}, fmt.Errorf("resolve paths: %w", err)
	}
	return paths, nil
}

// resolveConfigPath applies flag, then env, then platform default precedence.
func resolveConfigPath(flagPath string, paths platform.Paths) string {
	if path := strings.TrimSpace(flagPath); path != "" {
		return path
	}
	if envPath := strings.TrimSpace(os.Getenv("TODO_CONFIG")); envPath != "" {
		return envPath
	}
	return paths.ConfigPath
}

// resolveRuntime loads paths and config for one command flow.
func resolveRuntime(opts rootOptions) (runtimeEnv, error) {
	paths, err := resolvePaths(opts)
	if err != nil {
		return runtimeEnv{}, err
	}
	configPath := resolveConfigPath(opts.configPath, paths)
	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return runtimeEnv{
		opts:       opts,
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		sessionID:  newSessionID(),
	}, nil
}

// openLogger configures runtime logging and records startup context.
func openLogger(env runtimeEnv, stderr io.Writer) (*runtimeLogger, error) {
	logger, err := newRuntimeLogger(stderr, env.opts.appName, env.opts.devMode, env.cfg.Logging, env.sessionID, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", env.opts.appName, "dev_mode", env.opts.devMode)
	logger.Debug("runtime paths resolved", "config_path", env.configPath, "data_dir", env.paths.DataDir)
	logger.Info("configuration loaded", "config_path", env.configPath, "log_level", env.cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return logger, nil
}

// closeLogger closes log sinks, reporting failures only when the console is live.
func closeLogger(logger *runtimeLogger, stderr io.Writer) {
	if err := logger.Close(); err != nil && logger.shouldLogToSink(logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// newSession builds the serialized controller session used by remote transports.
func newSession(env runtimeEnv, logger *runtimeLogger) (*servercommon.Session, error) {
	idGen, err := newIDGenerator(env.cfg)
	if err != nil {
		return nil, err
	}
	return servercommon.NewSession(app.NewController(idGen), logger), nil
}

// newIDGenerator maps the configured strategy onto an app generator.
func newIDGenerator(cfg config.Config) (app.IDGenerator, error) {
	strategy, err := app.ParseIDStrategy(string(cfg.IDs.Strategy))
	if err != nil {
		return nil, fmt.Errorf("configure ids: %w", err)
	}
	return app.NewIDGenerator(strategy, time.Now)
}

// toTUIUIConfig maps config values into tui presentation settings.
func toTUIUIConfig(cfg config.Config) tui.UIConfig {
	return tui.UIConfig{
		ShowCounts:    cfg.UI.ShowCounts,
		Placeholder:   cfg.UI.Placeholder,
		CharLimit:     cfg.UI.CharLimit,
		DoubleClick:   time.Duration(cfg.UI.DoubleClickMS) * time.Millisecond,
		ConfirmRemove: cfg.Confirm.Remove,
	}
}

// toTUIKeyConfig maps config key overrides into tui bindings.
func toTUIKeyConfig(cfg config.Config) tui.KeyConfig {
	return tui.KeyConfig{
		Toggle: cfg.Keys.Toggle,
		Edit:   cfg.Keys.Edit,
		Remove: cfg.Keys.Remove,
		Copy:   cfg.Keys.Copy,
	}
}

// parseBoolEnv parses a boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
