package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abatilo/dash/internal/config"
	dasherrors "github.com/abatilo/dash/internal/errors"
	"github.com/abatilo/dash/internal/memory"
	"github.com/abatilo/dash/internal/output"
	"github.com/abatilo/dash/internal/remote"
	"github.com/abatilo/dash/internal/session"
	"github.com/abatilo/dash/internal/storage"
	"github.com/abatilo/dash/internal/store"
)

const envFile = ".env"

//nolint:gochecknoglobals // CLI flags and formatter are package-level
var (
	jsonOutput  bool
	verbose     bool
	backendFlag string
	apiURLFlag  string
	formatter   output.Formatter
	logger      *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dash",
		Short: "A personal task dashboard",
		Long:  "dash - Track tasks locally or against the dashboard API, with overview stats and an assistant.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			formatter = output.New(jsonOutput)
			if verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			} else {
				logger = slog.New(slog.NewTextHandler(io.Discard, nil))
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	flags.StringVar(&backendFlag, "backend", "", "Task backend: local, memory or remote (default from config)")
	flags.StringVar(&apiURLFlag, "api-url", "", "Dashboard API URL (default from config)")

	rootCmd.AddCommand(
		initCmd(),
		loginCmd(),
		registerCmd(),
		logoutCmd(),
		whoamiCmd(),
		addCmd(),
		listCmd(),
		showCmd(),
		editCmd(),
		toggleCmd(),
		rmCmd(),
		overviewCmd(),
		analyticsCmd(),
		askCmd(),
		insightsCmd(),
		healthCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves configuration and applies the global flags on top.
func loadConfig() config.Config {
	cfg, err := config.Load(envFile)
	if err != nil {
		printError(err)
	}
	if backendFlag != "" {
		cfg.Backend = config.Backend(backendFlag)
	}
	if apiURLFlag != "" {
		cfg.APIURL = apiURLFlag
	}
	if err = cfg.Validate(); err != nil {
		printError(err)
	}
	logger.Debug("config resolved", "backend", cfg.Backend, "api_url", cfg.APIURL, "home", cfg.Home)
	return cfg
}

func getGate(cfg config.Config) *session.Gate {
	return session.NewGate(cfg.Layout().SessionDir(cfg.APIURL))
}

// getClient returns an API client carrying the stored credential. A 401 from
// any call logs the user out.
func getClient(cfg config.Config) *remote.Client {
	gate := getGate(cfg)
	creds, err := gate.Credentials()
	if err != nil {
		printError(err)
	}
	return remote.NewClient(cfg.APIURL, creds,
		remote.WithTimeout(cfg.Timeout),
		remote.WithLogger(logger),
		remote.WithUnauthorizedHook(func() {
			if invErr := gate.Invalidate(); invErr != nil {
				logger.Warn("could not remove rejected session", "error", invErr)
			}
		}),
	)
}

// anonymousClient returns an API client for endpoints that need no login.
func anonymousClient(cfg config.Config) *remote.Client {
	return remote.NewClient(cfg.APIURL, remote.Credentials{},
		remote.WithTimeout(cfg.Timeout),
		remote.WithLogger(logger),
	)
}

func getStore(cfg config.Config) *store.Store {
	var b store.Backing
	switch cfg.Backend {
	case config.BackendRemote:
		b = remote.NewBacking(getClient(cfg))
	case config.BackendMemory:
		b = memory.NewWithSeed(memory.DemoTasks())
	default:
		local := storage.NewStoreWithPath(cfg.Layout().TasksDir())
		if !local.IsInitialized() {
			printError(dasherrors.NotInitializedError{})
		}
		b = local
	}
	return store.New(b, store.WithLogger(logger))
}

func parseID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		printError(InvalidIDError{Value: s})
	}
	return id
}

func printOutput(s string) {
	os.Stdout.WriteString(s) //nolint:gosec // stdout write errors are unrecoverable
}

func printError(err error) {
	os.Stdout.WriteString(formatter.FormatError(err)) //nolint:gosec // stdout write errors are unrecoverable
	if !jsonOutput && errors.As(err, &dasherrors.SessionInvalidError{}) {
		os.Stderr.WriteString("Hint: your session was rejected; run 'dash login' to sign in again.\n") //nolint:gosec // stderr write errors are unrecoverable
	}
	os.Exit(1)
}

// initCmd implements 'dash init'.
func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the local task directory",
		Run: func(_ *cobra.Command, _ []string) {
			cfg := loadConfig()
			local := storage.NewStoreWithPath(cfg.Layout().TasksDir())
			if err := local.Init(force); err != nil {
				printError(err)
			}
			printOutput(formatter.FormatMessage("Initialized dash at " + local.BasePath()))
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize even if already exists")
	return cmd
}
