// Package cli implements the esmcat command line.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the "duckdb" driver
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"esmcat/internal/config"
	"esmcat/internal/domain"
	"esmcat/internal/engine"
	"esmcat/internal/objectstore"
	"esmcat/internal/service/catalog"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{
				"error": err.Error(),
			}
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				errObj["location"] = nf.Location
			}
			_ = PrintJSON(os.Stdout, errObj)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// session holds the settings resolved for one invocation and the services
// built from them. Services are created on first use so that commands like
// version and config never touch DuckDB or the network.
type session struct {
	output      string
	profileName string
	logLevel    string
	timeout     time.Duration
	probeMethod string

	profile Profile
	level   slog.LevelVar
	logger  *slog.Logger

	db  *sql.DB
	svc *catalog.Service
}

func newRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:           "esmcat",
		Short:         "Resolve and load ESM catalog descriptors",
		Long:          "Command-line interface for loading catalog descriptors and the tabular catalogs they reference, from local paths or remote URLs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.resolve(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return s.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&s.output, "output", "o", "table", "Output format (table, json)")
	flags.StringVarP(&s.profileName, "profile", "p", "", "Config profile to use")
	flags.StringVar(&s.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.DurationVar(&s.timeout, "timeout", 0, "Network timeout for probes and fetches (0 means none)")
	flags.StringVar(&s.probeMethod, "probe-method", "", "Reachability probe method (head, get); use get for presigned URLs that refuse HEAD with 403")

	rootCmd.AddCommand(newResolveCmd(s))
	rootCmd.AddCommand(newDescribeCmd(s))
	rootCmd.AddCommand(newCheckCmd(s))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd())

	// Shell completions
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve applies flag > env > profile > default precedence and builds the logger.
func (s *session) resolve(cmd *cobra.Command) error {
	cfg, _, err := LoadUserConfig()
	if err != nil {
		return err
	}
	s.profile = cfg.ActiveProfile(s.profileName)

	flags := cmd.Root().PersistentFlags()
	pick(flags, "output", "ESMCAT_OUTPUT", s.profile.Output, &s.output)
	pick(flags, "log-level", "ESMCAT_LOG_LEVEL", s.profile.LogLevel, &s.logLevel)
	pick(flags, "probe-method", "ESMCAT_PROBE_METHOD", s.profile.ProbeMethod, &s.probeMethod)

	var timeout string
	pick(flags, "timeout", "ESMCAT_TIMEOUT", s.profile.Timeout, &timeout)
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", timeout, err)
		}
		s.timeout = d
	}

	if err := validateOutputFormat(s.output); err != nil {
		return err
	}
	if err := validateProbeMethod(s.probeMethod); err != nil {
		return err
	}

	s.level.Set(slog.LevelWarn)
	if s.logLevel != "" {
		s.level.Set(config.ParseLevel(s.logLevel))
	}
	s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: &s.level}))
	return nil
}

// pick sets *target from the environment or the profile unless the flag was
// given explicitly.
func pick(flags *pflag.FlagSet, flag, env, profile string, target *string) {
	if flags.Changed(flag) {
		return
	}
	if v := os.Getenv(env); v != "" {
		*target = v
	} else if profile != "" {
		*target = profile
	}
}

// service builds the catalog service on first use.
func (s *session) service(ctx context.Context) (*catalog.Service, error) {
	if s.svc != nil {
		return s.svc, nil
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	s.applyProfile(cfg)
	if s.logLevel == "" && os.Getenv("LOG_LEVEL") != "" {
		s.level.Set(cfg.SlogLevel())
	}
	for _, w := range cfg.Warnings {
		s.logger.Warn(w)
	}

	store, err := objectstore.NewFromConfig(ctx, cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("object stores: %w", err)
	}
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	s.db = db
	s.svc = catalog.NewService(catalog.Deps{
		Store:  store,
		Loader: engine.NewCSVLoader(db),
		Logger: s.logger,
	})
	return s.svc, nil
}

// applyProfile layers CLI settings and profile storage fields over cfg.
func (s *session) applyProfile(cfg *config.Config) {
	if s.timeout > 0 {
		cfg.HTTP.Timeout = s.timeout
	}
	if s.probeMethod != "" {
		cfg.HTTP.ProbeMethod = s.probeMethod
	}
	fill := func(dst **string, v string) {
		if *dst == nil && v != "" {
			*dst = &v
		}
	}
	fill(&cfg.S3Endpoint, s.profile.Endpoint)
	fill(&cfg.S3Region, s.profile.Region)
	if cfg.S3KeyID == nil && cfg.S3Secret == nil && s.profile.KeyID != "" && s.profile.Secret != "" {
		fill(&cfg.S3KeyID, s.profile.KeyID)
		fill(&cfg.S3Secret, s.profile.Secret)
	}
}

func (s *session) close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db, s.svc = nil, nil
	return err
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}

// writeLine ignores write errors on the command's output stream.
func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
