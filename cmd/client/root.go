package main

import (
	"bufio"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/account-service/internal/client"
	"github.com/spec-kit/account-service/internal/observability"
)

const (
	envAPIURL    = "ACCOUNT_API_URL"
	envTokenFile = "ACCOUNT_TOKEN_FILE"

	defaultAPIURL = "http://localhost:5000/api"
)

// rootConfig holds the global flags.
type rootConfig struct {
	apiURL    string
	tokenFile string
	timeout   time.Duration
	logLevel  string
}

// session is built once per invocation before any subcommand runs.
type session struct {
	gate   *client.Gate
	input  *bufio.Reader
	logger *zap.Logger
}

// NewRootCmd creates the root command for accountctl.
func NewRootCmd() *cobra.Command {
	cfg := &rootConfig{}
	sess := &session{}

	cmd := &cobra.Command{
		Use:   "accountctl",
		Short: "accountctl - sign up, log in and reach your dashboard",
		Long: `accountctl talks to the account service. It stores the session token
locally and only lets you reach the dashboard while that token is valid.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return sess.open(cmd, cfg)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if sess.logger != nil {
				_ = sess.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfg.apiURL, "api", envOr(envAPIURL, defaultAPIURL), "account service base URL")
	cmd.PersistentFlags().StringVar(&cfg.tokenFile, "token-file", envOr(envTokenFile, defaultTokenFile()), "where the session token is kept")
	cmd.PersistentFlags().DurationVar(&cfg.timeout, "timeout", client.DefaultTimeout, "request timeout")
	cmd.PersistentFlags().StringVar(&cfg.logLevel, "log-level", "warn", "log level for diagnostics on stderr")

	cmd.AddCommand(newSignupCmd(sess))
	cmd.AddCommand(newLoginCmd(sess))
	cmd.AddCommand(newLogoutCmd(sess))
	cmd.AddCommand(newDashboardCmd(sess))
	cmd.AddCommand(newOpenCmd(sess))
	cmd.AddCommand(newStatusCmd(sess))

	return cmd
}

func (s *session) open(cmd *cobra.Command, cfg *rootConfig) error {
	logger, err := observability.NewConsoleLogger(cfg.logLevel)
	if err != nil {
		return err
	}
	s.logger = logger
	s.input = bufio.NewReader(cmd.InOrStdin())
	s.gate = client.NewGate(
		client.NewAPIClient(cfg.apiURL, cfg.timeout),
		client.NewFileStore(cfg.tokenFile),
		client.WithLogger(logger),
	)
	return s.gate.Init()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".accountctl-token.json"
	}
	return filepath.Join(dir, "accountctl", "token.json")
}
