package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/venmo-go/config"
	"github.com/s0up4200/venmo-go/filter"
	"github.com/s0up4200/venmo-go/venmo"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	client     *venmo.Client
	userSvc    *venmo.UserService
	filters    *filter.Manager
	paymentSvc *venmo.PaymentService

	version   = "dev"
	buildTime = "unknown"
)

// SetVersion records build information for the version and upgrade commands.
func SetVersion(v, t string) {
	version = v
	buildTime = t
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "venmo",
	Short: "A CLI for Venmo payments, users and transaction feeds",
	Long: `venmo is a CLI client for Venmo's private API. It can log in (including
the two-factor challenge), look up users, inspect transaction feeds, and
send, request and manage payments.`,
	PersistentPreRunE: initializeApp,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.venmo/config.yaml)")
}

// initializeApp initializes the configuration, logger and API client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	// Create the API client with the persisted identity, if any
	opts := []venmo.Option{
		venmo.WithHost(cfg.API.Host),
		venmo.WithTimeout(cfg.API.Timeout),
		venmo.WithDefaultHeaders(cfg.API.DefaultHeaders),
	}
	if cfg.Credentials.AccessToken != "" {
		opts = append(opts, venmo.WithAccessToken(cfg.Credentials.AccessToken))
	}
	if cfg.Credentials.DeviceID != "" {
		opts = append(opts, venmo.WithDeviceID(cfg.Credentials.DeviceID))
	}
	client = venmo.NewClient(logger, opts...)
	userSvc = venmo.NewUserService(client)

	// Compile filter presets
	filters = filter.NewManager()
	if err := filters.RegisterAll(cfg.Filter); err != nil {
		return fmt.Errorf("failed to compile filter presets: %w", err)
	}

	return nil
}

// requireAuth ensures an access token is available before an authenticated command runs.
func requireAuth() error {
	if client.AccessToken() == "" {
		return errors.New("not logged in: run 'venmo login' or set credentials.access_token in config")
	}
	return nil
}

// ensurePaymentService fetches the profile the payment API needs, once.
func ensurePaymentService(ctx context.Context) error {
	if paymentSvc != nil {
		return nil
	}
	if err := requireAuth(); err != nil {
		return err
	}
	profile, err := userSvc.MyProfile(ctx, false)
	if err != nil {
		return fmt.Errorf("failed to fetch profile: %w", err)
	}
	paymentSvc = venmo.NewPaymentService(client, profile)
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; color only when writing to a real terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("venmo %s (built %s)\n", version, buildTime)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
