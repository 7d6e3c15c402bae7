package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/chimpchain/config"
	"github.com/s0up4200/chimpchain/filter"
	"github.com/s0up4200/chimpchain/mailchimp"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = zerolog.New(os.Stderr).With().Timestamp().Logger()
	client  *mailchimp.Client
	filters *filter.Manager

	// Command flags
	outputFormat string
	filterExpr   string
	preset       string
	count        int
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "chimpchain",
	Short: "A chained Mailchimp client for lists, members and campaigns",
	Long: `chimpchain manages Mailchimp audience lists, their members and campaigns
from the command line. Every command prints the result envelope of the
Mailchimp operation it ran.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json or yaml")

	rootCmd.AddCommand(testCmd)
}

// initializeApp loads the configuration and connects to Mailchimp
func initializeApp(cmd *cobra.Command, args []string) error {
	if _, err := newPrinter(outputFormat, io.Discard); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, os.Stderr)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	opts := []mailchimp.Option{
		mailchimp.WithTimeout(cfg.Mailchimp.Timeout),
		mailchimp.WithMethodOverride(cfg.Mailchimp.MethodOverride),
		mailchimp.WithConcurrency(cfg.Mailchimp.Concurrency),
	}
	if cfg.Mailchimp.BaseURL != "" {
		opts = append(opts, mailchimp.WithBaseURL(cfg.Mailchimp.BaseURL))
	}

	client, err = mailchimp.NewClient(cfg.Mailchimp.APIKey, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Mailchimp client: %w", err)
	}
	client.SetMergeFields(cfg.Defaults.MergeFields)

	return nil
}

// skipInitialization is the PersistentPreRunE of commands that need no
// config or client.
func skipInitialization(cmd *cobra.Command, args []string) error {
	return nil
}

// setupLogger configures the zerolog logger. Console color is dropped when
// out is not a terminal.
func setupLogger(cfg config.LoggingConfig, out *os.File) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(out).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(out),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to Mailchimp",
	Long:  `Test the API key against the Mailchimp API root and display basic account information.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	// Connection is already tested during client creation
	fmt.Println("✓ Connection successful!")

	if path := config.ConfigFileUsed(cfgFile); path != "" {
		fmt.Printf("- Config file: %s\n", path)
	} else {
		fmt.Println("- Config file: none (environment only)")
	}

	account := client.Account()
	for _, key := range []string{"account_name", "email", "account_id", "total_subscribers"} {
		if value, ok := account[key]; ok {
			fmt.Printf("- %s: %v\n", key, value)
		}
	}

	if names := filters.ListFilters(); len(names) > 0 {
		fmt.Printf("- Filter presets: %s\n", strings.Join(names, ", "))
	}

	return nil
}

// finish prints the envelope left by the chain and turns an error envelope
// into a non-zero exit.
func finish(cmd *cobra.Command) error {
	env, err := client.Fetch()
	if err != nil {
		return err
	}

	p, err := newPrinter(outputFormat, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := p.Envelope(env); err != nil {
		return err
	}
	return env.Err()
}

// selectFilter returns the filter chosen by --filter or --preset, or nil
func selectFilter() (filter.CompiledFilter, error) {
	if filterExpr == "" && preset == "" {
		return nil, nil
	}
	if filterExpr != "" && preset != "" {
		return nil, fmt.Errorf("use either --filter or --preset, not both")
	}
	f, err := filters.Resolve(preset, filterExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	return f, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression evaluated against each record")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a preset filter from config")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of records to fetch (API default when 0)")
}
