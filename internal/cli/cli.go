package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/atm-watch/internal/atm"
	"github.com/pfrederiksen/atm-watch/internal/config"
	"github.com/pfrederiksen/atm-watch/internal/logger"
	"github.com/pfrederiksen/atm-watch/internal/notifier"
	"github.com/pfrederiksen/atm-watch/internal/poller"
	"github.com/pfrederiksen/atm-watch/internal/render"
	"github.com/pfrederiksen/atm-watch/internal/telegram"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagToken        string
	flagLogLevel     string
	flagTemplatePath string
	flagConfigPath   string
	flagDryRun       bool
	flagOnce         bool
	flagATMAPIURL    string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atm-watch",
		Short: "Notify a Telegram chat about ATMs with cash in the wanted currencies",
		Long: `A poller that queries the bank's ATM map for machines dispensing the configured
currencies, ranks them by available amount and distance to your points of
interest, and posts the list to a Telegram chat whenever it changes.`,
		RunE:          runWatch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagToken, "token", os.Getenv("TELEGRAM_BOT_TOKEN"), "Telegram bot token (required, or env: TELEGRAM_BOT_TOKEN)")
	cmd.Flags().StringVar(&flagLogLevel, "log-level", "INFO", "Log level: DEBUG, INFO, WARN or ERROR")
	cmd.Flags().StringVar(&flagTemplatePath, "template-path", "message.html", "Path to the message template")
	cmd.Flags().StringVar(&flagConfigPath, "config-path", "config.json", "Path to the JSON config file")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print messages instead of sending them")
	cmd.Flags().BoolVar(&flagOnce, "once", false, "Run a single poll and exit")
	cmd.Flags().StringVar(&flagATMAPIURL, "atm-api-url", atm.DefaultBaseURL, "Base URL of the ATM clusters API")
	cmd.Flags().MarkHidden("atm-api-url")

	return cmd
}

// runWatch is the main command logic
func runWatch(cmd *cobra.Command, args []string) error {
	level, err := logger.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(level, cmd.ErrOrStderr()))

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	tmpl, err := render.Load(flagTemplatePath)
	if err != nil {
		return fmt.Errorf("loading template: %w", err)
	}

	var n notifier.Notifier
	if flagDryRun {
		n = notifier.NewDryRunNotifier(cmd.OutOrStdout())
	} else {
		if flagToken == "" {
			return fmt.Errorf("bot token is required (use --token or TELEGRAM_BOT_TOKEN env var)")
		}
		client, err := telegram.NewClient(flagToken, cfg.ChatID)
		if err != nil {
			return fmt.Errorf("initializing Telegram client: %w", err)
		}
		n = notifier.NewTelegramNotifier(client)
	}

	fetcher := atm.NewClient(cfg.HTTPTimeout)
	if flagATMAPIURL != atm.DefaultBaseURL {
		fetcher = atm.NewClientWithBaseURL(flagATMAPIURL, &http.Client{Timeout: cfg.HTTPTimeout})
	}

	p := poller.New(fetcher, tmpl, n, poller.Options{
		Currencies:   cfg.Currencies,
		Bounds:       cfg.Bounds,
		POIs:         cfg.POIs,
		Interval:     cfg.SleepTime,
		ClipToBounds: cfg.ClipToBounds,
		Target:       cfg.ChatID,
	})

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting", logger.Fields{
		"chat_id":    cfg.ChatID,
		"currencies": cfg.Currencies,
		"pois":       len(cfg.POIs),
		"sleep_time": cfg.SleepTime.String(),
		"dry_run":    flagDryRun,
		"once":       flagOnce,
	})

	if flagOnce {
		_, err = p.Cycle(ctx)
	} else {
		err = p.Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("Shutting down", logger.Fields{
		"metrics": logger.GetMetricsSnapshot(),
	})
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
