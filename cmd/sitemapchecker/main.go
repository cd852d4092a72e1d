package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/sitemapchecker/internal/config"
	"github.com/hamed0406/sitemapchecker/internal/domain"
	"github.com/hamed0406/sitemapchecker/internal/logging"
	"github.com/hamed0406/sitemapchecker/internal/notify"
	"github.com/hamed0406/sitemapchecker/internal/probe"
	"github.com/hamed0406/sitemapchecker/internal/report"
	"github.com/hamed0406/sitemapchecker/internal/scheduler"
	"github.com/hamed0406/sitemapchecker/internal/sitemap"
)

// errReported means the command already told the user what went wrong.
var errReported = errors.New("reported")

type options struct {
	configPath      string
	sitemaps        []string
	notificationURL string
	criticalURL     string
	ignore          []string
	logLevel        string
	logDir          string
	timeout         time.Duration
	concurrency     int
	userAgent       string
	notifyToken     string
	summary         bool
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options

	root := &cobra.Command{
		Use:           "sitemapchecker",
		Short:         "Check that every page listed in one or more sitemaps answers 200 OK",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, &o)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			results := runPass(ctx, cfg, logger)
			if o.summary {
				report.Summary(cmd.OutOrStdout(), results)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "YAML config file (flags override it)")
	flags.StringArrayVarP(&o.sitemaps, "sitemap", "s", nil, "Sitemap URL to check (repeatable)")
	flags.StringVarP(&o.notificationURL, "notification-url", "w", "", "Endpoint receiving every result")
	flags.StringVarP(&o.criticalURL, "critical-url", "c", "", "Endpoint receiving results with unreachable pages")
	flags.StringArrayVarP(&o.ignore, "ignore", "i", nil, "Page URL to skip (repeatable, exact match)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&o.logDir, "log-dir", "", "Also write JSON logs to a rotating file in this directory")
	flags.DurationVar(&o.timeout, "timeout", 0, "Per-request timeout (e.g. 5s, 500ms)")
	flags.IntVar(&o.concurrency, "concurrency", 0, "Maximum sitemaps checked at once (0 = no limit)")
	flags.StringVar(&o.userAgent, "user-agent", "", "User-Agent for HTTP requests")
	flags.StringVar(&o.notifyToken, "notify-token", "", "Bearer token sent with notification posts")
	root.Flags().BoolVar(&o.summary, "summary", false, "Print a result table to stdout after the pass")

	root.AddCommand(newValidateCmd(&o))
	return root
}

// resolveConfig layers env, then the optional YAML file, then flags the user
// actually set.
func resolveConfig(cmd *cobra.Command, o *options) (config.Config, error) {
	cfg := config.FromEnv()
	if o.configPath != "" {
		if err := config.LoadFile(o.configPath, &cfg); err != nil {
			return cfg, err
		}
	}

	f := cmd.Flags()
	if f.Changed("sitemap") {
		cfg.Sitemaps = o.sitemaps
	}
	if f.Changed("notification-url") {
		cfg.NotificationURL = o.notificationURL
	}
	if f.Changed("critical-url") {
		cfg.CriticalURL = o.criticalURL
	}
	if f.Changed("ignore") {
		cfg.Ignore = o.ignore
	}
	if f.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if f.Changed("log-dir") {
		cfg.LogDir = o.logDir
	}
	if f.Changed("timeout") {
		cfg.HTTPTimeout = o.timeout
	}
	if f.Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if f.Changed("user-agent") {
		cfg.UserAgent = o.userAgent
	}
	if f.Changed("notify-token") {
		cfg.NotifyToken = o.notifyToken
	}
	return cfg, nil
}

func runPass(ctx context.Context, cfg config.Config, logger *zap.Logger) []domain.SiteCheckResult {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	prober := probe.NewHTTPChecker(cfg.HTTPTimeout, cfg.UserAgent)
	checker := sitemap.NewChecker(logger, client, prober, sitemap.NewIgnoreSet(cfg.Ignore), cfg.UserAgent)

	dispatcher := notify.NewDispatcher(logger,
		notify.NewWebhook(cfg.NotificationURL, cfg.NotifyToken, cfg.HTTPTimeout),
		notify.NewWebhook(cfg.CriticalURL, cfg.NotifyToken, cfg.HTTPTimeout),
	)
	coord := scheduler.NewCoordinator(logger, checker, cfg.Concurrency)
	return scheduler.NewPass(logger, coord, dispatcher).Run(ctx, cfg.Sitemaps)
}

func newValidateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration without touching the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, o)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "✖", err)
				return errReported
			}
			for _, w := range config.SitemapWarnings(cfg) {
				fmt.Fprintln(cmd.ErrOrStderr(), "⚠", w, "(reported as UnreachableSitemap)")
			}
			if err := config.Validate(cfg); err != nil {
				for _, e := range multierr.Errors(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "✖", e)
				}
				return errReported
			}
			printConfig(cmd.OutOrStdout(), cfg)
			return nil
		},
	}
}

func printConfig(w io.Writer, cfg config.Config) {
	ok := func(format string, a ...any) { fmt.Fprintln(w, "✔", fmt.Sprintf(format, a...)) }
	for _, s := range cfg.Sitemaps {
		ok("sitemap %s", s)
	}
	ok("notification url %s", cfg.NotificationURL)
	ok("critical url %s", cfg.CriticalURL)
	ok("%d ignored page(s)", len(cfg.Ignore))
	ok("timeout %s, concurrency %d", cfg.HTTPTimeout, cfg.Concurrency)
	ok("configuration valid")
}
