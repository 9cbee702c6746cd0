package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/autoapi/internal/config"
	"github.com/ogulcanaydogan/autoapi/pkg/estimate"
	"github.com/ogulcanaydogan/autoapi/pkg/model"
	"github.com/ogulcanaydogan/autoapi/pkg/notify"
	"github.com/ogulcanaydogan/autoapi/pkg/providers"
	"github.com/ogulcanaydogan/autoapi/pkg/source"
	"github.com/ogulcanaydogan/autoapi/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	cfgFile      string
	manifestFile string
)

var rootCmd = &cobra.Command{
	Use:   "autoapi",
	Short: "autoapi - Generate Django REST Framework serializers with an LLM",
	Long: `autoapi scans a Django project's installed apps and models, estimates the
token cost of generating a ModelSerializer for each model, and asks an LLM
provider to write the serializers into <app>/api_serializers_ai.py.`,
	SilenceUsage: true,
}

// Execute runs the CLI. SIGINT and SIGTERM cancel the command context, which
// stops a generation run after the model in flight.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.autoapi/config.yaml or ./autoapi.yaml)")
	rootCmd.PersistentFlags().StringVar(&manifestFile, "manifest", "", "read apps from a manifest file instead of introspecting the project")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initRegistry returns the embedded price tables, overridden by any files in
// pricing.dir.
func initRegistry(cfg *config.Config) (*providers.Registry, error) {
	registry, err := providers.Builtin()
	if err != nil {
		return nil, err
	}
	if cfg.Pricing.Dir != "" {
		if err := registry.LoadDir(cfg.Pricing.Dir); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// resolvePricing looks up the configured LLM model and applies any explicit
// per-million overrides. A model without published prices is accepted only
// when both overrides are set.
func resolvePricing(cfg *config.Config, registry *providers.Registry) (estimate.Pricing, error) {
	pricing := estimate.Pricing{
		Provider:         cfg.LLM.Provider,
		Model:            cfg.LLM.Model,
		InputPerMillion:  cfg.Pricing.InputPerMillion,
		OutputPerMillion: cfg.Pricing.OutputPerMillion,
	}
	if pricing.InputPerMillion > 0 && pricing.OutputPerMillion > 0 {
		return pricing, nil
	}

	mp, err := registry.Lookup(cfg.LLM.Provider, cfg.LLM.Model)
	if err != nil {
		return pricing, fmt.Errorf("%w (set pricing.input_per_million and pricing.output_per_million)", err)
	}
	if pricing.InputPerMillion <= 0 {
		pricing.InputPerMillion = mp.InputPerMillion
	}
	if pricing.OutputPerMillion <= 0 {
		pricing.OutputPerMillion = mp.OutputPerMillion
	}
	return pricing, nil
}

// initStorage opens the history database, or returns nil when history is
// disabled.
func initStorage(cfg *config.Config) (storage.Storage, error) {
	if !cfg.Storage.Enabled {
		return nil, nil
	}
	return storage.NewSQLite(cfg.Storage.Path)
}

// initNotifiers creates run notifiers from config.
func initNotifiers(cfg *config.Config) []notify.Notifier {
	var notifiers []notify.Notifier

	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(
			cfg.Notify.Slack.WebhookURL,
			cfg.Notify.Slack.Channel,
		))
	}

	if cfg.Notify.Webhook.Enabled && cfg.Notify.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(
			cfg.Notify.Webhook.URL,
			cfg.Notify.Webhook.Secret,
		))
	}

	return notifiers
}

// loadManifest reads the manifest named by --manifest or source.manifest, or
// introspects the project when neither is set.
func loadManifest(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*source.Manifest, error) {
	path := manifestFile
	if path == "" {
		path = cfg.Source.Manifest
	}
	if path != "" {
		logger.Debug("loading manifest", "path", path)
		return source.LoadManifest(path)
	}

	logger.Debug("introspecting project", "dir", cfg.Source.ProjectDir, "python", cfg.Source.Python)
	return source.Introspect(ctx, source.Options{
		Python:     cfg.Source.Python,
		ProjectDir: cfg.Source.ProjectDir,
		Settings:   cfg.Source.Settings,
		Timeout:    cfg.Source.Timeout,
	})
}

// loadApps returns the project's apps with framework-internal apps removed
// unless apps.include_contrib is set.
func loadApps(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]model.AppDescriptor, error) {
	m, err := loadManifest(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return m.Descriptors(cfg.Apps.IncludeContrib), nil
}
