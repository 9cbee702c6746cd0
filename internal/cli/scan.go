package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/autoapi/internal/config"
	"github.com/ogulcanaydogan/autoapi/pkg/estimate"
	"github.com/ogulcanaydogan/autoapi/pkg/generate"
	"github.com/ogulcanaydogan/autoapi/pkg/llm"
	"github.com/ogulcanaydogan/autoapi/pkg/model"
	"github.com/ogulcanaydogan/autoapi/pkg/scan"
	"github.com/ogulcanaydogan/autoapi/pkg/tokenizer"
	"github.com/ogulcanaydogan/autoapi/pkg/writer"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan installed apps and generate serializers",
	Long: `Scan installed apps and list their models, then either print a token and
cost estimate (--budget-only) or generate a DRF ModelSerializer per model into
<app>/api_serializers_ai.py.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().String("app", "", "Only scan and generate for this app label")
	scanCmd.Flags().String("model", "", "Only generate for this model name")
	scanCmd.Flags().Bool("include-empty", false, "List apps that have no models")
	scanCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation before generation")
	scanCmd.Flags().Bool("budget-only", false, "Only show estimated token usage and cost")
	scanCmd.Flags().Bool("measure", false, "With --budget-only, also count the rendered prompts with the model tokenizer")
}

func runScan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	appLabel, _ := cmd.Flags().GetString("app")
	modelName, _ := cmd.Flags().GetString("model")
	includeEmpty, _ := cmd.Flags().GetBool("include-empty")
	skipConfirm, _ := cmd.Flags().GetBool("yes")
	budgetOnly, _ := cmd.Flags().GetBool("budget-only")
	measure, _ := cmd.Flags().GetBool("measure")

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, notice("Scanning installed apps..."))
	fmt.Fprintln(out)

	apps, err := loadApps(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("load apps: %w", err)
	}

	filter := model.FilterConfig{
		Include:     cfg.Apps.Include,
		Exclude:     cfg.Apps.Exclude,
		SingleApp:   appLabel,
		SingleModel: modelName,
	}

	selected := scan.SelectApps(apps, filter)
	if len(selected) == 0 {
		fmt.Fprintln(out, warning("No matching apps found to scan."))
		return nil
	}

	listedApps, listedModels := listApps(out, selected, filter, includeEmpty)
	if listedApps == 0 {
		fmt.Fprintln(out, warning("No apps with models found."))
		return nil
	}
	fmt.Fprintln(out, success(fmt.Sprintf("Scan complete: %d apps, %d models.", listedApps, listedModels)))
	fmt.Fprintln(out)

	pairs := scan.Filter(apps, filter)
	if len(pairs) == 0 {
		fmt.Fprintln(out, warning("No models found, nothing to generate."))
		return nil
	}

	registry, err := initRegistry(cfg)
	if err != nil {
		return err
	}
	pricing, err := resolvePricing(cfg, registry)
	if err != nil {
		return err
	}
	report := estimate.Estimate(pairs, pricing, cfg.Estimate)

	if budgetOnly {
		var measured *measurement
		if measure {
			measured, err = measurePrompts(pairs, cfg.LLM.Provider, cfg.LLM.Model)
			if err != nil {
				return fmt.Errorf("measure prompts: %w", err)
			}
		}
		renderBudget(out, report, measured)
		return nil
	}

	fmt.Fprintf(out, "Estimated cost: $%s USD for ~%d tokens.\n", report.TotalCost.StringFixed(2), report.TotalTokens())

	if !skipConfirm {
		question := fmt.Sprintf("Generate serializers for %d models using %s/%s?", len(pairs), cfg.LLM.Provider, cfg.LLM.Model)
		ok, err := confirm(cmd.InOrStdin(), out, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, warning("Aborted before generation."))
			return nil
		}
	}

	if err := generate.CheckBudget(report, cfg.Generation.MaxCostUSD); err != nil {
		return err
	}

	return runGeneration(cmd, cfg, pricing, pairs)
}

// listApps prints each selected app with the models that will be processed.
// Apps left without models are shown only when includeEmpty is set and are
// not counted otherwise.
func listApps(out io.Writer, apps []model.AppDescriptor, filter model.FilterConfig, includeEmpty bool) (int, int) {
	totalApps, totalModels := 0, 0
	for _, app := range apps {
		models := scan.SelectModels(app, filter)
		if len(models) == 0 && !includeEmpty {
			continue
		}

		totalApps++
		totalModels += len(models)
		fmt.Fprintln(out, success("App: "+app.Label))
		if len(models) == 0 {
			fmt.Fprintln(out, dim("  (no models)"))
		}
		for _, m := range models {
			fmt.Fprintf(out, "  • %s\n", m.Name)
		}
		fmt.Fprintln(out)
	}
	return totalApps, totalModels
}

func runGeneration(cmd *cobra.Command, cfg *config.Config, pricing estimate.Pricing, pairs []model.Pair) error {
	logger := newLogger(cfg)
	out := cmd.OutOrStdout()

	creds := llm.ResolveCredentials(cfg.LLM.Provider, llm.Credentials{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	})
	client, err := llm.New(cfg.LLM.Provider, creds, llm.Options{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	})
	if err != nil {
		fmt.Fprintln(out, failure(err.Error()))
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if store != nil {
		defer store.Close()
	}

	counter, err := tokenizer.NewCounter(cfg.LLM.Provider, cfg.LLM.Model)
	if err != nil {
		logger.Warn("token counter unavailable", "error", err)
	}

	runner := generate.NewRunner(generate.Config{
		Client:    client,
		Writer:    writer.NewOS(cfg.Output.Filename),
		Pricing:   pricing,
		Store:     store,
		Counter:   counter,
		Limiter:   generate.NewLimiter(cfg.LLM.RequestsPerMinute),
		Notifiers: initNotifiers(cfg),
		Logger:    logger,
		OnStart: func(_, _ int, p model.Pair) {
			fmt.Fprintln(out, notice(fmt.Sprintf("Generating serializer for %s...", p.Key())))
		},
		OnDone: func(o generate.Outcome) {
			printOutcome(out, o)
		},
	})

	summary, runErr := runner.Run(cmd.Context(), pairs)

	fmt.Fprintln(out)
	line := fmt.Sprintf("Serializer generation complete: %d written, %d empty, %d failed ($%s USD).",
		summary.Written, summary.Empty, summary.Failed, summary.Cost.StringFixed(4))
	switch {
	case runErr != nil:
		fmt.Fprintln(out, warning("Serializer generation interrupted."))
	case summary.Failed > 0:
		fmt.Fprintln(out, warning(line))
	default:
		fmt.Fprintln(out, success(line))
	}
	return runErr
}

func printOutcome(out io.Writer, o generate.Outcome) {
	key := o.Pair.Key()
	switch o.Status {
	case model.StatusWritten:
		fmt.Fprintln(out, success(fmt.Sprintf("  Wrote serializer for %s to %s", key, o.Path)))
	case model.StatusEmpty:
		fmt.Fprintln(out, warning(fmt.Sprintf("  No code returned for %s, skipping.", key)))
	default:
		fmt.Fprintln(out, failure(fmt.Sprintf("  Generation failed for %s: %v", key, o.Err)))
	}
}
