package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past serializer generations",
	Long:  `Show recorded generation attempts with their token usage and cost, plus totals.`,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("app", "", "Filter by app label")
	historyCmd.Flags().String("status", "", "Filter by status (written, empty, failed)")
	historyCmd.Flags().String("run", "", "Filter by run ID")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum records to show (0 for all)")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	appFilter, _ := cmd.Flags().GetString("app")
	statusFilter, _ := cmd.Flags().GetString("status")
	runFilter, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")

	switch model.GenerationStatus(statusFilter) {
	case "", model.StatusWritten, model.StatusEmpty, model.StatusFailed:
	default:
		return fmt.Errorf("unknown status %q (want written, empty or failed)", statusFilter)
	}

	out := cmd.OutOrStdout()
	store, err := initStorage(cfg)
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	if store == nil {
		fmt.Fprintln(out, warning("History is disabled (storage.enabled: false)."))
		return nil
	}
	defer store.Close()

	filter := model.HistoryFilter{
		RunID:  runFilter,
		App:    appFilter,
		Status: model.GenerationStatus(statusFilter),
	}

	summary, err := store.Summarize(cmd.Context(), filter)
	if err != nil {
		return err
	}
	if summary.Records == 0 {
		fmt.Fprintln(out, "No generations recorded yet. Run 'autoapi scan' to generate serializers.")
		return nil
	}

	filter.Limit = limit
	records, err := store.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIMESTAMP\tRUN\tMODEL\tLLM\tSTATUS\tIN\tOUT\tCOST\n")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s.%s\t%s\t%s\t%d\t%d\t$%.6f\n",
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			shortID(r.RunID), r.App, r.Model, r.LLMModel, r.Status,
			r.InputTokens, r.OutputTokens, r.CostUSD,
		)
	}
	w.Flush()

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Runs:          %d\n", summary.Runs)
	fmt.Fprintf(out, "Generations:   %d (written %d, empty %d, failed %d)\n",
		summary.Records,
		summary.ByStatus[model.StatusWritten],
		summary.ByStatus[model.StatusEmpty],
		summary.ByStatus[model.StatusFailed],
	)
	fmt.Fprintf(out, "Input tokens:  %d\n", summary.TotalInputTokens)
	fmt.Fprintf(out, "Output tokens: %d\n", summary.TotalOutputTokens)
	fmt.Fprintf(out, "Total cost:    $%.4f\n", summary.TotalCostUSD)

	if len(summary.ByApp) > 1 {
		fmt.Fprintln(out, "\nBy App:")
		apps := make([]string, 0, len(summary.ByApp))
		for app := range summary.ByApp {
			apps = append(apps, app)
		}
		sort.Strings(apps)

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  APP\tCOST\n")
		for _, app := range apps {
			fmt.Fprintf(w, "  %s\t$%.4f\n", app, summary.ByApp[app])
		}
		w.Flush()
	}

	return nil
}

// shortID trims a run UUID to its first block for table output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
