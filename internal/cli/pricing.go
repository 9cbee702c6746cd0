package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Inspect LLM model pricing",
}

var pricingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known LLM models and their per-million token prices",
	RunE:  runPricingList,
}

func init() {
	rootCmd.AddCommand(pricingCmd)
	pricingCmd.AddCommand(pricingListCmd)
}

func runPricingList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registry, err := initRegistry(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	allProviders := registry.All()
	if len(allProviders) == 0 {
		fmt.Fprintln(out, warning("No pricing tables loaded. Check pricing.dir in config."))
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PROVIDER\tMODEL\tINPUT ($/1M)\tOUTPUT ($/1M)\tUPDATED\t\n")

	for _, p := range allProviders {
		for _, m := range p.Models() {
			marker := ""
			if p.Name() == cfg.LLM.Provider && m.Model == cfg.LLM.Model {
				marker = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t$%.2f\t$%.2f\t%s\t%s\n",
				p.Name(), m.Model,
				m.InputPerMillion, m.OutputPerMillion,
				p.Updated(), marker,
			)
		}
	}
	w.Flush()

	return nil
}
