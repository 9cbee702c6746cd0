package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ogulcanaydogan/autoapi/pkg/model"
	"github.com/ogulcanaydogan/autoapi/pkg/prompt"
	"github.com/ogulcanaydogan/autoapi/pkg/tokenizer"
)

// measurement is the tokenizer count of the prompts that would be sent.
type measurement struct {
	InputTokens int64
	Exact       bool
}

// measurePrompts renders every prompt and counts it with the LLM model's
// tokenizer.
func measurePrompts(pairs []model.Pair, provider, llmModel string) (*measurement, error) {
	counter, err := tokenizer.NewCounter(provider, llmModel)
	if err != nil {
		return nil, err
	}

	m := &measurement{Exact: counter.Exact()}
	for _, p := range pairs {
		m.InputTokens += counter.CountChat(prompt.System, prompt.ForPair(p))
	}
	return m, nil
}

// renderBudget prints a budget report with its per-model breakdown.
func renderBudget(w io.Writer, report model.BudgetReport, measured *measurement) {
	fmt.Fprintln(w, notice("Budget estimation:"))
	fmt.Fprintf(w, "  Models to generate: %d\n", report.Models)
	fmt.Fprintf(w, "  LLM:                %s/%s\n", report.Provider, report.LLMModel)
	fmt.Fprintf(w, "  Input tokens:       ~%d\n", report.InputTokens)
	fmt.Fprintf(w, "  Output tokens:      ~%d\n", report.OutputTokens)
	fmt.Fprintf(w, "  Total tokens:       ~%d\n", report.TotalTokens())
	if measured != nil {
		method := "tiktoken"
		if !measured.Exact {
			method = "approximate"
		}
		fmt.Fprintf(w, "  Measured input:     %d (%s)\n", measured.InputTokens, method)
	}
	fmt.Fprintf(w, "  Estimated cost:     $%s USD\n\n", report.TotalCost.StringFixed(2))

	if len(report.Breakdown) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  MODEL\tFIELDS\tIN\tOUT\tCOST\n")
		for _, e := range report.Breakdown {
			fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t$%s\n",
				e.Key(), e.Fields, e.InputTokens, e.OutputTokens, e.Cost.StringFixed(6))
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, dim("This is a rough estimate. Real cost depends on the model and prompt size."))
}
