package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ashureev/studyguide/internal/agent"
	"github.com/spf13/cobra"
)

func (c *cli) askCmd() *cobra.Command {
	var (
		extra   string
		asJSON  bool
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a study question",
		Example: `  studyguide ask "How do I secure a Kinesis stream with IAM?"
  studyguide ask --explain "What is a Glue crawler?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")
			out := cmd.OutOrStdout()

			a, err := c.open(cmd.Context(), explain)
			if err != nil {
				return err
			}
			defer a.Close()

			if explain {
				for _, m := range a.Service.Router().Explain(question) {
					if len(m.Keywords) == 0 {
						fmt.Fprintf(out, "%s (default route)\n", m.Tag.Label())
						continue
					}
					fmt.Fprintf(out, "%s: %s\n", m.Tag.Label(), strings.Join(m.Keywords, ", "))
				}
				return nil
			}

			answer, err := a.Service.Ask(cmd.Context(), agent.AskRequest{Question: question, Context: extra})
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(answer)
			}

			fmt.Fprintf(out, "[%s]\n\n%s\n", answer.DomainLabels(), answer.Text)
			for _, f := range answer.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", f.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&extra, "context", "", "extra context passed to every specialist")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full answer as JSON")
	cmd.Flags().BoolVar(&explain, "explain", false, "show the routing decision without calling the model")
	return cmd
}
