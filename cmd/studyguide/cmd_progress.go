package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ashureev/studyguide/internal/app"
	"github.com/ashureev/studyguide/internal/curriculum"
	"github.com/ashureev/studyguide/internal/domain"
	"github.com/ashureev/studyguide/internal/recommend"
	"github.com/spf13/cobra"
)

func (c *cli) progressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show or change recorded progress",
	}
	cmd.AddCommand(c.progressShowCmd(), c.progressMarkCmd(), c.progressResetCmd())
	return cmd
}

func (c *cli) progressShowCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print completion figures and the section checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{
					"progress": a.Progress.Snapshot(),
					"summary":  a.Progress.Summary(),
				})
			}
			printProgress(out, a)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the progress document and summary as JSON")
	return cmd
}

func printProgress(w io.Writer, a *app.App) {
	sum := a.Progress.Summary()
	fmt.Fprintf(w, "Overall:     %5.1f%%\n", sum.Overall)
	fmt.Fprintf(w, "Study guide: %5.1f%%\n", sum.StudyGuide)
	fmt.Fprintf(w, "Labs:        %5.1f%%\n", sum.Labs)
	if sum.LastVisited != nil {
		fmt.Fprintf(w, "Last visited: %s\n", a.Curriculum.DisplayTitle(sum.LastVisited.Type, sum.LastVisited.ID))
	}

	checklist := func(t domain.SectionType, heading string, sections []curriculum.Section) {
		fmt.Fprintf(w, "\n%s\n", heading)
		for _, s := range sections {
			mark := " "
			if a.Progress.IsComplete(t, s.ID) {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, a.Curriculum.DisplayTitle(t, s.ID))
		}
	}
	checklist(domain.SectionStudyGuide, "Study guide", a.Curriculum.StudyGuide)
	checklist(domain.SectionLabs, "Labs", a.Curriculum.Labs)
}

func (c *cli) progressMarkCmd() *cobra.Command {
	var incomplete bool
	cmd := &cobra.Command{
		Use:     "mark <study_guide|labs> <section-id>",
		Short:   "Mark a section complete",
		Example: "  studyguide progress mark labs lab1_2\n  studyguide progress mark study_guide domain1 --incomplete",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, ok := domain.ParseSectionType(args[0])
			if !ok {
				return fmt.Errorf("unknown section type %q (want study_guide or labs)", args[0])
			}
			id := args[1]

			a, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Curriculum.Has(st, id) {
				return fmt.Errorf("no %s section %q in the curriculum", st, id)
			}
			if _, err := a.Progress.MarkComplete(cmd.Context(), st, id, !incomplete); err != nil {
				return err
			}

			state := "complete"
			if incomplete {
				state = "incomplete"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s marked %s (overall %.1f%%)\n",
				a.Curriculum.DisplayTitle(st, id), state, a.Progress.CompletionPercentage(""))
			return nil
		},
	}
	cmd.Flags().BoolVar(&incomplete, "incomplete", false, "mark the section incomplete instead")
	return cmd
}

func (c *cli) progressResetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all recorded progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			a, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Progress.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

func (c *cli) nextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Recommend what to study next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			for i, r := range recommend.Next(a.Progress, a.Curriculum) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, r.Text)
			}
			return nil
		},
	}
}
