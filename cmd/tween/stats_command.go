package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tween/internal/feedback"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var character, motion string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show acceptance statistics from the feedback log",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.Stats(cmd.Context(), feedback.Filter{
				Character:  character,
				MotionType: motion,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return json.NewEncoder(out).Encode(statsReport(summary))
			}

			fmt.Fprintf(out, "Generations: %d (%d frames)\n", summary.Generations, summary.FramesGenerated)
			fmt.Fprintf(out, "Accepted: %d (%d auto)  Rejected: %d\n", summary.Accepted, summary.AutoAccepted, summary.Rejected)
			fmt.Fprintf(out, "Acceptance rate: %.0f%%\n", summary.AcceptanceRate*100)
			if summary.Accepted > 0 {
				fmt.Fprintf(out, "Mean accepted confidence: %.2f\n", summary.MeanAcceptedConfidence)
			}

			if len(summary.ByMotionType) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "By motion type:")
				printBreakdown(cmd, summary.ByMotionType)
			}
			if len(summary.ByCharacter) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "By character:")
				printBreakdown(cmd, summary.ByCharacter)
			}
			if len(summary.CommonIssues) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Common issues:")
				for _, issue := range summary.CommonIssues {
					fmt.Fprintf(out, "  %s: %d\n", issue.Tag, issue.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&character, "character", "", "Limit to one character")
	cmd.Flags().StringVar(&motion, "motion-type", "", "Limit to one motion type")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable output")

	return cmd
}

func printBreakdown(cmd *cobra.Command, counts map[string]feedback.DecisionCounts) {
	out := cmd.OutOrStdout()
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if !stdoutIsTerminal() {
		for _, key := range keys {
			entry := counts[key]
			fmt.Fprintf(out, "  %s: %d accepted, %d rejected (%.0f%%)\n",
				key, entry.Accepted, entry.Rejected, entry.Rate()*100)
		}
		return
	}

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		entry := counts[key]
		rows = append(rows, []string{
			key,
			strconv.Itoa(entry.Accepted),
			strconv.Itoa(entry.Rejected),
			fmt.Sprintf("%.0f%%", entry.Rate()*100),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"NAME", "ACCEPTED", "REJECTED", "RATE"},
		rows,
		2, 3, 4,
	))
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

type breakdownReport struct {
	Name     string  `json:"name"`
	Accepted int     `json:"accepted"`
	Rejected int     `json:"rejected"`
	Rate     float64 `json:"rate"`
}

type issueReport struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

type summaryReport struct {
	TotalRecords           int               `json:"total_records"`
	Generations            int               `json:"generations"`
	FramesGenerated        int               `json:"frames_generated"`
	Accepted               int               `json:"accepted"`
	AutoAccepted           int               `json:"auto_accepted"`
	Rejected               int               `json:"rejected"`
	AcceptanceRate         float64           `json:"acceptance_rate"`
	MeanAcceptedConfidence float64           `json:"mean_accepted_confidence"`
	ByMotionType           []breakdownReport `json:"by_motion_type,omitempty"`
	ByCharacter            []breakdownReport `json:"by_character,omitempty"`
	CommonIssues           []issueReport     `json:"common_issues,omitempty"`
}

func statsReport(summary *feedback.Summary) summaryReport {
	report := summaryReport{
		TotalRecords:           summary.TotalRecords,
		Generations:            summary.Generations,
		FramesGenerated:        summary.FramesGenerated,
		Accepted:               summary.Accepted,
		AutoAccepted:           summary.AutoAccepted,
		Rejected:               summary.Rejected,
		AcceptanceRate:         summary.AcceptanceRate,
		MeanAcceptedConfidence: summary.MeanAcceptedConfidence,
		ByMotionType:           breakdowns(summary.ByMotionType),
		ByCharacter:            breakdowns(summary.ByCharacter),
	}
	for _, issue := range summary.CommonIssues {
		report.CommonIssues = append(report.CommonIssues, issueReport{Tag: string(issue.Tag), Count: issue.Count})
	}
	return report
}

func breakdowns(counts map[string]feedback.DecisionCounts) []breakdownReport {
	if len(counts) == 0 {
		return nil
	}
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]breakdownReport, 0, len(keys))
	for _, key := range keys {
		entry := counts[key]
		out = append(out, breakdownReport{
			Name:     key,
			Accepted: entry.Accepted,
			Rejected: entry.Rejected,
			Rate:     entry.Rate(),
		})
	}
	return out
}
