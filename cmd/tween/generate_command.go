package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"tween/internal/generate"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var frameA, frameB, character string
	var startFrame, endFrame, count int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate inbetween frames between two anchor frames",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.logger()
			if err != nil {
				return err
			}
			invoker, err := ctx.newInvoker()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			orch := generate.NewOrchestrator(cfg, invoker, store, logger)
			outcome, err := orch.Generate(cmd.Context(), generate.Request{
				FrameAPath: frameA,
				FrameBPath: frameB,
				StartFrame: startFrame,
				EndFrame:   endFrame,
				Count:      count,
				Character:  character,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return json.NewEncoder(out).Encode(generateReport(outcome))
			}

			fmt.Fprintf(out, "Job %s: %d frame(s) generated", outcome.Job.ID, len(outcome.Frames))
			if outcome.MotionType != "" {
				fmt.Fprintf(out, " (motion: %s)", outcome.MotionType)
			}
			fmt.Fprintln(out)
			if outcome.Degraded {
				fmt.Fprintln(out, "No metadata from backend; all frames need manual review.")
			}

			headers := []string{"FRAME", "CONFIDENCE", "AUTO-ACCEPT", "PATH"}
			rows := make([][]string, 0, len(outcome.Frames))
			for _, frame := range outcome.Frames {
				rows = append(rows, []string{
					strconv.Itoa(frame.FrameIndex),
					fmt.Sprintf("%.2f", frame.Confidence),
					yesNo(frame.AutoAccepted),
					frame.Path,
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, 1, 2))
			return nil
		},
	}

	cmd.Flags().StringVar(&frameA, "frame-a", "", "Path to the first anchor frame (required)")
	cmd.Flags().StringVar(&frameB, "frame-b", "", "Path to the second anchor frame (required)")
	cmd.Flags().IntVar(&startFrame, "start", 0, "Timeline index of the first anchor (required)")
	cmd.Flags().IntVar(&endFrame, "end", 0, "Timeline index of the second anchor (required)")
	cmd.Flags().IntVar(&count, "count", 0, "Number of inbetweens (default from config)")
	cmd.Flags().StringVar(&character, "character", "", "Character name for feedback tracking")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit machine-readable output")
	_ = cmd.MarkFlagRequired("frame-a")
	_ = cmd.MarkFlagRequired("frame-b")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

type frameReport struct {
	FrameIndex   int     `json:"frame_index"`
	Path         string  `json:"path"`
	Confidence   float64 `json:"confidence"`
	AutoAccepted bool    `json:"auto_accepted"`
}

type jobReport struct {
	JobID      string        `json:"job_id"`
	Status     string        `json:"status"`
	MotionType string        `json:"motion_type,omitempty"`
	Degraded   bool          `json:"degraded"`
	OutputDir  string        `json:"output_dir"`
	Frames     []frameReport `json:"frames"`
}

func generateReport(outcome *generate.Outcome) jobReport {
	report := jobReport{
		JobID:      outcome.Job.ID,
		Status:     string(outcome.Job.Status),
		MotionType: outcome.MotionType,
		Degraded:   outcome.Degraded,
		OutputDir:  outcome.Job.OutputDir,
		Frames:     make([]frameReport, len(outcome.Frames)),
	}
	for i, frame := range outcome.Frames {
		report.Frames[i] = frameReport{
			FrameIndex:   frame.FrameIndex,
			Path:         frame.Path,
			Confidence:   frame.Confidence,
			AutoAccepted: frame.AutoAccepted,
		}
	}
	return report
}
