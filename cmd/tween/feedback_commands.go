package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tween/internal/feedback"
)

func newAcceptCommand(ctx *commandContext) *cobra.Command {
	var jobID, character, motion string
	var frameIndex int
	var confidence float64
	var auto bool

	cmd := &cobra.Command{
		Use:   "accept",
		Short: "Record an accept for a generated frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			source := feedback.SourceManual
			if auto {
				source = feedback.SourceAuto
			}
			decision := feedback.Decision{
				JobID:      jobID,
				Character:  character,
				MotionType: motion,
				FrameIndex: frameIndex,
				Confidence: confidence,
				Source:     source,
			}
			if err := store.RecordAccept(cmd.Context(), decision); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded accept for frame %d\n", frameIndex)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Generation job identifier")
	cmd.Flags().IntVar(&frameIndex, "frame", 0, "Timeline index of the frame (required)")
	cmd.Flags().StringVar(&character, "character", "", "Character name")
	cmd.Flags().StringVar(&motion, "motion-type", "", "Motion type")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence score reported at generation time")
	cmd.Flags().BoolVar(&auto, "auto", false, "Record the accept as made by the auto-accept policy")
	_ = cmd.MarkFlagRequired("frame")

	return cmd
}

func newRejectCommand(ctx *commandContext) *cobra.Command {
	var jobID, character, motion, note string
	var frameIndex int
	var confidence float64
	var issueFlags []string

	cmd := &cobra.Command{
		Use:   "reject",
		Short: "Record a reject for a generated frame",
		RunE: func(cmd *cobra.Command, args []string) error {
			issues := make([]feedback.IssueTag, 0, len(issueFlags))
			for _, raw := range issueFlags {
				tag, err := feedback.ParseIssueTag(raw)
				if err != nil {
					return err
				}
				issues = append(issues, tag)
			}

			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			decision := feedback.Decision{
				JobID:      jobID,
				Character:  character,
				MotionType: motion,
				FrameIndex: frameIndex,
				Confidence: confidence,
				Source:     feedback.SourceManual,
				Issues:     issues,
				Note:       note,
			}
			if err := store.RecordReject(cmd.Context(), decision); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded reject for frame %d\n", frameIndex)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobID, "job", "", "Generation job identifier")
	cmd.Flags().IntVar(&frameIndex, "frame", 0, "Timeline index of the frame (required)")
	cmd.Flags().StringVar(&character, "character", "", "Character name")
	cmd.Flags().StringVar(&motion, "motion-type", "", "Motion type")
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "Confidence score reported at generation time")
	cmd.Flags().StringArrayVar(&issueFlags, "issue", nil, "Issue tag (repeatable): artifacts, wrong_motion, style_mismatch, missing_parts, extra_parts, proportion, other")
	cmd.Flags().StringVar(&note, "note", "", "Free-form note about the rejection")
	_ = cmd.MarkFlagRequired("frame")

	return cmd
}
