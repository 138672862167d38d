package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/devpilot/devpilot/internal/application/dto"
	"github.com/devpilot/devpilot/internal/domain/model"
)

func newApproveCmd() *cobra.Command {
	var stage string

	cmd := &cobra.Command{
		Use:   "approve <task-id>",
		Short: "Approve the pending artifact and advance to the next stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitReview(cmd, args[0], stage, model.DecisionApprove, "")
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "stage being reviewed (defaults to the current stage)")
	return cmd
}

func newRejectCmd() *cobra.Command {
	var stage string
	var feedback string

	cmd := &cobra.Command{
		Use:   "reject <task-id>",
		Short: "Reject the pending artifact and regenerate it with feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submitReview(cmd, args[0], stage, model.DecisionReject, feedback)
		},
	}

	cmd.Flags().StringVar(&stage, "stage", "", "stage being reviewed (defaults to the current stage)")
	cmd.Flags().StringVarP(&feedback, "feedback", "f", "", "reviewer feedback for the retry")
	return cmd
}

func newRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry <task-id>",
		Short: "Retry the current stage after a generation failure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			summary, err := container.WorkflowUseCase().Retry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSummary(cmd, summary)
			return nil
		},
	}
	return cmd
}

func submitReview(cmd *cobra.Command, taskID, stage string, decision model.Decision, feedback string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	summary, err := container.WorkflowUseCase().SubmitReview(cmd.Context(), taskID, stage, dto.SubmitReviewRequest{
		Decision: decision.String(),
		Feedback: feedback,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Decision %s applied\n", decision)
	printSummary(cmd, summary)
	return nil
}
