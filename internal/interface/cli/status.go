package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devpilot/devpilot/internal/application/dto"
	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/model/stage"
)

func newStatusCmd() *cobra.Command {
	var showContent bool

	cmd := &cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the current state of a workflow run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			summary, err := container.WorkflowUseCase().GetState(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Task:    %s\n", summary.TaskID)
			fmt.Fprintf(out, "Project: %s\n", summary.ProjectName)
			fmt.Fprintf(out, "Status:  %s\n", colorStatus(summary.Status))
			fmt.Fprintf(out, "Stage:   %d/%d", summary.StageIndex, stage.Count())
			if summary.CurrentStage != "" {
				fmt.Fprintf(out, " (%s)", summary.CurrentStage)
			}
			fmt.Fprintln(out)

			if summary.CurrentArtifact != nil {
				fmt.Fprintf(out, "Artifact: %s [%s]\n", summary.CurrentArtifact.ID, summary.CurrentArtifact.Approval)
				if showContent {
					fmt.Fprintln(out)
					fmt.Fprintln(out, summary.CurrentArtifact.Content)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showContent, "content", false, "print the pending artifact content")
	return cmd
}

func printSummary(cmd *cobra.Command, summary *dto.TaskSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status: %s", colorStatus(summary.Status))
	if summary.CurrentStage != "" {
		fmt.Fprintf(out, "  Stage: %s", summary.CurrentStage)
	}
	fmt.Fprintln(out)
}

func colorStatus(status string) string {
	switch model.Status(status) {
	case model.StatusAwaitingReview:
		return color.YellowString(status)
	case model.StatusCompleted:
		return color.GreenString(status)
	case model.StatusFailed, model.StatusCancelled:
		return color.RedString(status)
	default:
		return color.CyanString(status)
	}
}
