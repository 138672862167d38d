package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/devpilot/devpilot/internal/domain/model"
	"github.com/devpilot/devpilot/internal/domain/repository"
)

func newListCmd() *cobra.Command {
	var statusFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflow runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			filter := repository.TaskFilter{}
			if statusFilter != "" {
				status := model.Status(statusFilter)
				if !status.IsValid() {
					return fmt.Errorf("invalid status: %s", statusFilter)
				}
				filter.Statuses = []model.Status{status}
			}

			summaries, err := container.WorkflowUseCase().List(cmd.Context(), filter)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TASK\tPROJECT\tSTAGE\tSTATUS")
			for _, s := range summaries {
				stageName := s.CurrentStage
				if stageName == "" {
					stageName = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.TaskID, s.ProjectName, stageName, colorStatus(s.Status))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&statusFilter, "status", "", "filter by lifecycle status")
	return cmd
}
