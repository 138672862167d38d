package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/devpilot/devpilot/internal/application/dto"
)

func newStartCmd() *cobra.Command {
	var input string
	var inputFile string

	cmd := &cobra.Command{
		Use:   "start <project name>",
		Short: "Start a new workflow run and generate the first stage",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := newContainer()
			if err != nil {
				return err
			}
			defer container.Close()

			initialInput := input
			if inputFile != "" {
				data, err := os.ReadFile(inputFile)
				if err != nil {
					return fmt.Errorf("read input file: %w", err)
				}
				initialInput = string(data)
			}

			summary, err := container.WorkflowUseCase().Start(cmd.Context(), dto.StartTaskRequest{
				ProjectName:  strings.Join(args, " "),
				InitialInput: initialInput,
			})
			// The task may exist even when the first generation failed;
			// print its id so the user can retry.
			if summary != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s started for project %q\n", summary.TaskID, summary.ProjectName)
				printSummary(cmd, summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "project description fed to the first stage")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "read the project description from a file")
	return cmd
}
