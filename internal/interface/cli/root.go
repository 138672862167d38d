package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/devpilot/devpilot/internal/app/config"
	"github.com/devpilot/devpilot/internal/infrastructure/di"
)

var (
	configPath string
	logLevel   string
)

// NewRootCmd creates the root command
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "devpilot",
		Short:         "Approval-gated AI workflow for the software development lifecycle",
		Long:          "DevPilot sequences LLM generations through the SDLC stages\n(requirements, user stories, design, code, security review, tests,\ndeployment) with a human approval gate between stages.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.devpilot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(),
		newStartCmd(),
		newApproveCmd(),
		newRejectCmd(),
		newRetryCmd(),
		newStatusCmd(),
		newListCmd(),
		newCancelCmd(),
	)
	return rootCmd
}

// Execute runs the CLI
func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

// newContainer loads configuration and builds the DI container
func newContainer() (*di.Container, error) {
	path := configPath
	if path == "" {
		path = appconfig.DefaultPath()
	}
	cfg, err := appconfig.Load(path)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	container, err := di.NewContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	return container, nil
}
