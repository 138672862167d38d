package di

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/afero"

	"github.com/devpilot/devpilot/internal/adapter/gateway/agent"
	storagegateway "github.com/devpilot/devpilot/internal/adapter/gateway/storage"
	"github.com/devpilot/devpilot/internal/adapter/notifier"
	appconfig "github.com/devpilot/devpilot/internal/app/config"
	"github.com/devpilot/devpilot/internal/app/logging"
	"github.com/devpilot/devpilot/internal/application/service"
	workflowusecase "github.com/devpilot/devpilot/internal/application/usecase/workflow"
	"github.com/devpilot/devpilot/internal/domain/repository"
	sqliterepo "github.com/devpilot/devpilot/internal/infrastructure/persistence/sqlite"
)

// Container wires all dependencies by hand, infrastructure first.
type Container struct {
	config appconfig.Config

	db       *sql.DB
	taskRepo repository.TaskRepository
	workflow *workflowusecase.UseCase
}

// NewContainer creates and initializes the DI container
func NewContainer(cfg appconfig.Config) (*Container, error) {
	logging.InitGlobalLogger(cfg.LogLevel)

	c := &Container{config: cfg}

	if err := c.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	if err := c.initializeApplication(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return c, nil
}

func (c *Container) initializeInfrastructure() error {
	dbPath := c.config.DBPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := sqliterepo.NewMigrator(db).Migrate(); err != nil {
		db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}

	c.db = db
	c.taskRepo = sqliterepo.NewTaskRepository(db)
	return nil
}

func (c *Container) initializeApplication() error {
	agentGateway, err := agent.NewAgentGateway(c.config.AgentType, c.config.AgentBin, c.config.AgentTimeout)
	if err != nil {
		return err
	}

	storageGateway, err := storagegateway.NewStorageGateway(
		c.config.Storage.Type,
		c.config.Storage.BaseDir,
		storagegateway.S3Config{
			Bucket: c.config.Storage.S3Bucket,
			Prefix: c.config.Storage.S3Prefix,
			Region: c.config.Storage.S3Region,
		},
	)
	if err != nil {
		return err
	}

	channels := []notifier.Channel{notifier.NewLogChannel()}
	for _, hook := range c.config.Webhooks {
		channels = append(channels, notifier.NewWebhookChannel(hook.Name, hook.URL))
	}
	dispatcher := notifier.NewDispatcher(channels, 0)

	prompts := service.NewPromptBuilder(afero.NewOsFs(), c.config.TemplateDir)

	c.workflow = workflowusecase.NewUseCase(
		c.taskRepo,
		agentGateway,
		prompts,
		dispatcher,
		storageGateway,
		c.config.AgentTimeout,
	)
	return nil
}

// Config returns the container configuration
func (c *Container) Config() appconfig.Config {
	return c.config
}

// WorkflowUseCase returns the workflow state machine
func (c *Container) WorkflowUseCase() *workflowusecase.UseCase {
	return c.workflow
}

// TaskRepository returns the task repository
func (c *Container) TaskRepository() repository.TaskRepository {
	return c.taskRepo
}

// Close releases held resources
func (c *Container) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
