package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gateway "github.com/Anajrajeev/AutoScrum/pkg/ai"
	"github.com/Anajrajeev/AutoScrum/pkg/application"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ticket"
	"github.com/Anajrajeev/AutoScrum/pkg/plugin"
	"github.com/Anajrajeev/AutoScrum/pkg/storage"

	infraai "github.com/Anajrajeev/AutoScrum/internal/infrastructure/ai"
)

// AppServices bundles the wired application services for the CLI commands.
type AppServices struct {
	Repo     *storage.FilesystemRepository
	Audit    *storage.FileAuditLog
	Team     *application.TeamService
	Workflow *application.WorkflowService

	loader *plugin.Loader
}

// Close releases the ticket plugin subprocess, if one was started.
func (s *AppServices) Close() {
	if s.loader != nil {
		s.loader.Cleanup()
	}
}

func loadServices(root string) (*AppServices, error) {
	repo := storage.NewFilesystemRepository(root)
	if !repo.IsInitialized() {
		return nil, fmt.Errorf("no autoscrum workspace here, run 'autoscrum init' first")
	}

	cfg, err := repo.LoadConfig()
	if err != nil {
		return nil, err
	}

	audit, err := storage.NewFileAuditLog(filepath.Join(root, storage.AutoScrumDir))
	if err != nil {
		return nil, err
	}

	provider, err := infraai.GetDefaultProvider(cfg.AIProvider, cfg.AIModel)
	if err != nil {
		return nil, err
	}
	callTimeout := time.Duration(cfg.GatewayTimeoutSeconds) * time.Second
	gw := gateway.NewGateway(gateway.NewResilientProvider(provider, callTimeout), audit)

	teamSvc := application.NewTeamService(repo, audit)
	clarifySvc := application.NewClarifyService(repo, gw, audit)
	storySvc := application.NewStoryService(gw, audit)

	var tickets ticket.Provider
	var loader *plugin.Loader
	if cfg.TicketPlugin != "" {
		loader = plugin.NewLoader()
		p, err := loader.Load(cfg.TicketPlugin)
		if err != nil {
			loader.Cleanup()
			return nil, fmt.Errorf("load ticket plugin: %w", err)
		}
		if err := p.Init(cfg.TicketConfig); err != nil {
			loader.Cleanup()
			return nil, fmt.Errorf("ticket plugin init: %w", err)
		}
		tickets = p
	}

	workflowSvc := application.NewWorkflowService(repo, clarifySvc, storySvc, teamSvc, tickets, audit)

	return &AppServices{
		Repo:     repo,
		Audit:    audit,
		Team:     teamSvc,
		Workflow: workflowSvc,
		loader:   loader,
	}, nil
}

func loadServicesForCurrentDir() (*AppServices, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return loadServices(root)
}
