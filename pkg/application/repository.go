package application

import (
	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/feature"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/team"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/workflow"
)

// WorkspaceRepository is the persistence contract consumed by the services.
// Every save is an optimistic conditional write: a stale version fails with
// a ConflictError.
type WorkspaceRepository interface {
	Root() string
	Initialize() error
	IsInitialized() bool

	SaveConfig(cfg *domain.WorkspaceConfig) error
	LoadConfig() (*domain.WorkspaceConfig, error)

	SaveRoster(roster *team.Roster) error
	LoadRoster() (*team.Roster, error)

	SaveFeature(f *feature.Feature) error
	LoadFeature(id string) (*feature.Feature, error)
	ListFeatures() ([]*feature.Feature, error)

	SaveRun(run *workflow.Run) error
	LoadRun(featureID string) (*workflow.Run, error)

	SaveStories(featureID string, stories []planning.Story, version *int) error
	LoadStories(featureID string) ([]planning.Story, int, error)
	ListAllStories() ([]planning.Story, error)
}
