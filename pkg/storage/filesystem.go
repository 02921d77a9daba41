package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"

	"github.com/Anajrajeev/AutoScrum/pkg/domain"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/feature"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/team"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/workflow"
)

const AutoScrumDir = ".autoscrum"
const ConfigFile = "config.yaml"
const TeamFile = "team.yaml"
const EventsFile = "events.jsonl"
const FeaturesDir = "features"
const RunsDir = "runs"
const StoriesDir = "stories"

// envelope wraps every persisted JSON document with an optimistic
// concurrency version. A save against a stale version is a conflict.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path stays inside the .autoscrum directory and
// prevents traversal. One collection subdirectory level is allowed.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Join(r.root, AutoScrumDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	rel, err := filepath.Rel(baseDir, cleanPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}
	if parts := strings.Split(rel, string(filepath.Separator)); len(parts) > 2 {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	base := filepath.Join(r.root, AutoScrumDir)
	for _, dir := range []string{base, filepath.Join(base, FeaturesDir), filepath.Join(base, RunsDir), filepath.Join(base, StoriesDir)} {
		// G301: Use 0700 for directories
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, AutoScrumDir))
	return err == nil
}

func (r *FilesystemRepository) SaveConfig(cfg *domain.WorkspaceConfig) error {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadConfig() (*domain.WorkspaceConfig, error) {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultWorkspaceConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg domain.WorkspaceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// SaveRoster persists the team roster with an optimistic version check.
func (r *FilesystemRepository) SaveRoster(roster *team.Roster) error {
	path, err := r.ResolvePath(TeamFile)
	if err != nil {
		return err
	}

	current, err := r.LoadRoster()
	if err != nil {
		return err
	}
	if current.Version != roster.Version {
		return &domain.ConflictError{
			Resource: "roster",
			ID:       "team",
			Reason:   fmt.Sprintf("version %d is stale, current is %d", roster.Version, current.Version),
		}
	}
	roster.Version++

	data, err := yaml.Marshal(roster)
	if err != nil {
		roster.Version--
		return fmt.Errorf("failed to marshal roster: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		roster.Version--
		return err
	}
	return nil
}

func (r *FilesystemRepository) LoadRoster() (*team.Roster, error) {
	retryer := retry.New[*team.Roster](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*team.Roster, error) {
		path, err := r.ResolvePath(TeamFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return &team.Roster{}, nil
			}
			return nil, fmt.Errorf("failed to read roster: %w", err)
		}

		var roster team.Roster
		if err := yaml.Unmarshal(data, &roster); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roster: %w", err)
		}

		return &roster, nil
	})
}

func (r *FilesystemRepository) SaveFeature(f *feature.Feature) error {
	f.UpdatedAt = time.Now()
	return r.saveVersioned(FeaturesDir, f.ID, "feature", &f.Version, f)
}

func (r *FilesystemRepository) LoadFeature(id string) (*feature.Feature, error) {
	var f feature.Feature
	version, err := r.loadVersioned(FeaturesDir, id, "feature", &f)
	if err != nil {
		return nil, err
	}
	f.Version = version
	return &f, nil
}

func (r *FilesystemRepository) ListFeatures() ([]*feature.Feature, error) {
	ids, err := r.listIDs(FeaturesDir)
	if err != nil {
		return nil, err
	}

	features := make([]*feature.Feature, 0, len(ids))
	for _, id := range ids {
		f, err := r.LoadFeature(id)
		if err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	sort.Slice(features, func(i, j int) bool { return features[i].CreatedAt.Before(features[j].CreatedAt) })
	return features, nil
}

// SaveRun persists the run keyed by its feature. A feature has at most one
// active run at a time.
func (r *FilesystemRepository) SaveRun(run *workflow.Run) error {
	run.UpdatedAt = time.Now()
	return r.saveVersioned(RunsDir, run.FeatureID, "run", &run.Version, run)
}

func (r *FilesystemRepository) LoadRun(featureID string) (*workflow.Run, error) {
	var run workflow.Run
	version, err := r.loadVersioned(RunsDir, featureID, "run", &run)
	if err != nil {
		return nil, err
	}
	run.Version = version
	return &run, nil
}

// SaveStories replaces the committed story set for a feature.
func (r *FilesystemRepository) SaveStories(featureID string, stories []planning.Story, version *int) error {
	return r.saveVersioned(StoriesDir, featureID, "stories", version, stories)
}

func (r *FilesystemRepository) LoadStories(featureID string) ([]planning.Story, int, error) {
	var stories []planning.Story
	version, err := r.loadVersioned(StoriesDir, featureID, "stories", &stories)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return stories, version, nil
}

// ListAllStories collects the committed stories of every feature.
func (r *FilesystemRepository) ListAllStories() ([]planning.Story, error) {
	ids, err := r.listIDs(StoriesDir)
	if err != nil {
		return nil, err
	}

	var all []planning.Story
	for _, id := range ids {
		stories, _, err := r.LoadStories(id)
		if err != nil {
			return nil, err
		}
		all = append(all, stories...)
	}
	return all, nil
}

func (r *FilesystemRepository) saveVersioned(dir, id, resource string, version *int, v interface{}) error {
	if id == "" {
		return fmt.Errorf("%s id cannot be empty", resource)
	}
	path, err := r.ResolvePath(filepath.Join(dir, id+".json"))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	current := 0
	// #nosec G304 -- Path is resolved and validated via ResolvePath
	if data, err := os.ReadFile(path); err == nil {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("failed to unmarshal %s envelope: %w", resource, err)
		}
		current = env.Version
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", resource, err)
	}

	if *version != current {
		return &domain.ConflictError{
			Resource: resource,
			ID:       id,
			Reason:   fmt.Sprintf("version %d is stale, current is %d", *version, current),
		}
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", resource, err)
	}

	data, err := json.MarshalIndent(envelope{Version: current + 1, Data: payload}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", resource, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return err
	}
	*version = current + 1
	return nil
}

func (r *FilesystemRepository) loadVersioned(dir, id, resource string, v interface{}) (int, error) {
	retryer := retry.New[*envelope](r.retryConfig)

	env, err := retryer.Do(context.Background(), func(ctx context.Context) (*envelope, error) {
		path, err := r.ResolvePath(filepath.Join(dir, id+".json"))
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s envelope: %w", resource, err)
		}
		return &env, nil
	})
	if err != nil {
		return 0, err
	}

	if err := json.Unmarshal(env.Data, v); err != nil {
		return 0, fmt.Errorf("failed to unmarshal %s: %w", resource, err)
	}
	return env.Version, nil
}

func (r *FilesystemRepository) listIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.root, AutoScrumDir, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
