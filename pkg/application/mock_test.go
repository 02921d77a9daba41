package application

import (
	"context"
	"fmt"
	"sync"
	"testing"

	gateway "github.com/Anajrajeev/AutoScrum/pkg/ai"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ai"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/team"
	"github.com/Anajrajeev/AutoScrum/pkg/storage"
)

// scriptedProvider returns canned completions in order.
type scriptedProvider struct {
	responses []string
	errs      []error
	calls     int
}

func (p *scriptedProvider) ID() string { return "scripted" }

func (p *scriptedProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	i := p.calls
	p.calls++
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i >= len(p.responses) {
		return nil, fmt.Errorf("scripted provider exhausted after %d calls", i)
	}
	return &ai.CompletionResponse{Text: p.responses[i], Model: "test"}, nil
}

// fakeTicketProvider records ticket calls in memory.
type fakeTicketProvider struct {
	mu       sync.Mutex
	seq      int
	created  map[string]string // story ID -> external key
	failWith map[string]error  // story title -> error
	notes    map[string][]string
}

func newFakeTicketProvider() *fakeTicketProvider {
	return &fakeTicketProvider{
		created:  make(map[string]string),
		failWith: make(map[string]error),
		notes:    make(map[string][]string),
	}
}

func (f *fakeTicketProvider) Init(config map[string]string) error { return nil }

func (f *fakeTicketProvider) CreateItem(story planning.Story) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failWith[story.Title]; ok {
		return "", err
	}
	if _, ok := f.created[story.ID]; ok {
		return "", fmt.Errorf("duplicate create for story %s", story.ID)
	}
	f.seq++
	key := fmt.Sprintf("PROJ-%d", f.seq)
	f.created[story.ID] = key
	return key, nil
}

func (f *fakeTicketProvider) UpdateStatus(externalKey string, status planning.StoryStatus) error {
	return nil
}

func (f *fakeTicketProvider) AddNote(externalKey string, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[externalKey] = append(f.notes[externalKey], note)
	return nil
}

func (f *fakeTicketProvider) setFailure(title string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failWith, title)
		return
	}
	f.failWith[title] = err
}

// memoryAudit collects audit actions for assertions.
type memoryAudit struct {
	mu      sync.Mutex
	actions []string
}

func (a *memoryAudit) Log(action string, actor string, metadata map[string]interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, action)
	return nil
}

type testEnv struct {
	repo     *storage.FilesystemRepository
	provider *scriptedProvider
	tickets  *fakeTicketProvider
	audit    *memoryAudit
	team     *TeamService
	workflow *WorkflowService
}

func newTestEnv(t *testing.T, responses ...string) *testEnv {
	t.Helper()

	repo := storage.NewFilesystemRepository(t.TempDir())
	if err := repo.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	provider := &scriptedProvider{responses: responses}
	gw := gateway.NewGateway(provider, nil)
	tickets := newFakeTicketProvider()
	audit := &memoryAudit{}

	teamSvc := NewTeamService(repo, audit)
	clarifySvc := NewClarifyService(repo, gw, audit)
	storySvc := NewStoryService(gw, audit)
	workflowSvc := NewWorkflowService(repo, clarifySvc, storySvc, teamSvc, tickets, audit)

	return &testEnv{
		repo:     repo,
		provider: provider,
		tickets:  tickets,
		audit:    audit,
		team:     teamSvc,
		workflow: workflowSvc,
	}
}

func (e *testEnv) addMember(t *testing.T, id string, skills []string, capacity int) {
	t.Helper()
	if err := e.team.AddMember(team.Member{ID: id, Name: id, Skills: skills, MaxCapacity: capacity}); err != nil {
		t.Fatalf("AddMember(%s) failed: %v", id, err)
	}
}

const clarifyQuestionResponse = `{
  "summary": {"goals": ["allow users to sign in"]},
  "is_complete": false,
  "next_question": "Which identity providers must be supported?"
}`

const clarifyCompleteResponse = `{
  "summary": {
    "acceptance_criteria": ["login with email and password works"],
    "technical_constraints": ["oauth2 for social providers"]
  },
  "is_complete": true,
  "next_question": ""
}`

const storiesResponse = `{
  "epic_label": "Login",
  "stories": [
    {
      "title": "Build login form",
      "description": "Implement the backend api for email and password login",
      "acceptance_criteria": ["shows validation errors", "locks after five attempts"],
      "points": 3,
      "priority": "high"
    },
    {
      "title": "Add session tests",
      "description": "Extend the qa suite to cover session expiry",
      "acceptance_criteria": ["expired sessions redirect to login"],
      "points": 2,
      "priority": "medium"
    }
  ]
}`
