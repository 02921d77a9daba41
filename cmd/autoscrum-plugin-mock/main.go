package main

import (
	"fmt"
	"log"
	"sync"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ticket"
	autoplugin "github.com/Anajrajeev/AutoScrum/pkg/plugin"
	"github.com/hashicorp/go-plugin"
)

// MockProvider keeps tickets in memory for local runs and integration tests.
type MockProvider struct {
	mu       sync.Mutex
	nextID   int
	items    map[string]planning.Story
	statuses map[string]planning.StoryStatus
}

func (m *MockProvider) Init(config map[string]string) error {
	m.items = make(map[string]planning.Story)
	m.statuses = make(map[string]planning.StoryStatus)
	m.nextID = 1
	return nil
}

func (m *MockProvider) CreateItem(story planning.Story) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := fmt.Sprintf("MOCK-%d", m.nextID)
	m.nextID++
	m.items[key] = story
	m.statuses[key] = planning.StatusTodo
	log.Printf("created %s for story %q", key, story.Title)
	return key, nil
}

func (m *MockProvider) UpdateStatus(externalKey string, status planning.StoryStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[externalKey]; !ok {
		return fmt.Errorf("permanent: unknown item %s", externalKey)
	}
	m.statuses[externalKey] = status
	log.Printf("updated %s to %s", externalKey, status)
	return nil
}

func (m *MockProvider) AddNote(externalKey string, note string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[externalKey]; !ok {
		return fmt.Errorf("permanent: unknown item %s", externalKey)
	}
	log.Printf("note on %s: %s", externalKey, note)
	return nil
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: autoplugin.HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"ticket": &ticket.ProviderPlugin{Impl: &MockProvider{}},
		},
	})
}
