package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/Anajrajeev/AutoScrum/pkg/domain/ticket"
	autoplugin "github.com/Anajrajeev/AutoScrum/pkg/plugin"
	"github.com/hashicorp/go-plugin"
)

// JiraProvider creates and updates Jira issues through the REST v3 API.
type JiraProvider struct {
	domain     string
	projectKey string
	email      string
	apiToken   string
}

func (p *JiraProvider) Init(config map[string]string) error {
	p.domain = config["domain"]
	if p.domain == "" {
		p.domain = os.Getenv("JIRA_DOMAIN")
	}
	p.projectKey = config["project_key"]
	if p.projectKey == "" {
		p.projectKey = os.Getenv("JIRA_PROJECT_KEY")
	}
	p.email = config["email"]
	if p.email == "" {
		p.email = os.Getenv("JIRA_EMAIL")
	}
	p.apiToken = config["api_token"]
	if p.apiToken == "" {
		p.apiToken = os.Getenv("JIRA_API_TOKEN")
	}

	if p.domain == "" || p.projectKey == "" || p.email == "" || p.apiToken == "" {
		return fmt.Errorf("permanent: jira configuration missing (domain, project_key, email, api_token required)")
	}

	if !strings.HasPrefix(p.domain, "http") {
		p.domain = "https://" + p.domain
	}
	return nil
}

func (p *JiraProvider) CreateItem(story planning.Story) (string, error) {
	description := story.Description
	if len(story.AcceptanceCriteria) > 0 {
		description += "\n\nAcceptance criteria:\n"
		for _, c := range story.AcceptanceCriteria {
			description += "- " + c + "\n"
		}
	}

	input := map[string]interface{}{
		"fields": map[string]interface{}{
			"project": map[string]string{"key": p.projectKey},
			"summary": story.Title,
			"description": map[string]interface{}{
				"type":    "doc",
				"version": 1,
				"content": []map[string]interface{}{
					{
						"type": "paragraph",
						"content": []map[string]interface{}{
							{"type": "text", "text": description},
						},
					},
				},
			},
			"issuetype": map[string]string{"name": "Story"},
		},
	}

	data, err := p.request("POST", "issue", input)
	if err != nil {
		return "", err
	}

	var created struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if created.Key == "" {
		return "", fmt.Errorf("jira returned no issue key")
	}
	return created.Key, nil
}

func (p *JiraProvider) UpdateStatus(externalKey string, status planning.StoryStatus) error {
	target := mapStatusName(status)

	data, err := p.request("GET", "issue/"+externalKey+"/transitions", nil)
	if err != nil {
		return err
	}
	var resp struct {
		Transitions []struct {
			ID string `json:"id"`
			To struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("decode transitions: %w", err)
	}

	for _, t := range resp.Transitions {
		if strings.EqualFold(t.To.Name, target) {
			_, err := p.request("POST", "issue/"+externalKey+"/transitions", map[string]interface{}{
				"transition": map[string]string{"id": t.ID},
			})
			return err
		}
	}
	return fmt.Errorf("permanent: no transition to %q available for %s", target, externalKey)
}

func (p *JiraProvider) AddNote(externalKey string, note string) error {
	_, err := p.request("POST", "issue/"+externalKey+"/comment", map[string]interface{}{
		"body": map[string]interface{}{
			"type":    "doc",
			"version": 1,
			"content": []map[string]interface{}{
				{
					"type": "paragraph",
					"content": []map[string]interface{}{
						{"type": "text", "text": note},
					},
				},
			},
		},
	})
	return err
}

func (p *JiraProvider) request(method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(data)
	}

	url := fmt.Sprintf("%s/rest/api/3/%s", p.domain, path)
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}

	auth := base64.StdEncoding.EncodeToString([]byte(p.email + ":" + p.apiToken))
	req.Header.Set("Authorization", "Basic "+auth)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		// The status marker lets the orchestrator classify the flattened
		// RPC error as permanent or transient.
		return nil, fmt.Errorf("jira api error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func mapStatusName(status planning.StoryStatus) string {
	switch status {
	case planning.StatusInProgress:
		return "In Progress"
	case planning.StatusDone:
		return "Done"
	default:
		return "To Do"
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: autoplugin.HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"ticket": &ticket.ProviderPlugin{Impl: &JiraProvider{}},
		},
	})
}
