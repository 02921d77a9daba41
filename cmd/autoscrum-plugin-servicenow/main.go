package main

import (
	"bytes"
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

// ServiceNowProvider creates records in a ServiceNow table through the
// Table API. Records are addressed by their generated number; the sys_id
// is resolved on demand for updates.
type ServiceNowProvider struct {
	instance string
	table    string
	user     string
	password string
}

func (p *ServiceNowProvider) Init(config map[string]string) error {
	p.instance = config["instance"]
	if p.instance == "" {
		p.instance = os.Getenv("SERVICENOW_INSTANCE")
	}
	p.table = config["table"]
	if p.table == "" {
		p.table = "incident"
	}
	p.user = config["user"]
	if p.user == "" {
		p.user = os.Getenv("SERVICENOW_USER")
	}
	p.password = config["password"]
	if p.password == "" {
		p.password = os.Getenv("SERVICENOW_PASSWORD")
	}

	if p.instance == "" || p.user == "" || p.password == "" {
		return fmt.Errorf("permanent: servicenow configuration missing (instance, user, password required)")
	}

	if !strings.HasPrefix(p.instance, "http") {
		p.instance = "https://" + p.instance
	}
	return nil
}

type snRecord struct {
	SysID  string `json:"sys_id"`
	Number string `json:"number"`
}

func (p *ServiceNowProvider) CreateItem(story planning.Story) (string, error) {
	description := story.Description
	if len(story.AcceptanceCriteria) > 0 {
		description += "\n\nAcceptance criteria:\n"
		for _, c := range story.AcceptanceCriteria {
			description += "- " + c + "\n"
		}
	}

	body := map[string]interface{}{
		"short_description": story.Title,
		"description":       description,
		"urgency":           mapUrgency(story.Priority),
	}

	data, err := p.request("POST", fmt.Sprintf("api/now/table/%s", p.table), body)
	if err != nil {
		return "", err
	}

	var resp struct {
		Result snRecord `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode create response: %w", err)
	}
	if resp.Result.Number == "" {
		return "", fmt.Errorf("servicenow returned no record number")
	}
	return resp.Result.Number, nil
}

func (p *ServiceNowProvider) UpdateStatus(externalKey string, status planning.StoryStatus) error {
	sysID, err := p.resolveSysID(externalKey)
	if err != nil {
		return err
	}
	_, err = p.request("PATCH", fmt.Sprintf("api/now/table/%s/%s", p.table, sysID), map[string]interface{}{
		"state": mapState(status),
	})
	return err
}

func (p *ServiceNowProvider) AddNote(externalKey string, note string) error {
	sysID, err := p.resolveSysID(externalKey)
	if err != nil {
		return err
	}
	_, err = p.request("PATCH", fmt.Sprintf("api/now/table/%s/%s", p.table, sysID), map[string]interface{}{
		"work_notes": note,
	})
	return err
}

func (p *ServiceNowProvider) resolveSysID(number string) (string, error) {
	path := fmt.Sprintf("api/now/table/%s?sysparm_query=number=%s&sysparm_fields=sys_id,number", p.table, number)
	data, err := p.request("GET", path, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Result []snRecord `json:"result"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}
	if len(resp.Result) == 0 {
		return "", fmt.Errorf("permanent: record %s not found in %s", number, p.table)
	}
	return resp.Result[0].SysID, nil
}

func (p *ServiceNowProvider) request(method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewBuffer(data)
	}

	url := fmt.Sprintf("%s/%s", p.instance, path)
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(p.user, p.password)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		// The status marker lets the orchestrator classify the flattened
		// RPC error as permanent or transient.
		return nil, fmt.Errorf("servicenow api error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

func mapUrgency(priority planning.StoryPriority) string {
	switch priority {
	case planning.PriorityHigh:
		return "1"
	case planning.PriorityLow:
		return "3"
	default:
		return "2"
	}
}

func mapState(status planning.StoryStatus) string {
	switch status {
	case planning.StatusInProgress, planning.StatusInReview:
		return "2"
	case planning.StatusDone:
		return "6"
	case planning.StatusBlocked:
		return "3"
	default:
		return "1"
	}
}

func main() {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: autoplugin.HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			"ticket": &ticket.ProviderPlugin{Impl: &ServiceNowProvider{}},
		},
	})
}
