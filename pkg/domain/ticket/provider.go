package ticket

import (
	"net/rpc"

	"github.com/Anajrajeev/AutoScrum/pkg/domain/planning"
	"github.com/hashicorp/go-plugin"
)

// Provider is the narrow external ticketing contract that plugins must
// implement. The orchestrator treats every call as at-most-once: CreateItem
// is never issued twice for the same story once a key is recorded.
type Provider interface {
	// Init ensures the plugin can connect (auth check)
	Init(config map[string]string) error

	// CreateItem creates an external work item and returns its key
	CreateItem(story planning.Story) (string, error)

	// UpdateStatus pushes a status change for an existing item
	UpdateStatus(externalKey string, status planning.StoryStatus) error

	// AddNote appends a comment/work note to an existing item
	AddNote(externalKey string, note string) error
}

// ProviderPlugin is the implementation of plugin.Plugin so we can serve/consume this.
type ProviderPlugin struct {
	Impl Provider
}

func (p *ProviderPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &ProviderRPCServer{Impl: p.Impl}, nil
}

func (p *ProviderPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &ProviderRPCClient{Client: c}, nil
}

// RPC Client/Server wrappers

type CreateItemArgs struct {
	Story planning.Story
}

type CreateItemReply struct {
	ExternalKey string
}

type UpdateStatusArgs struct {
	ExternalKey string
	Status      planning.StoryStatus
}

type AddNoteArgs struct {
	ExternalKey string
	Note        string
}

type ProviderRPCClient struct{ Client *rpc.Client }

func (g *ProviderRPCClient) Init(config map[string]string) error {
	var resp interface{}
	return g.Client.Call("Plugin.Init", config, &resp)
}

func (g *ProviderRPCClient) CreateItem(story planning.Story) (string, error) {
	var reply CreateItemReply
	err := g.Client.Call("Plugin.CreateItem", &CreateItemArgs{Story: story}, &reply)
	return reply.ExternalKey, err
}

func (g *ProviderRPCClient) UpdateStatus(externalKey string, status planning.StoryStatus) error {
	var resp interface{}
	args := &UpdateStatusArgs{ExternalKey: externalKey, Status: status}
	return g.Client.Call("Plugin.UpdateStatus", args, &resp)
}

func (g *ProviderRPCClient) AddNote(externalKey string, note string) error {
	var resp interface{}
	args := &AddNoteArgs{ExternalKey: externalKey, Note: note}
	return g.Client.Call("Plugin.AddNote", args, &resp)
}

type ProviderRPCServer struct{ Impl Provider }

func (s *ProviderRPCServer) Init(config map[string]string, resp *interface{}) error {
	return s.Impl.Init(config)
}

func (s *ProviderRPCServer) CreateItem(args *CreateItemArgs, reply *CreateItemReply) error {
	key, err := s.Impl.CreateItem(args.Story)
	reply.ExternalKey = key
	return err
}

func (s *ProviderRPCServer) UpdateStatus(args *UpdateStatusArgs, resp *interface{}) error {
	return s.Impl.UpdateStatus(args.ExternalKey, args.Status)
}

func (s *ProviderRPCServer) AddNote(args *AddNoteArgs, resp *interface{}) error {
	return s.Impl.AddNote(args.ExternalKey, args.Note)
}
