package domain

// WorkspaceConfig is the serialized representation of config.yaml in the
// .autoscrum/ directory.
type WorkspaceConfig struct {
	AIProvider string `yaml:"ai_provider"`
	AIModel    string `yaml:"ai_model"`
	AllowAI    bool   `yaml:"allow_ai"`
	TokenLimit int    `yaml:"token_limit"` // max tokens allowed for this workspace, 0 = unlimited

	// GatewayTimeoutSeconds bounds every completion call. 0 uses the default.
	GatewayTimeoutSeconds int `yaml:"gateway_timeout_seconds"`

	// MaxClarifyQuestions caps the clarification dialogue; after this many
	// questions the context is forced complete. 0 uses the default of 5.
	MaxClarifyQuestions int `yaml:"max_clarify_questions"`

	// TicketPlugin is the path to the ticket provider plugin binary.
	// TicketConfig is handed to the plugin's Init.
	TicketPlugin string            `yaml:"ticket_plugin"`
	TicketConfig map[string]string `yaml:"ticket_config"`
}

// DefaultWorkspaceConfig returns the config written by `autoscrum init`.
func DefaultWorkspaceConfig() *WorkspaceConfig {
	return &WorkspaceConfig{
		AIProvider:            "ollama",
		AllowAI:               true,
		GatewayTimeoutSeconds: 60,
		MaxClarifyQuestions:   5,
	}
}
