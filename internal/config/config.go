package config

// Config represents the full application configuration.
type Config struct {
	Anthropic     AnthropicConfig     `yaml:"anthropic"`
	GitHub        GitHubConfig        `yaml:"github"`
	Webhook       WebhookConfig       `yaml:"webhook"`
	Server        ServerConfig        `yaml:"server"`
	HTTP          HTTPConfig          `yaml:"http"`
	Redaction     RedactionConfig     `yaml:"redaction"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// AnthropicConfig configures the AI review collaborator.
type AnthropicConfig struct {
	APIKey    string `yaml:"apiKey"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`
}

// GitHubConfig configures the file-fetch collaborator.
type GitHubConfig struct {
	Token string `yaml:"token"`
}

// WebhookConfig configures inbound webhook verification and authorization.
type WebhookConfig struct {
	// Secret is the shared HMAC secret for X-Hub-Signature-256 checks.
	// Empty disables signature enforcement (open mode).
	Secret string `yaml:"secret"`

	// AllowedRepos restricts which repositories may trigger reviews.
	// Empty allows all repositories.
	AllowedRepos []string `yaml:"allowedRepos"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port  int  `yaml:"port"`
	Debug bool `yaml:"debug"`
}

// HTTPConfig holds outbound HTTP client settings shared by collaborator
// clients. MaxRetries defaults to 0: a collaborator failure fails the
// request without retry. Raising it is the resilience knob.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// RedactionConfig toggles secret redaction of patch text before it is sent
// to the AI collaborator.
type RedactionConfig struct {
	Enabled bool `yaml:"enabled"`

	// Patterns are extra regexes applied on top of the built-in secret
	// detectors.
	Patterns []string `yaml:"patterns"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Anthropic = chooseAnthropic(base.Anthropic, overlay.Anthropic)
	result.GitHub = chooseGitHub(base.GitHub, overlay.GitHub)
	result.Webhook = chooseWebhook(base.Webhook, overlay.Webhook)
	result.Server = chooseServer(base.Server, overlay.Server)
	result.HTTP = chooseHTTP(base.HTTP, overlay.HTTP)
	result.Redaction = chooseRedaction(base.Redaction, overlay.Redaction)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseAnthropic(base, overlay AnthropicConfig) AnthropicConfig {
	result := base
	if overlay.APIKey != "" {
		result.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		result.Model = overlay.Model
	}
	if overlay.MaxTokens != 0 {
		result.MaxTokens = overlay.MaxTokens
	}
	return result
}

func chooseGitHub(base, overlay GitHubConfig) GitHubConfig {
	if overlay.Token != "" {
		return overlay
	}
	return base
}

func chooseWebhook(base, overlay WebhookConfig) WebhookConfig {
	result := base
	if overlay.Secret != "" {
		result.Secret = overlay.Secret
	}
	if len(overlay.AllowedRepos) > 0 {
		result.AllowedRepos = overlay.AllowedRepos
	}
	return result
}

func chooseServer(base, overlay ServerConfig) ServerConfig {
	result := base
	if overlay.Port != 0 {
		result.Port = overlay.Port
	}
	if overlay.Debug {
		result.Debug = overlay.Debug
	}
	return result
}

func chooseHTTP(base, overlay HTTPConfig) HTTPConfig {
	if overlay.Timeout != "" || overlay.MaxRetries != 0 || overlay.InitialBackoff != "" || overlay.MaxBackoff != "" || overlay.BackoffMultiplier != 0 {
		return overlay
	}
	return base
}

func chooseRedaction(base, overlay RedactionConfig) RedactionConfig {
	result := base
	if overlay.Enabled {
		result.Enabled = overlay.Enabled
	}
	if len(overlay.Patterns) > 0 {
		result.Patterns = overlay.Patterns
	}
	return result
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
