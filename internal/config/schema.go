package config

import "time"

// Config holds tailor configuration.
// Stored at: ~/.tailor/config.yaml
type Config struct {
	Server ServerCfg `mapstructure:"server" yaml:"server"`
	Store  StoreCfg  `mapstructure:"store" yaml:"store"`
	Google GoogleCfg `mapstructure:"google" yaml:"google"`
	LLM    LLMCfg    `mapstructure:"llm" yaml:"llm"`
	Worker WorkerCfg `mapstructure:"worker" yaml:"worker"`
}

// ServerCfg configures the HTTP listener.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// StoreCfg configures local persistence.
type StoreCfg struct {
	// Dir is the data directory. Empty means ~/.tailor/data.
	Dir string `mapstructure:"dir" yaml:"dir"`
}

// GoogleCfg configures Docs and Drive access.
type GoogleCfg struct {
	// CredentialsFile is the path to a service-account JSON key.
	// Supports ${ENV_VAR} syntax.
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	// SharedFolderID is the Drive folder receiving tailored copies and PDFs.
	SharedFolderID string `mapstructure:"shared_folder_id" yaml:"shared_folder_id"`
}

// LLMCfg configures the generation provider.
type LLMCfg struct {
	// APIKey supports ${ENV_VAR} syntax.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
	Model  string `mapstructure:"model" yaml:"model"`
	// RateLimit is requests per second.
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// WorkerCfg configures the background job workers.
type WorkerCfg struct {
	Count        int           `mapstructure:"count" yaml:"count"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size" yaml:"batch_size"`
	// Lease is how long a claimed job may run before it is handed back
	// to the queue.
	Lease time.Duration `mapstructure:"lease" yaml:"lease"`
	// JobTimeout bounds a single pipeline run.
	JobTimeout time.Duration `mapstructure:"job_timeout" yaml:"job_timeout"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
		Store: StoreCfg{},
		Google: GoogleCfg{
			CredentialsFile: "${GOOGLE_APPLICATION_CREDENTIALS}",
		},
		LLM: LLMCfg{
			APIKey:    "${OPENAI_API_KEY}",
			Model:     "gpt-4o-mini",
			RateLimit: 1.0,
		},
		Worker: WorkerCfg{
			Count:        2,
			PollInterval: 3 * time.Second,
			BatchSize:    5,
			Lease:        15 * time.Minute,
			JobTimeout:   10 * time.Minute,
		},
	}
}
