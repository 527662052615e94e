// Package config provides configuration loading and validation for the pipeline service.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when neither the environment nor a config file sets a value.
const (
	DefaultTranscriptionBaseURL = "https://api.assemblyai.com"
	DefaultProvider             = "gemini"
	DefaultPollIntervalSeconds  = 3
	DefaultPollTimeoutSeconds   = 600
	DefaultMaxUploadMB          = 200
	DefaultPort                 = 8080
	DefaultLogMode              = "dev"
)

// Config is the explicit configuration passed into the pipeline constructor.
// It is validated once at startup; missing credentials fail fast.
type Config struct {
	// Credentials
	TranscriptionAPIKey string `json:"transcription_api_key,omitempty" validate:"required"`
	GenerationAPIKey    string `json:"generation_api_key,omitempty" validate:"required"`

	// Upstream services
	TranscriptionBaseURL string `json:"transcription_base_url,omitempty" validate:"required,url"`
	GenerationProvider   string `json:"generation_provider,omitempty" validate:"required,oneof=gemini openai"`
	GenerationModel      string `json:"generation_model,omitempty"` // Empty uses the provider default
	LanguageCode         string `json:"language_code,omitempty"`    // Optional transcription language hint
	SpeakerLabels        bool   `json:"speaker_labels,omitempty"`   // Ask the transcription service to label speakers

	// Polling budget
	PollIntervalSeconds int `json:"poll_interval_seconds,omitempty" validate:"gte=0"`
	PollTimeoutSeconds  int `json:"poll_timeout_seconds,omitempty" validate:"gte=0"`

	// Limits and local resources
	MaxUploadMB int    `json:"max_upload_mb,omitempty" validate:"gte=0"`
	ScratchDir  string `json:"scratch_dir,omitempty"`

	// Server
	Port    int    `json:"port,omitempty" validate:"gte=0,lte=65535"`
	LogMode string `json:"log_mode,omitempty"`

	// Provider keys read from the environment; Load picks one once the
	// effective provider is known.
	geminiKey string
	openaiKey string
}

// MissingConfigError reports required settings that were not provided.
type MissingConfigError struct {
	Fields []string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing configuration: %s", strings.Join(e.Fields, ", "))
}

// envNames maps struct fields to the environment variables that set them.
var envNames = map[string]string{
	"TranscriptionAPIKey":  "ASSEMBLYAI_API_KEY",
	"GenerationAPIKey":     "GEMINI_API_KEY or OPENAI_API_KEY",
	"TranscriptionBaseURL": "TRANSCRIPTION_BASE_URL",
	"GenerationProvider":   "LLM_PROVIDER",
}

// Defaults returns a Config holding only default values.
func Defaults() Config {
	return Config{
		TranscriptionBaseURL: DefaultTranscriptionBaseURL,
		GenerationProvider:   DefaultProvider,
		PollIntervalSeconds:  DefaultPollIntervalSeconds,
		PollTimeoutSeconds:   DefaultPollTimeoutSeconds,
		MaxUploadMB:          DefaultMaxUploadMB,
		Port:                 DefaultPort,
		LogMode:              DefaultLogMode,
	}
}

// FromEnv builds a Config from environment variables. Unset values stay zero so the
// result can be merged with a config file and defaults.
func FromEnv() Config {
	cfg := Config{
		TranscriptionAPIKey:  os.Getenv("ASSEMBLYAI_API_KEY"),
		TranscriptionBaseURL: os.Getenv("TRANSCRIPTION_BASE_URL"),
		GenerationProvider:   strings.ToLower(os.Getenv("LLM_PROVIDER")),
		GenerationModel:      os.Getenv("LLM_MODEL"),
		LanguageCode:         os.Getenv("TRANSCRIPTION_LANGUAGE"),
		SpeakerLabels:        envBool("SPEAKER_LABELS"),
		PollIntervalSeconds:  envInt("POLL_INTERVAL"),
		PollTimeoutSeconds:   envInt("POLL_TIMEOUT"),
		MaxUploadMB:          envInt("MAX_UPLOAD_MB"),
		ScratchDir:           os.Getenv("SCRATCH_DIR"),
		Port:                 envInt("PORT"),
		LogMode:              os.Getenv("LOG_MODE"),
		geminiKey:            os.Getenv("GEMINI_API_KEY"),
		openaiKey:            os.Getenv("OPENAI_API_KEY"),
	}
	return cfg
}

// envGenerationKey returns the environment key for the configured provider.
func (c *Config) envGenerationKey() string {
	if c.GenerationProvider == "openai" {
		return c.openaiKey
	}
	return c.geminiKey
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(name)))
	return err == nil && v
}

func envInt(name string) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return 0
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return i
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load resolves the effective configuration: environment first, then the optional
// config file, then defaults. The result is validated.
func Load(path string) (*Config, error) {
	cfg := FromEnv()
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = cfg.MergeWithDefaults(*fileCfg)
	}
	cfg = cfg.MergeWithDefaults(Defaults())
	if key := cfg.envGenerationKey(); key != "" {
		cfg.GenerationAPIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration is usable. Missing required settings are
// reported together as a *MissingConfigError.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config error: %w", err)
	}

	var missing []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			name := fe.StructField()
			if env, ok := envNames[name]; ok {
				name = env
			}
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingConfigError{Fields: missing}
	}

	fe := verrs[0]
	return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Field(), fe.Tag())
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.TranscriptionAPIKey == "" {
		result.TranscriptionAPIKey = defaults.TranscriptionAPIKey
	}
	if result.GenerationAPIKey == "" {
		result.GenerationAPIKey = defaults.GenerationAPIKey
	}
	if result.TranscriptionBaseURL == "" {
		result.TranscriptionBaseURL = defaults.TranscriptionBaseURL
	}
	if result.GenerationProvider == "" {
		result.GenerationProvider = defaults.GenerationProvider
	}
	if result.GenerationModel == "" {
		result.GenerationModel = defaults.GenerationModel
	}
	if result.LanguageCode == "" {
		result.LanguageCode = defaults.LanguageCode
	}
	if result.ScratchDir == "" {
		result.ScratchDir = defaults.ScratchDir
	}
	if result.LogMode == "" {
		result.LogMode = defaults.LogMode
	}
	if !result.SpeakerLabels {
		result.SpeakerLabels = defaults.SpeakerLabels
	}

	if result.PollIntervalSeconds == 0 {
		result.PollIntervalSeconds = defaults.PollIntervalSeconds
	}
	if result.PollTimeoutSeconds == 0 {
		result.PollTimeoutSeconds = defaults.PollTimeoutSeconds
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	return result
}

// PollInterval is the sleep between transcription status checks.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// PollTimeout is the wall-clock budget for a transcription job.
func (c *Config) PollTimeout() time.Duration {
	return time.Duration(c.PollTimeoutSeconds) * time.Second
}

// MaxUploadBytes is the largest accepted multipart body.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
