// Package config resolves the relay configuration from built-in defaults, an
// optional TOML file, a .env file and ETHEREA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultFile is read when no config path is given and the file exists.
const DefaultFile = "etherea.toml"

// Config is the process-wide relay configuration. It is read once at startup
// and not modified afterwards.
type Config struct {
	// Address to listen on (e.g., ":8000")
	Listen string `toml:"listen"`

	// StaticDir holds index.html, manifest.json, service-worker.js,
	// settings.html and the assets/ directory.
	StaticDir string `toml:"static_dir"`

	// CORSOrigins is a comma separated list of allowed origins, "*" for any.
	CORSOrigins string `toml:"cors_origins"`

	// DebugEndpoints mounts /debug/paths.
	DebugEndpoints bool `toml:"debug_endpoints"`

	LLM   LLMConfig   `toml:"llm"`
	Agent AgentConfig `toml:"agent"`
}

// LLMConfig points at the llama-server instance and holds sampling defaults.
type LLMConfig struct {
	BaseURL        string  `toml:"base_url"`
	CompletionPath string  `toml:"completion_path"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	NPredict       int     `toml:"n_predict"`
	Temperature    float64 `toml:"temperature"`
	TopP           float64 `toml:"top_p"`
}

// AgentConfig describes the persona reported by /api/health and the file its
// system prompt is read from.
type AgentConfig struct {
	Name             string `toml:"name"`
	Model            string `toml:"model"`
	SystemPromptFile string `toml:"system_prompt_file"`
}

// Timeout returns the upstream timeout as a duration.
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Listen:      ":8000",
		StaticDir:   ".",
		CORSOrigins: "*",
		LLM: LLMConfig{
			BaseURL:        "http://localhost:8080",
			CompletionPath: "/completion",
			TimeoutSeconds: 60,
			NPredict:       512,
			Temperature:    0.7,
			TopP:           0.9,
		},
		Agent: AgentConfig{
			Name:             "Etherea",
			Model:            "Phi-3-Mini-3.8B-Instruct",
			SystemPromptFile: "prompts/etherea-system.txt",
		},
	}
}

// Load resolves the configuration. An empty path reads DefaultFile when it
// exists; a named file that does not exist is an error. Values from .env are
// applied only where the real environment leaves them unset.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if err := loadFile(&cfg, path); err != nil {
		return Config{}, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("config file %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	float := func(key string, dst *float64) {
		if v, ok := lookup(key); ok && v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	str("ETHEREA_LISTEN", &cfg.Listen)
	str("ETHEREA_STATIC_DIR", &cfg.StaticDir)
	str("ETHEREA_CORS_ORIGINS", &cfg.CORSOrigins)
	boolean("ETHEREA_DEBUG_ENDPOINTS", &cfg.DebugEndpoints)

	str("ETHEREA_LLM_BASE_URL", &cfg.LLM.BaseURL)
	str("ETHEREA_LLM_COMPLETION_PATH", &cfg.LLM.CompletionPath)
	integer("ETHEREA_LLM_TIMEOUT_SECONDS", &cfg.LLM.TimeoutSeconds)
	integer("ETHEREA_N_PREDICT", &cfg.LLM.NPredict)
	float("ETHEREA_TEMPERATURE", &cfg.LLM.Temperature)
	float("ETHEREA_TOP_P", &cfg.LLM.TopP)

	str("ETHEREA_AGENT_NAME", &cfg.Agent.Name)
	str("ETHEREA_MODEL_NAME", &cfg.Agent.Model)
	str("ETHEREA_SYSTEM_PROMPT_FILE", &cfg.Agent.SystemPromptFile)

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %w", errors.Join(errs...))
	}
	return nil
}

// Validate reports configuration values the relay cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.LLM.BaseURL == "" {
		errs = append(errs, errors.New("llm.base_url is required"))
	}
	if c.LLM.CompletionPath != "" && !strings.HasPrefix(c.LLM.CompletionPath, "/") {
		errs = append(errs, fmt.Errorf("llm.completion_path must start with '/': %q", c.LLM.CompletionPath))
	}
	if c.LLM.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout_seconds must be positive: %d", c.LLM.TimeoutSeconds))
	}
	if c.LLM.NPredict == 0 || c.LLM.NPredict < -1 {
		errs = append(errs, fmt.Errorf("llm.n_predict must be positive or -1: %d", c.LLM.NPredict))
	}
	if c.LLM.Temperature < 0 {
		errs = append(errs, fmt.Errorf("llm.temperature must not be negative: %g", c.LLM.Temperature))
	}
	if c.LLM.TopP < 0 || c.LLM.TopP > 1 {
		errs = append(errs, fmt.Errorf("llm.top_p must be within [0, 1]: %g", c.LLM.TopP))
	}
	if c.Agent.SystemPromptFile == "" {
		errs = append(errs, errors.New("agent.system_prompt_file is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Write encodes c as TOML.
func (c Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
