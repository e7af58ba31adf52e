// Package bootstrap turns a resolved configuration into a running relay. It is
// shared by the serve and mcp commands.
package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/etherea-os/etherea/pkg/config"
	"github.com/etherea-os/etherea/pkg/prompt"
	"github.com/etherea-os/etherea/relay"
)

// RelayConfig maps the resolved configuration onto the relay's.
func RelayConfig(cfg config.Config) relay.Config {
	return relay.Config{
		ListenAddr:     cfg.Listen,
		UpstreamURL:    cfg.LLM.BaseURL,
		CompletionPath: cfg.LLM.CompletionPath,
		Timeout:        cfg.LLM.Timeout(),
		Defaults: relay.Sampling{
			NPredict:    cfg.LLM.NPredict,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
		},
		StaticDir:      cfg.StaticDir,
		CORSOrigins:    cfg.CORSOrigins,
		AgentName:      cfg.Agent.Name,
		ModelName:      cfg.Agent.Model,
		DebugEndpoints: cfg.DebugEndpoints,
	}
}

// NewRelay loads the system prompt named by cfg and builds the relay. A
// missing prompt file is an error; the caller is expected to abort.
func NewRelay(cfg config.Config, logger *zap.Logger) (*relay.Relay, error) {
	system, err := prompt.Load(cfg.Agent.SystemPromptFile)
	if err != nil {
		return nil, fmt.Errorf("could not load system prompt: %w", err)
	}
	if !system.Loaded() {
		logger.Warn("system prompt is empty, chat requests will fail",
			zap.String("path", cfg.Agent.SystemPromptFile),
		)
	} else {
		logger.Info("system prompt loaded",
			zap.String("path", cfg.Agent.SystemPromptFile),
			zap.Int("length", len(system)),
		)
	}

	r, err := relay.New(RelayConfig(cfg), system, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create relay: %w", err)
	}
	return r, nil
}
