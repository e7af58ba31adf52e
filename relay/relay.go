// Package relay forwards chat messages from the Etherea front-end to a local
// llama-server and serves the front-end's static files.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/etherea-os/etherea/pkg/llama"
	"github.com/etherea-os/etherea/pkg/prompt"
)

// ErrNotReady is returned by Chat when the relay holds no system prompt.
var ErrNotReady = errors.New("system prompt not loaded")

// Completer issues a single completion call. *llama.Client implements it.
type Completer interface {
	Complete(ctx context.Context, req llama.CompletionRequest) (*llama.CompletionResponse, error)
}

// Relay renders chat messages into the model's prompt template and forwards
// them upstream. Its state is fixed at construction, so handlers run
// concurrently without locking.
type Relay struct {
	config    Config
	system    prompt.SystemPrompt
	completer Completer
	logger    *zap.Logger
	server    *fiber.App
	staticDir string
}

// New creates a Relay that prepends system to every message.
func New(config Config, system prompt.SystemPrompt, logger *zap.Logger) (*Relay, error) {
	client := llama.NewClient(config.UpstreamURL, config.CompletionPath, config.Timeout, logger.Named("llama"))
	return newRelay(config, system, client, logger)
}

func newRelay(config Config, system prompt.SystemPrompt, completer Completer, logger *zap.Logger) (*Relay, error) {
	staticDir, err := filepath.Abs(config.StaticDir)
	if err != nil {
		return nil, fmt.Errorf("resolving static dir %s: %w", config.StaticDir, err)
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	r := &Relay{
		config:    config,
		system:    system,
		completer: completer,
		logger:    logger,
		server:    app,
		staticDir: staticDir,
	}

	origins := config.CORSOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(recover.New())
	app.Use(r.requestLogger)
	app.Use(cors.New(cors.Config{AllowOrigins: origins}))

	app.Post("/api/chat", r.handleChat)
	app.Get("/api/health", r.handleHealth)

	r.registerStatic(app)

	if config.DebugEndpoints {
		app.Get("/debug/paths", r.handleDebugPaths)
	}

	return r, nil
}

// Run starts the relay server on the configured listening address.
func (r *Relay) Run() error {
	r.logger.Info("starting relay server",
		zap.String("listen", r.config.ListenAddr),
		zap.String("upstream", r.config.UpstreamURL+r.config.CompletionPath),
		zap.String("static_dir", r.staticDir),
	)

	return r.server.Listen(r.config.ListenAddr)
}

// Serve runs the relay server on an existing listener.
func (r *Relay) Serve(ln net.Listener) error {
	r.logger.Info("starting relay server",
		zap.String("listen", ln.Addr().String()),
		zap.String("upstream", r.config.UpstreamURL+r.config.CompletionPath),
	)

	return r.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx is done.
func (r *Relay) Shutdown(ctx context.Context) error {
	return r.server.ShutdownWithContext(ctx)
}

// Chat builds the prompt for req, calls the completion endpoint once and
// classifies the reply. Errors are ErrNotReady or a *llama.Error.
func (r *Relay) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if !r.system.Loaded() {
		return ChatResponse{}, ErrNotReady
	}

	params := r.sampling(req)
	completion := llama.CompletionRequest{
		Prompt:      prompt.Build(r.system, req.Message),
		NPredict:    params.NPredict,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		Stop:        []string{prompt.StopSequence},
		Stream:      false,
	}

	startTime := time.Now()
	resp, err := r.completer.Complete(ctx, completion)
	if err != nil {
		return ChatResponse{}, err
	}

	reply := toChatResponse(resp.Content)

	r.logger.Debug("received reply from upstream",
		zap.String("role", reply.Role),
		zap.String("content_preview", truncate(resp.Content, 100)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return reply, nil
}

func (r *Relay) sampling(req ChatRequest) Sampling {
	params := r.config.Defaults
	if req.NPredict != nil {
		params.NPredict = *req.NPredict
	}
	if req.Temp != nil {
		params.Temperature = *req.Temp
	}
	if req.TopP != nil {
		params.TopP = *req.TopP
	}
	return params
}

func toChatResponse(content string) ChatResponse {
	reply := strings.TrimSpace(content)
	if strings.HasPrefix(reply, prompt.ToolCommandMark) {
		return ChatResponse{Role: RoleTool, Command: &reply}
	}
	return ChatResponse{Role: RoleChat, Text: &reply}
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
