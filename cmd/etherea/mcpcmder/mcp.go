package mcpcmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etherea-os/etherea/cmd/etherea/bootstrap"
	"github.com/etherea-os/etherea/pkg/config"
	"github.com/etherea-os/etherea/pkg/logger"
)

const mcpLongDesc string = `Serve the relay as an MCP tool over stdio.

Exposes a single "chat" tool that renders the message into the
agent's prompt and calls llama-server, exactly like POST /api/chat.
Logs go to stderr; stdout carries the protocol.

Examples:
  etherea mcp
  etherea mcp --config ~/.config/etherea/etherea.toml`

const mcpShortDesc string = "Serve the chat tool over MCP stdio"

type mcpCommander struct {
	configPath string
	version    string
	debug      bool

	// transport defaults to stdio.
	transport mcp.Transport
}

func NewMCPCmd(version string) *cobra.Command {
	cmder := &mcpCommander{version: version}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: mcpShortDesc,
		Long:  mcpLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *mcpCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}

	log := logger.New(os.Stderr, c.debug)
	defer log.Sync()

	r, err := bootstrap.NewRelay(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("serving mcp on stdio", zap.String("upstream", cfg.LLM.BaseURL+cfg.LLM.CompletionPath))

	transport := c.transport
	if transport == nil {
		transport = &mcp.StdioTransport{}
	}

	if err := r.NewMCPServer(c.version).Run(ctx, transport); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp server failed: %w", err)
	}
	return nil
}
