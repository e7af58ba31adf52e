package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/etherea-os/etherea/cmd/etherea/bootstrap"
	"github.com/etherea-os/etherea/pkg/config"
	"github.com/etherea-os/etherea/pkg/logger"
)

const serveLongDesc string = `Run the Etherea relay.

Serves the front-end files from the static directory and relays
POST /api/chat to llama-server. The system prompt file must exist;
the relay refuses to start without it.

Examples:
  etherea serve
  etherea serve --config /etc/etherea/etherea.toml --listen :9000`

const serveShortDesc string = "Run the chat relay server"

// shutdownTimeout bounds how long in-flight chats may finish after a signal.
const shutdownTimeout = 65 * time.Second

type serveCommander struct {
	configPath string
	listen     string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file (default: ./"+config.DefaultFile+" if present)")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().BoolVar(&cmder.debug, "debug", false, "Enable debug logging")

	return cmd
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.listen != "" {
		cfg.Listen = c.listen
	}

	log := logger.NewLogger(c.debug)
	defer log.Sync()

	log.Info("etherea relay starting",
		zap.String("listen", cfg.Listen),
		zap.String("upstream", cfg.LLM.BaseURL+cfg.LLM.CompletionPath),
		zap.Bool("debug", c.debug),
	)

	r, err := bootstrap.NewRelay(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- r.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("relay server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := r.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
