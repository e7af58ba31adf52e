package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/etherea-os/etherea/cmd/etherea/chatcmder"
	"github.com/etherea-os/etherea/cmd/etherea/configcmder"
	"github.com/etherea-os/etherea/cmd/etherea/mcpcmder"
	"github.com/etherea-os/etherea/cmd/etherea/servecmder"
)

var version = "dev"

const rootLongDesc string = `etherea relays chat messages from the Etherea OS front-end
to a local llama-server and serves the front-end's static files.`

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "etherea",
		Short:         "Etherea OS chat relay",
		Long:          rootLongDesc,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		servecmder.NewServeCmd(),
		chatcmder.NewChatCmd(),
		mcpcmder.NewMCPCmd(version),
		configcmder.NewConfigCmd(),
	)

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
