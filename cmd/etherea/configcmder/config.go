package configcmder

import (
	"github.com/spf13/cobra"

	"github.com/etherea-os/etherea/pkg/config"
)

const configLongDesc string = `Print the resolved configuration as TOML.

Shows the result of merging built-in defaults, the config file,
.env and ETHEREA_* environment variables, in that order.

Examples:
  etherea config
  etherea config --config ./etherea.toml > etherea.toml.new`

const configShortDesc string = "Print the resolved configuration"

type configCommander struct {
	configPath string
}

func NewConfigCmd() *cobra.Command {
	cmder := &configCommander{}

	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmder.configPath)
			if err != nil {
				return err
			}
			return cfg.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to TOML config file")

	return cmd
}
