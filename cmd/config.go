package cmd

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/unpack/internal/config"
)

func newConfigCmd() *cobra.Command {
	var (
		format   string
		defaults bool
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Long: `config prints the configuration unpack would run with: the built-in
defaults, then the config file, then .env and UNPACK_* variables.
With --defaults it prints the built-in file as a starting point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if defaults {
				_, err := out.Write(config.DefaultYAML())
				return err
			}

			cfg, err := loadConfig(runParams(cmd))
			if err != nil {
				return err
			}
			var data []byte
			switch format {
			case "yaml":
				data, err = yaml.Marshal(cfg)
			case "toml":
				data, err = toml.Marshal(cfg)
			default:
				return fmt.Errorf("unknown config format %q (expected yaml, toml)", format)
			}
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = out.Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format: yaml|toml")
	cmd.Flags().BoolVar(&defaults, "defaults", false, "print the built-in defaults instead")
	return cmd
}
