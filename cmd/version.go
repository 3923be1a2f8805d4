package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/unpack/pkg/settings"
)

func newVersionCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print unpack version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := settings.VersionInformation
			out := cmd.OutOrStdout()
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(info); err != nil {
					return err
				}
				return enc.Close()
			case "", "text":
				_, err := fmt.Fprintln(out, cliVersionString())
				return err
			}
			return fmt.Errorf("unknown version format %q (expected text, json, yaml)", format)
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", "text", "output format: text|json|yaml")
	return cmd
}

// cliVersionString is the one-line version report.
func cliVersionString() string {
	v := settings.VersionInformation
	return fmt.Sprintf("%s %s (commit %s, built %s, %s)",
		settings.CliBinaryName, v.BuildVersion, v.Commit, v.BuildTime, runtime.Version())
}
