package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/livestyle/internal/appconfig"
)

// ConfigInitResult is the outcome of config init.
type ConfigInitResult struct {
	Path string `json:"path"`
}

// NewConfigCommand creates the config command and its subcommands.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the livestyle config file",
	}
	cmd.AddCommand(newConfigInitCommand(rootOpts))
	cmd.AddCommand(newConfigShowCommand(rootOpts))
	return cmd
}

func newConfigInitCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default config file",
		Long: `Write the default configuration to path, or to
$XDG_CONFIG_HOME/livestyle/config.yaml. An existing file is kept unless
--force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			written, err := appconfig.WriteDefault(path, force)
			if err != nil {
				return f.Fail(ExitCommandError, CodeInput, "failed to write config", err, nil)
			}
			if f.JSON() {
				return f.Success(ConfigInitResult{Path: written})
			}
			f.Printf("%s wrote %s\n", markOK, written)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if f.JSON() {
				return f.Success(rootOpts.Config)
			}
			data, err := yaml.Marshal(rootOpts.Config)
			if err != nil {
				return err
			}
			f.Printf("%s", data)
			return nil
		},
	}
}
