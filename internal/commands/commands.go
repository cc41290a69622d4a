//go:build !tinygo

// Package commands implements the host command line.
package commands

import (
	"github.com/spf13/cobra"
)

// New returns the root command. Without a subcommand it runs the device
// emulation.
func New() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "wiohid",
		Short: "Button-driven USB keyboard and mouse firmware, emulated on the host.",
		Example: `
wiohid
wiohid --headless --duration 2s --press TopLeft@100ms --press Right@500ms+200ms
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd)
		},
	}
	opts.addFlags(cmd)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addDescriptor(topLevel)
	addDecode(topLevel)
	addVersion(topLevel)
}
