//go:build !tinygo

package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"wiohid/services/hid"
)

func addDescriptor(topLevel *cobra.Command) {
	dump := false
	cmd := &cobra.Command{
		Use:   "descriptor",
		Short: "Print the HID report descriptor.",
		Example: `
wiohid descriptor
wiohid descriptor --dump
`,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			if dump {
				fmt.Fprint(out, hex.Dump(hid.ReportDescriptor))
			} else {
				fmt.Fprintln(out, hex.EncodeToString(hid.ReportDescriptor))
			}
			fmt.Fprintf(out, "input report: %d bits (%d bytes)\n", hid.InputBits(hid.ReportDescriptor), hid.ReportSize)
		},
	}
	cmd.Flags().BoolVarP(&dump, "dump", "d", false, "Print a hex dump with offsets.")
	topLevel.AddCommand(cmd)
}
