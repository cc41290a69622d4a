//go:build !tinygo

package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"wiohid/services/hid"
)

func addDecode(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode an input report.",
		Example: `
wiohid decode 0000040000000000000000
wiohid decode "02 00 04 05 00 00 00 00 01 ff 00"
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseReport(strings.Join(args, ""))
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), r)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func parseReport(s string) (hid.Report, error) {
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return hid.Report{}, fmt.Errorf("decode: %w", err)
	}
	r, err := hid.Unmarshal(b)
	if err != nil {
		return hid.Report{}, fmt.Errorf("decode: %w", err)
	}
	return r, nil
}

func printReport(w io.Writer, r hid.Report) {
	hi := color.New(color.FgYellow, color.Bold).SprintFunc()
	field := func(v any, set bool) any {
		if set {
			return hi(v)
		}
		return v
	}

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("modifier", field(fmt.Sprintf("%08b", r.Modifier), r.Modifier != 0))
	tbl.AddRow("leds", field(fmt.Sprintf("%05b", r.LEDs), r.LEDs != 0))
	for i, k := range r.Keys {
		tbl.AddRow(fmt.Sprintf("key[%d]", i), field(fmt.Sprintf("0x%02x", k), k != 0))
	}
	tbl.AddRow("buttons", field(fmt.Sprintf("%03b", r.Buttons), r.Buttons != 0))
	tbl.AddRow("x", field(r.X, r.X != 0))
	tbl.AddRow("y", field(r.Y, r.Y != 0))
	valid := "yes"
	if !r.Valid() {
		valid = color.RedString("no (padding bits set)")
	}
	tbl.AddRow("valid", valid)
	fmt.Fprintln(w, tbl)
}
