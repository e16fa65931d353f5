package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/framekit/pkg/framekit"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List the canonical wire profiles",
		Args:  cobra.NoArgs,
		RunE:  runProfiles,
	}
}

func runProfiles(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTART\tHEADER\tFOOTER\tLENGTH\tFIELDS")
	for _, p := range framekit.Profiles() {
		start := "-"
		if sb := p.StartBytes(); len(sb) > 0 {
			start = fmt.Sprintf("% X", sb)
		}
		length := "schema"
		if p.HasLength() {
			length = fmt.Sprintf("%d byte", p.LengthWidth())
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			p.Name(), start, p.HeaderSize(), p.FooterSize(), length, describeFields(p))
	}
	return w.Flush()
}

func describeFields(p *framekit.Profile) string {
	var fields []string
	if p.HasSequence() {
		fields = append(fields, "seq")
	}
	if p.HasSystemID() {
		fields = append(fields, "sys")
	}
	if p.HasComponentID() {
		fields = append(fields, "comp")
	}
	if p.HasLength() {
		fields = append(fields, "len")
	}
	if p.HasPackageID() {
		fields = append(fields, "pkg")
	}
	fields = append(fields, "msg")
	if p.HasChecksum() {
		fields = append(fields, "crc")
	}
	return strings.Join(fields, ",")
}
