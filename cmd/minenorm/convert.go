package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

func newConvertCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "convert <category> <text>",
		Short: "Convert one raw measurement",
		Long: `Convert one raw measurement to its canonical form.

Categories: production, area, area-PAR, area-claims, area-total, area-general,
coordinate.

Examples:
  minenorm convert production "2,4 Mt/Jahr; >400 000 oz Au"
  minenorm convert area-PAR "77,8 ha"
  minenorm convert coordinate "52°41'58.37\" N / 76°05'13.13\" O" --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, role, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			n, err := opts.normalizer(opts.logger(cmd))
			if err != nil {
				return err
			}

			r := n.Normalize(domain.MeasurementField{Category: category, Role: role, RawText: args[1]})
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			printConversion(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printConversion(w io.Writer, r domain.ConversionResult) {
	value := r.Formatted
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(w, "%-12s %s\n", "category:", domain.Label(r.Category, r.Role))
	fmt.Fprintf(w, "%-12s %s\n", "value:", value)
	fmt.Fprintf(w, "%-12s %s\n", "outcome:", r.Outcome)
	fmt.Fprintf(w, "%-12s %.2f\n", "confidence:", r.Confidence)
	fmt.Fprintf(w, "%-12s %s\n", "provenance:", r.Provenance)
}
