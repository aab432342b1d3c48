package main

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/rulefile"
	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
	"github.com/couchcryptid/mine-data-normalizer/internal/observability"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	rulesFile string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "minenorm",
		Short: "Normalize mine production, area and coordinate values",
		Long: `minenorm converts the measurement fields of mine records to canonical units:
production rates to t/Jahr, areas to km², and coordinates to decimal degrees.
Every result carries a confidence score and a provenance string.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.rulesFile, "rules", "", "YAML rule overlay with extra unit synonyms")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newConvertCmd(opts),
		newRecordCmd(opts),
		newVerifyCmd(opts),
		newMCPCmd(opts),
	)
	return cmd
}

// logger writes text logs to the command's error stream so stdout stays
// reserved for results.
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return observability.NewLoggerTo(cmd.ErrOrStderr(), o.logLevel, "text")
}

// normalizer builds a Normalizer from the built-in rules plus the --rules overlay.
func (o *rootOptions) normalizer(logger *slog.Logger) (*domain.Normalizer, error) {
	if o.rulesFile == "" {
		return domain.NewNormalizer(nil), nil
	}
	rules, err := rulefile.Load(o.rulesFile, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("rule overlay loaded", "path", o.rulesFile)
	return domain.NewNormalizer(rules), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
