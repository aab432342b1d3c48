package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/mine-data-normalizer/internal/adapter/audit"
	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

func newRecordCmd(opts *rootOptions) *cobra.Command {
	var (
		asJSON  bool
		auditDB string
	)
	cmd := &cobra.Command{
		Use:   "record <file.json>",
		Short: "Normalize flat mine records from a JSON file",
		Long: `Normalize the production, area and coordinate columns of mine records.

The file holds one flat JSON object or an array of them, keyed by column name
("Name der Mine", "Fördermenge", "Koordinaten", ...).

With --audit-db every field conversion is also written to a SQLite database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			n, err := opts.normalizer(logger)
			if err != nil {
				return err
			}
			records, err := readRecords(args[0], n)
			if err != nil {
				return err
			}

			if auditDB != "" {
				store, err := audit.Open(cmd.Context(), auditDB)
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.Record(cmd.Context(), records); err != nil {
					return err
				}
				counts, err := store.OutcomeCounts(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "audit run %s: %s\n", store.RunID(), formatCounts(counts))
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			for i, rec := range records {
				if i > 0 {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				printRecord(cmd.OutOrStdout(), rec)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the normalized records as JSON")
	cmd.Flags().StringVar(&auditDB, "audit-db", "", "SQLite database to record conversions in")
	return cmd
}

// readRecords decodes the file and normalizes each record.
func readRecords(path string, n *domain.Normalizer) ([]domain.MineRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	items := []json.RawMessage{data}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	records := make([]domain.MineRecord, 0, len(items))
	for i, item := range items {
		rec, err := domain.ParseRawEvent(domain.RawEvent{Value: item})
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		records = append(records, domain.EnrichMineRecord(rec, n))
	}
	return records, nil
}

func printRecord(w io.Writer, rec domain.MineRecord) {
	fmt.Fprintf(w, "%s (%s)\n", rec.MineName, rec.ID)
	for _, c := range rec.Conversions {
		value := c.Result.Formatted
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "  %-32s %s → %s  [%s %.2f]\n", c.Field, c.Raw, value, c.Result.Outcome, c.Result.Confidence)
	}
	if rec.Location != nil {
		fmt.Fprintf(w, "  %-32s %s (%.2f)\n", "location", rec.Location.Combined(), rec.LocationConfidence)
	}
}

func formatCounts(counts map[domain.Outcome]int) string {
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, string(o))
	}
	sort.Strings(outcomes)

	var b bytes.Buffer
	total := 0
	for _, o := range outcomes {
		n := counts[domain.Outcome(o)]
		total += n
		fmt.Fprintf(&b, ", %s=%d", o, n)
	}
	return fmt.Sprintf("%d conversions recorded%s", total, b.String())
}
