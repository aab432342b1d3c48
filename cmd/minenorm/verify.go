package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/mine-data-normalizer/internal/domain"
)

// confidenceTolerance absorbs the two-decimal rounding of scores.
const confidenceTolerance = 0.005

// fixtureFile is the regression fixture document.
type fixtureFile struct {
	Measurements []measurementFixture `yaml:"measurements"`
	Records      []recordFixture      `yaml:"records"`
}

type measurementFixture struct {
	Category   string   `yaml:"category"`
	Raw        string   `yaml:"raw"`
	Outcome    string   `yaml:"outcome"`
	Formatted  string   `yaml:"formatted,omitempty"`
	Confidence *float64 `yaml:"confidence,omitempty"`
	// Provenance must appear as a substring of the result's provenance.
	Provenance string `yaml:"provenance,omitempty"`
}

type recordFixture struct {
	Name   string            `yaml:"name"`
	Fields map[string]string `yaml:"fields"`
	Expect map[string]string `yaml:"expect"`
	Absent []string          `yaml:"absent,omitempty"`
}

// phase tracks pass/fail for a verification phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var errVerificationFailed = errors.New("verification failed")

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <fixtures.yaml>",
		Short: "Check conversions against regression fixtures",
		Long: `Run the normalizer over a YAML fixture file and report each phase:

  measurements  single-field conversions (outcome, value, confidence, provenance)
  records       whole-record normalization (expected and absent columns)
  invariants    confidence bounds, no-match values and area idempotence`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := opts.normalizer(opts.logger(cmd))
			if err != nil {
				return err
			}
			fixtures, err := loadFixtures(args[0])
			if err != nil {
				return err
			}
			return runVerify(cmd.OutOrStdout(), n, fixtures)
		},
	}
}

func loadFixtures(path string) (fixtureFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fixtureFile{}, fmt.Errorf("read fixtures: %w", err)
	}
	var f fixtureFile
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return fixtureFile{}, fmt.Errorf("decode fixtures %s: %w", path, err)
	}
	if len(f.Measurements) == 0 && len(f.Records) == 0 {
		return fixtureFile{}, fmt.Errorf("fixtures %s: no measurements or records", path)
	}
	return f, nil
}

func runVerify(w io.Writer, n *domain.Normalizer, f fixtureFile) error {
	fmt.Fprintln(w, "=== Mine Measurement Verification ===")
	fmt.Fprintln(w)

	phases := []*phase{
		verifyMeasurements(n, f.Measurements),
		verifyRecords(n, f.Records),
		verifyInvariants(n, f.Measurements),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-32s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Fixtures: %d measurements, %d records\n", len(f.Measurements), len(f.Records))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll fixtures passed.")
		return nil
	}
	fmt.Fprintln(w, "\nVerification FAILED.")
	return errVerificationFailed
}

func verifyMeasurements(n *domain.Normalizer, fixtures []measurementFixture) *phase {
	p := &phase{name: "Measurement fixtures"}
	for _, fx := range fixtures {
		category, role, err := domain.ParseCategory(fx.Category)
		if err != nil {
			p.errorf("%q: %v", fx.Raw, err)
			continue
		}
		r := n.Normalize(domain.MeasurementField{Category: category, Role: role, RawText: fx.Raw})

		if string(r.Outcome) != fx.Outcome {
			p.errorf("%s %q: outcome = %s, want %s", fx.Category, fx.Raw, r.Outcome, fx.Outcome)
		}
		if fx.Formatted != "" && r.Formatted != fx.Formatted {
			p.errorf("%s %q: formatted = %q, want %q", fx.Category, fx.Raw, r.Formatted, fx.Formatted)
		}
		if fx.Confidence != nil && math.Abs(r.Confidence-*fx.Confidence) > confidenceTolerance {
			p.errorf("%s %q: confidence = %.2f, want %.2f", fx.Category, fx.Raw, r.Confidence, *fx.Confidence)
		}
		if fx.Provenance != "" && !strings.Contains(r.Provenance, fx.Provenance) {
			p.errorf("%s %q: provenance %q does not contain %q", fx.Category, fx.Raw, r.Provenance, fx.Provenance)
		}
	}
	return p
}

func verifyRecords(n *domain.Normalizer, fixtures []recordFixture) *phase {
	p := &phase{name: "Record fixtures"}
	for _, fx := range fixtures {
		res := n.NormalizeRecord(fx.Fields)
		for column, want := range fx.Expect {
			got, ok := res.Fields[column]
			switch {
			case !ok:
				p.errorf("%s: column %q missing", fx.Name, column)
			case got != want:
				p.errorf("%s: %s = %q, want %q", fx.Name, column, got, want)
			}
		}
		for _, column := range fx.Absent {
			if _, ok := res.Fields[column]; ok {
				p.errorf("%s: column %q should be absent", fx.Name, column)
			}
		}
	}
	return p
}

func verifyInvariants(n *domain.Normalizer, fixtures []measurementFixture) *phase {
	p := &phase{name: "Conversion invariants"}
	for _, fx := range fixtures {
		category, role, err := domain.ParseCategory(fx.Category)
		if err != nil {
			continue
		}
		r := n.Normalize(domain.MeasurementField{Category: category, Role: role, RawText: fx.Raw})

		if r.Confidence < 0 || r.Confidence > 1 {
			p.errorf("%q: confidence %.2f outside [0, 1]", fx.Raw, r.Confidence)
		}
		if r.Outcome == domain.OutcomeNoMatch && (r.Value != 0 || r.Confidence != 0) {
			p.errorf("%q: no_match carries value %g confidence %.2f", fx.Raw, r.Value, r.Confidence)
		}
		if r.HasValue() != (r.Formatted != "") {
			p.errorf("%q: %s with formatted value %q", fx.Raw, r.Outcome, r.Formatted)
		}
		if category == domain.CategoryArea && r.HasValue() {
			again := n.Normalize(domain.MeasurementField{Category: category, Role: role, RawText: r.Formatted})
			if again.Formatted != r.Formatted {
				p.errorf("%q: renormalizing %q gives %q", fx.Raw, r.Formatted, again.Formatted)
			}
		}
	}
	return p
}
