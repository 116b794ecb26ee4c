// Command assess runs site risk assessments offline, without Kafka. It reads a
// JSON array of site requests and writes a JSON array of assessments in the
// same order, using the service's environment configuration for hazard
// overrides and integration settings.
//
// Usage:
//
//	assess --in sites.json --out assessments.json --assessed-at 2026-01-01T00:00:00Z --pretty
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-risk-etl/internal/config"
	"github.com/couchcryptid/climate-risk-etl/internal/domain"
	"github.com/couchcryptid/climate-risk-etl/internal/observability"
	"github.com/couchcryptid/climate-risk-etl/internal/pipeline"
)

var rootCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess climate risk for a file of sites",
	Long: `Reads site requests (a JSON array) and writes one assessment per site.

Examples:
  # Assess sites from a file and print to stdout
  assess --in sites.json

  # Reproducible output with a fixed assessment timestamp
  assess --in sites.json --out out.json --assessed-at 2026-01-01T00:00:00Z`,
	SilenceUsage: true,
	RunE:         runAssess,
}

func init() {
	f := rootCmd.Flags()
	f.String("in", "-", "input file of site requests, - for stdin")
	f.String("out", "-", "output file for assessments, - for stdout")
	f.String("assessed-at", "", "fixed RFC3339 timestamp stamped on every assessment")
	f.Bool("pretty", false, "indent the JSON output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAssess(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLoggerTo(cmd.ErrOrStderr(), cfg)

	f := cmd.Flags()
	inPath, _ := f.GetString("in")
	outPath, _ := f.GetString("out")
	assessedAt, _ := f.GetString("assessed-at")
	pretty, _ := f.GetBool("pretty")

	if assessedAt != "" {
		at, err := time.Parse(time.RFC3339, assessedAt)
		if err != nil {
			return fmt.Errorf("invalid --assessed-at: %w", err)
		}
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	assessor, err := pipeline.BuildAssessor(cfg, logger)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(inPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(outPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	n, err := assessAll(cmd.Context(), in, out, assessor, pretty)
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	logger.Info("assessment complete", "sites", n)
	return nil
}

// assessAll decodes site requests from r, assesses each and encodes the
// results to w. It returns the number of sites assessed.
func assessAll(ctx context.Context, r io.Reader, w io.Writer, assessor *domain.Assessor, pretty bool) (int, error) {
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return 0, fmt.Errorf("decode site requests: %w", err)
	}

	assessments := make([]domain.SiteAssessment, 0, len(items))
	for i, item := range items {
		req, err := domain.ParseSiteRequest(domain.RawEvent{Value: item})
		if err != nil {
			return 0, fmt.Errorf("site request %d: %w", i, err)
		}
		assessments = append(assessments, assessor.Assess(ctx, req))
	}

	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(assessments); err != nil {
		return 0, fmt.Errorf("encode assessments: %w", err)
	}
	return len(assessments), nil
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
