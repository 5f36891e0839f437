package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"swimtrack/internal/adapters/report"
	"swimtrack/internal/application/projections"
	"swimtrack/internal/config"
)

// Report output formats.
const (
	formatPDF  = "pdf"
	formatJSON = "json"
	formatYAML = "yaml"
)

func newReportCmd(load func() (*config.Config, error)) *cobra.Command {
	var (
		competitionID string
		format        string
		out           string
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the results of a competition",
		Example: `  swimtrack report --competition 7f3c… --out results.pdf
  swimtrack report --competition 7f3c… --format yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatPDF && format != formatJSON && format != formatYAML {
				return fmt.Errorf("--format must be pdf, json or yaml, got %q", format)
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			be, err := openBackend(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer be.close()

			loc, _ := cfg.Location()
			rep, err := projections.QueryResultsReport(cmd.Context(), projections.ResultsReportQuery{CompetitionID: competitionID}, projections.StatsDeps{
				CompetitionStore: be.stores.CompetitionStore,
				TeamStore:        be.stores.TeamStore,
				SwimmerStore:     be.stores.SwimmerStore,
				SessionStore:     be.stores.SwimSessionStore,
				LapStore:         be.stores.LapCountStore,
				Location:         loc,
				Now:              time.Now,
			})
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := writeReport(w, rep, format); err != nil {
				return err
			}
			if out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&competitionID, "competition", "", "competition ID (required)")
	cmd.Flags().StringVarP(&format, "format", "f", formatPDF, "output format: pdf, json or yaml")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("competition")
	return cmd
}

// writeReport encodes rep in the requested format.
func writeReport(w io.Writer, rep report.ResultsReport, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	default:
		return report.RenderPDF(rep, w)
	}
}
