package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/observability"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a structured record from a résumé",
	Long: `Scans a résumé into a structured record (name, contact details, skills, education,
certifications and work history) and prints it as JSON, or writes it to --out.

Without model credentials the record is empty rather than an error.`,
	RunE: runExtract,
}

func init() {
	addResumeFlags(extractCmd)
	addOutFlag(extractCmd, "Write the record JSON to this file instead of stdout")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	resume, err := readResume(cfg)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	record, err := rt.service.Extract(ctx, types.ExtractRequest{ResumeText: resume, PIN: cfg.PIN})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(stderr).PrintResumeRecord(record)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if cfg.Out != "" {
		if err := ingestion.WriteText(cfg.Out, string(data)); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Record written to %s\n", cfg.Out)
		return nil
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
