package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/observability"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter",
	Short: "Draft a cover letter for a job",
	Long: `Runs the two-stage letter chain: the model first picks the candidate's top three
qualifications for the job, then drafts the letter from that analysis.

The letter is printed to stdout, or written as plain text to --out.`,
	RunE: runCoverLetter,
}

func init() {
	addResumeFlags(coverLetterCmd)
	addJobFlags(coverLetterCmd)
	addOutFlag(coverLetterCmd, "Write the letter to this file instead of stdout")
	rootCmd.AddCommand(coverLetterCmd)
}

func runCoverLetter(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	resume, err := readResume(cfg)
	if err != nil {
		return err
	}
	job, err := readJobDescription(ctx, cfg, nil)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.service.CoverLetter(ctx, types.GenerationRequest{ResumeText: resume, JobDescription: job})
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(stderr).PrintLetter(result.Analysis, result.Letter)
	}
	if result.DraftSkipped {
		_, _ = fmt.Fprintln(stderr, "No model configured; no letter generated")
	}
	return writeLetter(cmd, cfg.Out, result.Letter)
}

// writeLetter writes the letter to path, or to stdout when path is empty.
func writeLetter(cmd *cobra.Command, path, letter string) error {
	if path == "" {
		if letter != "" {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), letter)
		}
		return nil
	}
	if err := ingestion.WriteText(path, letter); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Letter written to %s\n", path)
	return nil
}
