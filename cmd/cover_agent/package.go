package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/observability"
	"github.com/jonathan/cover-letter-agent/internal/pipeline"
	"github.com/jonathan/cover-letter-agent/internal/types"
)

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Extract, match and draft a letter in one run",
	Long: `Runs extraction, matching and the cover letter chain concurrently and prints all
three results. With --pin the record is cached; with --db-url (or DATABASE_URL) the
run is stored in package history.`,
	RunE: runPackage,
}

func init() {
	addResumeFlags(packageCmd)
	addJobFlags(packageCmd)
	addOutFlag(packageCmd, "Also write the letter to this file")
	rootCmd.AddCommand(packageCmd)
}

func runPackage(cmd *cobra.Command, _ []string) error {
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

	printer := observability.NewPrinter(cmd.OutOrStdout())
	var opts []pipeline.Option
	if cfg.Verbose {
		progress := observability.NewPrinter(stderr)
		opts = append(opts, pipeline.WithProgress(func(event pipeline.ProgressEvent) {
			progress.PrintStep(event.Step, event.Message)
		}))
	}

	rt, err := newRuntime(ctx, cfg, opts...)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.service.Package(ctx, types.GenerationRequest{
		ResumeText:     resume,
		JobDescription: job,
		PIN:            cfg.PIN,
	})
	if err != nil {
		return err
	}

	printer.PrintResumeRecord(result.Record)
	printer.PrintMatchPoints(result.MatchPoints)
	printer.PrintLetter(result.Analysis, result.Letter)
	if result.ID != nil {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Package stored as %s\n", result.ID)
	}

	if cfg.Out == "" {
		return nil
	}
	return writeLetter(cmd, cfg.Out, result.Letter)
}
