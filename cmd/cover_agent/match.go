package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/types"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "List the résumé points most relevant to a job",
	Long:  "Asks the model for the five résumé qualifications that best match the job description and prints them one per line.",
	RunE:  runMatch,
}

func init() {
	addResumeFlags(matchCmd)
	addJobFlags(matchCmd)
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, _ []string) error {
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

	points, err := rt.service.Match(ctx, types.GenerationRequest{ResumeText: resume, JobDescription: job})
	if err != nil {
		return err
	}
	if len(points) == 0 {
		_, _ = fmt.Fprintln(stderr, "No match points found")
		return nil
	}
	for i, point := range points {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, point)
	}
	return nil
}
