// Package main provides the entry point for the cover letter agent CLI and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cover_agent",
	Short: "Cover letter agent CLI and HTTP API server",
	Long: `Cover letter agent extracts structured records from résumés, finds the résumé points
that best match a job description and drafts a tailored cover letter.

Configuration can be loaded from a JSON file using --config. Command-line flags override
config file values, and the environment fills anything still unset.`,
	SilenceUsage: true,
}

var (
	configPath  string
	verbose     bool
	provider    string
	apiKey      string
	model       string
	databaseURL string
	redisURL    string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	flags.StringVar(&provider, "provider", "", "Model provider: gemini or openai (defaults to LLM_PROVIDER, then gemini)")
	flags.StringVar(&apiKey, "api-key", "", "API key for the selected provider (defaults to GEMINI_API_KEY or OPENAI_API_KEY)")
	flags.StringVar(&model, "model", "", "Override the provider's standard model")
	flags.StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL for package history (defaults to DATABASE_URL)")
	flags.StringVar(&redisURL, "redis-url", "", "Redis URL for the résumé cache mirror (defaults to REDIS_URL)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
