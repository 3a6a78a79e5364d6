package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter-agent/internal/cache"
	"github.com/jonathan/cover-letter-agent/internal/config"
	"github.com/jonathan/cover-letter-agent/internal/db"
	"github.com/jonathan/cover-letter-agent/internal/fetch"
	"github.com/jonathan/cover-letter-agent/internal/ingestion"
	"github.com/jonathan/cover-letter-agent/internal/llm"
	"github.com/jonathan/cover-letter-agent/internal/pipeline"
)

// Input flags shared by the generation subcommands.
var (
	resumePath string
	jobPath    string
	jobURL     string
	outPath    string
	pin        int
)

func addResumeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to résumé text or markdown file")
	cmd.Flags().IntVar(&pin, "pin", 0, "Store the extracted record in the résumé cache under this PIN")
}

func addJobFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&jobPath, "job", "j", "", "Path to job description text file (mutually exclusive with --job-url)")
	cmd.Flags().StringVar(&jobURL, "job-url", "", "URL to fetch the job description from (mutually exclusive with --job)")
}

func addOutFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringVarP(&outPath, "out", "o", "", usage)
}

// resolveConfig layers the config file, explicitly set flags and the environment,
// in increasing order of precedence for flags, then validates the result and
// installs the default logger.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		fileCfg = *loaded
	}

	flags := cmd.Flags()
	var flagCfg config.Config
	fromFlag := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	fromFlag("resume", &flagCfg.Resume, resumePath)
	fromFlag("job", &flagCfg.Job, jobPath)
	fromFlag("job-url", &flagCfg.JobURL, jobURL)
	fromFlag("out", &flagCfg.Out, outPath)
	fromFlag("provider", &flagCfg.Provider, provider)
	fromFlag("model", &flagCfg.Model, model)
	fromFlag("db-url", &flagCfg.DatabaseURL, databaseURL)
	fromFlag("redis-url", &flagCfg.RedisURL, redisURL)
	if flags.Changed("pin") {
		p := pin
		flagCfg.PIN = &p
	}
	if flags.Changed("port") {
		flagCfg.Port = servePort
	}

	cfg := flagCfg.MergeWithDefaults(fileCfg)
	cfg.Verbose = fileCfg.Verbose
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	// A job file flag replaces a job URL from the config file and vice versa.
	if flags.Changed("job") && !flags.Changed("job-url") {
		cfg.JobURL = ""
	}
	if flags.Changed("job-url") && !flags.Changed("job") {
		cfg.Job = ""
	}

	cfg.ApplyEnv()
	if flags.Changed("api-key") {
		if llm.Provider(cfg.Provider) == llm.ProviderOpenAI {
			cfg.OpenAIAPIKey = apiKey
		} else {
			cfg.APIKey = apiKey
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setupLogger(cmd, cfg.Verbose)
	return &cfg, nil
}

// syncWriter serializes writes to one stream. During a package run the logger
// and the progress printer write from different goroutines.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// stderr is the command's error stream as installed by setupLogger. Everything
// written to stderr after config resolution goes through it.
var stderr io.Writer = os.Stderr

// setupLogger installs a text handler on stderr. One-shot commands log warnings
// only, serve logs requests at info, and verbose lowers either to debug.
func setupLogger(cmd *cobra.Command, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if cmd.Name() == "serve" {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}
	stderr = &syncWriter{w: cmd.ErrOrStderr()}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// runtime owns the service and the connections it was built on.
type runtime struct {
	service *pipeline.Service
	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// newRuntime connects the model gateway and, when configured, the Redis mirror
// and the package history database.
func newRuntime(ctx context.Context, cfg *config.Config, opts ...pipeline.Option) (*runtime, error) {
	logger := slog.Default()
	rt := &runtime{}

	gateway, err := llm.NewGateway(ctx, cfg.LLMConfig(), cfg.ModelAPIKey(), llm.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create model gateway: %w", err)
	}
	rt.closers = append(rt.closers, func() { _ = llm.Close(gateway) })

	cacheOpts := []cache.Option{cache.WithLogger(logger)}
	if cfg.RedisURL != "" {
		mirror, err := cache.NewRedisMirror(ctx, cfg.RedisURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rt.closers = append(rt.closers, func() { _ = mirror.Close() })
		cacheOpts = append(cacheOpts, cache.WithMirror(mirror))
	}

	serviceOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithCache(cache.New(cacheOpts...)),
	}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		rt.closers = append(rt.closers, database.Close)
		serviceOpts = append(serviceOpts, pipeline.WithStore(database))
	}

	rt.service = pipeline.New(gateway, append(serviceOpts, opts...)...)
	return rt, nil
}

func readResume(cfg *config.Config) (string, error) {
	if cfg.Resume == "" {
		return "", errors.New("--resume is required")
	}
	text, err := ingestion.LoadTextFile(cfg.Resume)
	if err != nil {
		return "", fmt.Errorf("failed to load résumé: %w", err)
	}
	return text, nil
}

// readJobDescription loads the job description from a file or fetches it from a URL.
func readJobDescription(ctx context.Context, cfg *config.Config, opts *fetch.Options) (string, error) {
	switch {
	case cfg.Job != "":
		text, err := ingestion.LoadTextFile(cfg.Job)
		if err != nil {
			return "", fmt.Errorf("failed to load job description: %w", err)
		}
		return text, nil
	case cfg.JobURL != "":
		text, err := fetch.JobDescription(ctx, cfg.JobURL, opts)
		if err != nil {
			return "", fmt.Errorf("failed to fetch job description: %w", err)
		}
		return text, nil
	default:
		return "", errors.New("either --job or --job-url must be provided")
	}
}
