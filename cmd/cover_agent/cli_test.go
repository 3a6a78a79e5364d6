package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cover-letter-agent/internal/config"
)

const (
	resumeFixture = "Jane Doe\njane@example.com\n\nJava developer with 5 years of Spring Boot experience.\n"
	jobFixture    = "Senior Java Engineer\n\nWe need Spring Boot and SQL experience.\n"
	postingHTML   = `<html><body><nav>Jobs home</nav>
		<div id="content"><h1>Senior Java Engineer</h1><p>We need Spring Boot and SQL experience.</p></div>
		<footer>Apply now</footer></body></html>`
)

// isolateEnv keeps credentials and storage URLs from the developer's shell or .env
// out of the run, so every command uses the unconfigured gateway and no storage.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GEMINI_API_KEY", "OPENAI_API_KEY", "LLM_PROVIDER", "LLM_MODEL",
		"OPENAI_BASE_URL", "DATABASE_URL", "REDIS_URL", "PORT",
	} {
		t.Setenv(key, "")
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	isolateEnv(t)
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestExtractCommand_UnconfiguredPrintsEmptyRecord(t *testing.T) {
	resume := writeFixture(t, "resume.txt", resumeFixture)

	stdout, _, err := execute(t, "extract", "--resume", resume)

	require.NoError(t, err)
	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &record), stdout)
	assert.Nil(t, record["fullName"])
	assert.Equal(t, []any{}, record["skills"])
	assert.Equal(t, []any{}, record["workExperience"])
}

func TestExtractCommand_WritesOutFile(t *testing.T) {
	resume := writeFixture(t, "resume.md", resumeFixture)
	out := filepath.Join(t.TempDir(), "nested", "record.json")

	stdout, _, err := execute(t, "extract", "--resume", resume, "--out", out, "--pin", "12")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Record written to "+out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestCommands_InputErrors(t *testing.T) {
	resume := writeFixture(t, "resume.txt", resumeFixture)
	job := writeFixture(t, "job.txt", jobFixture)
	pdf := writeFixture(t, "resume.pdf", "%PDF-1.4")
	badConfig := writeFixture(t, "config.json", `{"provider":"claude"}`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing resume", args: []string{"extract"}, wantErr: "--resume is required"},
		{name: "unsupported format", args: []string{"extract", "--resume", pdf}, wantErr: "unsupported file format"},
		{name: "missing resume file", args: []string{"extract", "--resume", filepath.Join(t.TempDir(), "nope.txt")}, wantErr: "resume file not found"},
		{name: "missing job", args: []string{"match", "--resume", resume}, wantErr: "either --job or --job-url must be provided"},
		{name: "job and url", args: []string{"match", "--resume", resume, "--job", job, "--job-url", "https://example.com"}, wantErr: "mutually exclusive"},
		{name: "negative pin", args: []string{"package", "--resume", resume, "--job", job, "--pin", "-1"}, wantErr: "'pin' must be non-negative"},
		{name: "unknown provider", args: []string{"cover-letter", "--config", badConfig, "--resume", resume, "--job", job}, wantErr: "unknown provider"},
		{name: "bad job url", args: []string{"cover-letter", "--resume", resume, "--job-url", "ftp://example.com/job"}, wantErr: "failed to fetch job description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMatchCommand_UnconfiguredReportsNoPoints(t *testing.T) {
	resume := writeFixture(t, "resume.txt", resumeFixture)
	job := writeFixture(t, "job.txt", jobFixture)

	stdout, stderr, err := execute(t, "match", "--resume", resume, "--job", job)

	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "No match points found")
}

func TestCoverLetterCommand_FetchesJobURL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(postingHTML))
	}))
	defer srv.Close()

	resume := writeFixture(t, "resume.txt", resumeFixture)
	out := filepath.Join(t.TempDir(), "letter.txt")

	stdout, stderr, err := execute(t, "cover-letter", "--resume", resume, "--job-url", srv.URL, "--out", out)

	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
	assert.Contains(t, stderr, "No model configured")
	assert.Contains(t, stdout, "Letter written to "+out)
	_, err = os.Stat(out)
	assert.NoError(t, err)
}

func TestPackageCommand_PrintsAllSections(t *testing.T) {
	resume := writeFixture(t, "resume.txt", resumeFixture)
	job := writeFixture(t, "job.txt", jobFixture)

	stdout, stderr, err := execute(t, "package", "--resume", resume, "--job", job, "--pin", "4", "--verbose")

	require.NoError(t, err)
	assert.Contains(t, stdout, "EXTRACTED RÉSUMÉ")
	assert.Contains(t, stdout, "(no fields extracted)")
	assert.Contains(t, stdout, "(no match points)")
	assert.Contains(t, stdout, "(no letter generated)")
	assert.NotContains(t, stdout, "Package stored as")
	assert.Contains(t, stderr, "[extract]")
	assert.Contains(t, stderr, "[cover_letter]")
}

func TestResolveConfig_Precedence(t *testing.T) {
	isolateEnv(t)
	resetFlags(rootCmd)
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("PORT", "9090")

	resume := writeFixture(t, "resume.txt", resumeFixture)
	job := writeFixture(t, "job.txt", jobFixture)
	cfgFile := writeFixture(t, "config.json", `{"resume":"`+resume+`","job_url":"https://example.com/job","model":"file-model","out":"file.txt"}`)

	cmd := coverLetterCmd
	require.NoError(t, cmd.ParseFlags([]string{"--config", cfgFile, "--job", job, "--out", "flag.txt"}))
	t.Cleanup(func() { resetFlags(rootCmd) })

	cfg, err := resolveConfig(cmd)

	require.NoError(t, err)
	assert.Equal(t, resume, cfg.Resume)
	assert.Equal(t, job, cfg.Job)
	assert.Empty(t, cfg.JobURL)
	assert.Equal(t, "flag.txt", cfg.Out)
	assert.Equal(t, "file-model", cfg.Model)
	assert.Equal(t, "env-key", cfg.ModelAPIKey())
	assert.Equal(t, 9090, cfg.ListenPort())
}

func TestReadJobDescription(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(postingHTML))
	}))
	defer srv.Close()
	job := writeFixture(t, "job.md", jobFixture)

	fromFile, err := readJobDescription(context.Background(), &config.Config{Job: job}, nil)
	require.NoError(t, err)
	assert.Contains(t, fromFile, "Senior Java Engineer")

	fromURL, err := readJobDescription(context.Background(), &config.Config{JobURL: srv.URL}, nil)
	require.NoError(t, err)
	assert.Contains(t, fromURL, "Spring Boot and SQL")
	assert.NotContains(t, fromURL, "Apply now")
}

func TestSyncWriter_SerializesConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	w := &syncWriter{w: &buf}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, strings.Count(buf.String(), "line\n"))
}
