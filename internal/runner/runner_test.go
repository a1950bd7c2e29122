package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleister1102/adstrace/internal/common"
	"github.com/aleister1102/adstrace/internal/config"
	"github.com/aleister1102/adstrace/internal/models"
	"github.com/aleister1102/adstrace/internal/runlog"
)

type fakeAnalyzer struct {
	mu      sync.Mutex
	windows map[string][2]string
	failOn  map[string]error
	panicOn map[string]bool
}

func (f *fakeAnalyzer) AnalyzeDomain(ctx context.Context, domain, fromTS, toTS string) (*models.DomainResult, error) {
	f.mu.Lock()
	if f.windows == nil {
		f.windows = make(map[string][2]string)
	}
	f.windows[domain] = [2]string{fromTS, toTS}
	f.mu.Unlock()

	if f.panicOn[domain] {
		panic("analysis blew up")
	}
	if err := f.failOn[domain]; err != nil {
		return nil, err
	}
	return &models.DomainResult{
		Domain:         domain,
		From:           fromTS,
		To:             toTS,
		SnapshotsCount: 3,
	}, nil
}

type fakeRunStore struct {
	mu   sync.Mutex
	runs map[string]runlog.DomainRun
}

func (f *fakeRunStore) Get(domain string) (*runlog.DomainRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if run, ok := f.runs[domain]; ok {
		return &run, nil
	}
	return nil, nil
}

func (f *fakeRunStore) Put(run runlog.DomainRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.runs == nil {
		f.runs = make(map[string]runlog.DomainRun)
	}
	f.runs[run.Domain] = run
	return nil
}

type fakeReporter struct {
	results []models.DomainResult
}

func (f *fakeReporter) GenerateReport(results []models.DomainResult, focusProvider string, outputPath string) (string, error) {
	f.results = results
	return "/tmp/report.html", nil
}

func writeDomainsFile(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte(lines), 0644))
	return path
}

func testGlobalConfig() *config.GlobalConfig {
	cfg := config.NewDefaultGlobalConfig()
	cfg.RunnerConfig.EndDate = "20240601"
	cfg.ResourceLimiterConfig.Enabled = false
	return cfg
}

func TestBatchRunner_Run(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	store := &fakeRunStore{}
	reporter := &fakeReporter{}

	runner := NewBatchRunner(testGlobalConfig(), analyzer, store, reporter, nil, zerolog.Nop())

	domainsFile := writeDomainsFile(t, "# fleet\nexample.com\nother.example\n\n")
	path, err := runner.Run(context.Background(), domainsFile, "out.html")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/report.html", path)

	require.Len(t, reporter.results, 2)
	assert.Equal(t, "example.com", reporter.results[0].Domain)
	assert.Equal(t, "other.example", reporter.results[1].Domain)

	// Default window: configured start date to configured end date.
	assert.Equal(t, [2]string{config.DefaultStartDate, "20240601"}, analyzer.windows["example.com"])

	// Run state persisted with the completed upper bound.
	run, err := store.Get("example.com")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "20240601", run.LastChecked)
	assert.Equal(t, 3, run.EntryCount)
}

func TestBatchRunner_ResumesFromRunState(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	store := &fakeRunStore{runs: map[string]runlog.DomainRun{
		"example.com": {Domain: "example.com", LastChecked: "20230501", LastRun: time.Now()},
	}}

	runner := NewBatchRunner(testGlobalConfig(), analyzer, store, &fakeReporter{}, nil, zerolog.Nop())

	domainsFile := writeDomainsFile(t, "example.com\n")
	_, err := runner.Run(context.Background(), domainsFile, "")
	require.NoError(t, err)

	assert.Equal(t, [2]string{"20230501", "20240601"}, analyzer.windows["example.com"])
}

func TestBatchRunner_FailingDomainDoesNotAbortBatch(t *testing.T) {
	analyzer := &fakeAnalyzer{failOn: map[string]error{"broken.example": errors.New("index exploded")}}
	reporter := &fakeReporter{}

	runner := NewBatchRunner(testGlobalConfig(), analyzer, &fakeRunStore{}, reporter, nil, zerolog.Nop())

	domainsFile := writeDomainsFile(t, "broken.example\nhealthy.example\n")
	_, err := runner.Run(context.Background(), domainsFile, "")
	require.NoError(t, err)

	require.Len(t, reporter.results, 1)
	assert.Equal(t, "healthy.example", reporter.results[0].Domain)
}

func TestBatchRunner_PanickingDomainIsContained(t *testing.T) {
	analyzer := &fakeAnalyzer{panicOn: map[string]bool{"cursed.example": true}}
	reporter := &fakeReporter{}

	runner := NewBatchRunner(testGlobalConfig(), analyzer, &fakeRunStore{}, reporter, nil, zerolog.Nop())

	domainsFile := writeDomainsFile(t, "cursed.example\nfine.example\n")
	_, err := runner.Run(context.Background(), domainsFile, "")
	require.NoError(t, err)

	require.Len(t, reporter.results, 1)
	assert.Equal(t, "fine.example", reporter.results[0].Domain)
}

func TestBatchRunner_EmptyDomainList(t *testing.T) {
	runner := NewBatchRunner(testGlobalConfig(), &fakeAnalyzer{}, &fakeRunStore{}, &fakeReporter{}, nil, zerolog.Nop())

	domainsFile := writeDomainsFile(t, "# nothing but comments\n")
	_, err := runner.Run(context.Background(), domainsFile, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestBatchRunner_ContextCancellation(t *testing.T) {
	runner := NewBatchRunner(testGlobalConfig(), &fakeAnalyzer{}, &fakeRunStore{}, &fakeReporter{}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	domainsFile := writeDomainsFile(t, "example.com\n")
	_, err := runner.Run(ctx, domainsFile, "")
	assert.ErrorIs(t, err, context.Canceled)
}
