package runlog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Store wraps the SQL database connection holding per-domain run state. The
// state is read at startup to resume each domain's analysis window and
// upserted immediately after a domain completes, so a crash mid-run never
// loses finished domains.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// DomainRun is one domain's persisted run state.
type DomainRun struct {
	Domain string
	// LastChecked is the YYYYMMDD upper bound of the last completed analysis.
	LastChecked string
	// LastRun is when the domain last completed.
	LastRun time.Time
	// EntryCount is the observation count found in the last completed run.
	EntryCount int
}

// NewStore initializes the run-state database and ensures the schema is set up.
func NewStore(dataSourceName string, logger zerolog.Logger) (*Store, error) {
	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create runlog database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}

	store := &Store{
		db:     dbInstance,
		logger: logger.With().Str("component", "RunlogStore").Logger(),
	}

	if err := store.initSchema(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize runlog schema: %w", err)
	}

	store.logger.Info().Str("db_path", dataSourceName).Msg("Runlog database initialized")
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS domain_runs (
		domain TEXT PRIMARY KEY,
		last_checked TEXT NOT NULL,
		last_run DATETIME NOT NULL,
		entry_count INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return err
	}
	return nil
}

// Get returns the run state for a domain, or nil when none exists. Absence
// means "analyze from the default start date".
func (s *Store) Get(domain string) (*DomainRun, error) {
	query := `SELECT domain, last_checked, last_run, entry_count FROM domain_runs WHERE domain = ?`
	row := s.db.QueryRow(query, domain)

	var run DomainRun
	err := row.Scan(&run.Domain, &run.LastChecked, &run.LastRun, &run.EntryCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run state for %s: %w", domain, err)
	}
	return &run, nil
}

// Put upserts the run state for a domain.
func (s *Store) Put(run DomainRun) error {
	query := `
	INSERT INTO domain_runs (domain, last_checked, last_run, entry_count)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(domain) DO UPDATE SET
		last_checked = excluded.last_checked,
		last_run = excluded.last_run,
		entry_count = excluded.entry_count
	`
	if _, err := s.db.Exec(query, run.Domain, run.LastChecked, run.LastRun, run.EntryCount); err != nil {
		return fmt.Errorf("failed to persist run state for %s: %w", run.Domain, err)
	}
	s.logger.Debug().Str("domain", run.Domain).Str("last_checked", run.LastChecked).Msg("Persisted domain run state")
	return nil
}
