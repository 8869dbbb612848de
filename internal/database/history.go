package database

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
	"golang.org/x/net/publicsuffix"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/reconchain/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "reconchain.db"

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB provides SQLite-based storage for run summaries.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		apex TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		severity_filter TEXT,
		subdomains INTEGER NOT NULL DEFAULT 0,
		live_hosts INTEGER NOT NULL DEFAULT 0,
		vulnerabilities INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		run_dir TEXT NOT NULL,
		findings_digest TEXT,
		risk_summary TEXT,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
	CREATE INDEX IF NOT EXISTS idx_runs_apex ON runs(apex);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is one stored run.
type RunRecord struct {
	ID              string        `json:"id"`
	Target          string        `json:"target"`
	Apex            string        `json:"apex"`
	StartedAt       time.Time     `json:"started_at"`
	FinishedAt      time.Time     `json:"finished_at"`
	SeverityFilter  string        `json:"severity_filter"`
	Subdomains      int           `json:"subdomains"`
	LiveHosts       int           `json:"live_hosts"`
	Vulnerabilities int           `json:"vulnerabilities"`
	Outcome         model.Outcome `json:"outcome"`
	RunDir          string        `json:"run_dir"`
	FindingsDigest  string        `json:"findings_digest,omitempty"`

	// RiskSummary contains counts of findings by severity label.
	RiskSummary map[string]int `json:"risk_summary,omitempty"`
}

// SaveRun stores a finished run. The findings file is hashed when it exists.
func (h *HistoryDB) SaveRun(ctx context.Context, summary model.Summary) error {
	if summary.RunID == "" {
		return errors.New("run ID is required")
	}

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to serialize summary: %w", err)
	}

	digest, err := FindingsDigest(summary.Paths.Vulnerabilities)
	if err != nil {
		return err
	}

	riskJSON, err := json.Marshal(riskSummary(summary.Vulnerabilities))
	if err != nil {
		return fmt.Errorf("failed to serialize risk summary: %w", err)
	}

	query := `
	INSERT INTO runs (id, target, apex, started_at, finished_at, severity_filter,
		subdomains, live_hosts, vulnerabilities, outcome, run_dir, findings_digest,
		risk_summary, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = h.db.ExecContext(ctx, query,
		summary.RunID,
		summary.Target,
		ApexDomain(summary.Target),
		summary.StartedAt.UTC().Format(time.RFC3339),
		summary.FinishedAt.UTC().Format(time.RFC3339),
		summary.SeverityFilter,
		summary.Subdomains,
		summary.LiveHosts,
		summary.Vulnerabilities.Total,
		string(summary.Outcome),
		summary.Paths.RunDir,
		digest,
		string(riskJSON),
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

const selectRun = `
	SELECT id, target, apex, started_at, finished_at, severity_filter,
		subdomains, live_hosts, vulnerabilities, outcome, run_dir,
		findings_digest, risk_summary
	FROM runs
`

// ListTargets returns every target with at least one stored run.
func (h *HistoryDB) ListTargets(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT target FROM runs ORDER BY target`)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []string
	for rows.Next() {
		var target string
		if err := rows.Scan(&target); err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, target)
	}
	return targets, rows.Err()
}

// History returns the runs of target, newest first. A registrable domain
// also matches runs of its subdomains.
func (h *HistoryDB) History(ctx context.Context, target string) ([]RunRecord, error) {
	query := selectRun + `
	WHERE target = ? OR apex = ?
	ORDER BY started_at DESC, id
	`

	rows, err := h.db.QueryContext(ctx, query, target, target)
	if err != nil {
		return nil, fmt.Errorf("failed to get run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LatestRun returns the most recent run of target, excluding excludeID.
// It returns nil when there is none.
func (h *HistoryDB) LatestRun(ctx context.Context, target, excludeID string) (*RunRecord, error) {
	query := selectRun + `
	WHERE target = ? AND id != ?
	ORDER BY started_at DESC
	LIMIT 1
	`

	rec, err := scanRun(h.db.QueryRowContext(ctx, query, target, excludeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRun returns the run with the given ID.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	rec, err := scanRun(h.db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec        RunRecord
		startedAt  string
		finishedAt sql.NullString
		filter     sql.NullString
		outcome    string
		digest     sql.NullString
		riskJSON   sql.NullString
	)

	err := row.Scan(&rec.ID, &rec.Target, &rec.Apex, &startedAt, &finishedAt, &filter,
		&rec.Subdomains, &rec.LiveHosts, &rec.Vulnerabilities, &outcome, &rec.RunDir,
		&digest, &riskJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.StartedAt = parseTimestamp(startedAt)
	rec.FinishedAt = parseTimestamp(finishedAt.String)
	rec.SeverityFilter = filter.String
	rec.Outcome = model.Outcome(outcome)
	rec.FindingsDigest = digest.String

	rec.RiskSummary = make(map[string]int)
	if riskJSON.Valid && riskJSON.String != "" {
		if err := json.Unmarshal([]byte(riskJSON.String), &rec.RiskSummary); err != nil {
			rec.RiskSummary = make(map[string]int)
		}
	}
	return rec, nil
}

func riskSummary(agg model.Aggregate) map[string]int {
	summary := make(map[string]int, len(model.Severities()))
	for _, sev := range model.Severities() {
		summary[sev.Label()] = agg.Count(sev)
	}
	return summary
}

// ApexDomain returns the registrable domain of target (eTLD+1), or target
// itself when it has none, such as an IP address or a bare public suffix.
func ApexDomain(target string) string {
	host := strings.ToLower(target)
	if net.ParseIP(host) != nil {
		return host
	}
	if i := strings.IndexAny(host, ":/"); i >= 0 {
		host = host[:i]
	}
	if net.ParseIP(host) != nil {
		return host
	}
	apex, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return apex
}

// FindingsDigest returns the hex SHA3-256 of the findings file.
// A missing file has an empty digest.
func FindingsDigest(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to open findings: %w", err)
	}
	defer f.Close()

	hash := sha3.New256()
	if _, err := io.Copy(hash, f); err != nil {
		return "", fmt.Errorf("failed to hash findings: %w", err)
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp tries each known format and returns the zero time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
