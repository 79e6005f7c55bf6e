package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"NoteValuator/internal/model"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists valuation summaries to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reporting tools can read while a run writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.WithField("path", dbPath).Info("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS valuations (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id           TEXT NOT NULL UNIQUE,
			timestamp        INTEGER NOT NULL,
			name             TEXT,
			symbol           TEXT,
			valuation_date   TEXT,
			calibration_from TEXT,
			calibration_to   TEXT,
			observations     INTEGER,
			excluded         INTEGER,
			s0               REAL,
			t                REAL,
			r                REAL,
			sigma            REAL,
			barrier          REAL,
			paths            INTEGER,
			steps            INTEGER,
			seed             TEXT,
			present_value    REAL,
			std_error        REAL,
			closed_form      REAL,
			forward_tier     TEXT,
			elapsed_ms       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_valuations_name_ts ON valuations(name, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordValuation(v *model.Valuation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := v.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	p := v.Params
	_, err := r.db.Exec(`INSERT INTO valuations
		(run_id, timestamp, name, symbol, valuation_date, calibration_from, calibration_to, observations, excluded,
		 s0, t, r, sigma, barrier, paths, steps, seed,
		 present_value, std_error, closed_form, forward_tier, elapsed_ms)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		v.RunID, created.Unix(), v.Name, v.Symbol,
		formatDate(v.ValuationDate), formatDate(v.CalibrationFrom), formatDate(v.CalibrationTo), v.Observations, v.Excluded,
		p.S0, p.T, p.R, p.Sigma, p.Barrier, p.Paths, p.Steps,
		// uint64 seeds do not fit INTEGER
		fmt.Sprintf("%d", v.Estimate.Seed),
		v.Estimate.PresentValue, v.Estimate.StdError, v.ClosedForm, v.ForwardTier, v.Elapsed.Milliseconds(),
	)
	return err
}

// LatestValue returns the most recent present value recorded under name. The
// valuation service reads it before recording to report the change.
func (r *SQLiteRecorder) LatestValue(name string) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pv float64
	err := r.db.QueryRow(`SELECT present_value FROM valuations WHERE name = ? ORDER BY timestamp DESC, id DESC LIMIT 1`, name).Scan(&pv)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return pv, true, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Info("closing sqlite recorder")
	return r.db.Close()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
