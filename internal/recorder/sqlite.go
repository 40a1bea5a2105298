package recorder

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"NiftyPulse/internal/model"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (dashboards read while the bot writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS scans (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			price         REAL,
			atm_strike    INTEGER,
			total_call_oi INTEGER,
			total_put_oi  INTEGER,
			pcr           REAL,
			vwap_dist     REAL,
			atr           REAL,
			call_velocity TEXT,
			put_velocity  TEXT,
			rejection     TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scans_ts ON scans(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signals (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp      INTEGER NOT NULL,
			direction      TEXT,
			strike         INTEGER,
			entry          REAL,
			target         REAL,
			stop_loss      REAL,
			confidence     INTEGER,
			primary_checks INTEGER,
			bonus_checks   INTEGER,
			vwap_score     INTEGER,
			expiry_day     INTEGER,
			fully_warm     INTEGER,
			tags           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,

		`CREATE TABLE IF NOT EXISTS exits (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			direction  TEXT,
			strike     INTEGER,
			reason     TEXT,
			entry      REAL,
			exit_price REAL,
			points     REAL,
			win        INTEGER,
			held_secs  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exits_ts ON exits(timestamp)`,

		`CREATE TABLE IF NOT EXISTS daily_summaries (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			date    TEXT UNIQUE,
			signals INTEGER,
			wins    INTEGER,
			losses  INTEGER,
			points  REAL
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordScan(evt *ScanEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO scans
		(timestamp, price, atm_strike, total_call_oi, total_put_oi, pcr,
		 vwap_dist, atr, call_velocity, put_velocity, rejection)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		evt.Timestamp, evt.Price, evt.ATMStrike, evt.TotalCallOI, evt.TotalPutOI,
		evt.PCR, evt.VWAPDist, evt.ATR, evt.CallVel, evt.PutVel, evt.Rejection,
	)
	return err
}

func (r *SQLiteRecorder) RecordSignal(evt *SignalEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sig := evt.Signal
	_, err := r.db.Exec(`INSERT INTO signals
		(timestamp, direction, strike, entry, target, stop_loss, confidence,
		 primary_checks, bonus_checks, vwap_score, expiry_day, fully_warm, tags)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		sig.Timestamp.Unix(), string(sig.Direction), sig.Strike,
		sig.Entry, sig.Target, sig.StopLoss, sig.Confidence,
		sig.PrimaryChecks, sig.BonusChecks, sig.VWAPScore,
		boolToInt(evt.ExpiryDay), boolToInt(evt.FullyWarm),
		strings.Join(sig.Tags, ","),
	)
	return err
}

func (r *SQLiteRecorder) RecordExit(evt *model.ExitEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	points := evt.Exit - evt.Entry
	if evt.Direction == model.PEBuy {
		points = evt.Entry - evt.Exit
	}
	_, err := r.db.Exec(`INSERT INTO exits
		(timestamp, direction, strike, reason, entry, exit_price, points, win, held_secs)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		evt.ClosedAt.Unix(), string(evt.Direction), evt.Strike, string(evt.Reason),
		evt.Entry, evt.Exit, points, boolToInt(evt.Win()),
		int64(evt.ClosedAt.Sub(evt.EnteredAt)/time.Second),
	)
	return err
}

func (r *SQLiteRecorder) RecordSummary(evt *SummaryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT OR REPLACE INTO daily_summaries
		(date, signals, wins, losses, points)
		VALUES (?,?,?,?,?)`,
		evt.Date, evt.Signals, evt.Wins, evt.Losses, evt.Points,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
