package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"SpreadSentinel/internal/model"
)

// Runs beyond this count are pruned, oldest first.
const keepRuns = 10

// SQLiteRecorder persists screening history to a SQLite database.
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

	// WAL mode so dashboard reads don't block scheduled writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS screening_runs (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			vix             REAL,
			vix_trend       TEXT,
			breadth         REAL,
			realized_vol    REAL,
			defensive_score REAL,
			regime          TEXT,
			rejected        INTEGER,
			cash_pct        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON screening_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS screening_candidates (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id       INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			short_name   TEXT,
			price        REAL,
			daily_change REAL,
			market_cap   REAL,
			avg_weekly   REAL,
			weeks_above  INTEGER,
			rs_score     REAL,
			score        REAL,
			reason       TEXT,
			status       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_candidates_run ON screening_candidates(run_id)`,

		`CREATE TABLE IF NOT EXISTS prediction_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			symbol        TEXT NOT NULL,
			current_price REAL,
			target_price  REAL,
			range_low     REAL,
			range_high    REAL,
			bias          REAL,
			bullish_prob  REAL,
			method        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_sym ON prediction_history(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordScreening stores one run with its candidates and prunes history to
// the most recent runs.
func (r *SQLiteRecorder) RecordScreening(run *model.ScreeningRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO screening_runs
		(timestamp, vix, vix_trend, breadth, realized_vol, defensive_score, regime, rejected, cash_pct)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.RunAt.Unix(), run.Health.VIX, run.Health.VIXTrend, run.Health.Breadth,
		run.Health.RealizedVol, run.Health.DefensiveScore, string(run.Health.Regime),
		run.Rejected, run.Allocation.CashPct,
	)
	if err != nil {
		return err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, c := range run.Candidates {
		if _, err := tx.Exec(`INSERT INTO screening_candidates
			(run_id, symbol, short_name, price, daily_change, market_cap,
			 avg_weekly, weeks_above, rs_score, score, reason, status)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			runID, c.Symbol, c.ShortName, c.CurrentPrice, c.DailyChange, c.MarketCap,
			c.AvgWeeklyReturn, c.WeeksAboveTarget, c.RSScore, c.Score, c.Reason, c.PositionStatus,
		); err != nil {
			return err
		}
	}

	// Rolling window: drop everything older than the newest keepRuns runs.
	if _, err := tx.Exec(`DELETE FROM screening_candidates WHERE run_id NOT IN
		(SELECT id FROM screening_runs ORDER BY id DESC LIMIT ?)`, keepRuns); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM screening_runs WHERE id NOT IN
		(SELECT id FROM screening_runs ORDER BY id DESC LIMIT ?)`, keepRuns); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordPrediction(p *model.Prediction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO prediction_history
		(timestamp, symbol, current_price, target_price, range_low, range_high, bias, bullish_prob, method)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		p.CreatedAt.Unix(), p.Symbol, p.CurrentPrice, p.TargetPrice,
		p.RangeLow, p.RangeHigh, p.Bias, p.BullishProb, string(p.Method),
	)
	return err
}

// RecentRuns loads the newest n runs with their candidates, newest first.
func (r *SQLiteRecorder) RecentRuns(n int) ([]model.ScreeningRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, timestamp, vix, vix_trend, breadth, realized_vol,
		defensive_score, regime, rejected, cash_pct
		FROM screening_runs ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type runRow struct {
		id  int64
		run model.ScreeningRun
	}
	runRows := make([]runRow, 0, n)
	for rows.Next() {
		var rr runRow
		var ts int64
		var regime string
		if err := rows.Scan(&rr.id, &ts, &rr.run.Health.VIX, &rr.run.Health.VIXTrend,
			&rr.run.Health.Breadth, &rr.run.Health.RealizedVol, &rr.run.Health.DefensiveScore,
			&regime, &rr.run.Rejected, &rr.run.Allocation.CashPct); err != nil {
			return nil, err
		}
		rr.run.RunAt = time.Unix(ts, 0)
		rr.run.Health.Regime = model.MarketRegime(regime)
		runRows = append(runRows, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]model.ScreeningRun, 0, len(runRows))
	for _, rr := range runRows {
		cands, err := r.candidatesFor(rr.id)
		if err != nil {
			return nil, err
		}
		rr.run.Candidates = cands
		out = append(out, rr.run)
	}
	return out, nil
}

func (r *SQLiteRecorder) candidatesFor(runID int64) ([]model.MomentumAnalysis, error) {
	rows, err := r.db.Query(`SELECT symbol, short_name, price, daily_change, market_cap,
		avg_weekly, weeks_above, rs_score, score, reason, status
		FROM screening_candidates WHERE run_id = ? ORDER BY score DESC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MomentumAnalysis
	for rows.Next() {
		var c model.MomentumAnalysis
		if err := rows.Scan(&c.Symbol, &c.ShortName, &c.CurrentPrice, &c.DailyChange,
			&c.MarketCap, &c.AvgWeeklyReturn, &c.WeeksAboveTarget, &c.RSScore,
			&c.Score, &c.Reason, &c.PositionStatus); err != nil {
			return nil, err
		}
		c.Qualified = true
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
