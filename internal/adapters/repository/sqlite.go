package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // database/sql driver

	"github.com/fightsight/engine/internal/domain/model"
)

// defaultBusyTimeout bounds waits on a locked database file.
const defaultBusyTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS fighter_profiles (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_sessions (
	id                 TEXT PRIMARY KEY,
	sport              TEXT NOT NULL,
	rounds             INTEGER NOT NULL,
	status             TEXT NOT NULL,
	progress           INTEGER NOT NULL DEFAULT 0,
	total_cost         REAL NOT NULL DEFAULT 0,
	classifier_calls   INTEGER NOT NULL DEFAULT 0,
	total_candidates   INTEGER NOT NULL DEFAULT 0,
	classified         INTEGER NOT NULL DEFAULT 0,
	false_positives    INTEGER NOT NULL DEFAULT 0,
	failed_candidates  INTEGER NOT NULL DEFAULT 0,
	total_frames       INTEGER NOT NULL DEFAULT 0,
	total_strikes      INTEGER NOT NULL DEFAULT 0,
	total_combinations INTEGER NOT NULL DEFAULT 0,
	processing_seconds REAL NOT NULL DEFAULT 0,
	started_at         TIMESTAMP,
	completed_at       TIMESTAMP,
	failed_at          TIMESTAMP,
	error_message      TEXT NOT NULL DEFAULT '',
	created_at         TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS session_fighters (
	id             TEXT PRIMARY KEY,
	session_id     TEXT NOT NULL REFERENCES analysis_sessions(id) ON DELETE CASCADE,
	label          TEXT NOT NULL,
	stance         TEXT NOT NULL,
	profile_id     TEXT REFERENCES fighter_profiles(id) ON DELETE SET NULL,
	strikes_thrown  INTEGER NOT NULL DEFAULT 0,
	strikes_landed  INTEGER NOT NULL DEFAULT 0,
	strikes_missed  INTEGER NOT NULL DEFAULT 0,
	combinations    INTEGER NOT NULL DEFAULT 0,
	strikes_against INTEGER NOT NULL DEFAULT 0,
	UNIQUE (session_id, label)
);

CREATE TABLE IF NOT EXISTS strike_events (
	id                        TEXT PRIMARY KEY,
	session_id                TEXT NOT NULL REFERENCES analysis_sessions(id) ON DELETE CASCADE,
	frame_number              INTEGER NOT NULL,
	timestamp                 REAL NOT NULL,
	thrower                   TEXT NOT NULL,
	receiver                  TEXT NOT NULL,
	stance                    TEXT NOT NULL,
	category                  TEXT NOT NULL,
	technique                 TEXT NOT NULL,
	modifier                  TEXT NOT NULL DEFAULT '',
	target_zone               TEXT NOT NULL,
	outcome                   TEXT NOT NULL,
	detection_confidence      REAL NOT NULL,
	classification_confidence REAL NOT NULL,
	reasoning                 TEXT NOT NULL DEFAULT '',
	in_combination            INTEGER NOT NULL DEFAULT 0,
	combo_position            INTEGER NOT NULL DEFAULT 0,
	sequence_position         INTEGER NOT NULL DEFAULT 0,
	seconds_since_prev        REAL NOT NULL DEFAULT 0,
	range_bucket              TEXT NOT NULL DEFAULT '',
	initiation                TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_strike_events_session_ts
	ON strike_events (session_id, timestamp, frame_number);

CREATE TABLE IF NOT EXISTS combinations (
	id              TEXT PRIMARY KEY,
	session_id      TEXT NOT NULL REFERENCES analysis_sessions(id) ON DELETE CASCADE,
	thrower         TEXT NOT NULL,
	start_timestamp REAL NOT NULL,
	end_timestamp   REAL NOT NULL,
	duration        REAL NOT NULL,
	strike_count    INTEGER NOT NULL,
	landed_count    INTEGER NOT NULL,
	missed_count    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS combination_strikes (
	combination_id  TEXT NOT NULL REFERENCES combinations(id) ON DELETE CASCADE,
	strike_event_id TEXT NOT NULL UNIQUE REFERENCES strike_events(id) ON DELETE CASCADE,
	position        INTEGER NOT NULL,
	PRIMARY KEY (combination_id, position)
);
`

// SQLiteStore implements Store on a single SQLite database file.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema. Foreign-key enforcement is switched on for every
// connection.
func NewSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: defaultBusyTimeout}
	for _, opt := range opts {
		opt(s)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)",
		path, s.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer connection sidesteps SQLITE_BUSY between pooled
	// connections within this process.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	s.db = db
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// CreateSession inserts a new pending session and its two fighters.
func (s *SQLiteStore) CreateSession(ctx context.Context, sess *model.AnalysisSession, fighters []model.SessionFighter) error {
	if len(fighters) != 2 {
		return fmt.Errorf("%w: a session needs exactly two fighters", ErrIntegrity)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	if sess.Status == "" {
		sess.Status = model.StatusPending
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO analysis_sessions (id, sport, rounds, status, progress, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sess.ID.String(), string(sess.Sport), sess.Rounds, string(sess.Status), sess.Progress, sess.CreatedAt,
	)
	if err != nil {
		return mapErr(err)
	}

	for i := range fighters {
		f := &fighters[i]
		f.SessionID = sess.ID
		var profileID any
		if f.ProfileID != nil {
			profileID = f.ProfileID.String()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_fighters (id, session_id, label, stance, profile_id)
			VALUES (?, ?, ?, ?, ?)`,
			f.ID.String(), f.SessionID.String(), string(f.Label), string(f.Stance), profileID,
		)
		if err != nil {
			return mapErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Session returns one session by id.
func (s *SQLiteStore) Session(ctx context.Context, id uuid.UUID) (model.AnalysisSession, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sport, rounds, status, progress, total_cost, classifier_calls,
		       total_candidates, classified, false_positives, failed_candidates,
		       total_frames, total_strikes, total_combinations, processing_seconds,
		       started_at, completed_at, failed_at, error_message, created_at
		FROM analysis_sessions WHERE id = ?`, id.String())

	var (
		sess                            model.AnalysisSession
		rawID                           string
		startedAt, completedAt, failedAt sql.NullTime
	)
	err := row.Scan(
		&rawID, &sess.Sport, &sess.Rounds, &sess.Status, &sess.Progress,
		&sess.TotalCost, &sess.ClassifierCalls,
		&sess.TotalCandidates, &sess.Classified, &sess.FalsePositives, &sess.FailedCandidates,
		&sess.TotalFrames, &sess.TotalStrikes, &sess.TotalCombinations, &sess.ProcessingSeconds,
		&startedAt, &completedAt, &failedAt, &sess.ErrorMessage, &sess.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AnalysisSession{}, ErrNotFound
	}
	if err != nil {
		return model.AnalysisSession{}, fmt.Errorf("scan session: %w", err)
	}

	sess.ID, err = uuid.Parse(rawID)
	if err != nil {
		return model.AnalysisSession{}, fmt.Errorf("%w: bad session id %q", ErrIntegrity, rawID)
	}
	if startedAt.Valid {
		sess.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	if failedAt.Valid {
		sess.FailedAt = &failedAt.Time
	}
	return sess, nil
}

// MarkProcessing transitions pending -> processing.
func (s *SQLiteStore) MarkProcessing(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE analysis_sessions SET status = ?, started_at = ?
		WHERE id = ? AND status = ?`,
		string(model.StatusProcessing), startedAt.UTC(), id.String(), string(model.StatusPending),
	)
	if err != nil {
		return mapErr(err)
	}
	return s.transitioned(ctx, res, id)
}

// UpdateProgress advances progress; regressions and terminal sessions are
// left untouched by the WHERE guard.
func (s *SQLiteStore) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE analysis_sessions SET progress = ?
		WHERE id = ? AND status = ? AND progress <= ?`,
		progress, id.String(), string(model.StatusProcessing), progress,
	)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

// UpdateClassification records candidate accounting for the session.
func (s *SQLiteStore) UpdateClassification(ctx context.Context, id uuid.UUID, stats ClassificationStats) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE analysis_sessions
		SET total_candidates = ?, classified = ?, false_positives = ?,
		    failed_candidates = ?, classifier_calls = ?, total_cost = ?
		WHERE id = ? AND status = ?`,
		stats.TotalCandidates, stats.Classified, stats.FalsePositives,
		stats.FailedCandidates, stats.ClassifierCalls, stats.TotalCost,
		id.String(), string(model.StatusProcessing),
	)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

// MarkCompleted transitions processing -> completed and freezes totals.
func (s *SQLiteStore) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time, totals SessionTotals) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE analysis_sessions
		SET status = ?, progress = 100, completed_at = ?,
		    total_frames = ?, total_strikes = ?, total_combinations = ?,
		    total_cost = ?, processing_seconds = ?
		WHERE id = ? AND status = ?`,
		string(model.StatusCompleted), completedAt.UTC(),
		totals.TotalFrames, totals.TotalStrikes, totals.TotalCombinations,
		totals.TotalCost, totals.ProcessingSeconds,
		id.String(), string(model.StatusProcessing),
	)
	if err != nil {
		return mapErr(err)
	}
	return s.transitioned(ctx, res, id)
}

// MarkFailed transitions processing -> failed.
func (s *SQLiteStore) MarkFailed(ctx context.Context, id uuid.UUID, failedAt time.Time, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE analysis_sessions SET status = ?, failed_at = ?, error_message = ?
		WHERE id = ? AND status = ?`,
		string(model.StatusFailed), failedAt.UTC(), message,
		id.String(), string(model.StatusProcessing),
	)
	if err != nil {
		return mapErr(err)
	}
	return s.transitioned(ctx, res, id)
}

// transitioned distinguishes a refused transition from a missing session.
func (s *SQLiteStore) transitioned(ctx context.Context, res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}
	if _, err := s.Session(ctx, id); errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return ErrTerminal
}

// DeleteSession removes a session; all owned rows cascade.
func (s *SQLiteStore) DeleteSession(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analysis_sessions WHERE id = ?`, id.String())
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Fighters returns a session's fighters ordered by label.
func (s *SQLiteStore) Fighters(ctx context.Context, sessionID uuid.UUID) ([]model.SessionFighter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, label, stance, profile_id,
		       strikes_thrown, strikes_landed, strikes_missed, combinations, strikes_against
		FROM session_fighters WHERE session_id = ? ORDER BY label`, sessionID.String())
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var fighters []model.SessionFighter
	for rows.Next() {
		var (
			f             model.SessionFighter
			rawID, rawSID string
			profileID     sql.NullString
		)
		if err := rows.Scan(&rawID, &rawSID, &f.Label, &f.Stance, &profileID,
			&f.StrikesThrown, &f.StrikesLanded, &f.StrikesMissed, &f.Combinations, &f.StrikesAgainst); err != nil {
			return nil, fmt.Errorf("scan fighter: %w", err)
		}
		if f.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("%w: bad fighter id %q", ErrIntegrity, rawID)
		}
		if f.SessionID, err = uuid.Parse(rawSID); err != nil {
			return nil, fmt.Errorf("%w: bad session id %q", ErrIntegrity, rawSID)
		}
		if profileID.Valid {
			pid, err := uuid.Parse(profileID.String)
			if err != nil {
				return nil, fmt.Errorf("%w: bad profile id %q", ErrIntegrity, profileID.String)
			}
			f.ProfileID = &pid
		}
		fighters = append(fighters, f)
	}
	return fighters, rows.Err()
}

// UpdateFighterStats writes post-enrichment aggregates for one fighter.
func (s *SQLiteStore) UpdateFighterStats(ctx context.Context, f model.SessionFighter) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE session_fighters
		SET stance = ?, strikes_thrown = ?, strikes_landed = ?, strikes_missed = ?,
		    combinations = ?, strikes_against = ?
		WHERE id = ?`,
		string(f.Stance), f.StrikesThrown, f.StrikesLanded, f.StrikesMissed,
		f.Combinations, f.StrikesAgainst, f.ID.String(),
	)
	if err != nil {
		return mapErr(err)
	}
	return nil
}

// InsertStrikes persists classified strikes in order.
func (s *SQLiteStore) InsertStrikes(ctx context.Context, strikes []model.StrikeEvent) error {
	if len(strikes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO strike_events (
			id, session_id, frame_number, timestamp, thrower, receiver, stance,
			category, technique, modifier, target_zone, outcome,
			detection_confidence, classification_confidence, reasoning
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range strikes {
		_, err := stmt.ExecContext(ctx,
			e.ID.String(), e.SessionID.String(), e.FrameNumber, e.Timestamp,
			string(e.Thrower), string(e.Receiver), string(e.Stance),
			string(e.Category), e.Technique, e.Modifier, string(e.TargetZone), string(e.Outcome),
			e.DetectionConfidence, e.ClassificationConfidence, e.Reasoning,
		)
		if err != nil {
			return mapErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Strikes returns a session's strikes in chronological order.
func (s *SQLiteStore) Strikes(ctx context.Context, sessionID uuid.UUID) ([]model.StrikeEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, frame_number, timestamp, thrower, receiver, stance,
		       category, technique, modifier, target_zone, outcome,
		       detection_confidence, classification_confidence, reasoning,
		       in_combination, combo_position, sequence_position, seconds_since_prev,
		       range_bucket, initiation
		FROM strike_events WHERE session_id = ?
		ORDER BY timestamp, frame_number, id`, sessionID.String())
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var strikes []model.StrikeEvent
	for rows.Next() {
		var (
			e             model.StrikeEvent
			rawID, rawSID string
		)
		if err := rows.Scan(&rawID, &rawSID, &e.FrameNumber, &e.Timestamp,
			&e.Thrower, &e.Receiver, &e.Stance,
			&e.Category, &e.Technique, &e.Modifier, &e.TargetZone, &e.Outcome,
			&e.DetectionConfidence, &e.ClassificationConfidence, &e.Reasoning,
			&e.InCombination, &e.ComboPosition, &e.SequencePosition, &e.SecondsSincePrev,
			&e.Range, &e.Initiation); err != nil {
			return nil, fmt.Errorf("scan strike: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("%w: bad strike id %q", ErrIntegrity, rawID)
		}
		if e.SessionID, err = uuid.Parse(rawSID); err != nil {
			return nil, fmt.Errorf("%w: bad session id %q", ErrIntegrity, rawSID)
		}
		strikes = append(strikes, e)
	}
	return strikes, rows.Err()
}

// UpdateEnrichment writes the enrichment fields of each strike.
func (s *SQLiteStore) UpdateEnrichment(ctx context.Context, strikes []model.StrikeEvent) error {
	if len(strikes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE strike_events
		SET in_combination = ?, combo_position = ?, sequence_position = ?,
		    seconds_since_prev = ?, range_bucket = ?, initiation = ?
		WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, e := range strikes {
		if _, err := stmt.ExecContext(ctx,
			e.InCombination, e.ComboPosition, e.SequencePosition,
			e.SecondsSincePrev, string(e.Range), string(e.Initiation),
			e.ID.String()); err != nil {
			return mapErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// InsertCombinations persists combinations and links in one transaction.
func (s *SQLiteStore) InsertCombinations(ctx context.Context, combos []model.Combination, links []model.CombinationStrike) error {
	if len(combos) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, c := range combos {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO combinations (
				id, session_id, thrower, start_timestamp, end_timestamp,
				duration, strike_count, landed_count, missed_count
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID.String(), c.SessionID.String(), string(c.Thrower),
			c.StartTimestamp, c.EndTimestamp, c.Duration,
			c.StrikeCount, c.LandedCount, c.MissedCount,
		)
		if err != nil {
			return mapErr(err)
		}
	}

	for _, l := range links {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO combination_strikes (combination_id, strike_event_id, position)
			VALUES (?, ?, ?)`,
			l.CombinationID.String(), l.StrikeEventID.String(), l.Position,
		)
		if err != nil {
			return mapErr(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Combinations returns a session's combinations ordered by start time.
func (s *SQLiteStore) Combinations(ctx context.Context, sessionID uuid.UUID) ([]model.Combination, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, thrower, start_timestamp, end_timestamp,
		       duration, strike_count, landed_count, missed_count
		FROM combinations WHERE session_id = ?
		ORDER BY start_timestamp, id`, sessionID.String())
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var combos []model.Combination
	for rows.Next() {
		var (
			c             model.Combination
			rawID, rawSID string
		)
		if err := rows.Scan(&rawID, &rawSID, &c.Thrower, &c.StartTimestamp, &c.EndTimestamp,
			&c.Duration, &c.StrikeCount, &c.LandedCount, &c.MissedCount); err != nil {
			return nil, fmt.Errorf("scan combination: %w", err)
		}
		if c.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("%w: bad combination id %q", ErrIntegrity, rawID)
		}
		if c.SessionID, err = uuid.Parse(rawSID); err != nil {
			return nil, fmt.Errorf("%w: bad session id %q", ErrIntegrity, rawSID)
		}
		combos = append(combos, c)
	}
	return combos, rows.Err()
}

// CombinationStrikes returns a session's links ordered by combination and
// position.
func (s *SQLiteStore) CombinationStrikes(ctx context.Context, sessionID uuid.UUID) ([]model.CombinationStrike, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT cs.combination_id, cs.strike_event_id, cs.position
		FROM combination_strikes cs
		JOIN combinations c ON c.id = cs.combination_id
		WHERE c.session_id = ?
		ORDER BY cs.combination_id, cs.position`, sessionID.String())
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	var links []model.CombinationStrike
	for rows.Next() {
		var (
			l             model.CombinationStrike
			rawCID, rawEID string
		)
		if err := rows.Scan(&rawCID, &rawEID, &l.Position); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		var err error
		if l.CombinationID, err = uuid.Parse(rawCID); err != nil {
			return nil, fmt.Errorf("%w: bad combination id %q", ErrIntegrity, rawCID)
		}
		if l.StrikeEventID, err = uuid.Parse(rawEID); err != nil {
			return nil, fmt.Errorf("%w: bad strike id %q", ErrIntegrity, rawEID)
		}
		links = append(links, l)
	}
	return links, rows.Err()
}

// SessionCount returns the number of stored sessions.
func (s *SQLiteStore) SessionCount(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_sessions`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// mapErr folds SQLite constraint failures into the integrity sentinel.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "constraint") {
		return fmt.Errorf("%w: %v", ErrIntegrity, err)
	}
	return err
}
