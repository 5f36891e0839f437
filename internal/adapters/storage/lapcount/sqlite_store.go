package lapcount

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"swimtrack/internal/adapters/storage"
	domain "swimtrack/internal/domain/lapcount"
	sessiondomain "swimtrack/internal/domain/swimsession"
)

const selectColumns = `SELECT id, competition_id, lane_number, team_id, swimmer_id, referee_id,
	lap_number, timestamp FROM lap_count`

// appendQuery inserts the lap only if the session is still active and the
// swimmer has no lap newer than the threshold. lap_number is the team's
// count plus one, computed in the same statement.
const appendQuery = `INSERT INTO lap_count (id, competition_id, lane_number, team_id, swimmer_id,
	referee_id, lap_number, timestamp)
	SELECT ?, ?, ?, ?, ?, ?,
		(SELECT COUNT(*) + 1 FROM lap_count WHERE competition_id = ? AND team_id = ?), ?
	WHERE EXISTS (SELECT 1 FROM swim_session WHERE id = ? AND is_active = 1)
	AND NOT EXISTS (
		SELECT 1 FROM lap_count WHERE competition_id = ? AND swimmer_id = ? AND timestamp > ?
	)`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new lap count store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List retrieves laps in timestamp order.
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.LapCount, error) {
	var b strings.Builder
	var args []any
	b.WriteString(selectColumns + " WHERE 1=1")
	if filter.CompetitionID != "" {
		b.WriteString(" AND competition_id = ?")
		args = append(args, filter.CompetitionID)
	}
	if filter.TeamID != "" {
		b.WriteString(" AND team_id = ?")
		args = append(args, filter.TeamID)
	}
	if filter.SwimmerID != "" {
		b.WriteString(" AND swimmer_id = ?")
		args = append(args, filter.SwimmerID)
	}
	b.WriteString(" ORDER BY timestamp ASC, lap_number ASC")

	rows, err := s.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.LapCount
	for rows.Next() {
		lap, err := scanLap(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, lap)
	}
	return results, rows.Err()
}

// LastBySwimmer returns the swimmer's most recent lap by timestamp.
// POST: nil, nil when the swimmer has no laps
func (s *SQLiteStore) LastBySwimmer(ctx context.Context, competitionID, swimmerID string) (*domain.LapCount, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+
		" WHERE competition_id = ? AND swimmer_id = ? ORDER BY timestamp DESC LIMIT 1",
		competitionID, swimmerID)
	lap, err := scanLap(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lap, nil
}

// Append records a lap and bumps the session counter in one transaction.
// PRE: req.Lap is validated; req.Lap.Timestamp is the acceptance time
// POST: lap stored with its team LapNumber, or ErrTooSoon / ErrNoActiveSession
func (s *SQLiteStore) Append(ctx context.Context, req AppendRequest) (domain.LapCount, error) {
	lap := req.Lap
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.LapCount{}, err
	}
	defer tx.Rollback()

	var refereeID any
	if lap.RefereeID != "" {
		refereeID = lap.RefereeID
	}
	ts := storage.FormatTime(lap.Timestamp)
	threshold := storage.FormatTime(domain.Threshold(lap.Timestamp, req.MinIntervalSeconds))

	res, err := tx.ExecContext(ctx, appendQuery,
		lap.ID, lap.CompetitionID, lap.LaneNumber, lap.TeamID, lap.SwimmerID, refereeID,
		lap.CompetitionID, lap.TeamID, ts,
		req.SessionID,
		lap.CompetitionID, lap.SwimmerID, threshold,
	)
	if err != nil {
		return domain.LapCount{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var active int
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM swim_session WHERE id = ? AND is_active = 1", req.SessionID).Scan(&active); err != nil {
			return domain.LapCount{}, err
		}
		if active == 0 {
			return domain.LapCount{}, sessiondomain.ErrNoActiveSession
		}
		return domain.LapCount{}, domain.ErrTooSoon
	}

	if _, err := tx.ExecContext(ctx, "UPDATE swim_session SET lap_count = lap_count + 1 WHERE id = ?", req.SessionID); err != nil {
		return domain.LapCount{}, err
	}
	if err := tx.QueryRowContext(ctx, "SELECT lap_number FROM lap_count WHERE id = ?", lap.ID).Scan(&lap.LapNumber); err != nil {
		return domain.LapCount{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.LapCount{}, err
	}
	return lap, nil
}

func scanLap(scan func(dest ...any) error) (domain.LapCount, error) {
	var l domain.LapCount
	var referee sql.NullString
	var ts string
	err := scan(&l.ID, &l.CompetitionID, &l.LaneNumber, &l.TeamID, &l.SwimmerID, &referee, &l.LapNumber, &ts)
	if err != nil {
		return domain.LapCount{}, err
	}
	l.RefereeID = referee.String
	if l.Timestamp, err = storage.ParseTime(ts); err != nil {
		return domain.LapCount{}, err
	}
	return l, nil
}
