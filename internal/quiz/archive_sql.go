package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// SQLArchive persists terminal sessions, report metadata, and lifecycle
// events. Live quiz state never touches the database; only completed and
// expired sessions land here, for report access within the retention
// window.
type SQLArchive struct {
	db *sql.DB
}

func NewSQLArchive(db *sql.DB) *SQLArchive {
	return &SQLArchive{db: db}
}

func (a *SQLArchive) SaveTerminal(ctx context.Context, s Session) error {
	hj, err := json.Marshal(s.History)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO sessions (id,username,topic,status,level,score,answered,final_percent,history_json,started_at,ended_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 ON CONFLICT (id) DO UPDATE SET status=EXCLUDED.status, level=EXCLUDED.level, score=EXCLUDED.score,
		   answered=EXCLUDED.answered, final_percent=EXCLUDED.final_percent, history_json=EXCLUDED.history_json,
		   ended_at=EXCLUDED.ended_at`,
		s.ID, s.Username, s.Topic, string(s.Status), s.Level, s.Score, s.Answered(),
		s.FinalPercent, string(hj), s.StartedAt.Unix(), s.EndedAt.Unix())
	return err
}

func (a *SQLArchive) Load(ctx context.Context, id string) (Session, error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT id,username,topic,status,level,score,final_percent,history_json,started_at,ended_at
		 FROM sessions WHERE id=$1`, id)

	var s Session
	var status, hjson string
	var started, ended int64
	err := row.Scan(&s.ID, &s.Username, &s.Topic, &status, &s.Level, &s.Score, &s.FinalPercent, &hjson, &started, &ended)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	s.Status = Status(status)
	s.StartedAt = time.Unix(started, 0)
	s.EndedAt = time.Unix(ended, 0)
	if err := json.Unmarshal([]byte(hjson), &s.History); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (a *SQLArchive) AppendEvent(ctx context.Context, typ, key string, data any) error {
	dj, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(dj), time.Now().Unix())
	return err
}

// SaveReport records the artifact and AI commentary for a session's
// report, replacing any earlier one.
func (a *SQLArchive) SaveReport(ctx context.Context, sessionID, artifactKey, summary, recommendations string) error {
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO reports (session_id, artifact_key, ai_summary, ai_recommendations, created_at)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (session_id) DO UPDATE SET artifact_key=EXCLUDED.artifact_key,
		   ai_summary=EXCLUDED.ai_summary, ai_recommendations=EXCLUDED.ai_recommendations,
		   created_at=EXCLUDED.created_at`,
		sessionID, artifactKey, summary, recommendations, time.Now().Unix())
	return err
}

// LoadReport returns a previously generated report, so repeated /report
// calls are idempotent and cheap.
func (a *SQLArchive) LoadReport(ctx context.Context, sessionID string) (artifactKey, summary, recommendations string, err error) {
	row := a.db.QueryRowContext(ctx,
		`SELECT artifact_key, ai_summary, ai_recommendations FROM reports WHERE session_id=$1`, sessionID)
	err = row.Scan(&artifactKey, &summary, &recommendations)
	return
}

// Prune deletes archived sessions that ended before cutoff. Report rows
// cascade; their artifact keys are returned so the caller can delete the
// stored artifacts along with the rows.
func (a *SQLArchive) Prune(ctx context.Context, cutoff time.Time) (int64, []string, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT r.artifact_key FROM reports r JOIN sessions s ON s.id = r.session_id WHERE s.ended_at < $1`,
		cutoff.Unix())
	if err != nil {
		return 0, nil, err
	}
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			rows.Close()
			return 0, nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, nil, err
	}
	rows.Close()

	res, err := a.db.ExecContext(ctx, `DELETE FROM sessions WHERE ended_at < $1`, cutoff.Unix())
	if err != nil {
		return 0, nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil, err
	}
	return n, keys, nil
}
