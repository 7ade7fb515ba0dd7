// Package store persists the append-only per-user intensity log backing the
// temporal smoother. The engine only reads from it; the serving layer
// appends the new record after each analysis.
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whisperengine-ai/whisperengine-v2-sub009/internal/domain"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS emotion_intensity_log (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			message_id TEXT NOT NULL,
			emotion TEXT NOT NULL DEFAULT 'neutral',
			raw_intensity DOUBLE PRECISION NOT NULL,
			ema_intensity DOUBLE PRECISION,
			alpha DOUBLE PRECISION NOT NULL DEFAULT 0.3,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_emotion_intensity_user ON emotion_intensity_log(user_id, id);`,
		// Rows written before smoothing existed have a NULL ema_intensity;
		// readers fall back to raw_intensity for those.
		`ALTER TABLE emotion_intensity_log ADD COLUMN IF NOT EXISTS ema_intensity DOUBLE PRECISION;`,
		`ALTER TABLE emotion_intensity_log ADD COLUMN IF NOT EXISTS alpha DOUBLE PRECISION NOT NULL DEFAULT 0.3;`,
	}
	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Append inserts one record at the tail of the user's log. A missing message
// ID is filled in.
func (s *Store) Append(ctx context.Context, record domain.IntensityRecord) error {
	if strings.TrimSpace(record.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(record.MessageID) == "" {
		record.MessageID = uuid.NewString()
	}
	if record.Emotion == "" {
		record.Emotion = domain.EmotionNeutral
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO emotion_intensity_log(user_id, message_id, emotion, raw_intensity, ema_intensity, alpha)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, record.UserID, record.MessageID, record.Emotion, record.RawIntensity, record.EMAIntensity, record.Alpha)
	return err
}

// MostRecent returns the single most recent record for the user. The second
// return value is false when the user has no history (cold start).
func (s *Store) MostRecent(ctx context.Context, userID string) (domain.IntensityObservation, bool, error) {
	var obs domain.IntensityObservation
	err := s.pool.QueryRow(ctx, `
		SELECT raw_intensity, ema_intensity
		FROM emotion_intensity_log
		WHERE user_id=$1
		ORDER BY id DESC
		LIMIT 1
	`, userID).Scan(&obs.RawIntensity, &obs.EMAIntensity)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.IntensityObservation{}, false, nil
	}
	if err != nil {
		return domain.IntensityObservation{}, false, err
	}
	return obs, true, nil
}

// Recent returns up to limit smoothed intensities for the user, oldest
// first. Pre-smoothing rows contribute their raw intensity.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]float64, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(ema_intensity, raw_intensity)
		FROM (
			SELECT id, ema_intensity, raw_intensity
			FROM emotion_intensity_log
			WHERE user_id=$1
			ORDER BY id DESC
			LIMIT $2
		) t
		ORDER BY id ASC
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]float64, 0, limit)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
