package postgres

import (
	"context"
	"database/sql"

	"speakerhub/internal/domain"
)

type ratingRepository struct {
	DB DBTX
}

func NewRatingRepository(db DBTX) domain.RatingRepository {
	return &ratingRepository{DB: db}
}

// Upsert writes the rating for (speaker, event). xmax is zero only for a freshly inserted row.
func (r *ratingRepository) Upsert(ctx context.Context, rating *domain.Rating) (bool, error) {
	query := `
		INSERT INTO ratings (speaker_id, event_id, score, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (speaker_id, event_id) DO UPDATE
		SET score = EXCLUDED.score, comment = EXCLUDED.comment, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, (xmax = 0)
	`
	var created bool
	err := r.DB.QueryRowContext(ctx, query,
		rating.SpeakerID, rating.EventID, rating.Score, nullString(rating.Comment), rating.CreatedAt, rating.UpdatedAt,
	).Scan(&rating.ID, &rating.CreatedAt, &created)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, domain.ErrNotFound
		}
		return false, err
	}
	return created, nil
}

func (r *ratingRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Rating, error) {
	query := `
		SELECT r.id, r.speaker_id, r.event_id, r.score, r.comment, r.created_at, r.updated_at
		FROM ratings r
		JOIN speakers s ON s.id = r.speaker_id
		WHERE r.event_id = $1
		ORDER BY lower(s.name), r.id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []*domain.Rating{}
	for rows.Next() {
		rt := &domain.Rating{}
		var comment sql.NullString
		if err := rows.Scan(&rt.ID, &rt.SpeakerID, &rt.EventID, &rt.Score, &comment, &rt.CreatedAt, &rt.UpdatedAt); err != nil {
			return nil, err
		}
		rt.Comment = comment.String
		ratings = append(ratings, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ratings, nil
}

func (r *ratingRepository) SpeakerIDsByEvent(ctx context.Context, eventID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT speaker_id FROM ratings WHERE event_id = $1 ORDER BY speaker_id`, eventID)
}

func (r *ratingRepository) EventIDsBySpeaker(ctx context.Context, speakerID string) ([]string, error) {
	return r.ids(ctx, `SELECT DISTINCT event_id FROM ratings WHERE speaker_id = $1 ORDER BY event_id`, speakerID)
}

func (r *ratingRepository) ids(ctx context.Context, query string, arg string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ratingRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM ratings WHERE event_id = $1`, eventID)
	return err
}

func (r *ratingRepository) DeleteBySpeaker(ctx context.Context, speakerID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM ratings WHERE speaker_id = $1`, speakerID)
	return err
}

func (r *ratingRepository) SpeakerStats(ctx context.Context, speakerID string) (domain.RatingStats, error) {
	return r.stats(ctx, `SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE speaker_id = $1`, speakerID)
}

func (r *ratingRepository) EventStats(ctx context.Context, eventID string) (domain.RatingStats, error) {
	return r.stats(ctx, `SELECT COALESCE(AVG(score), 0), COUNT(*) FROM ratings WHERE event_id = $1`, eventID)
}

func (r *ratingRepository) stats(ctx context.Context, query string, arg string) (domain.RatingStats, error) {
	var stats domain.RatingStats
	if err := r.DB.QueryRowContext(ctx, query, arg).Scan(&stats.Average, &stats.Count); err != nil {
		return domain.RatingStats{}, err
	}
	stats.Average = domain.RoundRating(stats.Average)
	return stats, nil
}
