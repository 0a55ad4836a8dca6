package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"speakerhub/internal/domain"

	"github.com/Masterminds/squirrel"
)

type eventRepository struct {
	DB DBTX
}

func NewEventRepository(db DBTX) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

var eventColumnList = []string{
	"e.id", "e.name", "e.description", "e.start_time", "e.end_time", "e.location",
	"e.average_rating", "e.rating_count", "e.created_at", "e.updated_at",
}

var eventColumns = strings.Join(eventColumnList, ", ")

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var desc sql.NullString
	if err := row.Scan(
		&e.ID, &e.Name, &desc, &e.StartTime, &e.EndTime, &e.Location,
		&e.AverageRating, &e.RatingCount, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	e.Description = desc.String
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, description, start_time, end_time, location, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, nullString(e.Description), e.StartTime, e.EndTime, e.Location, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.DB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET name = $2, description = $3, start_time = $4, end_time = $5, location = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		e.ID, e.Name, nullString(e.Description), e.StartTime, e.EndTime, e.Location, e.UpdatedAt)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *eventRepository) Filter(ctx context.Context, filter domain.EventFilter, params domain.PaginationParams) ([]*domain.Event, int, error) {
	base := psql.Select().From("events e")
	if filter.Name != "" {
		base = base.Where("e.name ILIKE ?", containsPattern(filter.Name))
	}
	switch filter.Period {
	case domain.PeriodPast:
		base = base.Where("e.end_time < ?", filter.Now)
	case domain.PeriodUpcoming:
		base = base.Where("e.start_time >= ?", filter.Now)
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build event count query: %w", err)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Event{}, 0, nil
	}

	listSQL, listArgs, err := base.Columns(eventColumnList...).
		OrderBy("e.start_time DESC", "e.id").
		Limit(uint64(params.Limit())).
		Offset(uint64(params.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build event filter query: %w", err)
	}
	events, err := r.list(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *eventRepository) ListBySpeaker(ctx context.Context, speakerID string) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e
		JOIN event_speakers es ON es.event_id = e.id
		WHERE es.speaker_id = $1
		ORDER BY e.start_time DESC, e.id`
	return r.list(ctx, query, speakerID)
}

func (r *eventRepository) ListUpcoming(ctx context.Context, now time.Time, limit int) ([]*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e
		WHERE e.start_time >= $1
		ORDER BY e.start_time ASC, e.id
		LIMIT $2`
	return r.list(ctx, query, now, limit)
}

func (r *eventRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepository) SetSpeakers(ctx context.Context, eventID string, speakerIDs []string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM event_speakers WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	for _, speakerID := range speakerIDs {
		if _, err := r.DB.ExecContext(ctx,
			`INSERT INTO event_speakers (event_id, speaker_id) VALUES ($1, $2) ON CONFLICT (event_id, speaker_id) DO NOTHING`,
			eventID, speakerID); err != nil {
			return err
		}
	}
	return nil
}

func (r *eventRepository) ListSpeakerIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT speaker_id FROM event_speakers WHERE event_id = $1 ORDER BY speaker_id`, eventID)
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

func (r *eventRepository) IsSpeakerLinked(ctx context.Context, eventID, speakerID string) (bool, error) {
	var linked bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_speakers WHERE event_id = $1 AND speaker_id = $2)`,
		eventID, speakerID).Scan(&linked)
	return linked, err
}

func (r *eventRepository) CountForSpeaker(ctx context.Context, speakerID, excludeEventID string) (int, error) {
	q := psql.Select("COUNT(*)").From("event_speakers").Where(squirrel.Eq{"speaker_id": speakerID})
	if excludeEventID != "" {
		q = q.Where(squirrel.NotEq{"event_id": excludeEventID})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build speaker event count query: %w", err)
	}
	var n int
	err = r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func (r *eventRepository) SetRatingStats(ctx context.Context, eventID string, avg float64, count int) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE events SET average_rating = $2, rating_count = $3 WHERE id = $1`, eventID, avg, count)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *eventRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}
