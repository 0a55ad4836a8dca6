package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"speakerhub/internal/domain"

	"github.com/lib/pq"
)

type speakerRepository struct {
	DB DBTX
}

// NewSpeakerRepository returns a domain.SpeakerRepository implemented with Postgres.
func NewSpeakerRepository(db DBTX) domain.SpeakerRepository {
	return &speakerRepository{DB: db}
}

var speakerColumnList = []string{
	"s.id", "s.name", "s.email", "s.phone", "s.bio", "s.photo_url", "s.profile_url",
	"s.profile_title", "s.profile_company", "s.profile_followers", "s.profile_synced_at",
	"s.has_participated", "s.average_rating", "s.created_at", "s.updated_at",
}

var speakerColumns = strings.Join(speakerColumnList, ", ")

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpeaker(row rowScanner) (*domain.Speaker, error) {
	s := &domain.Speaker{Keywords: []*domain.Keyword{}}
	var email, phone, bio, photo, profileURL, title, company sql.NullString
	var synced sql.NullTime
	if err := row.Scan(
		&s.ID, &s.Name, &email, &phone, &bio, &photo, &profileURL,
		&title, &company, &s.ProfileFollowers, &synced,
		&s.HasParticipated, &s.AverageRating, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	s.Email = email.String
	s.Phone = phone.String
	s.Bio = bio.String
	s.PhotoURL = photo.String
	s.ProfileURL = profileURL.String
	s.ProfileTitle = title.String
	s.ProfileCompany = company.String
	if synced.Valid {
		t := synced.Time
		s.ProfileSyncedAt = &t
	}
	return s, nil
}

func duplicateSpeakerError(constraint string) error {
	if constraint == "speakers_profile_url_key" {
		return domain.ErrDuplicateProfile
	}
	return domain.ErrDuplicateEmail
}

func (r *speakerRepository) Create(ctx context.Context, s *domain.Speaker) error {
	query := `
		INSERT INTO speakers (name, email, phone, bio, photo_url, profile_url, profile_title, profile_company,
			profile_followers, profile_synced_at, has_participated, average_rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		s.Name, nullString(s.Email), nullString(s.Phone), nullString(s.Bio), nullString(s.PhotoURL),
		nullString(s.ProfileURL), nullString(s.ProfileTitle), nullString(s.ProfileCompany),
		s.ProfileFollowers, s.ProfileSyncedAt, s.HasParticipated, s.AverageRating, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	if constraint, ok := uniqueConstraint(err); ok {
		return duplicateSpeakerError(constraint)
	}
	return err
}

func (r *speakerRepository) GetByID(ctx context.Context, id string) (*domain.Speaker, error) {
	return r.getOne(ctx, `SELECT `+speakerColumns+` FROM speakers s WHERE s.id = $1`, id)
}

func (r *speakerRepository) GetByProfileURL(ctx context.Context, profileURL string) (*domain.Speaker, error) {
	return r.getOne(ctx, `SELECT `+speakerColumns+` FROM speakers s WHERE s.profile_url = $1`, profileURL)
}

func (r *speakerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Speaker, error) {
	s, err := scanSpeaker(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadKeywords(ctx, []*domain.Speaker{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *speakerRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.Speaker, error) {
	if len(ids) == 0 {
		return []*domain.Speaker{}, nil
	}
	return r.list(ctx, `SELECT `+speakerColumns+` FROM speakers s WHERE s.id = ANY($1) ORDER BY lower(s.name), s.id`, pq.Array(ids))
}

func (r *speakerRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers s
		JOIN event_speakers es ON es.speaker_id = s.id
		WHERE es.event_id = $1
		ORDER BY lower(s.name), s.id`
	return r.list(ctx, query, eventID)
}

func (r *speakerRepository) ListRecent(ctx context.Context, limit int) ([]*domain.Speaker, error) {
	return r.list(ctx, `SELECT `+speakerColumns+` FROM speakers s ORDER BY s.created_at DESC, s.id LIMIT $1`, limit)
}

func (r *speakerRepository) ListTopRated(ctx context.Context, limit int) ([]*domain.Speaker, error) {
	query := `SELECT ` + speakerColumns + ` FROM speakers s
		WHERE s.average_rating > 0
		ORDER BY s.average_rating DESC, lower(s.name)
		LIMIT $1`
	return r.list(ctx, query, limit)
}

func (r *speakerRepository) Search(ctx context.Context, q domain.SpeakerQuery, params domain.PaginationParams) ([]*domain.Speaker, int, error) {
	base := psql.Select().From("speakers s")
	if q.Name != "" {
		base = base.Where("s.name ILIKE ?", containsPattern(q.Name))
	}
	if q.KeywordID != "" {
		base = base.Where("EXISTS (SELECT 1 FROM speaker_keywords sk WHERE sk.speaker_id = s.id AND sk.keyword_id = ?)", q.KeywordID)
	}

	countSQL, countArgs, err := base.Columns("COUNT(*)").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build speaker count query: %w", err)
	}
	var total int
	if err := r.DB.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []*domain.Speaker{}, 0, nil
	}

	listSQL, listArgs, err := base.Columns(speakerColumnList...).
		OrderBy("lower(s.name)", "s.id").
		Limit(uint64(params.Limit())).
		Offset(uint64(params.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build speaker search query: %w", err)
	}
	speakers, err := r.list(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	return speakers, total, nil
}

func (r *speakerRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Speaker, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	speakers := []*domain.Speaker{}
	for rows.Next() {
		s, err := scanSpeaker(rows)
		if err != nil {
			return nil, err
		}
		speakers = append(speakers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadKeywords(ctx, speakers); err != nil {
		return nil, err
	}
	return speakers, nil
}

// loadKeywords fills Keywords for every speaker with one query.
func (r *speakerRepository) loadKeywords(ctx context.Context, speakers []*domain.Speaker) error {
	if len(speakers) == 0 {
		return nil
	}
	ids := make([]string, len(speakers))
	byID := make(map[string]*domain.Speaker, len(speakers))
	for i, s := range speakers {
		ids[i] = s.ID
		byID[s.ID] = s
	}
	rows, err := r.DB.QueryContext(ctx,
		`SELECT sk.speaker_id, k.id, k.text FROM speaker_keywords sk
		 JOIN keywords k ON k.id = sk.keyword_id
		 WHERE sk.speaker_id = ANY($1)
		 ORDER BY lower(k.text)`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var speakerID string
		var kw domain.Keyword
		if err := rows.Scan(&speakerID, &kw.ID, &kw.Text); err != nil {
			return err
		}
		if s, ok := byID[speakerID]; ok {
			s.Keywords = append(s.Keywords, &kw)
		}
	}
	return rows.Err()
}

func (r *speakerRepository) Update(ctx context.Context, s *domain.Speaker) error {
	query := `
		UPDATE speakers
		SET name = $2, email = $3, phone = $4, bio = $5, photo_url = $6, profile_url = $7,
			profile_title = $8, profile_company = $9, profile_followers = $10, profile_synced_at = $11,
			updated_at = $12
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query,
		s.ID, s.Name, nullString(s.Email), nullString(s.Phone), nullString(s.Bio), nullString(s.PhotoURL),
		nullString(s.ProfileURL), nullString(s.ProfileTitle), nullString(s.ProfileCompany),
		s.ProfileFollowers, s.ProfileSyncedAt, s.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			return duplicateSpeakerError(constraint)
		}
		return err
	}
	return affectedOrNotFound(result)
}

func (r *speakerRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM speakers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *speakerRepository) SetKeywords(ctx context.Context, speakerID string, keywordIDs []string) error {
	if _, err := r.DB.ExecContext(ctx, `DELETE FROM speaker_keywords WHERE speaker_id = $1`, speakerID); err != nil {
		return err
	}
	return r.AddKeywords(ctx, speakerID, keywordIDs)
}

func (r *speakerRepository) AddKeywords(ctx context.Context, speakerID string, keywordIDs []string) error {
	for _, keywordID := range keywordIDs {
		if _, err := r.DB.ExecContext(ctx,
			`INSERT INTO speaker_keywords (speaker_id, keyword_id) VALUES ($1, $2) ON CONFLICT (speaker_id, keyword_id) DO NOTHING`,
			speakerID, keywordID); err != nil {
			return err
		}
	}
	return nil
}

func (r *speakerRepository) SetParticipated(ctx context.Context, id string, participated bool) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE speakers SET has_participated = $2 WHERE id = $1`, id, participated)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *speakerRepository) SetAverageRating(ctx context.Context, id string, avg float64) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE speakers SET average_rating = $2 WHERE id = $1`, id, avg)
	if err != nil {
		return err
	}
	return affectedOrNotFound(result)
}

func (r *speakerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM speakers`).Scan(&n)
	return n, err
}
