package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"speakerhub/internal/domain"

	"github.com/lib/pq"
)

type keywordRepository struct {
	DB DBTX
}

// NewKeywordRepository returns a domain.KeywordRepository implemented with Postgres.
func NewKeywordRepository(db DBTX) domain.KeywordRepository {
	return &keywordRepository{DB: db}
}

func (r *keywordRepository) Create(ctx context.Context, kw *domain.Keyword) error {
	err := r.DB.QueryRowContext(ctx, `INSERT INTO keywords (text) VALUES ($1) RETURNING id`, kw.Text).Scan(&kw.ID)
	if _, ok := uniqueConstraint(err); ok {
		return domain.ErrConflict
	}
	return err
}

func (r *keywordRepository) GetByID(ctx context.Context, id string) (*domain.Keyword, error) {
	return r.getOne(ctx, `SELECT id, text FROM keywords WHERE id = $1`, id)
}

func (r *keywordRepository) FindFirstMatching(ctx context.Context, substr string) (*domain.Keyword, error) {
	return r.getOne(ctx, `SELECT id, text FROM keywords WHERE text ILIKE $1 ORDER BY lower(text) LIMIT 1`, containsPattern(substr))
}

func (r *keywordRepository) getOne(ctx context.Context, query string, arg any) (*domain.Keyword, error) {
	var kw domain.Keyword
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(&kw.ID, &kw.Text)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &kw, nil
}

func (r *keywordRepository) List(ctx context.Context) ([]*domain.Keyword, error) {
	return r.list(ctx, `SELECT id, text FROM keywords ORDER BY lower(text)`)
}

func (r *keywordRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Keyword, error) {
	if len(ids) == 0 {
		return []*domain.Keyword{}, nil
	}
	return r.list(ctx, `SELECT id, text FROM keywords WHERE id = ANY($1) ORDER BY lower(text)`, pq.Array(ids))
}

func (r *keywordRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Keyword, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keywords := []*domain.Keyword{}
	for rows.Next() {
		var kw domain.Keyword
		if err := rows.Scan(&kw.ID, &kw.Text); err != nil {
			return nil, err
		}
		keywords = append(keywords, &kw)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return keywords, nil
}

func (r *keywordRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM keywords WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrKeywordInUse
		}
		return err
	}
	return affectedOrNotFound(result)
}

func (r *keywordRepository) CountSpeakers(ctx context.Context, id string) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM speaker_keywords WHERE keyword_id = $1`, id).Scan(&n)
	return n, err
}

func (r *keywordRepository) Ensure(ctx context.Context, text string) (*domain.Keyword, error) {
	text = strings.TrimSpace(text)
	kw, err := r.getOne(ctx, `SELECT id, text FROM keywords WHERE lower(text) = lower($1)`, text)
	if err == nil {
		return kw, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	kw = domain.NewKeyword(text)
	if err := r.DB.QueryRowContext(ctx, `INSERT INTO keywords (text) VALUES ($1) RETURNING id`, text).Scan(&kw.ID); err != nil {
		return nil, err
	}
	return kw, nil
}
