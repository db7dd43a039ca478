package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/qrlinkki/qrlinkki/internal/database"
	"github.com/qrlinkki/qrlinkki/internal/models"
)

type linkRecord struct {
	LinkID               int64      `db:"link_id"`
	OriginalURL          string     `db:"original_url"`
	ShortenedCode        string     `db:"shortened_code"`
	CompleteShortenedURL string     `db:"complete_shortened_url"`
	QRCodePath           string     `db:"qr_code_path"`
	CreatedAt            time.Time  `db:"created_at"`
	ExpiresAt            *time.Time `db:"expires_at"`
	Clicks               int64      `db:"clicks"`
	UserID               int64      `db:"user_id"`
}

func (r *linkRecord) ToLink() *models.Link {
	return &models.Link{
		LinkID:               r.LinkID,
		OriginalURL:          r.OriginalURL,
		ShortenedCode:        r.ShortenedCode,
		CompleteShortenedURL: r.CompleteShortenedURL,
		QRCodePath:           r.QRCodePath,
		CreatedAt:            r.CreatedAt,
		ExpiresAt:            r.ExpiresAt,
		Clicks:               r.Clicks,
		UserID:               r.UserID,
	}
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// Create inserts a new link. The unique constraint on shortened_code is the
// only collision arbiter; concurrent inserts racing on the same code are
// resolved here, not by application-level locking.
func (r *LinkRepository) Create(ctx context.Context, link *models.Link) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(original_url, shortened_code, complete_shortened_url, qr_code_path, expires_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query,
		link.OriginalURL, link.ShortenedCode, link.CompleteShortenedURL,
		link.QRCodePath, link.ExpiresAt, link.UserID)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByCode"

	rec := new(linkRecord)
	query := `SELECT * FROM links WHERE shortened_code = $1`

	err := r.db.GetContext(ctx, rec, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Link, error) {
	const op = "database.postgres.LinkRepository.GetByUserID"

	var recs []linkRecord
	query := `SELECT * FROM links WHERE user_id = $1 ORDER BY created_at, link_id`

	if err := r.db.SelectContext(ctx, &recs, query, userID); err != nil {
		return nil, fmt.Errorf("%s: failed to list link records: %w", op, err)
	}

	links := make([]models.Link, 0, len(recs))
	for i := range recs {
		links = append(links, *recs[i].ToLink())
	}

	return links, nil
}

// Update rewrites the mutable fields of a link. The shortened code itself is
// immutable and only used as the row key.
func (r *LinkRepository) Update(ctx context.Context, code, originalURL, completeURL, qrPath string, expiresAt *time.Time) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Update"

	rec := new(linkRecord)
	query := `UPDATE links
		SET original_url = $1, complete_shortened_url = $2, qr_code_path = $3, expires_at = $4
		WHERE shortened_code = $5
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, originalURL, completeURL, qrPath, expiresAt, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, database.ErrLinkNotFound)
		}

		return nil, fmt.Errorf("%s: failed to update link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

// Delete removes the link with the given code and reports whether a row was
// actually removed. A missing row is a normal outcome, not an error.
func (r *LinkRepository) Delete(ctx context.Context, code string) (bool, error) {
	const op = "database.postgres.LinkRepository.Delete"

	query := `DELETE FROM links WHERE shortened_code = $1`

	res, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("%s: failed to delete link record: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: failed to get affected rows: %w", op, err)
	}

	return rows > 0, nil
}
