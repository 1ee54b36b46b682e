package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/model"
)

var (
	ErrMediaNotFound = errors.New("media not found")
)

// MediaRepository is the media registry table.
type MediaRepository interface {
	WithTx(tx *sqlx.Tx) MediaRepository
	Create(ctx context.Context, media *model.Media) error
	ByID(ctx context.Context, id string) (*model.Media, error)
	// ByIDs loads the given records keyed by id; missing ids are absent.
	// With lock set, rows stay locked until the surrounding transaction ends.
	ByIDs(ctx context.Context, ids []string, lock bool) (map[string]*model.Media, error)
	List(ctx context.Context, status model.MediaStatus, limit int) ([]*model.Media, error)
	// MarkAttached flips pending rows to attached. Rows already attached are
	// not written, so repeated claims cost nothing.
	MarkAttached(ctx context.Context, ids []string, now time.Time) (int64, error)
	Delete(ctx context.Context, ids ...string) (int64, error)
	// ExpiredPending lists pending rows created before cutoff, oldest first.
	ExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Media, error)
	// DeletePending removes id only while it is still pending and older than
	// cutoff, returning the removed row. Otherwise it returns ErrMediaNotFound.
	// Inside a transaction the row stays write-locked until commit.
	DeletePending(ctx context.Context, id string, cutoff time.Time) (*model.Media, error)
	// KnownStorageIDs returns which of the given storage ids have a row.
	KnownStorageIDs(ctx context.Context, storageIDs []string) (map[string]bool, error)
}

type mediaRepository struct {
	db sqlx.ExtContext
}

func NewMediaRepository(db sqlx.ExtContext) MediaRepository {
	return &mediaRepository{db: db}
}

func (r *mediaRepository) WithTx(tx *sqlx.Tx) MediaRepository {
	return &mediaRepository{db: tx}
}

func (r *mediaRepository) Create(ctx context.Context, media *model.Media) error {
	query := `INSERT INTO media (id, storage_id, url, kind, status, folder, original_name, mime_type, size, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		media.ID,
		media.StorageID,
		media.URL,
		string(media.Kind),
		string(media.Status),
		media.Folder,
		media.OriginalName,
		media.MimeType,
		media.Size,
		media.CreatedAt,
		media.UpdatedAt,
	)

	return err
}

func (r *mediaRepository) ByID(ctx context.Context, id string) (*model.Media, error) {
	media := &model.Media{}
	query := `SELECT * FROM media WHERE id = $1`

	err := sqlx.GetContext(ctx, r.db, media, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *mediaRepository) ByIDs(ctx context.Context, ids []string, lock bool) (map[string]*model.Media, error) {
	result := make(map[string]*model.Media, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT * FROM media WHERE id IN (?) ORDER BY id`
	if lock {
		query += db.ForUpdate(r.db)
	}
	query, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}

	var media []*model.Media
	err = sqlx.SelectContext(ctx, r.db, &media, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, m := range media {
		result[m.ID] = m
	}
	return result, nil
}

func (r *mediaRepository) List(ctx context.Context, status model.MediaStatus, limit int) ([]*model.Media, error) {
	var media []*model.Media
	var err error

	if status == "" {
		query := `SELECT * FROM media ORDER BY created_at DESC LIMIT $1`
		err = sqlx.SelectContext(ctx, r.db, &media, query, limit)
	} else {
		query := `SELECT * FROM media WHERE status = $1 ORDER BY created_at DESC LIMIT $2`
		err = sqlx.SelectContext(ctx, r.db, &media, query, string(status), limit)
	}
	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *mediaRepository) MarkAttached(ctx context.Context, ids []string, now time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE media SET status = ?, updated_at = ? WHERE status = ? AND id IN (?)`,
		string(model.MediaStatusAttached), now, string(model.MediaStatusPending), ids)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *mediaRepository) Delete(ctx context.Context, ids ...string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM media WHERE id IN (?)`, ids)
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

func (r *mediaRepository) ExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Media, error) {
	var media []*model.Media
	query := `SELECT * FROM media WHERE status = $1 AND created_at < $2 ORDER BY created_at ASC LIMIT $3`

	err := sqlx.SelectContext(ctx, r.db, &media, query, string(model.MediaStatusPending), cutoff, limit)
	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *mediaRepository) DeletePending(ctx context.Context, id string, cutoff time.Time) (*model.Media, error) {
	media := &model.Media{}
	query := `DELETE FROM media WHERE id = $1 AND status = $2 AND created_at < $3 RETURNING *`

	err := sqlx.GetContext(ctx, r.db, media, query, id, string(model.MediaStatusPending), cutoff)
	if err == sql.ErrNoRows {
		return nil, ErrMediaNotFound
	}
	if err != nil {
		return nil, err
	}

	return media, nil
}

func (r *mediaRepository) KnownStorageIDs(ctx context.Context, storageIDs []string) (map[string]bool, error) {
	known := make(map[string]bool, len(storageIDs))
	if len(storageIDs) == 0 {
		return known, nil
	}

	query, args, err := sqlx.In(`SELECT storage_id FROM media WHERE storage_id IN (?)`, storageIDs)
	if err != nil {
		return nil, err
	}

	var found []string
	err = sqlx.SelectContext(ctx, r.db, &found, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		known[id] = true
	}
	return known, nil
}
