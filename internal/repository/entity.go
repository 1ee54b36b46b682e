package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/entity"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
)

// EntityRepository persists any entity kind described by an entity.Descriptor.
// Table and column names come from the descriptors, never from user input.
type EntityRepository interface {
	WithTx(tx *sqlx.Tx) EntityRepository
	// Refs reads the media an entity currently holds. With lock set the entity
	// row stays locked until the surrounding transaction ends.
	Refs(ctx context.Context, d *entity.Descriptor, id string, lock bool) (*entity.Refs, error)
	Insert(ctx context.Context, d *entity.Descriptor, id string, in entity.Input, now time.Time) error
	Update(ctx context.Context, d *entity.Descriptor, id string, in entity.Input, now time.Time) error
	// Delete removes the gallery rows and then the entity row.
	Delete(ctx context.Context, d *entity.Descriptor, id string) error
	ReplaceGallery(ctx context.Context, d *entity.Descriptor, id string, mediaIDs []string) error
	// LockOrder serializes writers that change the display order of d until
	// the surrounding transaction ends. Call it before reading the order.
	LockOrder(ctx context.Context, d *entity.Descriptor) error
	NextOrder(ctx context.Context, d *entity.Descriptor) (int, error)
	// CloseOrderGap shifts every sibling above order down by one.
	CloseOrderGap(ctx context.Context, d *entity.Descriptor, order int) error
	// Taken reports whether key is used by another row of the kind.
	Taken(ctx context.Context, d *entity.Descriptor, u entity.UniqueField, key, excludeID string) (bool, error)
	// ReferencedIDs returns which of ids are referenced by any row of kinds.
	ReferencedIDs(ctx context.Context, kinds []*entity.Descriptor, ids []string) (map[string]bool, error)
	Get(ctx context.Context, d *entity.Descriptor, column, value string, dest any) error
	List(ctx context.Context, d *entity.Descriptor, dest any) error
	// Gallery returns the ordered gallery media ids per owner.
	Gallery(ctx context.Context, d *entity.Descriptor, ownerIDs []string) (map[string][]string, error)
	Slugs(ctx context.Context, d *entity.Descriptor) ([]SlugRef, error)
}

// SlugRef is the public address of one entity row.
type SlugRef struct {
	Slug      string    `db:"slug"`
	UpdatedAt time.Time `db:"updated_at"`
}

type entityRepository struct {
	db sqlx.ExtContext
}

func NewEntityRepository(db sqlx.ExtContext) EntityRepository {
	return &entityRepository{db: db}
}

func (r *entityRepository) WithTx(tx *sqlx.Tx) EntityRepository {
	return &entityRepository{db: tx}
}

func (r *entityRepository) Refs(ctx context.Context, d *entity.Descriptor, id string, lock bool) (*entity.Refs, error) {
	cols := append([]string{"id"}, d.MediaColumns()...)
	if d.Ordered() {
		cols = append(cols, d.OrderColumn)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, strings.Join(cols, ", "), d.Table)
	if lock {
		query += db.ForUpdate(r.db)
	}

	var rowID string
	media := make([]sql.NullString, len(d.Media))
	var order sql.NullInt64
	dest := []any{&rowID}
	for i := range media {
		dest = append(dest, &media[i])
	}
	if d.Ordered() {
		dest = append(dest, &order)
	}

	err := r.db.QueryRowxContext(ctx, query, id).Scan(dest...)
	if err == sql.ErrNoRows {
		return nil, ErrEntityNotFound
	}
	if err != nil {
		return nil, err
	}

	refs := &entity.Refs{Media: make(map[string]string), Order: int(order.Int64)}
	for i, slot := range d.Media {
		if media[i].Valid && media[i].String != "" {
			refs.Media[slot.Column] = media[i].String
		}
	}

	if d.Gallery != nil {
		g := d.Gallery
		query := fmt.Sprintf(`SELECT media_id FROM %s WHERE %s = $1 ORDER BY position ASC`, g.Table, g.OwnerColumn)
		err = sqlx.SelectContext(ctx, r.db, &refs.Gallery, query, id)
		if err != nil {
			return nil, err
		}
	}

	return refs, nil
}

// fieldColumns lists the non-media columns written from Input.Fields.
func fieldColumns(d *entity.Descriptor) []string {
	cols := make([]string, 0, len(d.Columns)+2*len(d.Unique))
	for _, u := range d.Unique {
		cols = append(cols, u.Column)
		if u.KeyColumn != "" {
			cols = append(cols, u.KeyColumn)
		}
	}
	return append(cols, d.Columns...)
}

func mediaValue(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func (r *entityRepository) Insert(ctx context.Context, d *entity.Descriptor, id string, in entity.Input, now time.Time) error {
	cols := []string{"id"}
	args := []any{id}

	for _, col := range fieldColumns(d) {
		cols = append(cols, col)
		args = append(args, in.Fields[col])
	}
	for _, slot := range d.Media {
		cols = append(cols, slot.Column)
		args = append(args, mediaValue(in.Media[slot.Column]))
	}
	if d.Ordered() {
		cols = append(cols, d.OrderColumn)
		args = append(args, in.Fields[d.OrderColumn])
	}
	cols = append(cols, "created_at", "updated_at")
	args = append(args, now, now)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		d.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

func (r *entityRepository) Update(ctx context.Context, d *entity.Descriptor, id string, in entity.Input, now time.Time) error {
	var sets []string
	var args []any
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	for _, col := range fieldColumns(d) {
		set(col, in.Fields[col])
	}
	for _, slot := range d.Media {
		set(slot.Column, mediaValue(in.Media[slot.Column]))
	}
	set("updated_at", now)
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, d.Table, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntityNotFound
	}

	return nil
}

func (r *entityRepository) Delete(ctx context.Context, d *entity.Descriptor, id string) error {
	if d.Gallery != nil {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, d.Gallery.Table, d.Gallery.OwnerColumn)
		_, err := r.db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, d.Table)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrEntityNotFound
	}

	return nil
}

func (r *entityRepository) ReplaceGallery(ctx context.Context, d *entity.Descriptor, id string, mediaIDs []string) error {
	if d.Gallery == nil {
		return nil
	}
	g := d.Gallery

	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, g.Table, g.OwnerColumn)
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	query = fmt.Sprintf(`INSERT INTO %s (%s, media_id, position) VALUES ($1, $2, $3)`, g.Table, g.OwnerColumn)
	for i, mediaID := range mediaIDs {
		_, err = r.db.ExecContext(ctx, query, id, mediaID, i)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *entityRepository) LockOrder(ctx context.Context, d *entity.Descriptor) error {
	if !d.Ordered() {
		return nil
	}

	// SQLite has no table locks; a write that matches nothing still takes the
	// database write lock for the rest of the transaction.
	query := fmt.Sprintf(`UPDATE %s SET %s = %s WHERE 0 = 1`, d.Table, d.OrderColumn, d.OrderColumn)
	if r.db.DriverName() == "pgx" {
		// Self-conflicting, so concurrent ordered writers queue while readers proceed.
		query = fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, d.Table)
	}

	_, err := r.db.ExecContext(ctx, query)
	return err
}

func (r *entityRepository) NextOrder(ctx context.Context, d *entity.Descriptor) (int, error) {
	if !d.Ordered() {
		return 0, nil
	}

	var next int
	query := fmt.Sprintf(`SELECT COALESCE(MAX(%s), 0) + 1 FROM %s`, d.OrderColumn, d.Table)
	err := sqlx.GetContext(ctx, r.db, &next, query)
	if err != nil {
		return 0, err
	}

	return next, nil
}

func (r *entityRepository) CloseOrderGap(ctx context.Context, d *entity.Descriptor, order int) error {
	if !d.Ordered() {
		return nil
	}

	query := fmt.Sprintf(`UPDATE %s SET %s = %s - 1 WHERE %s > $1`,
		d.Table, d.OrderColumn, d.OrderColumn, d.OrderColumn)
	_, err := r.db.ExecContext(ctx, query, order)
	return err
}

func (r *entityRepository) Taken(ctx context.Context, d *entity.Descriptor, u entity.UniqueField, key, excludeID string) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1 AND id <> $2`, d.Table, u.IndexColumn())

	err := sqlx.GetContext(ctx, r.db, &count, query, key, excludeID)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *entityRepository) ReferencedIDs(ctx context.Context, kinds []*entity.Descriptor, ids []string) (map[string]bool, error) {
	referenced := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return referenced, nil
	}

	var selects []string
	for _, d := range kinds {
		for _, col := range d.MediaColumns() {
			selects = append(selects, fmt.Sprintf(`SELECT %s AS media_id FROM %s WHERE %s IN (?)`, col, d.Table, col))
		}
		if d.Gallery != nil {
			selects = append(selects, fmt.Sprintf(`SELECT media_id FROM %s WHERE media_id IN (?)`, d.Gallery.Table))
		}
	}
	if len(selects) == 0 {
		return referenced, nil
	}

	inArgs := make([]any, len(selects))
	for i := range inArgs {
		inArgs[i] = ids
	}

	query, args, err := sqlx.In(strings.Join(selects, " UNION "), inArgs...)
	if err != nil {
		return nil, err
	}

	var found []string
	err = sqlx.SelectContext(ctx, r.db, &found, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		referenced[id] = true
	}
	return referenced, nil
}

func (r *entityRepository) Get(ctx context.Context, d *entity.Descriptor, column, value string, dest any) error {
	if column != "id" && column != "slug" {
		return fmt.Errorf("unsupported lookup column %q", column)
	}

	query := fmt.Sprintf(`SELECT * FROM %s WHERE %s = $1`, d.Table, column)
	err := sqlx.GetContext(ctx, r.db, dest, query, value)
	if err == sql.ErrNoRows {
		return ErrEntityNotFound
	}
	return err
}

func (r *entityRepository) List(ctx context.Context, d *entity.Descriptor, dest any) error {
	order := "created_at DESC"
	if d.Ordered() {
		order = d.OrderColumn + " ASC"
	}

	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY %s`, d.Table, order)
	return sqlx.SelectContext(ctx, r.db, dest, query)
}

type galleryRow struct {
	OwnerID string `db:"owner_id"`
	MediaID string `db:"media_id"`
}

func (r *entityRepository) Gallery(ctx context.Context, d *entity.Descriptor, ownerIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(ownerIDs))
	if d.Gallery == nil || len(ownerIDs) == 0 {
		return result, nil
	}
	g := d.Gallery

	query, args, err := sqlx.In(fmt.Sprintf(
		`SELECT %s AS owner_id, media_id FROM %s WHERE %s IN (?) ORDER BY %s, position ASC`,
		g.OwnerColumn, g.Table, g.OwnerColumn, g.OwnerColumn), ownerIDs)
	if err != nil {
		return nil, err
	}

	var rows []galleryRow
	err = sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.OwnerID] = append(result[row.OwnerID], row.MediaID)
	}
	return result, nil
}

func (r *entityRepository) Slugs(ctx context.Context, d *entity.Descriptor) ([]SlugRef, error) {
	var refs []SlugRef
	query := fmt.Sprintf(`SELECT slug, updated_at FROM %s ORDER BY slug ASC`, d.Table)

	err := sqlx.SelectContext(ctx, r.db, &refs, query)
	if err != nil {
		return nil, err
	}

	return refs, nil
}
