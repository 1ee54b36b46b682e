package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/validation"
)

// Coordinator keeps entity media references and the media registry consistent.
// Every write runs in one transaction: the entity row, its gallery rows, the
// claims and the releases commit or roll back together. Remote deletes of
// released files happen after commit.
type Coordinator struct {
	db         *sqlx.DB
	entityRepo repository.EntityRepository
	mediaRepo  repository.MediaRepository
	media      *MediaService
	now        func() time.Time
}

func NewCoordinator(
	db *sqlx.DB,
	entityRepo repository.EntityRepository,
	mediaRepo repository.MediaRepository,
	media *MediaService,
) *Coordinator {
	return &Coordinator{
		db:         db,
		entityRepo: entityRepo,
		mediaRepo:  mediaRepo,
		media:      media,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new entity of kind d and claims every media id it references.
func (c *Coordinator) Create(ctx context.Context, d *entity.Descriptor, in entity.Input) (string, error) {
	err := c.prepare(d, &in)
	if err != nil {
		return "", err
	}

	id := uuid.New().String()
	claimed := in.Claimed(d)

	err = db.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		entityRepo := c.entityRepo.WithTx(tx)

		err := entityRepo.LockOrder(ctx, d)
		if err != nil {
			return fmt.Errorf("failed to lock %s order: %w", d.Kind, err)
		}

		err = c.checkUnique(ctx, entityRepo, d, in, "")
		if err != nil {
			return err
		}

		err = c.checkMedia(ctx, tx, d, in, claimed)
		if err != nil {
			return err
		}

		if d.Ordered() {
			order, err := entityRepo.NextOrder(ctx, d)
			if err != nil {
				return fmt.Errorf("failed to compute %s order: %w", d.Kind, err)
			}
			in.Fields[d.OrderColumn] = order
		}

		err = entityRepo.Insert(ctx, d, id, in, c.now())
		if err != nil {
			return c.writeError(d, "create", err)
		}

		err = entityRepo.ReplaceGallery(ctx, d, id, in.Gallery)
		if err != nil {
			return fmt.Errorf("failed to write %s gallery: %w", d.Kind, err)
		}

		_, err = c.media.MarkAttached(ctx, tx, claimed...)
		return err
	})
	if err != nil {
		return "", err
	}

	slog.Info("entity created", "kind", d.Kind, "id", id, "media", len(claimed))
	return id, nil
}

// Update rewrites the entity and diffs its media: newly referenced ids are
// claimed, ids no longer referenced anywhere are released.
func (c *Coordinator) Update(ctx context.Context, d *entity.Descriptor, id string, in entity.Input) error {
	err := c.prepare(d, &in)
	if err != nil {
		return err
	}

	after := in.Claimed(d)
	var released []*model.Media

	err = db.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		entityRepo := c.entityRepo.WithTx(tx)

		before, err := entityRepo.Refs(ctx, d, id, true)
		if err != nil {
			return err
		}

		err = c.checkUnique(ctx, entityRepo, d, in, id)
		if err != nil {
			return err
		}

		err = c.checkMedia(ctx, tx, d, in, after)
		if err != nil {
			return err
		}

		err = entityRepo.Update(ctx, d, id, in, c.now())
		if err != nil {
			return c.writeError(d, "update", err)
		}

		if d.Gallery != nil && !slices.Equal(before.Gallery, in.Gallery) {
			err = entityRepo.ReplaceGallery(ctx, d, id, in.Gallery)
			if err != nil {
				return fmt.Errorf("failed to write %s gallery: %w", d.Kind, err)
			}
		}

		beforeIDs := before.IDs()
		toClaim := difference(after, beforeIDs)
		toRelease := difference(beforeIDs, after)

		_, err = c.media.MarkAttached(ctx, tx, toClaim...)
		if err != nil {
			return err
		}

		released, err = c.media.Release(ctx, tx, toRelease)
		return err
	})
	if err != nil {
		return err
	}

	c.media.DeleteRemote(ctx, "update", released)
	slog.Info("entity updated", "kind", d.Kind, "id", id, "released", len(released))
	return nil
}

// Delete removes the entity, closes the display order gap it leaves and
// releases every media id it held.
func (c *Coordinator) Delete(ctx context.Context, d *entity.Descriptor, id string) error {
	var released []*model.Media

	err := db.WithTx(ctx, c.db, func(tx *sqlx.Tx) error {
		entityRepo := c.entityRepo.WithTx(tx)

		err := entityRepo.LockOrder(ctx, d)
		if err != nil {
			return fmt.Errorf("failed to lock %s order: %w", d.Kind, err)
		}

		before, err := entityRepo.Refs(ctx, d, id, true)
		if err != nil {
			return err
		}

		err = entityRepo.Delete(ctx, d, id)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", d.Kind, err)
		}

		if d.Ordered() {
			err = entityRepo.CloseOrderGap(ctx, d, before.Order)
			if err != nil {
				return fmt.Errorf("failed to reorder %s: %w", d.Kind, err)
			}
		}

		released, err = c.media.Release(ctx, tx, before.IDs())
		return err
	})
	if err != nil {
		return err
	}

	c.media.DeleteRemote(ctx, "delete", released)
	slog.Info("entity deleted", "kind", d.Kind, "id", id, "released", len(released))
	return nil
}

// prepare normalizes in and checks everything that does not need the database.
func (c *Coordinator) prepare(d *entity.Descriptor, in *entity.Input) error {
	in.Fields = maps.Clone(in.Fields)
	if in.Fields == nil {
		in.Fields = make(map[string]any)
	}
	in.Media = maps.Clone(in.Media)
	if in.Media == nil {
		in.Media = make(map[string]string)
	}
	in.Gallery = slices.Clone(in.Gallery)

	for _, col := range d.Columns {
		v, _ := in.Fields[col].(string)
		in.Fields[col] = strings.TrimSpace(v)
	}

	// Names and titles first; a missing slug is derived from the first of them.
	var source string
	for _, u := range d.Unique {
		if u.Column == "slug" {
			continue
		}
		v, _ := in.Fields[u.Column].(string)
		v = strings.TrimSpace(v)
		err := validation.ValidateTitle(v)
		if err != nil {
			return validation.Invalid(u.Field, err.Error())
		}
		in.Fields[u.Column] = v
		if u.KeyColumn != "" {
			in.Fields[u.KeyColumn] = validation.Key(v)
		}
		if source == "" {
			source = v
		}
	}
	for _, u := range d.Unique {
		if u.Column != "slug" {
			continue
		}
		v, _ := in.Fields[u.Column].(string)
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			v = validation.Slugify(source)
		}
		err := validation.ValidateSlug(v)
		if err != nil {
			return validation.Invalid(u.Field, err.Error())
		}
		in.Fields[u.Column] = v
	}

	for _, slot := range d.Media {
		in.Media[slot.Column] = strings.TrimSpace(in.Media[slot.Column])
		if slot.Required && in.Media[slot.Column] == "" {
			return validation.Invalid(slot.Field, "is required")
		}
	}

	if d.Gallery == nil {
		in.Gallery = nil
		return nil
	}

	g := d.Gallery
	if len(in.Gallery) < g.Min {
		return validation.Invalid(g.Field, fmt.Sprintf("must contain at least %d items", g.Min))
	}
	if len(in.Gallery) > g.Max {
		return validation.Invalid(g.Field, fmt.Sprintf("must contain at most %d items", g.Max))
	}
	seen := make(map[string]bool, len(in.Gallery))
	for i, id := range in.Gallery {
		id = strings.TrimSpace(id)
		if id == "" {
			return validation.Invalid(g.Field, "must not contain empty ids")
		}
		if seen[id] {
			return validation.Invalid(g.Field, "must not contain the same media twice")
		}
		seen[id] = true
		in.Gallery[i] = id
	}

	return nil
}

// checkUnique compares case-folded keys inside the write transaction.
func (c *Coordinator) checkUnique(ctx context.Context, repo repository.EntityRepository, d *entity.Descriptor, in entity.Input, excludeID string) error {
	for _, u := range d.Unique {
		v, _ := in.Fields[u.Column].(string)
		taken, err := repo.Taken(ctx, d, u, validation.Key(v), excludeID)
		if err != nil {
			return fmt.Errorf("failed to check %s uniqueness: %w", u.Field, err)
		}
		if taken {
			return validation.Duplicate(u.Field, fmt.Sprintf("a %s with this %s already exists", d.Kind, u.Field))
		}
	}
	return nil
}

// checkMedia loads and locks every referenced media record and verifies it
// exists and has the kind its slot expects.
func (c *Coordinator) checkMedia(ctx context.Context, tx *sqlx.Tx, d *entity.Descriptor, in entity.Input, ids []string) error {
	records, err := c.mediaRepo.WithTx(tx).ByIDs(ctx, ids, true)
	if err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}

	check := func(field, id string, kind model.MediaKind) error {
		m, ok := records[id]
		if !ok {
			return validation.Invalid(field, fmt.Sprintf("media %s does not exist", id))
		}
		if m.Kind != kind {
			return validation.Invalid(field, fmt.Sprintf("must be %s media, got %s", kind, m.Kind))
		}
		return nil
	}

	for _, slot := range d.Media {
		id := in.Media[slot.Column]
		if id == "" {
			continue
		}
		err := check(slot.Field, id, slot.Kind)
		if err != nil {
			return err
		}
	}
	if d.Gallery != nil {
		for _, id := range in.Gallery {
			err := check(d.Gallery.Field, id, d.Gallery.Kind)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

// writeError turns constraint failures that slipped past the checks into
// client errors.
func (c *Coordinator) writeError(d *entity.Descriptor, op string, err error) error {
	if errors.Is(err, repository.ErrEntityNotFound) {
		return err
	}
	if db.IsUniqueViolation(err) {
		for _, u := range d.Unique {
			if strings.Contains(err.Error(), u.IndexColumn()) {
				return validation.Duplicate(u.Field, fmt.Sprintf("a %s with this %s already exists", d.Kind, u.Field))
			}
		}
		if len(d.Unique) > 0 {
			return validation.Duplicate(d.Unique[0].Field, fmt.Sprintf("a %s with this %s already exists", d.Kind, d.Unique[0].Field))
		}
	}
	if db.IsForeignKeyViolation(err) {
		return validation.Invalid("media", "references media that no longer exists")
	}
	return fmt.Errorf("failed to %s %s: %w", op, d.Kind, err)
}

// difference returns the ids of a that are not in b, keeping a's order.
func difference(a, b []string) []string {
	var out []string
	for _, id := range a {
		if !slices.Contains(b, id) {
			out = append(out, id)
		}
	}
	return out
}
