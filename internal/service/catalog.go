package service

import (
	"context"
	"fmt"

	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
)

// Catalog is the typed read and write surface of one entity kind. Writes go
// through the Coordinator; reads return models with their media hydrated.
type Catalog[T any, PT interface {
	*T
	model.MediaHolder
}] struct {
	d          *entity.Descriptor
	coord      *Coordinator
	entityRepo repository.EntityRepository
	media      *MediaService
}

func NewCatalog[T any, PT interface {
	*T
	model.MediaHolder
}](d *entity.Descriptor, coord *Coordinator, entityRepo repository.EntityRepository, media *MediaService) *Catalog[T, PT] {
	return &Catalog[T, PT]{
		d:          d,
		coord:      coord,
		entityRepo: entityRepo,
		media:      media,
	}
}

func (c *Catalog[T, PT]) Create(ctx context.Context, in entity.Input) (PT, error) {
	id, err := c.coord.Create(ctx, c.d, in)
	if err != nil {
		return nil, err
	}
	return c.ByID(ctx, id)
}

func (c *Catalog[T, PT]) Update(ctx context.Context, id string, in entity.Input) (PT, error) {
	err := c.coord.Update(ctx, c.d, id, in)
	if err != nil {
		return nil, err
	}
	return c.ByID(ctx, id)
}

func (c *Catalog[T, PT]) Delete(ctx context.Context, id string) error {
	return c.coord.Delete(ctx, c.d, id)
}

func (c *Catalog[T, PT]) ByID(ctx context.Context, id string) (PT, error) {
	return c.get(ctx, "id", id)
}

func (c *Catalog[T, PT]) BySlug(ctx context.Context, slug string) (PT, error) {
	return c.get(ctx, "slug", slug)
}

func (c *Catalog[T, PT]) get(ctx context.Context, column, value string) (PT, error) {
	item := PT(new(T))
	err := c.entityRepo.Get(ctx, c.d, column, value, item)
	if err != nil {
		return nil, err
	}

	err = c.hydrate(ctx, []PT{item})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// List returns every row of the kind, in display order when the kind has one
// and newest first otherwise.
func (c *Catalog[T, PT]) List(ctx context.Context) ([]PT, error) {
	items := []PT{}
	err := c.entityRepo.List(ctx, c.d, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", c.d.Kind, err)
	}

	err = c.hydrate(ctx, items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Catalog[T, PT]) hydrate(ctx context.Context, items []PT) error {
	if len(items) == 0 {
		return nil
	}

	ownerIDs := make([]string, 0, len(items))
	var mediaIDs []string
	for _, item := range items {
		ownerIDs = append(ownerIDs, item.EntityID())
		for _, id := range item.MediaIDs() {
			if id != nil && *id != "" {
				mediaIDs = append(mediaIDs, *id)
			}
		}
	}

	galleries, err := c.entityRepo.Gallery(ctx, c.d, ownerIDs)
	if err != nil {
		return fmt.Errorf("failed to load %s galleries: %w", c.d.Kind, err)
	}
	for _, ids := range galleries {
		mediaIDs = append(mediaIDs, ids...)
	}

	records, err := c.media.ByIDs(ctx, mediaIDs)
	if err != nil {
		return fmt.Errorf("failed to load %s media: %w", c.d.Kind, err)
	}

	for _, item := range items {
		for column, id := range item.MediaIDs() {
			if id != nil {
				item.SetMedia(column, records[*id])
			}
		}
		if c.d.Gallery != nil {
			gallery := make([]*model.Media, 0, len(galleries[item.EntityID()]))
			for _, id := range galleries[item.EntityID()] {
				if m, ok := records[id]; ok {
					gallery = append(gallery, m)
				}
			}
			item.SetGallery(gallery)
		}
	}

	return nil
}
