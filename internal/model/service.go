package model

import (
	"time"
)

// Service is an offering listed on the marketing site, shown in display order.
type Service struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	TitleKey     string    `db:"title_key" json:"-"`
	Slug         string    `db:"slug" json:"slug"`
	Summary      string    `db:"summary" json:"summary"`
	Body         string    `db:"body" json:"body"`
	ThumbnailID  *string   `db:"thumbnail_id" json:"thumbnailId"`
	CoverImageID *string   `db:"cover_image_id" json:"coverImageId"`
	DisplayOrder int       `db:"display_order" json:"displayOrder"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	Thumbnail  *Media `db:"-" json:"thumbnail,omitempty"`
	CoverImage *Media `db:"-" json:"coverImage,omitempty"`
}

func (s *Service) EntityID() string { return s.ID }

func (s *Service) MediaIDs() map[string]*string {
	return map[string]*string{
		"thumbnail_id":   s.ThumbnailID,
		"cover_image_id": s.CoverImageID,
	}
}

func (s *Service) SetMedia(column string, m *Media) {
	switch column {
	case "thumbnail_id":
		s.Thumbnail = m
	case "cover_image_id":
		s.CoverImage = m
	}
}

func (s *Service) SetGallery([]*Media) {}
