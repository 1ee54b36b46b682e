package model

import (
	"time"
)

type Product struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	TitleKey    string    `db:"title_key" json:"-"`
	Slug        string    `db:"slug" json:"slug"`
	Description string    `db:"description" json:"description"`
	ThumbnailID *string   `db:"thumbnail_id" json:"thumbnailId"`
	VideoID     *string   `db:"video_id" json:"videoId"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	Thumbnail *Media   `db:"-" json:"thumbnail,omitempty"`
	Video     *Media   `db:"-" json:"video,omitempty"`
	Images    []*Media `db:"-" json:"images"`
}

func (p *Product) EntityID() string { return p.ID }

func (p *Product) MediaIDs() map[string]*string {
	return map[string]*string{
		"thumbnail_id": p.ThumbnailID,
		"video_id":     p.VideoID,
	}
}

func (p *Product) SetMedia(column string, m *Media) {
	switch column {
	case "thumbnail_id":
		p.Thumbnail = m
	case "video_id":
		p.Video = m
	}
}

func (p *Product) SetGallery(items []*Media) { p.Images = items }
