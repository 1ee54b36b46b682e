package model

import (
	"time"
)

type Project struct {
	ID           string    `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	TitleKey     string    `db:"title_key" json:"-"`
	Slug         string    `db:"slug" json:"slug"`
	Description  string    `db:"description" json:"description"`
	ClientName   string    `db:"client_name" json:"clientName"`
	Location     string    `db:"location" json:"location"`
	CoverImageID *string   `db:"cover_image_id" json:"coverImageId"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	CoverImage *Media   `db:"-" json:"coverImage,omitempty"`
	Images     []*Media `db:"-" json:"images"`
}

func (p *Project) EntityID() string { return p.ID }

func (p *Project) MediaIDs() map[string]*string {
	return map[string]*string{"cover_image_id": p.CoverImageID}
}

func (p *Project) SetMedia(column string, m *Media) {
	if column == "cover_image_id" {
		p.CoverImage = m
	}
}

func (p *Project) SetGallery(items []*Media) { p.Images = items }
