package model

import (
	"time"
)

type Client struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	NameKey      string    `db:"name_key" json:"-"`
	Slug         string    `db:"slug" json:"slug"`
	Website      string    `db:"website" json:"website"`
	LogoID       *string   `db:"logo_id" json:"logoId"`
	DisplayOrder int       `db:"display_order" json:"displayOrder"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`

	// Computed fields (not in database)
	Logo *Media `db:"-" json:"logo,omitempty"`
}

func (c *Client) EntityID() string { return c.ID }

func (c *Client) MediaIDs() map[string]*string {
	return map[string]*string{"logo_id": c.LogoID}
}

func (c *Client) SetMedia(column string, m *Media) {
	if column == "logo_id" {
		c.Logo = m
	}
}

func (c *Client) SetGallery([]*Media) {}
