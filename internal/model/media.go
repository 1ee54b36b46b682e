package model

import (
	"time"
)

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

func (k MediaKind) Valid() bool {
	return k == MediaKindImage || k == MediaKindVideo
}

type MediaStatus string

const (
	// MediaStatusPending means the file was uploaded but no entity has claimed it yet.
	MediaStatusPending MediaStatus = "pending"
	// MediaStatusAttached means at least one entity write has claimed the file.
	MediaStatusAttached MediaStatus = "attached"
)

// Media is one uploaded file in the registry. It never records which entity
// references it; owners point at media, not the other way around.
type Media struct {
	ID           string      `db:"id" json:"id"`
	StorageID    string      `db:"storage_id" json:"storageId"` // Key on the media host, required for remote deletion
	URL          string      `db:"url" json:"url"`
	Kind         MediaKind   `db:"kind" json:"kind"`
	Status       MediaStatus `db:"status" json:"status"`
	Folder       string      `db:"folder" json:"folder"` // Upload flow that produced the file, informational only
	OriginalName string      `db:"original_name" json:"originalName"`
	MimeType     string      `db:"mime_type" json:"mimeType"`
	Size         int64       `db:"size" json:"size"`
	CreatedAt    time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updatedAt"`
}

func (m *Media) IsPending() bool {
	return m.Status == MediaStatusPending
}

// MediaHolder is implemented by entities that reference media through
// single-file columns and an optional ordered gallery.
type MediaHolder interface {
	EntityID() string
	// MediaIDs maps each media column to the entity's current value.
	MediaIDs() map[string]*string
	SetMedia(column string, m *Media)
	SetGallery(items []*Media)
}
