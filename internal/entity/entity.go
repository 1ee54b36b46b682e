// Package entity describes the owning entity kinds that reference media.
//
// A Descriptor lists everything the generic attachment algorithm needs to know
// about a kind: its table, which columns hold single media references, the
// gallery join table, the case-insensitive unique fields and whether rows keep
// a manual display order.
package entity

import (
	"github.com/templui/showcase/internal/model"
)

// MediaSlot is a single nullable media foreign key on the entity row.
type MediaSlot struct {
	Field    string // Payload field name, used in error messages
	Column   string
	Kind     model.MediaKind
	Required bool
}

// Gallery is an ordered join table (owner, media_id, position).
type Gallery struct {
	Field       string
	Table       string
	OwnerColumn string
	Kind        model.MediaKind
	Min         int
	Max         int
}

// UniqueField is compared case-insensitively. KeyColumn stores the folded
// value and carries the unique index; when empty, Column itself is folded.
type UniqueField struct {
	Field     string
	Column    string
	KeyColumn string
}

func (u UniqueField) IndexColumn() string {
	if u.KeyColumn != "" {
		return u.KeyColumn
	}
	return u.Column
}

type Descriptor struct {
	Kind        string
	Table       string
	Columns     []string // Plain business columns, written verbatim from Input.Fields
	Unique      []UniqueField
	Media       []MediaSlot
	Gallery     *Gallery
	OrderColumn string // Manual display order, contiguous from 1; empty when unordered
}

func (d *Descriptor) Ordered() bool {
	return d.OrderColumn != ""
}

// MediaColumns returns every single-media column of the kind.
func (d *Descriptor) MediaColumns() []string {
	cols := make([]string, 0, len(d.Media))
	for _, slot := range d.Media {
		cols = append(cols, slot.Column)
	}
	return cols
}

// Input is the state an entity write wants to reach.
type Input struct {
	Fields  map[string]any    // Keyed by column: plain and unique columns
	Media   map[string]string // Keyed by media column; empty string means no media
	Gallery []string          // Ordered gallery media ids
}

// Claimed returns every media id the input references, deduplicated, in slot
// order followed by gallery order.
func (in Input) Claimed(d *Descriptor) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, slot := range d.Media {
		id := in.Media[slot.Column]
		if id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if d.Gallery != nil {
		for _, id := range in.Gallery {
			if id != "" && !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// Refs is the media an existing entity row holds.
type Refs struct {
	Media   map[string]string // Keyed by media column; absent when NULL
	Gallery []string
	Order   int
}

// IDs returns the distinct media ids in r.
func (r Refs) IDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, id := range r.Media {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, id := range r.Gallery {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
