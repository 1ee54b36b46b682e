package entity

import (
	"github.com/templui/showcase/internal/model"
)

const (
	KindProduct = "product"
	KindService = "service"
	KindProject = "project"
	KindClient  = "client"
)

var Product = &Descriptor{
	Kind:    KindProduct,
	Table:   "products",
	Columns: []string{"description"},
	Unique: []UniqueField{
		{Field: "title", Column: "title", KeyColumn: "title_key"},
		{Field: "slug", Column: "slug"},
	},
	Media: []MediaSlot{
		{Field: "thumbnailId", Column: "thumbnail_id", Kind: model.MediaKindImage, Required: true},
		{Field: "videoId", Column: "video_id", Kind: model.MediaKindVideo, Required: true},
	},
	Gallery: &Gallery{
		Field:       "imageIds",
		Table:       "product_images",
		OwnerColumn: "product_id",
		Kind:        model.MediaKindImage,
		Min:         1,
		Max:         8,
	},
}

var Service = &Descriptor{
	Kind:    KindService,
	Table:   "services",
	Columns: []string{"summary", "body"},
	Unique: []UniqueField{
		{Field: "title", Column: "title", KeyColumn: "title_key"},
		{Field: "slug", Column: "slug"},
	},
	Media: []MediaSlot{
		{Field: "thumbnailId", Column: "thumbnail_id", Kind: model.MediaKindImage, Required: true},
		{Field: "coverImageId", Column: "cover_image_id", Kind: model.MediaKindImage},
	},
	OrderColumn: "display_order",
}

var Project = &Descriptor{
	Kind:    KindProject,
	Table:   "projects",
	Columns: []string{"description", "client_name", "location"},
	Unique: []UniqueField{
		{Field: "title", Column: "title", KeyColumn: "title_key"},
		{Field: "slug", Column: "slug"},
	},
	Media: []MediaSlot{
		{Field: "coverImageId", Column: "cover_image_id", Kind: model.MediaKindImage, Required: true},
	},
	Gallery: &Gallery{
		Field:       "imageIds",
		Table:       "project_images",
		OwnerColumn: "project_id",
		Kind:        model.MediaKindImage,
		Min:         1,
		Max:         8,
	},
}

var Client = &Descriptor{
	Kind:    KindClient,
	Table:   "clients",
	Columns: []string{"website"},
	Unique: []UniqueField{
		{Field: "name", Column: "name", KeyColumn: "name_key"},
		{Field: "slug", Column: "slug"},
	},
	Media: []MediaSlot{
		{Field: "logoId", Column: "logo_id", Kind: model.MediaKindImage, Required: true},
	},
	OrderColumn: "display_order",
}

// All lists every kind that can reference media. Reference counting before a
// release consults each of them.
func All() []*Descriptor {
	return []*Descriptor{Product, Service, Project, Client}
}
