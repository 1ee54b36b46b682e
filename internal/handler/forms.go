package handler

import (
	"net/http"

	"github.com/templui/showcase/internal/entity"
)

// Media fields are checked by the coordinator against the kind's descriptor,
// so the forms only bound their sizes.

type ProductForm struct {
	Title       string   `json:"title" validate:"max=200"`
	Slug        string   `json:"slug" validate:"max=120"`
	Description string   `json:"description" validate:"max=10000"`
	ThumbnailID string   `json:"thumbnailId" validate:"max=64"`
	VideoID     string   `json:"videoId" validate:"max=64"`
	ImageIDs    []string `json:"imageIds" validate:"max=32"`
}

func (f ProductForm) Input() entity.Input {
	return entity.Input{
		Fields: map[string]any{
			"title":       f.Title,
			"slug":        f.Slug,
			"description": f.Description,
		},
		Media: map[string]string{
			"thumbnail_id": f.ThumbnailID,
			"video_id":     f.VideoID,
		},
		Gallery: f.ImageIDs,
	}
}

type ServiceForm struct {
	Title        string `json:"title" validate:"max=200"`
	Slug         string `json:"slug" validate:"max=120"`
	Summary      string `json:"summary" validate:"max=500"`
	Body         string `json:"body" validate:"max=20000"`
	ThumbnailID  string `json:"thumbnailId" validate:"max=64"`
	CoverImageID string `json:"coverImageId" validate:"max=64"`
}

func (f ServiceForm) Input() entity.Input {
	return entity.Input{
		Fields: map[string]any{
			"title":   f.Title,
			"slug":    f.Slug,
			"summary": f.Summary,
			"body":    f.Body,
		},
		Media: map[string]string{
			"thumbnail_id":   f.ThumbnailID,
			"cover_image_id": f.CoverImageID,
		},
	}
}

type ProjectForm struct {
	Title        string   `json:"title" validate:"max=200"`
	Slug         string   `json:"slug" validate:"max=120"`
	Description  string   `json:"description" validate:"max=10000"`
	ClientName   string   `json:"clientName" validate:"max=150"`
	Location     string   `json:"location" validate:"max=150"`
	CoverImageID string   `json:"coverImageId" validate:"max=64"`
	ImageIDs     []string `json:"imageIds" validate:"max=32"`
}

func (f ProjectForm) Input() entity.Input {
	return entity.Input{
		Fields: map[string]any{
			"title":       f.Title,
			"slug":        f.Slug,
			"description": f.Description,
			"client_name": f.ClientName,
			"location":    f.Location,
		},
		Media: map[string]string{
			"cover_image_id": f.CoverImageID,
		},
		Gallery: f.ImageIDs,
	}
}

type ClientForm struct {
	Name    string `json:"name" validate:"max=150"`
	Slug    string `json:"slug" validate:"max=120"`
	Website string `json:"website" validate:"omitempty,url,max=300"`
	LogoID  string `json:"logoId" validate:"max=64"`
}

func (f ClientForm) Input() entity.Input {
	return entity.Input{
		Fields: map[string]any{
			"name":    f.Name,
			"slug":    f.Slug,
			"website": f.Website,
		},
		Media: map[string]string{
			"logo_id": f.LogoID,
		},
	}
}

type form interface {
	Input() entity.Input
}

// DecodeForm reads a JSON payload of form type F into an entity input.
func DecodeForm[F form](w http.ResponseWriter, r *http.Request) (entity.Input, error) {
	var f F
	err := decodeJSON(w, r, &f)
	if err != nil {
		return entity.Input{}, err
	}
	return f.Input(), nil
}
