package handler

import (
	"net/http"

	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/service"
)

// CatalogHandler serves one entity kind: public reads by slug and admin
// writes by id.
type CatalogHandler[T any, PT interface {
	*T
	model.MediaHolder
}] struct {
	catalog *service.Catalog[T, PT]
	decode  func(w http.ResponseWriter, r *http.Request) (entity.Input, error)
}

func NewCatalogHandler[T any, PT interface {
	*T
	model.MediaHolder
}](catalog *service.Catalog[T, PT], decode func(w http.ResponseWriter, r *http.Request) (entity.Input, error)) *CatalogHandler[T, PT] {
	return &CatalogHandler[T, PT]{
		catalog: catalog,
		decode:  decode,
	}
}

func (h *CatalogHandler[T, PT]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *CatalogHandler[T, PT]) Show(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.BySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, PT]) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, PT]) Create(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.catalog.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// Update replaces the whole entity; omitted media fields detach their file.
func (h *CatalogHandler[T, PT]) Update(w http.ResponseWriter, r *http.Request) {
	in, err := h.decode(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	item, err := h.catalog.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *CatalogHandler[T, PT]) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.catalog.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
