package handler

import (
	"log/slog"
	"net/http"

	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/service"
	"github.com/templui/showcase/internal/validation"
)

// Files up to this size are buffered in memory; larger parts spill to disk.
const multipartMemory = 32 << 20

type MediaHandler struct {
	mediaService *service.MediaService
	maxUpload    int64
}

func NewMediaHandler(mediaService *service.MediaService, maxUploadMB int) *MediaHandler {
	return &MediaHandler{
		mediaService: mediaService,
		maxUpload:    int64(maxUploadMB) << 20,
	}
}

// Upload proxies a multipart file to the media host and registers it as pending.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave headroom for the multipart envelope
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))

	err := r.ParseMultipartForm(multipartMemory)
	if err != nil {
		writeError(w, r, validation.Invalid("file", "failed to parse upload"))
		return
	}
	defer func() {
		removeErr := r.MultipartForm.RemoveAll()
		if removeErr != nil {
			slog.Error("failed to remove multipart files", "error", removeErr)
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, validation.Invalid("file", "no file uploaded"))
		return
	}
	closeErr := file.Close()
	if closeErr != nil {
		slog.Error("failed to close file", "error", closeErr)
	}

	media, err := h.mediaService.Upload(r.Context(), r.FormValue("folder"), header)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, media)
}

func (h *MediaHandler) Sign(w http.ResponseWriter, r *http.Request) {
	var in service.SignInput
	err := decodeBody(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	signed, err := h.mediaService.SignUpload(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signed)
}

func (h *MediaHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	err := decodeBody(w, r, &in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	media, err := h.mediaService.Register(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, media)
}

func (h *MediaHandler) List(w http.ResponseWriter, r *http.Request) {
	status := model.MediaStatus(r.URL.Query().Get("status"))

	items, err := h.mediaService.List(r.Context(), status, queryInt(r, "limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	media, err := h.mediaService.ByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, media)
}

// Delete discards a file no entity references. Referenced files yield 409.
func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.mediaService.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
