package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/storage"
	"github.com/templui/showcase/internal/validation"
)

const (
	defaultMediaListLimit = 50
	maxMediaListLimit     = 200
)

// RegisterInput describes a file that already sits on the media host.
type RegisterInput struct {
	StorageID    string          `json:"storageId" validate:"required,max=512"`
	URL          string          `json:"url" validate:"omitempty,url"`
	Kind         model.MediaKind `json:"kind" validate:"required,oneof=image video"`
	Folder       string          `json:"folder" validate:"max=64"`
	OriginalName string          `json:"originalName" validate:"max=255"`
	MimeType     string          `json:"mimeType" validate:"max=100"`
	Size         int64           `json:"size" validate:"gte=0"`
}

// SignInput asks for a direct upload authorization.
type SignInput struct {
	Folder      string `json:"folder" validate:"max=64"`
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
}

// MediaService is the media registry: it records uploaded files as pending
// and is the only place that talks to the media host.
type MediaService struct {
	db         *sqlx.DB
	mediaRepo  repository.MediaRepository
	entityRepo repository.EntityRepository
	host       storage.MediaHost
	kinds      []*entity.Descriptor
	images     validation.FileConstraints
	videos     validation.FileConstraints
	now        func() time.Time
}

func NewMediaService(
	db *sqlx.DB,
	mediaRepo repository.MediaRepository,
	entityRepo repository.EntityRepository,
	host storage.MediaHost,
	kinds []*entity.Descriptor,
	maxImageMB int,
	maxVideoMB int,
) *MediaService {
	return &MediaService{
		db:         db,
		mediaRepo:  mediaRepo,
		entityRepo: entityRepo,
		host:       host,
		kinds:      kinds,
		images:     validation.ImageConstraints.WithMaxSize(maxImageMB),
		videos:     validation.VideoConstraints.WithMaxSize(maxVideoMB),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Upload validates the file, stores it on the media host and registers it as pending.
func (s *MediaService) Upload(ctx context.Context, folder string, header *multipart.FileHeader) (*model.Media, error) {
	kind, mimeType, err := validation.DetectMedia(header, s.images, s.videos)
	if err != nil {
		return nil, validation.Invalid("file", err.Error())
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer func() { _ = file.Close() }()

	key := storage.NewKey(folder, header.Filename)
	obj, err := s.host.Upload(ctx, key, file, header.Size, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	media, err := s.create(ctx, RegisterInput{
		StorageID:    obj.Key,
		URL:          obj.URL,
		Kind:         kind,
		Folder:       folder,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         obj.Size,
	})
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded object
		delErr := s.host.Delete(context.WithoutCancel(ctx), obj.Key)
		if delErr != nil && !errors.Is(delErr, storage.ErrObjectNotFound) {
			slog.Error("failed to delete media from host during cleanup", "error", delErr, "storage_id", obj.Key)
		}
		return nil, err
	}

	slog.Info("media uploaded", "media_id", media.ID, "kind", media.Kind, "size", media.Size)
	return media, nil
}

// SignUpload authorizes a direct client upload. The file is registered by a
// later Register call once the client has finished sending the bytes.
func (s *MediaService) SignUpload(ctx context.Context, in SignInput) (*storage.SignedUpload, error) {
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}

	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	if _, err := s.constraintsFor(contentType, in.Filename); err != nil {
		return nil, err
	}

	key := storage.NewKey(in.Folder, in.Filename)
	signed, err := s.host.SignUpload(ctx, key, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to sign upload: %w", err)
	}

	return signed, nil
}

// Register records a directly uploaded file as pending. The object must exist
// on the media host under a key issued by SignUpload.
func (s *MediaService) Register(ctx context.Context, in RegisterInput) (*model.Media, error) {
	err := validation.Struct(in)
	if err != nil {
		return nil, err
	}
	if !storage.OwnsKey(in.StorageID) {
		return nil, validation.Invalid("storageId", "was not issued by this server")
	}

	info, err := s.host.Stat(ctx, in.StorageID)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, validation.Invalid("storageId", "upload has not completed")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat media: %w", err)
	}

	mimeType := in.MimeType
	if info.ContentType != "" {
		mimeType = info.ContentType
	}
	constraints, err := s.constraintsFor(mimeType, in.StorageID)
	if err != nil {
		return nil, err
	}
	if constraints.Kind != in.Kind {
		return nil, validation.Invalid("kind", fmt.Sprintf("does not match the uploaded file (%s)", constraints.Kind))
	}
	if info.Size > constraints.MaxSize {
		return nil, validation.Invalid("size", fmt.Sprintf("file too large: maximum size is %d MB", constraints.MaxSize>>20))
	}

	in.MimeType = mimeType
	in.Size = info.Size
	in.URL = s.host.URL(in.StorageID)
	return s.create(ctx, in)
}

func (s *MediaService) constraintsFor(contentType, filename string) (validation.FileConstraints, error) {
	for _, c := range []validation.FileConstraints{s.images, s.videos} {
		if c.AllowedMimeTypes[contentType] {
			if !c.AllowsExtension(filename) {
				return validation.FileConstraints{}, validation.Invalid("filename", "extension does not match the content type")
			}
			return c, nil
		}
	}
	return validation.FileConstraints{}, validation.Invalid("contentType", fmt.Sprintf("unsupported media type %q", contentType))
}

func (s *MediaService) create(ctx context.Context, in RegisterInput) (*model.Media, error) {
	if !in.Kind.Valid() {
		return nil, validation.Invalid("kind", "must be image or video")
	}
	if in.StorageID == "" || in.URL == "" {
		return nil, validation.Invalid("storageId", "is required")
	}

	now := s.now()
	media := &model.Media{
		ID:           uuid.New().String(),
		StorageID:    in.StorageID,
		URL:          in.URL,
		Kind:         in.Kind,
		Status:       model.MediaStatusPending,
		Folder:       storage.CleanFolder(in.Folder),
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         in.Size,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.mediaRepo.Create(ctx, media)
	if db.IsUniqueViolation(err) {
		return nil, validation.Duplicate("storageId", "is already registered")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create media record: %w", err)
	}

	return media, nil
}

// MarkAttached claims ids inside tx. Records that are already attached are left alone.
func (s *MediaService) MarkAttached(ctx context.Context, tx *sqlx.Tx, ids ...string) (int64, error) {
	n, err := s.mediaRepo.WithTx(tx).MarkAttached(ctx, ids, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to mark media attached: %w", err)
	}
	mediaClaimedTotal.Add(float64(n))
	return n, nil
}

// Release deletes the registry rows of ids that no entity references anymore
// and returns them. Rows that are still referenced are kept.
func (s *MediaService) Release(ctx context.Context, tx *sqlx.Tx, ids []string) ([]*model.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	referenced, err := s.entityRepo.WithTx(tx).ReferencedIDs(ctx, s.kinds, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count media references: %w", err)
	}

	var candidates []string
	for _, id := range ids {
		if !referenced[id] {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	mediaRepo := s.mediaRepo.WithTx(tx)
	records, err := mediaRepo.ByIDs(ctx, candidates, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load released media: %w", err)
	}

	released := make([]*model.Media, 0, len(records))
	deleteIDs := make([]string, 0, len(records))
	for _, id := range candidates {
		if m, ok := records[id]; ok {
			released = append(released, m)
			deleteIDs = append(deleteIDs, id)
		}
	}

	_, err = mediaRepo.Delete(ctx, deleteIDs...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete released media: %w", err)
	}

	return released, nil
}

// DeleteRemote removes released objects from the media host. It runs after the
// registry change has committed, so failures are logged and never returned.
func (s *MediaService) DeleteRemote(ctx context.Context, path string, released []*model.Media) {
	if len(released) == 0 {
		return
	}
	mediaReleasedTotal.Add(float64(len(released)))

	ctx = context.WithoutCancel(ctx)
	for _, m := range released {
		err := s.host.Delete(ctx, m.StorageID)
		if err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			mediaRemoteDeleteFailures.WithLabelValues(path).Inc()
			slog.Warn("failed to delete released media from host",
				"error", err,
				"path", path,
				"media_id", m.ID,
				"storage_id", m.StorageID,
			)
		}
	}
}

// Delete discards an upload that no entity references. Referenced media is
// refused with ErrMediaInUse.
func (s *MediaService) Delete(ctx context.Context, id string) error {
	var released []*model.Media

	err := db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		records, err := s.mediaRepo.WithTx(tx).ByIDs(ctx, []string{id}, true)
		if err != nil {
			return fmt.Errorf("failed to load media: %w", err)
		}
		if _, ok := records[id]; !ok {
			return repository.ErrMediaNotFound
		}

		released, err = s.Release(ctx, tx, []string{id})
		if err != nil {
			return err
		}
		if len(released) == 0 {
			return ErrMediaInUse
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.DeleteRemote(ctx, "discard", released)
	slog.Info("media discarded", "media_id", id)
	return nil
}

func (s *MediaService) ByID(ctx context.Context, id string) (*model.Media, error) {
	return s.mediaRepo.ByID(ctx, id)
}

// ByIDs loads records outside any transaction, for hydrating read models.
func (s *MediaService) ByIDs(ctx context.Context, ids []string) (map[string]*model.Media, error) {
	return s.mediaRepo.ByIDs(ctx, ids, false)
}

func (s *MediaService) List(ctx context.Context, status model.MediaStatus, limit int) ([]*model.Media, error) {
	if status != "" && status != model.MediaStatusPending && status != model.MediaStatusAttached {
		return nil, validation.Invalid("status", "must be pending or attached")
	}
	if limit <= 0 {
		limit = defaultMediaListLimit
	}
	if limit > maxMediaListLimit {
		limit = maxMediaListLimit
	}

	return s.mediaRepo.List(ctx, status, limit)
}
