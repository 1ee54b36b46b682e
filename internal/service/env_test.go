package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/showcase/internal/db"
	"github.com/templui/showcase/internal/entity"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/storage"
	"github.com/templui/showcase/internal/storage/storagetest"
)

// testEnv is a migrated SQLite database with an in-memory media host.
type testEnv struct {
	db         *sqlx.DB
	host       *storagetest.Host
	mediaRepo  repository.MediaRepository
	entityRepo repository.EntityRepository
	media      *MediaService
	coord      *Coordinator
	products   *Catalog[model.Product, *model.Product]
	services   *Catalog[model.Service, *model.Service]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return openTestEnv(t, filepath.Join(t.TempDir(), "test.db")+"?_pragma=foreign_keys(1)")
}

// openTestEnv migrates and wires the database at dsn. Opening the same file
// twice gives two independent handles, like two processes.
func openTestEnv(t *testing.T, dsn string) *testEnv {
	t.Helper()

	database, err := db.Init("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(database.DB, "sqlite")
	require.NoError(t, err)

	env := &testEnv{
		db:         database,
		host:       storagetest.New(),
		mediaRepo:  repository.NewMediaRepository(database),
		entityRepo: repository.NewEntityRepository(database),
	}
	env.media = NewMediaService(database, env.mediaRepo, env.entityRepo, env.host, entity.All(), 10, 200)
	env.coord = NewCoordinator(database, env.entityRepo, env.mediaRepo, env.media)
	env.products = NewCatalog[model.Product](entity.Product, env.coord, env.entityRepo, env.media)
	env.services = NewCatalog[model.Service](entity.Service, env.coord, env.entityRepo, env.media)
	return env
}

// upload seeds a pending media record, and its object on the host, created age ago.
func (e *testEnv) upload(t *testing.T, kind model.MediaKind, age time.Duration) *model.Media {
	t.Helper()

	name, mimeType := "photo.jpg", "image/jpeg"
	if kind == model.MediaKindVideo {
		name, mimeType = "clip.mp4", "video/mp4"
	}

	key := storage.NewKey("test", name)
	created := time.Now().UTC().Add(-age)
	e.host.Put(key, []byte("content"), mimeType, created)

	media := &model.Media{
		ID:           uuid.New().String(),
		StorageID:    key,
		URL:          e.host.URL(key),
		Kind:         kind,
		Status:       model.MediaStatusPending,
		Folder:       "test",
		OriginalName: name,
		MimeType:     mimeType,
		Size:         7,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	err := e.mediaRepo.Create(context.Background(), media)
	require.NoError(t, err)
	return media
}

func (e *testEnv) image(t *testing.T) *model.Media {
	return e.upload(t, model.MediaKindImage, 0)
}

func (e *testEnv) video(t *testing.T) *model.Media {
	return e.upload(t, model.MediaKindVideo, 0)
}

// status returns the registry status of id, or "" when the row is gone.
func (e *testEnv) status(t *testing.T, id string) model.MediaStatus {
	t.Helper()
	m, err := e.mediaRepo.ByID(context.Background(), id)
	if errors.Is(err, repository.ErrMediaNotFound) {
		return ""
	}
	require.NoError(t, err)
	return m.Status
}

func (e *testEnv) refs(t *testing.T, d *entity.Descriptor, id string) *entity.Refs {
	t.Helper()
	refs, err := e.entityRepo.Refs(context.Background(), d, id, false)
	require.NoError(t, err)
	return refs
}

func productInput(title string, thumbnail, video *model.Media, images ...*model.Media) entity.Input {
	in := entity.Input{
		Fields: map[string]any{"title": title, "description": "A product"},
		Media: map[string]string{
			"thumbnail_id": thumbnail.ID,
			"video_id":     video.ID,
		},
	}
	for _, m := range images {
		in.Gallery = append(in.Gallery, m.ID)
	}
	return in
}

func serviceInput(title string, thumbnail, cover *model.Media) entity.Input {
	in := entity.Input{
		Fields: map[string]any{"title": title, "summary": "What we do"},
		Media:  map[string]string{"thumbnail_id": thumbnail.ID},
	}
	if cover != nil {
		in.Media["cover_image_id"] = cover.ID
	}
	return in
}

func ids(media ...*model.Media) []string {
	out := make([]string, 0, len(media))
	for _, m := range media {
		out = append(out, m.ID)
	}
	return out
}
