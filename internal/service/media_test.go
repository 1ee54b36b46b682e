package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/showcase/internal/model"
	"github.com/templui/showcase/internal/repository"
	"github.com/templui/showcase/internal/storage"
	"github.com/templui/showcase/internal/validation"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var fe *validation.FieldError
	require.True(t, errors.As(err, &fe), "expected a field error, got %v", err)
	return fe.Field
}

func TestMediaServiceUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("stores and registers a pending image", func(t *testing.T) {
		env := newTestEnv(t)

		media, err := env.media.Upload(ctx, "Products", fileHeader(t, "shot.png", pngHeader))
		require.NoError(t, err)

		assert.Equal(t, model.MediaStatusPending, media.Status)
		assert.Equal(t, model.MediaKindImage, media.Kind)
		assert.Equal(t, "image/png", media.MimeType)
		assert.Equal(t, "products", media.Folder)
		assert.True(t, storage.OwnsKey(media.StorageID))
		assert.Equal(t, pngHeader, env.host.Bytes(media.StorageID))
		assert.Equal(t, model.MediaStatusPending, env.status(t, media.ID))
	})

	t.Run("rejects content that does not match any kind", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.media.Upload(ctx, "products", fileHeader(t, "notes.png", []byte("plain text")))
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "file", fieldOf(t, err))
		assert.Equal(t, 0, env.host.Len())
	})

	t.Run("host failure registers nothing", func(t *testing.T) {
		env := newTestEnv(t)
		env.host.FailAll(errors.New("unreachable"))

		_, err := env.media.Upload(ctx, "products", fileHeader(t, "shot.png", pngHeader))
		require.Error(t, err)

		list, err := env.media.List(ctx, "", 0)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestMediaServiceRegister(t *testing.T) {
	ctx := context.Background()

	direct := func(env *testEnv, name, contentType string) string {
		key := storage.NewKey("videos", name)
		env.host.Put(key, []byte("bytes"), contentType, time.Now())
		return key
	}

	t.Run("registers a completed direct upload", func(t *testing.T) {
		env := newTestEnv(t)
		key := direct(env, "reel.mp4", "video/mp4")

		media, err := env.media.Register(ctx, RegisterInput{StorageID: key, Kind: model.MediaKindVideo, Folder: "videos"})
		require.NoError(t, err)
		assert.Equal(t, model.MediaStatusPending, media.Status)
		assert.Equal(t, env.host.URL(key), media.URL)
		assert.Equal(t, int64(5), media.Size)
		assert.Equal(t, "video/mp4", media.MimeType)
	})

	t.Run("rejects keys the server did not issue", func(t *testing.T) {
		env := newTestEnv(t)
		env.host.Put("elsewhere/reel.mp4", []byte("bytes"), "video/mp4", time.Now())

		_, err := env.media.Register(ctx, RegisterInput{StorageID: "elsewhere/reel.mp4", Kind: model.MediaKindVideo})
		assert.Equal(t, "storageId", fieldOf(t, err))
	})

	t.Run("rejects an upload that has not completed", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.media.Register(ctx, RegisterInput{StorageID: storage.NewKey("videos", "reel.mp4"), Kind: model.MediaKindVideo})
		require.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "storageId", fieldOf(t, err))
	})

	t.Run("rejects a kind that does not match the file", func(t *testing.T) {
		env := newTestEnv(t)
		key := direct(env, "reel.mp4", "video/mp4")

		_, err := env.media.Register(ctx, RegisterInput{StorageID: key, Kind: model.MediaKindImage})
		assert.Equal(t, "kind", fieldOf(t, err))
	})

	t.Run("rejects registering the same object twice", func(t *testing.T) {
		env := newTestEnv(t)
		key := direct(env, "reel.mp4", "video/mp4")
		in := RegisterInput{StorageID: key, Kind: model.MediaKindVideo}

		_, err := env.media.Register(ctx, in)
		require.NoError(t, err)

		_, err = env.media.Register(ctx, in)
		require.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestMediaServiceSignUpload(t *testing.T) {
	env := newTestEnv(t)

	signed, err := env.media.SignUpload(context.Background(), SignInput{Folder: "videos", Filename: "reel.mp4", ContentType: "video/mp4"})
	require.NoError(t, err)
	assert.True(t, storage.OwnsKey(signed.Key))
	assert.Equal(t, "PUT", signed.Method)

	_, err = env.media.SignUpload(context.Background(), SignInput{Filename: "reel.exe", ContentType: "application/x-msdownload"})
	assert.Equal(t, "contentType", fieldOf(t, err))

	_, err = env.media.SignUpload(context.Background(), SignInput{Filename: "reel.png", ContentType: "video/mp4"})
	assert.Equal(t, "filename", fieldOf(t, err))
}

func TestMediaServiceDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("discards an unreferenced upload", func(t *testing.T) {
		env := newTestEnv(t)
		media := env.image(t)

		err := env.media.Delete(ctx, media.ID)
		require.NoError(t, err)
		assert.Equal(t, model.MediaStatus(""), env.status(t, media.ID))
		assert.False(t, env.host.Has(media.StorageID))
	})

	t.Run("refuses media an entity references", func(t *testing.T) {
		env := newTestEnv(t)
		media := env.image(t)
		_, err := env.services.Create(ctx, serviceInput("Referenced", media, nil))
		require.NoError(t, err)

		err = env.media.Delete(ctx, media.ID)
		require.ErrorIs(t, err, ErrMediaInUse)
		assert.Equal(t, model.MediaStatusAttached, env.status(t, media.ID))
		assert.True(t, env.host.Has(media.StorageID))
	})

	t.Run("unknown media", func(t *testing.T) {
		env := newTestEnv(t)
		err := env.media.Delete(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrMediaNotFound)
	})
}

func TestMediaServiceMarkAttachedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	media := env.image(t)

	tx, err := env.db.BeginTxx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	n, err := env.media.MarkAttached(ctx, tx, media.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = env.media.MarkAttached(ctx, tx, media.ID, media.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestMediaServiceList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	pending := env.image(t)
	attached := env.image(t)
	_, err := env.services.Create(ctx, serviceInput("Listed", attached, nil))
	require.NoError(t, err)

	list, err := env.media.List(ctx, model.MediaStatusPending, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pending.ID, list[0].ID)

	_, err = env.media.List(ctx, "deleted", 0)
	assert.Equal(t, "status", fieldOf(t, err))
}
