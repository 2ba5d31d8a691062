package items_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freebie/internal/app/services/items"
	domainitems "freebie/internal/domain/items"
	"freebie/internal/infra/storage/memory"
)

type recordingUploader struct {
	keys []string
	url  string
}

func (u *recordingUploader) Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error) {
	u.keys = append(u.keys, key)
	return u.url + "/" + key, nil
}

func TestCreateValidatesAndPersists(t *testing.T) {
	service := &items.Service{Repo: memory.NewItemRepository()}
	ctx := context.Background()

	item, err := service.Create(ctx, items.CreateParams{
		OwnerID:  "owner-1",
		Title:    "Leftover pizza",
		Category: "food",
		Location: domainitems.GeoPoint{Lat: 52.52, Lng: 13.405},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	loaded, err := service.ByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Leftover pizza", loaded.Title)
}

func TestCreateRejectsMissingTitle(t *testing.T) {
	service := &items.Service{Repo: memory.NewItemRepository()}
	_, err := service.Create(context.Background(), items.CreateParams{OwnerID: "owner-1"})
	assert.ErrorIs(t, err, domainitems.ErrTitleRequired)
}

func TestCreateUploadsPhoto(t *testing.T) {
	service := &items.Service{
		Repo:     memory.NewItemRepository(),
		Uploader: &recordingUploader{url: "https://cdn.example.com"},
	}
	item, err := service.Create(context.Background(), items.CreateParams{
		OwnerID:   "owner-1",
		Title:     "Old chair",
		Photo:     strings.NewReader("jpegbytes"),
		PhotoType: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/items/"+string(item.ID), item.ImageURL)
}

func TestCreateWithPhotoButNoUploaderFails(t *testing.T) {
	service := &items.Service{Repo: memory.NewItemRepository()}
	_, err := service.Create(context.Background(), items.CreateParams{
		OwnerID: "owner-1",
		Title:   "Old chair",
		Photo:   strings.NewReader("jpegbytes"),
	})
	assert.Error(t, err)
}

func TestSearchByCategoryAndRadius(t *testing.T) {
	service := &items.Service{Repo: memory.NewItemRepository()}
	ctx := context.Background()

	_, err := service.Create(ctx, items.CreateParams{
		OwnerID: "owner-1", Title: "Berlin sofa", Category: "furniture",
		Location: domainitems.GeoPoint{Lat: 52.52, Lng: 13.405},
	})
	require.NoError(t, err)
	_, err = service.Create(ctx, items.CreateParams{
		OwnerID: "owner-2", Title: "Munich sofa", Category: "furniture",
		Location: domainitems.GeoPoint{Lat: 48.137, Lng: 11.575},
	})
	require.NoError(t, err)
	_, err = service.Create(ctx, items.CreateParams{
		OwnerID: "owner-1", Title: "Berlin pizza", Category: "food",
		Location: domainitems.GeoPoint{Lat: 52.52, Lng: 13.405},
	})
	require.NoError(t, err)

	furniture, err := service.Search(ctx, domainitems.SearchParams{Category: "furniture"})
	require.NoError(t, err)
	assert.Len(t, furniture, 2)

	nearBerlin, err := service.Search(ctx, domainitems.SearchParams{
		Near:     &domainitems.GeoPoint{Lat: 52.5, Lng: 13.4},
		RadiusKm: 25,
	})
	require.NoError(t, err)
	require.Len(t, nearBerlin, 2)
	for _, item := range nearBerlin {
		assert.Contains(t, item.Title, "Berlin")
	}
}

func TestDeleteEnforcesOwnership(t *testing.T) {
	service := &items.Service{Repo: memory.NewItemRepository()}
	ctx := context.Background()
	item, err := service.Create(ctx, items.CreateParams{OwnerID: "owner-1", Title: "Lamp"})
	require.NoError(t, err)

	assert.ErrorIs(t, service.Delete(ctx, item.ID, "intruder"), domainitems.ErrNotOwner)
	require.NoError(t, service.Delete(ctx, item.ID, "owner-1"))
	_, err = service.ByID(ctx, item.ID)
	assert.ErrorIs(t, err, domainitems.ErrNotFound)
}

func TestDeleteByOwnerRemovesAllListings(t *testing.T) {
	service := &items.Service{Repo: memory.NewItemRepository()}
	ctx := context.Background()
	_, err := service.Create(ctx, items.CreateParams{OwnerID: "owner-1", Title: "Lamp"})
	require.NoError(t, err)
	_, err = service.Create(ctx, items.CreateParams{OwnerID: "owner-1", Title: "Desk"})
	require.NoError(t, err)
	kept, err := service.Create(ctx, items.CreateParams{OwnerID: "owner-2", Title: "Chair"})
	require.NoError(t, err)

	require.NoError(t, service.DeleteByOwner(ctx, "owner-1"))

	remaining, err := service.Search(ctx, domainitems.SearchParams{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].ID)
}
