package items

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	domainitems "freebie/internal/domain/items"
)

// Repository persists listing rows.
type Repository interface {
	ByID(ctx context.Context, id domainitems.ItemID) (domainitems.Item, error)
	Save(ctx context.Context, item domainitems.Item) error
	Delete(ctx context.Context, id domainitems.ItemID) error
	Search(ctx context.Context, params domainitems.SearchParams) ([]domainitems.Item, error)
}

// Uploader stores a listing photo and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// Service handles listing creation, search and removal.
type Service struct {
	Repo     Repository
	Uploader Uploader
	Logger   *slog.Logger
}

// CreateParams carries the listing form fields.
type CreateParams struct {
	OwnerID     string
	Title       string
	Description string
	Category    string
	Address     string
	Location    domainitems.GeoPoint
	ShowAddress bool
	EventDate   time.Time
	StartTime   time.Time
	EndTime     time.Time
	Photo       io.Reader
	PhotoType   string
}

// Create uploads the photo (when provided) and persists the listing.
func (s *Service) Create(ctx context.Context, params CreateParams) (domainitems.Item, error) {
	now := time.Now().UTC()
	item := domainitems.Item{
		ID:          domainitems.ItemID(uuid.NewString()),
		OwnerID:     params.OwnerID,
		Title:       params.Title,
		Description: params.Description,
		Category:    params.Category,
		Address:     params.Address,
		Location:    params.Location,
		ShowAddress: params.ShowAddress,
		EventDate:   params.EventDate,
		StartTime:   params.StartTime,
		EndTime:     params.EndTime,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := item.Validate(); err != nil {
		return domainitems.Item{}, err
	}
	if params.Photo != nil {
		if s.Uploader == nil {
			return domainitems.Item{}, fmt.Errorf("items: photo provided but no uploader configured")
		}
		key := "items/" + string(item.ID)
		url, err := s.Uploader.Upload(ctx, key, params.Photo, params.PhotoType)
		if err != nil {
			return domainitems.Item{}, fmt.Errorf("upload photo: %w", err)
		}
		item.ImageURL = url
	}
	if err := s.Repo.Save(ctx, item); err != nil {
		return domainitems.Item{}, err
	}
	if s.Logger != nil {
		s.Logger.Info("item created", "item_id", item.ID, "owner_id", item.OwnerID, "category", item.Category)
	}
	return item, nil
}

// Search filters the catalog by category, title text, owner and geo radius.
func (s *Service) Search(ctx context.Context, params domainitems.SearchParams) ([]domainitems.Item, error) {
	return s.Repo.Search(ctx, params)
}

// ByID loads one listing.
func (s *Service) ByID(ctx context.Context, id domainitems.ItemID) (domainitems.Item, error) {
	return s.Repo.ByID(ctx, id)
}

// Delete removes a listing; only the owner may do so.
func (s *Service) Delete(ctx context.Context, id domainitems.ItemID, userID string) error {
	item, err := s.Repo.ByID(ctx, id)
	if err != nil {
		return err
	}
	if item.OwnerID != userID {
		return domainitems.ErrNotOwner
	}
	return s.Repo.Delete(ctx, id)
}

// DeleteByOwner removes every listing the user owns. Used by the account
// deletion pipeline.
func (s *Service) DeleteByOwner(ctx context.Context, ownerID string) error {
	owned, err := s.Repo.Search(ctx, domainitems.SearchParams{OwnerID: ownerID})
	if err != nil {
		return err
	}
	for _, item := range owned {
		if err := s.Repo.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}
