package dto

import (
	"time"

	domainitems "freebie/internal/domain/items"
)

// Item describes a listing for the catalog and detail views.
type Item struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Address     string    `json:"address,omitempty"`
	Lat         float64   `json:"lat"`
	Lng         float64   `json:"lng"`
	ShowAddress bool      `json:"show_address"`
	EventDate   time.Time `json:"event_date,omitempty"`
	StartTime   time.Time `json:"start_time,omitempty"`
	EndTime     time.Time `json:"end_time,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewItem maps the domain entity. The address is withheld unless the owner
// opted into showing it.
func NewItem(i domainitems.Item) Item {
	address := i.Address
	if !i.ShowAddress {
		address = ""
	}
	return Item{
		ID:          string(i.ID),
		OwnerID:     i.OwnerID,
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		ImageURL:    i.ImageURL,
		Address:     address,
		Lat:         i.Location.Lat,
		Lng:         i.Location.Lng,
		ShowAddress: i.ShowAddress,
		EventDate:   i.EventDate,
		StartTime:   i.StartTime,
		EndTime:     i.EndTime,
		CreatedAt:   i.CreatedAt,
	}
}

// ItemList is a collection payload.
type ItemList struct {
	Items []Item `json:"items"`
}
