package items

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when an item cannot be located.
	ErrNotFound = errors.New("items: item not found")
	// ErrTitleRequired is returned when an item is created without a title.
	ErrTitleRequired = errors.New("items: title is required")
	// ErrOwnerRequired is returned when an item has no owning user.
	ErrOwnerRequired = errors.New("items: owner is required")
	// ErrNotOwner is returned when a non-owner attempts a mutation.
	ErrNotOwner = errors.New("items: user does not own this item")
)

// ItemID identifies a listing.
type ItemID string

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Item is a free giveaway listing. Chat threads reference items by id only.
type Item struct {
	ID          ItemID
	OwnerID     string
	Title       string
	Description string
	Category    string
	ImageURL    string
	Address     string
	Location    GeoPoint
	ShowAddress bool
	EventDate   time.Time
	StartTime   time.Time
	EndTime     time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks the fields required before persisting.
func (i Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(i.OwnerID) == "" {
		return ErrOwnerRequired
	}
	return nil
}

// SearchParams filters the item catalog.
type SearchParams struct {
	Category string
	Query    string
	OwnerID  string
	Near     *GeoPoint
	RadiusKm float64
}

// Matches applies the filters to a single item. Repositories that cannot
// push the predicates into their query engine evaluate this directly.
func (p SearchParams) Matches(item Item) bool {
	if p.Category != "" && !strings.EqualFold(item.Category, p.Category) {
		return false
	}
	if p.OwnerID != "" && item.OwnerID != p.OwnerID {
		return false
	}
	if p.Query != "" && !strings.Contains(strings.ToLower(item.Title), strings.ToLower(strings.TrimSpace(p.Query))) {
		return false
	}
	if p.Near != nil && p.RadiusKm > 0 {
		if DistanceKm(*p.Near, item.Location) > p.RadiusKm {
			return false
		}
	}
	return true
}

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points.
func DistanceKm(a, b GeoPoint) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(h))
}
