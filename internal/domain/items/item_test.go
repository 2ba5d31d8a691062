package items

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	item := Item{ID: "item-1", OwnerID: "owner-1", Title: "Sofa"}
	assert.NoError(t, item.Validate())

	item.Title = "   "
	assert.ErrorIs(t, item.Validate(), ErrTitleRequired)

	item.Title = "Sofa"
	item.OwnerID = ""
	assert.ErrorIs(t, item.Validate(), ErrOwnerRequired)
}

func TestSearchParamsMatches(t *testing.T) {
	item := Item{
		ID:       "item-1",
		OwnerID:  "owner-1",
		Title:    "Red velvet sofa",
		Category: "Furniture",
		Location: GeoPoint{Lat: 52.52, Lng: 13.405},
	}

	assert.True(t, SearchParams{}.Matches(item))
	assert.True(t, SearchParams{Category: "furniture"}.Matches(item))
	assert.False(t, SearchParams{Category: "food"}.Matches(item))
	assert.True(t, SearchParams{Query: "VELVET"}.Matches(item))
	assert.False(t, SearchParams{Query: "table"}.Matches(item))
	assert.True(t, SearchParams{OwnerID: "owner-1"}.Matches(item))
	assert.False(t, SearchParams{OwnerID: "owner-2"}.Matches(item))
}

func TestSearchParamsMatchesRadius(t *testing.T) {
	berlin := Item{Title: "Sofa", OwnerID: "o", Location: GeoPoint{Lat: 52.52, Lng: 13.405}}
	center := &GeoPoint{Lat: 52.5, Lng: 13.4}

	assert.True(t, SearchParams{Near: center, RadiusKm: 10}.Matches(berlin))
	assert.False(t, SearchParams{Near: &GeoPoint{Lat: 48.137, Lng: 11.575}, RadiusKm: 100}.Matches(berlin))
	// radius of zero disables the geo filter
	assert.True(t, SearchParams{Near: center}.Matches(berlin))
}

func TestDistanceKm(t *testing.T) {
	berlin := GeoPoint{Lat: 52.52, Lng: 13.405}
	munich := GeoPoint{Lat: 48.137, Lng: 11.575}

	assert.Zero(t, DistanceKm(berlin, berlin))
	got := DistanceKm(berlin, munich)
	// roughly 504 km apart
	assert.InDelta(t, 504, got, 5)
	assert.InDelta(t, got, DistanceKm(munich, berlin), 0.001)
}
