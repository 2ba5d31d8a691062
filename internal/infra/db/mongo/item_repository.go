package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainitems "freebie/internal/domain/items"
)

// ItemRepository persists listing rows in the items collection. Category,
// text and owner predicates are pushed into the query; the geo radius is
// evaluated on the decoded rows.
type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection("items")}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainitems.ItemID) (domainitems.Item, error) {
	var doc itemDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainitems.Item{}, domainitems.ErrNotFound
		}
		return domainitems.Item{}, err
	}
	return doc.toEntity(), nil
}

func (r *ItemRepository) Save(ctx context.Context, item domainitems.Item) error {
	doc := newItemDocument(item)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, optionsReplaceUpsert())
	return err
}

func (r *ItemRepository) Delete(ctx context.Context, id domainitems.ItemID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainitems.ErrNotFound
	}
	return nil
}

func (r *ItemRepository) Search(ctx context.Context, params domainitems.SearchParams) ([]domainitems.Item, error) {
	filter := bson.M{}
	if params.Category != "" {
		filter["category"] = params.Category
	}
	if params.OwnerID != "" {
		filter["owner_id"] = params.OwnerID
	}
	if params.Query != "" {
		filter["title"] = bson.M{"$regex": params.Query, "$options": "i"}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	matches := make([]domainitems.Item, 0)
	for cursor.Next(ctx) {
		var doc itemDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		item := doc.toEntity()
		if params.Near != nil && params.RadiusKm > 0 {
			if domainitems.DistanceKm(*params.Near, item.Location) > params.RadiusKm {
				continue
			}
		}
		matches = append(matches, item)
	}
	return matches, cursor.Err()
}

type itemDocument struct {
	ID          string  `bson:"_id"`
	OwnerID     string  `bson:"owner_id"`
	Title       string  `bson:"title"`
	Description string  `bson:"description,omitempty"`
	Category    string  `bson:"category,omitempty"`
	ImageURL    string  `bson:"image_url,omitempty"`
	Address     string  `bson:"address,omitempty"`
	Lat         float64 `bson:"lat"`
	Lng         float64 `bson:"lng"`
	ShowAddress bool    `bson:"show_address"`
	EventDate   int64   `bson:"event_date,omitempty"`
	StartTime   int64   `bson:"start_time,omitempty"`
	EndTime     int64   `bson:"end_time,omitempty"`
	CreatedAt   int64   `bson:"created_at"`
	UpdatedAt   int64   `bson:"updated_at"`
}

func newItemDocument(i domainitems.Item) itemDocument {
	return itemDocument{
		ID:          string(i.ID),
		OwnerID:     i.OwnerID,
		Title:       i.Title,
		Description: i.Description,
		Category:    i.Category,
		ImageURL:    i.ImageURL,
		Address:     i.Address,
		Lat:         i.Location.Lat,
		Lng:         i.Location.Lng,
		ShowAddress: i.ShowAddress,
		EventDate:   optionalMilli(i.EventDate),
		StartTime:   optionalMilli(i.StartTime),
		EndTime:     optionalMilli(i.EndTime),
		CreatedAt:   i.CreatedAt.UnixMilli(),
		UpdatedAt:   i.UpdatedAt.UnixMilli(),
	}
}

func (d itemDocument) toEntity() domainitems.Item {
	return domainitems.Item{
		ID:          domainitems.ItemID(d.ID),
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		Address:     d.Address,
		Location:    domainitems.GeoPoint{Lat: d.Lat, Lng: d.Lng},
		ShowAddress: d.ShowAddress,
		EventDate:   optionalTime(d.EventDate),
		StartTime:   optionalTime(d.StartTime),
		EndTime:     optionalTime(d.EndTime),
		CreatedAt:   timestampToTime(d.CreatedAt),
		UpdatedAt:   timestampToTime(d.UpdatedAt),
	}
}

func optionalMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func optionalTime(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
