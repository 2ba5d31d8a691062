package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainchat "freebie/internal/domain/chat"
)

// RoomRepository persists conversation rows in the chatrooms collection.
type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection("chatrooms")}
}

func (r *RoomRepository) ByID(ctx context.Context, id string) (domainchat.Conversation, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainchat.Conversation{}, domainchat.ErrConversationNotFound
		}
		return domainchat.Conversation{}, err
	}
	return doc.toEntity(), nil
}

func (r *RoomRepository) FindByTriple(ctx context.Context, itemID, sellerID, buyerID string) (domainchat.Conversation, error) {
	filter := bson.M{"item_id": itemID, "seller_id": sellerID, "buyer_id": buyerID}
	var doc roomDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainchat.Conversation{}, domainchat.ErrConversationNotFound
		}
		return domainchat.Conversation{}, err
	}
	return doc.toEntity(), nil
}

func (r *RoomRepository) ForUser(ctx context.Context, userID string) ([]domainchat.Conversation, error) {
	filter := bson.M{"$or": bson.A{bson.M{"seller_id": userID}, bson.M{"buyer_id": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	rooms := make([]domainchat.Conversation, 0)
	for cursor.Next(ctx) {
		var doc roomDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		rooms = append(rooms, doc.toEntity())
	}
	return rooms, cursor.Err()
}

func (r *RoomRepository) Save(ctx context.Context, room domainchat.Conversation) error {
	doc := newRoomDocument(room)
	opts := optionsReplaceUpsert()
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts)
	return err
}

func (r *RoomRepository) Touch(ctx context.Context, id string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"updated_at": at.UTC().UnixMilli()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainchat.ErrConversationNotFound
	}
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainchat.ErrConversationNotFound
	}
	return nil
}

type roomDocument struct {
	ID        string `bson:"_id"`
	ItemID    string `bson:"item_id"`
	SellerID  string `bson:"seller_id"`
	BuyerID   string `bson:"buyer_id"`
	CreatedAt int64  `bson:"created_at"`
	UpdatedAt int64  `bson:"updated_at"`
}

func newRoomDocument(c domainchat.Conversation) roomDocument {
	return roomDocument{
		ID:        c.ID,
		ItemID:    c.ItemID,
		SellerID:  c.SellerID,
		BuyerID:   c.BuyerID,
		CreatedAt: c.CreatedAt.UnixMilli(),
		UpdatedAt: c.UpdatedAt.UnixMilli(),
	}
}

func (d roomDocument) toEntity() domainchat.Conversation {
	return domainchat.Conversation{
		ID:        d.ID,
		ItemID:    d.ItemID,
		SellerID:  d.SellerID,
		BuyerID:   d.BuyerID,
		CreatedAt: timestampToTime(d.CreatedAt),
		UpdatedAt: timestampToTime(d.UpdatedAt),
	}
}

func timestampToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
