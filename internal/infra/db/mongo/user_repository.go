package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	domainuser "freebie/internal/domain/user"
)

// UserRepository persists profile rows in the users collection.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainuser.User{}, domainuser.ErrNotFound
		}
		return domainuser.User{}, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (domainuser.User, error) {
	var doc userDocument
	if err := r.col.FindOne(ctx, bson.M{"email": domainuser.NormalizeEmail(email)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domainuser.User{}, domainuser.ErrNotFound
		}
		return domainuser.User{}, err
	}
	return doc.toEntity(), nil
}

func (r *UserRepository) Save(ctx context.Context, user domainuser.User) error {
	if user.ID == "" {
		return domainuser.ErrIDRequired
	}
	doc := newUserDocument(user)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, optionsReplaceUpsert())
	if mongo.IsDuplicateKeyError(err) {
		return domainuser.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id domainuser.ID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainuser.ErrNotFound
	}
	return nil
}

type userDocument struct {
	ID           string `bson:"_id"`
	Name         string `bson:"name"`
	Email        string `bson:"email"`
	AvatarURL    string `bson:"avatar_url,omitempty"`
	PasswordHash string `bson:"password_hash"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func newUserDocument(u domainuser.User) userDocument {
	return userDocument{
		ID:           string(u.ID),
		Name:         u.Name,
		Email:        domainuser.NormalizeEmail(u.Email),
		AvatarURL:    u.AvatarURL,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UnixMilli(),
		UpdatedAt:    u.UpdatedAt.UnixMilli(),
	}
}

func (d userDocument) toEntity() domainuser.User {
	return domainuser.User{
		ID:           domainuser.ID(d.ID),
		Name:         d.Name,
		Email:        d.Email,
		AvatarURL:    d.AvatarURL,
		PasswordHash: d.PasswordHash,
		CreatedAt:    timestampToTime(d.CreatedAt),
		UpdatedAt:    timestampToTime(d.UpdatedAt),
	}
}
