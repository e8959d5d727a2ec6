package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/LeadGoat/internal/types"
)

// MongoStore persists leads in a MongoDB collection.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// leadDoc is the BSON shape of a stored lead.
type leadDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	IdentityKey       string             `bson:"identity_key"`
	Name              string             `bson:"name"`
	Category          string             `bson:"category"`
	Phone             string             `bson:"phone"`
	Location          string             `bson:"location"`
	Website           string             `bson:"website"`
	Source            string             `bson:"source"`
	Score             int                `bson:"score"`
	PotentialScore    int                `bson:"potential_score"`
	PotentialCategory string             `bson:"potential_category"`
	AINotes           string             `bson:"ai_notes"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and ensures the identity-key unique
// index exists.
func NewMongoStore(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "connect", Err: err}
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "ping", Err: err}
	}

	coll := client.Database(database).Collection(collection)

	// Key uniqueness is the store's contract, not the caller's.
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "identity_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "ensure index", Err: err}
	}

	return &MongoStore{
		client:     client,
		collection: coll,
		logger:     logger.With("component", "mongo_storage"),
	}, nil
}

func (s *MongoStore) Name() string { return "mongodb" }

func (s *MongoStore) FindByKey(ctx context.Context, key string) (*types.Lead, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var doc leadDoc
	err := s.collection.FindOne(opCtx, bson.M{"identity_key": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrLeadNotFound
	}
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "find", Err: err}
	}
	return doc.toLead(), nil
}

func (s *MongoStore) Create(ctx context.Context, lead *types.Lead) (*types.Lead, error) {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	doc := leadDoc{
		IdentityKey:       lead.IdentityKey,
		Name:              lead.Name,
		Category:          lead.Category,
		Phone:             lead.Phone,
		Location:          lead.Location,
		Website:           lead.Website,
		Source:            string(lead.Source),
		Score:             lead.Score,
		PotentialScore:    lead.PotentialScore,
		PotentialCategory: string(lead.PotentialCategory),
		AINotes:           lead.AINotes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	res, err := s.collection.InsertOne(opCtx, doc)
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "create", Err: err}
	}

	doc.ID = res.InsertedID.(primitive.ObjectID)
	s.logger.Debug("lead created", "id", doc.ID.Hex(), "key", doc.IdentityKey)
	return doc.toLead(), nil
}

func (s *MongoStore) Update(ctx context.Context, id string, patch types.LeadPatch) (*types.Lead, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "update", Err: err}
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Location != nil {
		set["location"] = *patch.Location
	}
	if patch.Website != nil {
		set["website"] = *patch.Website
	}
	if patch.Score != nil {
		set["score"] = *patch.Score
	}
	if patch.PotentialScore != nil {
		set["potential_score"] = *patch.PotentialScore
	}
	if patch.PotentialCategory != nil {
		set["potential_category"] = string(*patch.PotentialCategory)
	}
	if patch.AINotes != nil {
		set["ai_notes"] = *patch.AINotes
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var doc leadDoc
	err = s.collection.FindOneAndUpdate(
		opCtx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, types.ErrLeadNotFound
	}
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "update", Err: err}
	}
	return doc.toLead(), nil
}

func (s *MongoStore) List(ctx context.Context) ([]*types.Lead, error) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cursor, err := s.collection.Find(opCtx, bson.M{})
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "list", Err: err}
	}

	var docs []leadDoc
	if err := cursor.All(opCtx, &docs); err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Op: "list", Err: err}
	}

	leads := make([]*types.Lead, len(docs))
	for i := range docs {
		leads[i] = docs[i].toLead()
	}
	return leads, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.client.Disconnect(opCtx)
}

func (d *leadDoc) toLead() *types.Lead {
	return &types.Lead{
		ID:                d.ID.Hex(),
		IdentityKey:       d.IdentityKey,
		Name:              d.Name,
		Category:          d.Category,
		Phone:             d.Phone,
		Location:          d.Location,
		Website:           d.Website,
		Source:            types.Source(d.Source),
		Score:             d.Score,
		PotentialScore:    d.PotentialScore,
		PotentialCategory: types.PotentialCategory(d.PotentialCategory),
		AINotes:           d.AINotes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}
