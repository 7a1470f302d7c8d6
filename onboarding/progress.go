package onboarding

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Checkpoint records how far a registration attempt got for one email, so a
// retry resumes instead of re-creating the identity or customer. It never
// carries the password or session secret.
type Checkpoint struct {
	Email       string    `bson:"_id"`
	Stage       Stage     `bson:"stage"`
	UserID      string    `bson:"userId"`
	CustomerID  string    `bson:"customerId"`
	CustomerURL string    `bson:"customerUrl"`
	Updated     time.Time `bson:"updated"`
}

// ProgressStore persists registration checkpoints keyed by email.
type ProgressStore interface {
	Load(ctx context.Context, email string) (*Checkpoint, error)
	Save(ctx context.Context, cp *Checkpoint) error
	Clear(ctx context.Context, email string) error
}

// MongoProgress keeps checkpoints in an onboarding collection.
type MongoProgress struct {
	col *mongo.Collection
}

// NewMongoProgress takes an initialized database handle.
func NewMongoProgress(db *mongo.Database) *MongoProgress {
	return &MongoProgress{col: db.Collection("onboarding")}
}

// Load returns the checkpoint for an email, or nil when none exists.
func (s *MongoProgress) Load(ctx context.Context, email string) (*Checkpoint, error) {
	cp := Checkpoint{}
	err := s.col.FindOne(ctx, bson.M{"_id": email}).Decode(&cp)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Save upserts the checkpoint under its email.
func (s *MongoProgress) Save(ctx context.Context, cp *Checkpoint) error {
	_, err := s.col.UpdateOne(
		ctx,
		bson.M{"_id": cp.Email},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "stage", Value: cp.Stage},
			{Key: "userId", Value: cp.UserID},
			{Key: "customerId", Value: cp.CustomerID},
			{Key: "customerUrl", Value: cp.CustomerURL},
			{Key: "updated", Value: cp.Updated},
		}}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Clear removes the checkpoint once onboarding completes. Clearing a missing
// checkpoint is not an error.
func (s *MongoProgress) Clear(ctx context.Context, email string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": email})
	return err
}
