package repositories

import (
	"context"
	"errors"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tagus-watch/models"
)

// UpsertOutcome distinguishes the three possible results of persisting a
// complaint, for batch statistics.
type UpsertOutcome int

const (
	UpsertSaved UpsertOutcome = iota
	UpsertUpdated
	UpsertUnchanged
)

func (o UpsertOutcome) String() string {
	switch o {
	case UpsertSaved:
		return "saved"
	case UpsertUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

type ComplaintRepository struct {
	col *mongo.Collection
}

func NewComplaintRepository(db *mongo.Database) *ComplaintRepository {
	return &ComplaintRepository{col: db.Collection("complaints")}
}

// Upsert persists a complaint keyed by post_id. Insert if absent, replace if
// present and changed, no write at all if present and content-identical.
// Timestamps are excluded from the change comparison so re-processing an
// unchanged post reports UpsertUnchanged.
func (r *ComplaintRepository) Upsert(ctx context.Context, c *models.Complaint) (UpsertOutcome, error) {
	now := time.Now()

	var existing models.Complaint
	err := r.col.FindOne(ctx, bson.M{"post_id": c.PostID}).Decode(&existing)
	switch {
	case err == nil:
		if sameContent(&existing, c) {
			return UpsertUnchanged, nil
		}
		c.ID = existing.ID
		c.CreatedAt = existing.CreatedAt
		c.UpdatedAt = now
		if _, err := r.col.ReplaceOne(ctx, bson.M{"post_id": c.PostID}, c); err != nil {
			return UpsertUnchanged, err
		}
		return UpsertUpdated, nil

	case errors.Is(err, mongo.ErrNoDocuments):
		c.CreatedAt = now
		c.UpdatedAt = now
		res, err := r.col.ReplaceOne(ctx, bson.M{"post_id": c.PostID}, c, options.Replace().SetUpsert(true))
		if err != nil {
			// Duplicate-key race with a concurrent writer: the unique index
			// held, resolve by replacing the winner's document.
			if mongo.IsDuplicateKeyError(err) {
				if _, err := r.col.ReplaceOne(ctx, bson.M{"post_id": c.PostID}, c); err != nil {
					return UpsertUnchanged, err
				}
				return UpsertUpdated, nil
			}
			return UpsertUnchanged, err
		}
		if res.UpsertedID != nil {
			return UpsertSaved, nil
		}
		return UpsertUpdated, nil

	default:
		return UpsertUnchanged, err
	}
}

// sameContent compares two documents ignoring identity and timestamp fields.
func sameContent(a, b *models.Complaint) bool {
	ca, cb := *a, *b
	ca.ID, cb.ID = primitive.NilObjectID, primitive.NilObjectID
	ca.CreatedAt, cb.CreatedAt = time.Time{}, time.Time{}
	ca.UpdatedAt, cb.UpdatedAt = time.Time{}, time.Time{}
	return reflect.DeepEqual(ca, cb)
}

// FindByPostID returns the complaint for a natural key, if any.
func (r *ComplaintRepository) FindByPostID(ctx context.Context, postID string) (*models.Complaint, error) {
	var c models.Complaint
	if err := r.col.FindOne(ctx, bson.M{"post_id": postID}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID returns the complaint for an ObjectID hex.
func (r *ComplaintRepository) FindByID(ctx context.Context, hexID string) (*models.Complaint, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return nil, err
	}
	var c models.Complaint
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns complaints sorted by priority desc, then created_at desc.
func (r *ComplaintRepository) List(ctx context.Context) ([]models.Complaint, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "priority_score", Value: -1},
		{Key: "created_at", Value: -1},
	})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Complaint
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus sets the review status of one complaint.
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, hexID, status string) error {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return err
	}
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes one complaint by ObjectID hex.
func (r *ComplaintRepository) Delete(ctx context.Context, hexID string) error {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		return err
	}
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
