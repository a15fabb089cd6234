package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tagus-watch/models"
	"tagus-watch/repositories"
)

// testDatabase connects to the Mongo instance named by MONGODB_URI and hands
// the test a throwaway database. Skipped when no instance is available.
func testDatabase(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("tagus_watch_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func complaintFixture(postID string) *models.Complaint {
	return &models.Complaint{
		PostID:             postID,
		Time:               "09:15:00",
		Date:               "2026-08-30",
		ProfileName:        "Dorjee",
		ComplaintQuery:     "the road is broken and damaged in MG Marg",
		PriorityScore:      4,
		Department:         "Road and Bridges Department",
		RecommendedOfficer: "Mingma Sherpa",
		Analysis: models.AIAnalysis{
			Sentiment:        "frustrated",
			UrgencyLevel:     "high",
			Category:         "infrastructure",
			Summary:          "Damaged road surface on MG Marg",
			SuggestedActions: []string{"inspect", "repair"},
		},
		Status:          models.StatusPendingReview,
		Permalink:       "https://facebook.com/" + postID,
		ConfidenceScore: 83,
		LocationData: &models.LocationSummary{
			Location:        "MG Marg",
			Confidence:      85,
			Type:            "road",
			Method:          "in [place]",
			ValidationScore: 20,
		},
	}
}

func TestUpsertIdempotence(t *testing.T) {
	db := testDatabase(t)
	repo := repositories.NewComplaintRepository(db)
	ctx := context.Background()

	outcome, err := repo.Upsert(ctx, complaintFixture("10001"))
	require.NoError(t, err)
	assert.Equal(t, repositories.UpsertSaved, outcome)

	// reprocessing the identical post writes nothing
	outcome, err = repo.Upsert(ctx, complaintFixture("10001"))
	require.NoError(t, err)
	assert.Equal(t, repositories.UpsertUnchanged, outcome)

	count, err := db.Collection("complaints").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	first, err := repo.FindByPostID(ctx, "10001")
	require.NoError(t, err)

	// a content change is an update of the same document
	changed := complaintFixture("10001")
	changed.ComplaintQuery = "the road is broken, damaged and now flooded in MG Marg"
	outcome, err = repo.Upsert(ctx, changed)
	require.NoError(t, err)
	assert.Equal(t, repositories.UpsertUpdated, outcome)

	count, err = db.Collection("complaints").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	updated, err := repo.FindByPostID(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, first.ID, updated.ID)
	assert.Equal(t, first.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(first.UpdatedAt) || updated.UpdatedAt.Equal(first.UpdatedAt))
	assert.Equal(t, changed.ComplaintQuery, updated.ComplaintQuery)
}

func TestStatsCountsPersistedLocations(t *testing.T) {
	db := testDatabase(t)
	repo := repositories.NewComplaintRepository(db)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, complaintFixture("20001"))
	require.NoError(t, err)

	noLocation := complaintFixture("20002")
	noLocation.LocationData = nil
	_, err = repo.Upsert(ctx, noLocation)
	require.NoError(t, err)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Total)
	assert.EqualValues(t, 1, stats.LocationsDetected)
	assert.EqualValues(t, 2, stats.ByStatus[models.StatusPendingReview])
	assert.EqualValues(t, 2, stats.ByDepartment["Road and Bridges Department"])
}
