package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
)

// DashboardStats is the aggregate view served by the stats endpoint.
type DashboardStats struct {
	Total             int64            `json:"total" bson:"-"`
	ByStatus          map[string]int64 `json:"by_status"`
	ByPriority        map[string]int64 `json:"by_priority"`
	ByDepartment      map[string]int64 `json:"by_department"`
	ByUrgency         map[string]int64 `json:"by_urgency"`
	LocationsDetected int64            `json:"locations_detected"`
}

// CountsByStatus groups complaints by review status.
func (r *ComplaintRepository) CountsByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCounts(ctx, "$status")
}

// Stats runs the dashboard aggregations in one pass per facet.
func (r *ComplaintRepository) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats.Total = total

	if stats.ByStatus, err = r.groupCounts(ctx, "$status"); err != nil {
		return nil, err
	}
	if stats.ByPriority, err = r.groupCounts(ctx, bson.M{"$toString": "$priority_score"}); err != nil {
		return nil, err
	}
	if stats.ByDepartment, err = r.groupCounts(ctx, "$department"); err != nil {
		return nil, err
	}
	if stats.ByUrgency, err = r.groupCounts(ctx, bson.M{
		"$ifNull": bson.A{"$ai_analysis.urgency_level", "unknown"},
	}); err != nil {
		return nil, err
	}

	located, err := r.col.CountDocuments(ctx, bson.M{
		"location_data.location": bson.M{"$nin": bson.A{nil, ""}},
	})
	if err != nil {
		return nil, err
	}
	stats.LocationsDetected = located

	return stats, nil
}

func (r *ComplaintRepository) groupCounts(ctx context.Context, key interface{}) (map[string]int64, error) {
	cur, err := r.col.Aggregate(ctx, bson.A{
		bson.M{"$group": bson.M{"_id": key, "count": bson.M{"$sum": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make(map[string]int64)
	for cur.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		if row.ID == "" {
			row.ID = "unknown"
		}
		out[row.ID] = row.Count
	}
	return out, cur.Err()
}
