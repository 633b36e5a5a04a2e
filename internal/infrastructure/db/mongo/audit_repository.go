package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentchain/rentclient/internal/core/domain"
)

const auditCollection = "session_audit"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID         string    `bson:"_id"`
	Kind       string    `bson:"kind"`
	UserID     string    `bson:"user_id,omitempty"`
	Address    string    `bson:"address,omitempty"`
	Timestamp  time.Time `bson:"timestamp"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// EnsureIndexes creates the per-user timeline index used by RecentEvents.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("user_timeline"),
	})
	if err != nil {
		return fmt.Errorf("create audit index: %w", err)
	}
	return nil
}

// InsertEvent persists an audit event.
func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuditEvent) error {
	doc := auditDoc{
		ID:         event.ID,
		Kind:       string(event.Kind),
		UserID:     event.UserID,
		Address:    event.Address,
		Timestamp:  event.Timestamp.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// RecentEvents returns the latest events for userID, newest first.
// An empty userID lists events of every user.
func (r *AuditRepository) RecentEvents(ctx context.Context, userID string, limit int64) ([]domain.AuditEvent, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}
	events := make([]domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, domain.AuditEvent{
			ID:        d.ID,
			Kind:      domain.AuditKind(d.Kind),
			UserID:    d.UserID,
			Address:   d.Address,
			Timestamp: d.Timestamp,
		})
	}
	return events, nil
}
