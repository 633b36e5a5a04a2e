package mongo

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/rentchain/rentclient/internal/core/domain"
)

func TestAuditRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewAuditRepository(mt.DB)

		err := repo.InsertEvent(context.Background(), &domain.AuditEvent{
			ID: "e1", Kind: domain.AuditLogin, UserID: "u1", Timestamp: time.Now(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("ensure indexes", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		if err := NewAuditRepository(mt.DB).EnsureIndexes(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	mt.Run("insert failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		repo := NewAuditRepository(mt.DB)

		if err := repo.InsertEvent(context.Background(), &domain.AuditEvent{ID: "e1", Kind: domain.AuditLogin}); err == nil {
			t.Fatalf("expected write error")
		}
	})

	mt.Run("recent events", func(mt *mtest.T) {
		ns := mt.DB.Name() + "." + auditCollection
		ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: "e2"},
				{Key: "kind", Value: "wallet_connected"},
				{Key: "user_id", Value: "u1"},
				{Key: "address", Value: "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"},
				{Key: "timestamp", Value: ts},
			}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch),
		)
		repo := NewAuditRepository(mt.DB)

		events, err := repo.RecentEvents(context.Background(), "u1", 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 || events[0].Kind != domain.AuditWalletConnected || !events[0].Timestamp.Equal(ts) {
			t.Fatalf("unexpected events: %+v", events)
		}
	})
}
