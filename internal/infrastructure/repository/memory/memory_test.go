package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/dukkan-app/dukkan-api/internal/domain/entity"
)

func TestDeleteExpiredKeepsLiveKeys(t *testing.T) {
	store := NewStore()
	repo := store.IdempotencyKeys()
	userID := uuid.New()

	expired := &entity.IdempotencyKey{
		Key:          "sale-old",
		UserID:       userID,
		Endpoint:     "/api/v1/sales",
		ResponseCode: 201,
		ExpiresAt:    time.Now().Add(-time.Minute),
	}
	live := &entity.IdempotencyKey{
		Key:          "sale-new",
		UserID:       userID,
		Endpoint:     "/api/v1/sales",
		ResponseCode: 201,
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	for _, k := range []*entity.IdempotencyKey{expired, live} {
		if err := repo.Create(context.Background(), k); err != nil {
			t.Fatalf("create key %q: %v", k.Key, err)
		}
	}

	if err := repo.DeleteExpired(context.Background()); err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}

	gone, err := repo.GetByKey(context.Background(), "sale-old", userID)
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if gone != nil {
		t.Error("expired key survived the sweep")
	}

	kept, err := repo.GetByKey(context.Background(), "sale-new", userID)
	if err != nil {
		t.Fatalf("GetByKey: %v", err)
	}
	if kept == nil {
		t.Fatal("live key was deleted")
	}
}
