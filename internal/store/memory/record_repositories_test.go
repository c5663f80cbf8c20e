package memory

import (
	"context"
	"testing"
	"time"

	"netpulse/internal/domain"
)

func TestStatusRepository_UpsertGeneratesID(t *testing.T) {
	ctx := context.Background()
	repo := NewStatusRepository()

	// The status sweeper builds rows without an ID; the repository owns
	// identity, same as the ON CONFLICT upsert does in PostgreSQL.
	err := repo.Upsert(ctx, &domain.ServiceStatus{
		ServiceName:  "radius",
		Status:       domain.ServiceDown,
		ActiveAlerts: 2,
		CheckedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	rows, err := repo.FetchUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnsynced error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	id := rows[0].ID
	if id == "" {
		t.Fatal("upserted status row has empty ID")
	}

	// A later upsert for the same service keeps the assigned ID so the
	// index sync daemon overwrites one document per service.
	err = repo.Upsert(ctx, &domain.ServiceStatus{
		ServiceName:  "radius",
		Status:       domain.ServiceHealthy,
		ActiveAlerts: 0,
		CheckedAt:    time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("second Upsert error: %v", err)
	}
	rows, err = repo.FetchUnsynced(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnsynced error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows after second upsert, want 1", len(rows))
	}
	if rows[0].ID != id {
		t.Errorf("ID changed on upsert: got %q, want %q", rows[0].ID, id)
	}
}
