package reconciler

import (
	"context"
	"testing"
	"time"

	"github.com/folkstudio/printflow/internal/printshop/entity"
	"github.com/folkstudio/printflow/internal/printshop/repository"
	"github.com/folkstudio/printflow/internal/printshop/testutil"
)

func TestSyncOnceDrainsTheMirror(t *testing.T) {
	remoteDB := testutil.SetupTestDB(t)
	localDB := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(remoteDB, localDB, nil, nil)

	testutil.SeedTestOrder(t, localDB, "order-rec-001", entity.StagePhotolith)
	testutil.SeedTestOrder(t, localDB, "order-rec-002", entity.StageWaitingConfirmation)

	rec := New(repos.Orders, time.Minute, nil)
	if err := rec.SyncOnce(context.Background()); err != nil {
		t.Fatalf("SyncOnce failed: %v", err)
	}

	var remoteCount, localCount int64
	remoteDB.Model(&entity.Order{}).Count(&remoteCount)
	localDB.Model(&entity.Order{}).Count(&localCount)
	if remoteCount != 2 {
		t.Errorf("expected 2 orders pushed to remote, got %d", remoteCount)
	}
	if localCount != 0 {
		t.Errorf("mirror should be empty after the pass, got %d", localCount)
	}
}

func TestSyncOnceEmptyQueueIsANoop(t *testing.T) {
	remoteDB := testutil.SetupTestDB(t)
	localDB := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(remoteDB, localDB, nil, nil)

	rec := New(repos.Orders, time.Minute, nil)
	if err := rec.SyncOnce(context.Background()); err != nil {
		t.Fatalf("SyncOnce on empty queue failed: %v", err)
	}
}

func TestStartStop(t *testing.T) {
	remoteDB := testutil.SetupTestDB(t)
	localDB := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(remoteDB, localDB, nil, nil)

	testutil.SeedTestOrder(t, localDB, "order-rec-003", entity.StageWaitingConfirmation)

	rec := New(repos.Orders, 10*time.Millisecond, nil)
	rec.Start()

	deadline := time.After(2 * time.Second)
	for {
		var count int64
		remoteDB.Model(&entity.Order{}).Where("id = ?", "order-rec-003").Count(&count)
		if count == 1 {
			break
		}
		select {
		case <-deadline:
			rec.Stop()
			t.Fatal("reconciler never pushed the pending order")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Stop blocks until the loop exits
	rec.Stop()
}
