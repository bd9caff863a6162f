package job

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/newthinker/sigtrail/internal/core"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(100, time.Hour)

	job := store.Create("backtest")
	if _, err := uuid.Parse(job.ID); err != nil {
		t.Errorf("expected uuid job ID, got %q", job.ID)
	}
	if job.Status != StatusPending {
		t.Errorf("expected pending, got %s", job.Status)
	}

	retrieved, err := store.Get(job.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if retrieved.ID != job.ID {
		t.Error("IDs don't match")
	}
}

func TestStore_Update(t *testing.T) {
	store := NewStore(100, time.Hour)
	job := store.Create("backtest")

	err := store.Update(job.ID, func(j *Job) {
		j.Status = StatusRunning
		j.Progress = 50
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	retrieved, _ := store.Get(job.ID)
	if retrieved.Status != StatusRunning {
		t.Errorf("expected running, got %s", retrieved.Status)
	}
	if retrieved.Progress != 50 {
		t.Errorf("expected 50, got %d", retrieved.Progress)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := NewStore(10, time.Hour)
	job := store.Create("backtest")

	got, _ := store.Get(job.ID)
	got.Status = StatusFailed

	again, _ := store.Get(job.ID)
	if again.Status != StatusPending {
		t.Errorf("stored job was modified through copy: %s", again.Status)
	}
}

func TestStore_MaxSize(t *testing.T) {
	store := NewStore(2, time.Hour)

	job1 := store.Create("backtest")
	store.Create("backtest")
	store.Create("backtest") // Should evict job1

	_, err := store.Get(job1.ID)
	if err == nil {
		t.Error("expected job1 to be evicted")
	}
	if len(store.List()) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(store.List()))
	}
}

func TestStore_NotFound(t *testing.T) {
	store := NewStore(100, time.Hour)

	_, err := store.Get("nonexistent")
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}

	err = store.Update("nonexistent", func(*Job) {})
	if !errors.Is(err, core.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	store := NewStore(100, time.Hour)
	first := store.Create("backtest")
	second := store.Create("backtest")

	jobs := store.List()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID || jobs[1].ID != second.ID {
		t.Error("expected jobs in creation order")
	}
}

func TestStore_PruneExpired(t *testing.T) {
	store := NewStore(100, time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	done := store.Create("backtest")
	running := store.Create("backtest")
	store.Update(done.ID, func(j *Job) { j.Status = StatusComplete })
	store.Update(running.ID, func(j *Job) { j.Status = StatusRunning })

	now = now.Add(30 * time.Minute)
	if n := store.Prune(); n != 0 {
		t.Errorf("expected nothing pruned before ttl, got %d", n)
	}

	now = now.Add(2 * time.Hour)
	fresh := store.Create("backtest") // prunes as a side effect

	if _, err := store.Get(done.ID); err == nil {
		t.Error("expected finished job to be pruned")
	}
	if _, err := store.Get(running.ID); err != nil {
		t.Error("running jobs must not be pruned")
	}
	if _, err := store.Get(fresh.ID); err != nil {
		t.Error("new job missing")
	}
}

func TestStore_NoTTL(t *testing.T) {
	store := NewStore(10, 0)
	job := store.Create("backtest")
	store.Update(job.ID, func(j *Job) { j.Status = StatusFailed })
	if n := store.Prune(); n != 0 {
		t.Errorf("expected pruning disabled, got %d", n)
	}
}

func TestStatus_Done(t *testing.T) {
	if StatusPending.Done() || StatusRunning.Done() {
		t.Error("pending and running are not done")
	}
	if !StatusComplete.Done() || !StatusFailed.Done() {
		t.Error("complete and failed are done")
	}
}
