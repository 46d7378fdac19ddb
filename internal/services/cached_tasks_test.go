package services_test

import (
	"testing"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/alicebob/miniredis/v2"
)

func newCacheForTest(t *testing.T) *cache.RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewRedisCache(&cache.CacheConfig{
		Addr:        mr.Addr(),
		MaxRetries:  3,
		DialTimeout: 5 * time.Second,
	})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCachedTaskService_ListServedFromCache(t *testing.T) {
	db := setupTestDB(t)
	redisCache := newCacheForTest(t)
	svc := services.NewCachedTaskService(services.NewTaskService(), redisCache)
	owner := createTestUser(t, db, "a@x.com")

	task := models.Task{Title: "Buy milk", CreatedBy: owner.ID}
	if err := svc.CreateTask(db, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	// First list populates the cache.
	first, err := svc.GetTasksByUser(db, owner.ID)
	if err != nil {
		t.Fatalf("GetTasksByUser failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("Expected 1 task, got %d", len(first))
	}

	// Insert a row behind the service's back: a cached read won't see it.
	sneaky := models.Task{Title: "Sneaky", IsOpen: true, CreatedAt: time.Now(), CreatedBy: owner.ID}
	if err := db.Create(&sneaky).Error; err != nil {
		t.Fatalf("Failed to insert directly: %v", err)
	}

	second, err := svc.GetTasksByUser(db, owner.ID)
	if err != nil {
		t.Fatalf("GetTasksByUser failed: %v", err)
	}
	if len(second) != 1 {
		t.Errorf("Expected cached list of 1 task, got %d", len(second))
	}
}

func TestCachedTaskService_MutationsInvalidate(t *testing.T) {
	db := setupTestDB(t)
	redisCache := newCacheForTest(t)
	svc := services.NewCachedTaskService(services.NewTaskService(), redisCache)
	owner := createTestUser(t, db, "a@x.com")

	task := models.Task{Title: "Buy milk", CreatedBy: owner.ID}
	if err := svc.CreateTask(db, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := svc.GetTasksByUser(db, owner.ID); err != nil {
		t.Fatalf("GetTasksByUser failed: %v", err)
	}

	// A create through the service invalidates the cached list.
	another := models.Task{Title: "Pay rent", CreatedBy: owner.ID}
	if err := svc.CreateTask(db, &another); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tasks, err := svc.GetTasksByUser(db, owner.ID)
	if err != nil {
		t.Fatalf("GetTasksByUser failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks after invalidation, got %d", len(tasks))
	}

	// So does a delete.
	if err := svc.DeleteTask(db, task.ID, owner.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	tasks, err = svc.GetTasksByUser(db, owner.ID)
	if err != nil {
		t.Fatalf("GetTasksByUser failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("Expected 1 task after delete, got %d", len(tasks))
	}
}

func TestCachedTaskService_OwnershipErrorsPassThrough(t *testing.T) {
	db := setupTestDB(t)
	redisCache := newCacheForTest(t)
	svc := services.NewCachedTaskService(services.NewTaskService(), redisCache)
	alice := createTestUser(t, db, "alice@x.com")
	bob := createTestUser(t, db, "bob@x.com")

	task := models.Task{Title: "Alice's task", CreatedBy: alice.ID}
	if err := svc.CreateTask(db, &task); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := svc.UpdateTask(db, task.ID, bob.ID, services.TaskUpdate{Title: "x", IsOpen: true}); err != services.ErrNotTaskOwner {
		t.Errorf("Expected ErrNotTaskOwner, got %v", err)
	}
}
