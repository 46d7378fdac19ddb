package services

import (
	"fmt"
	"log"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// CachedTaskService decorates a TaskService with a Redis read cache for
// per-user task lists. Cache failures fall through to the store and are
// logged only; mutations invalidate the owner's cached list.
type CachedTaskService struct {
	taskService TaskService
	cache       *cache.RedisCache
	listTTL     time.Duration
}

func NewCachedTaskService(taskService TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{
		taskService: taskService,
		cache:       cacheInstance,
		listTTL:     5 * time.Minute,
	}
}

func userTasksKey(userID int) string {
	return fmt.Sprintf("user_tasks:%d", userID)
}

func (s *CachedTaskService) GetTasksByUser(db *gorm.DB, userID int) ([]models.Task, error) {
	key := userTasksKey(userID)

	var cached []models.Task
	if err := s.cache.Get(key, &cached); err == nil {
		return cached, nil
	} else if err != cache.ErrCacheMiss {
		log.Printf("task list cache read failed: %v", err)
	}

	tasks, err := s.taskService.GetTasksByUser(db, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(key, tasks, s.listTTL); err != nil {
		log.Printf("task list cache write failed: %v", err)
	}

	return tasks, nil
}

func (s *CachedTaskService) GetTaskByID(db *gorm.DB, id int) (models.Task, error) {
	return s.taskService.GetTaskByID(db, id)
}

func (s *CachedTaskService) CreateTask(db *gorm.DB, task *models.Task) error {
	if err := s.taskService.CreateTask(db, task); err != nil {
		return err
	}
	s.invalidate(task.CreatedBy)
	return nil
}

func (s *CachedTaskService) UpdateTask(db *gorm.DB, id, callerID int, update TaskUpdate) (models.Task, error) {
	task, err := s.taskService.UpdateTask(db, id, callerID, update)
	if err != nil {
		return models.Task{}, err
	}
	s.invalidate(task.CreatedBy)
	return task, nil
}

func (s *CachedTaskService) DeleteTask(db *gorm.DB, id, callerID int) error {
	if err := s.taskService.DeleteTask(db, id, callerID); err != nil {
		return err
	}
	s.invalidate(callerID)
	return nil
}

func (s *CachedTaskService) invalidate(userID int) {
	if err := s.cache.Delete(userTasksKey(userID)); err != nil {
		log.Printf("task list cache invalidation failed: %v", err)
	}
}
