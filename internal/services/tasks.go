package services

import (
	"errors"
	"strings"
	"time"

	"task-tracker/backend/internal/models"

	"gorm.io/gorm"
)

// TaskUpdate carries the full set of mutable fields. ClosedAtSet records
// whether the request supplied closed_at at all: absent leaves the stored
// value untouched, an explicit null clears it (the reopen transition).
type TaskUpdate struct {
	Title       string
	Description string
	Deadline    *time.Time
	IsOpen      bool
	ClosedAt    *time.Time
	ClosedAtSet bool
}

type TaskService interface {
	GetTasksByUser(db *gorm.DB, userID int) ([]models.Task, error)
	GetTaskByID(db *gorm.DB, id int) (models.Task, error)
	CreateTask(db *gorm.DB, task *models.Task) error
	UpdateTask(db *gorm.DB, id, callerID int, update TaskUpdate) (models.Task, error)
	DeleteTask(db *gorm.DB, id, callerID int) error
}

type TaskServiceImpl struct{}

func NewTaskService() *TaskServiceImpl {
	return &TaskServiceImpl{}
}

func (s *TaskServiceImpl) GetTasksByUser(db *gorm.DB, userID int) ([]models.Task, error) {
	var tasks []models.Task
	if err := db.Where("created_by = ?", userID).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, id int) (models.Task, error) {
	var task models.Task
	if err := db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// CreateTask persists a new task. A task always starts open with a
// server-side creation timestamp, whatever the request claimed.
func (s *TaskServiceImpl) CreateTask(db *gorm.DB, task *models.Task) error {
	if strings.TrimSpace(task.Title) == "" {
		return ErrTitleRequired
	}

	task.ID = 0
	task.IsOpen = true
	task.CreatedAt = time.Now()
	task.ClosedAt = nil

	return db.Create(task).Error
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, id, callerID int, update TaskUpdate) (models.Task, error) {
	task, err := s.GetTaskByID(db, id)
	if err != nil {
		return models.Task{}, err
	}

	if task.CreatedBy != callerID {
		return models.Task{}, ErrNotTaskOwner
	}

	task.Title = update.Title
	task.Description = update.Description
	task.Deadline = update.Deadline
	task.IsOpen = update.IsOpen
	if update.ClosedAtSet {
		task.ClosedAt = update.ClosedAt
	}

	if err := db.Save(&task).Error; err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// DeleteTask is a hard delete. A missing row is success, not an error.
func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, id, callerID int) error {
	task, err := s.GetTaskByID(db, id)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil
		}
		return err
	}

	if task.CreatedBy != callerID {
		return ErrNotTaskOwner
	}

	return db.Delete(&models.Task{}, id).Error
}
