package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type TaskHandler struct {
	db          *gorm.DB
	taskService services.TaskService
}

func NewTaskHandler(db *gorm.DB, taskService services.TaskService) *TaskHandler {
	return &TaskHandler{db: db, taskService: taskService}
}

// taskInput mirrors the wire contract. Timestamps arrive as strings in a
// handful of layouts (the calendar UI sends "2006-01-02T15:04"); closed_at
// is a RawMessage so an absent field can be told apart from an explicit
// null, which clears the stored value.
type taskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Deadline    *string         `json:"deadline"`
	IsOpen      bool            `json:"is_open"`
	CreatedBy   int             `json:"created_by"`
	ClosedAt    json.RawMessage `json:"closed_at"`
}

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseTimestamp(value string) (*time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unrecognized timestamp format: " + value)
}

// parseClosedAt returns (value, supplied, error). A missing field reports
// supplied=false; a JSON null reports supplied=true with a nil value.
func parseClosedAt(raw json.RawMessage) (*time.Time, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}

	var str *string
	if err := json.Unmarshal(raw, &str); err != nil {
		return nil, true, errors.New("closed_at must be a timestamp string or null")
	}
	if str == nil || *str == "" {
		return nil, true, nil
	}

	t, err := parseTimestamp(*str)
	if err != nil {
		return nil, true, err
	}
	return t, true, nil
}

func callerID(c *gin.Context) (int, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int)
	return id, ok
}

func (h *TaskHandler) GetTodos(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// The userId query parameter is kept for wire compatibility, but the
	// token decides whose tasks are listed.
	if param := c.Query("userId"); param != "" {
		requested, err := strconv.Atoi(param)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be an integer"})
			return
		}
		if requested != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot list another user's tasks"})
			return
		}
	}

	tasks, err := h.taskService.GetTasksByUser(h.db, userID)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) CreateTodo(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input taskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deadline *time.Time
	if input.Deadline != nil && *input.Deadline != "" {
		parsed, err := parseTimestamp(*input.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		deadline = parsed
	}

	task := models.Task{
		Title:       input.Title,
		Description: input.Description,
		Deadline:    deadline,
		CreatedBy:   userID,
	}

	if err := h.taskService.CreateTask(h.db, &task); err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) UpdateTodo(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task id must be an integer"})
		return
	}

	var input taskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var deadline *time.Time
	if input.Deadline != nil && *input.Deadline != "" {
		parsed, err := parseTimestamp(*input.Deadline)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		deadline = parsed
	}

	closedAt, closedAtSet, err := parseClosedAt(input.ClosedAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	update := services.TaskUpdate{
		Title:       input.Title,
		Description: input.Description,
		Deadline:    deadline,
		IsOpen:      input.IsOpen,
		ClosedAt:    closedAt,
		ClosedAtSet: closedAtSet,
	}

	task, err := h.taskService.UpdateTask(h.db, id, userID, update)
	if err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) DeleteTodo(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "task id must be an integer"})
		return
	}

	if err := h.taskService.DeleteTask(h.db, id, userID); err != nil {
		handleTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Todo deleted successfully"})
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
	case errors.Is(err, services.ErrNotTaskOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "task belongs to another user"})
	default:
		log.Printf("task request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}
