package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/holonet/internal/tasks"
)

const maxSyncPages = 50

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue endpoints.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        tasks.QueueRefreshLabel,
			Description: "Replace a cached list with the first remote page",
			Queue:       tasks.QueueRefreshLabel,
		},
		{
			Type:        tasks.QueueSyncPages,
			Description: "Refresh a list and append further pages",
			Queue:       tasks.QueueSyncPages,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

// EnqueueRefresh handles POST /api/lists/:label/refresh
// The refresh runs in the background; the response carries the task id.
func (tc *TasksController) EnqueueRefresh(c *gin.Context) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}

	tc.enqueue(c, tasks.RefreshLabelTask{Label: label.String()}, tasks.QueueRefreshLabel)
}

// EnqueueSync handles POST /api/lists/:label/sync?pages=N
func (tc *TasksController) EnqueueSync(c *gin.Context) {
	label, ok := parseLabelParam(c, "label")
	if !ok {
		return
	}

	pages := 1
	if raw := c.Query("pages"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxSyncPages {
			respondBadRequest(c, "pages must be between 1 and "+strconv.Itoa(maxSyncPages))
			return
		}
		pages = v
	}

	tc.enqueue(c, tasks.SyncPagesTask{Label: label.String(), Pages: pages}, tasks.QueueSyncPages)
}

func (tc *TasksController) enqueue(c *gin.Context, task backlite.Task, taskType string) {
	id, err := tc.queue.Enqueue(task)
	if err != nil {
		respondInternalError(c, err, "enqueue "+taskType)
		return
	}

	respondAccepted(c, "task enqueued", gin.H{
		"task_id": id,
		"type":    taskType,
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
