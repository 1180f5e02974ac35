package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
)

// TaskStatusReader reports the status of an enqueued task.
// Implemented by tasks.Client.
type TaskStatusReader interface {
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AdminController exposes curated content imports and task status.
type AdminController struct {
	queue    CuratedImportQueue
	status   TaskStatusReader
	seedPath string
}

// NewAdminController creates an AdminController. seedPath is the curated file
// imported on request; empty imports the embedded seed.
func NewAdminController(queue CuratedImportQueue, status TaskStatusReader, seedPath string) *AdminController {
	return &AdminController{queue: queue, status: status, seedPath: seedPath}
}

// ImportCurated handles POST /api/admin/import
// Enqueues an import of the configured curated content file.
func (ac *AdminController) ImportCurated(c *gin.Context) {
	taskID, err := ac.queue.EnqueueCuratedImport(ac.seedPath)
	if err != nil {
		respondInternalError(c, err, "enqueue curated import")
		return
	}
	respondAccepted(c, "task enqueued", gin.H{
		"task_id": taskID,
		"type":    "import_curated",
	})
}

// GetTaskStatus handles GET /api/admin/tasks/:id
// Returns the status of a specific task.
func (ac *AdminController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := ac.status.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
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
