package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/holonet/internal/tasks"
)

type stubQueue struct {
	enqueued []backlite.Task
	err      error
	status   backlite.TaskStatus
}

func (q *stubQueue) Enqueue(task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *stubQueue) Status(context.Context, string) (backlite.TaskStatus, error) {
	return q.status, nil
}

func newTasksRouter(q TaskQueue) *gin.Engine {
	controller := NewTasksController(q)
	router := gin.New()
	router.GET("/api/tasks/types", controller.ListTaskTypes)
	router.GET("/api/tasks/:id", controller.GetTaskStatus)
	router.POST("/api/lists/:label/refresh", controller.EnqueueRefresh)
	router.POST("/api/lists/:label/sync", controller.EnqueueSync)
	return router
}

func TestTasksController_EnqueueRefresh(t *testing.T) {
	q := &stubQueue{}
	router := newTasksRouter(q)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/lists/planets/refresh", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, q.enqueued, 1)
	assert.Equal(t, tasks.RefreshLabelTask{Label: "planets"}, q.enqueued[0])

	var response struct {
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "task-1", response.Data["task_id"])
	assert.Equal(t, tasks.QueueRefreshLabel, response.Data["type"])
}

func TestTasksController_EnqueueSync(t *testing.T) {
	t.Run("defaults to one page", func(t *testing.T) {
		q := &stubQueue{}
		router := newTasksRouter(q)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/lists/persons/sync", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, tasks.SyncPagesTask{Label: "persons", Pages: 1}, q.enqueued[0])
	})

	t.Run("uses pages parameter", func(t *testing.T) {
		q := &stubQueue{}
		router := newTasksRouter(q)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/lists/persons/sync?pages=4", nil)
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, tasks.SyncPagesTask{Label: "persons", Pages: 4}, q.enqueued[0])
	})

	t.Run("rejects bad pages", func(t *testing.T) {
		q := &stubQueue{}
		router := newTasksRouter(q)

		for _, pages := range []string{"0", "abc", "51"} {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/lists/persons/sync?pages="+pages, nil)
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code, pages)
		}
		assert.Empty(t, q.enqueued)
	})
}

func TestTasksController_EnqueueFailure(t *testing.T) {
	router := newTasksRouter(&stubQueue{err: errors.New("database is locked")})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/lists/persons/refresh", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	router := newTasksRouter(&stubQueue{status: backlite.TaskStatusRunning})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/tasks/task-1", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"running"`)
}

func TestTaskStatusToString(t *testing.T) {
	assert.Equal(t, "pending", taskStatusToString(backlite.TaskStatusPending))
	assert.Equal(t, "success", taskStatusToString(backlite.TaskStatusSuccess))
	assert.Equal(t, "failure", taskStatusToString(backlite.TaskStatusFailure))
	assert.Equal(t, "not_found", taskStatusToString(backlite.TaskStatusNotFound))
}

func TestTasksController_ListTaskTypes(t *testing.T) {
	router := newTasksRouter(&stubQueue{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/tasks/types", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), tasks.QueueRefreshLabel)
	assert.Contains(t, w.Body.String(), tasks.QueueSyncPages)
}
