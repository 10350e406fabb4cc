package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"studytracker/internal/middleware"
	"studytracker/internal/service"
	"studytracker/internal/tracking"
)

type TaskHandler struct {
	taskService *service.TaskService
}

type createTaskRequest struct {
	Name             string `json:"name"`
	Subject          string `json:"subject"`
	EstimatedMinutes int    `json:"estimatedMinutes"`
	TaskDate         string `json:"taskDate"`
}

func (r createTaskRequest) input() service.CreateTaskInput {
	return service.CreateTaskInput{
		Name:             r.Name,
		Subject:          r.Subject,
		EstimatedMinutes: r.EstimatedMinutes,
		TaskDate:         r.TaskDate,
	}
}

type createTaskBatchRequest struct {
	Tasks []createTaskRequest `json:"tasks"`
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	task, apiErr := h.taskService.Create(c.Request.Context(), middleware.UserID(c), req.input())
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// CreateBatch plans a day's tasks in one request.
func (h *TaskHandler) CreateBatch(c *gin.Context) {
	var req createTaskBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidJSON(c)
		return
	}

	inputs := make([]service.CreateTaskInput, 0, len(req.Tasks))
	for _, row := range req.Tasks {
		inputs = append(inputs, row.input())
	}

	tasks, apiErr := h.taskService.CreateBatch(c.Request.Context(), middleware.UserID(c), inputs)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"tasks": tasks})
}

// List returns the caller's tasks for ?date=, defaulting to today.
func (h *TaskHandler) List(c *gin.Context) {
	tasks, apiErr := h.taskService.ListForDay(c.Request.Context(), middleware.UserID(c), c.Query("date"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *TaskHandler) Active(c *gin.Context) {
	task, apiErr := h.taskService.Active(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Get(c *gin.Context) {
	task, apiErr := h.taskService.Get(c.Request.Context(), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

func (h *TaskHandler) Feed(c *gin.Context) {
	tasks, apiErr := h.taskService.Feed(c.Request.Context(), c.Query("from"), c.Query("to"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Transition runs the :action (start, pause, resume, complete) on task :id.
func (h *TaskHandler) Transition(c *gin.Context) {
	action, ok := tracking.ParseAction(c.Param("action"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"code":    "unknown_action",
				"message": "action must be one of start, pause, resume, complete",
			},
		})
		return
	}

	result, apiErr := h.taskService.Transition(c.Request.Context(), middleware.UserID(c), c.Param("id"), action)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
