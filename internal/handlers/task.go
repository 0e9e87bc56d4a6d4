package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/timetrack-api/internal/dto"
	apierrors "github.com/yukikurage/timetrack-api/internal/errors"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/services"
	"github.com/yukikurage/timetrack-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// taskRequest is the write shape of a task. The assignee is written through
// assigned_to_id and read back as the nested assigned_to.
type taskRequest struct {
	Title        *string                `json:"title"`
	Description  dto.Nullable[string]   `json:"description"`
	Priority     *models.TaskPriority   `json:"priority"`
	DueDate      dto.Nullable[dto.Date] `json:"due_date"`
	Completed    *bool                  `json:"completed"`
	Project      *uint64                `json:"project"`
	AssignedToID *uint64                `json:"assigned_to_id"`
}

func (r taskRequest) dueDate() *time.Time {
	d := r.DueDate.Ptr()
	if d == nil {
		return nil
	}
	return &d.Time
}

// ListTasks returns all active tasks
// Can filter by project, assigned_to, completed and priority
func (h *TaskHandler) ListTasks(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	projectID, ok := parseUintQuery(c, "project")
	if !ok {
		return
	}
	assignedTo, ok := parseUintQuery(c, "assigned_to")
	if !ok {
		return
	}
	completed, ok := parseBoolQuery(c, "completed")
	if !ok {
		return
	}

	input := services.ListTasksInput{
		ProjectID:    projectID,
		AssignedToID: assignedTo,
		Completed:    completed,
		Pagination:   utils.GetPaginationParams(c),
	}
	if priority := c.Query("priority"); priority != "" {
		p := models.TaskPriority(priority)
		input.Priority = &p
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	utils.RespondList(c, http.StatusOK, dto.ToTaskDTOs(tasks), input.Pagination, total)
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task for the named assignee
func (h *TaskHandler) CreateTask(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireFields(c,
		requiredField{"title", req.Title != nil},
		requiredField{"project", req.Project != nil},
		requiredField{"assigned_to_id", req.AssignedToID != nil},
	) {
		return
	}

	input := services.CreateTaskInput{
		ProjectID:    *req.Project,
		AssignedToID: req.AssignedToID,
		Title:        *req.Title,
		Description:  req.Description.Ptr(),
		DueDate:      req.dueDate(),
	}
	if req.Priority != nil {
		input.Priority = *req.Priority
	}
	if req.Completed != nil {
		input.Completed = *req.Completed
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask replaces the writable fields of a task (PUT)
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	h.update(c, false)
}

// PatchTask changes only the supplied fields of a task (PATCH)
func (h *TaskHandler) PatchTask(c *gin.Context) {
	h.update(c, true)
}

func (h *TaskHandler) update(c *gin.Context, partial bool) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req taskRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateTaskInput{
		ProjectID:        req.Project,
		AssignedToID:     req.AssignedToID,
		Title:            req.Title,
		Description:      req.Description.Ptr(),
		ClearDescription: req.Description.Cleared(),
		Priority:         req.Priority,
		DueDate:          req.dueDate(),
		ClearDueDate:     req.DueDate.Cleared(),
		Completed:        req.Completed,
	}
	if !partial {
		if !requireFields(c,
			requiredField{"title", req.Title != nil},
			requiredField{"project", req.Project != nil},
			requiredField{"assigned_to_id", req.AssignedToID != nil},
		) {
			return
		}
		input.ClearDescription = !req.Description.Valid
		input.ClearDueDate = !req.DueDate.Valid
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask soft-deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

func respondTaskError(c *gin.Context, err error) {
	if respondInputError(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAssigneeRequired):
		apierrors.FieldError(c, "assigned_to_id", msgFieldRequired)
	case errors.Is(err, services.ErrTaskProjectRequired):
		apierrors.FieldError(c, "project", msgFieldRequired)
	default:
		log.Printf("task request failed: %v", err)
		apierrors.InternalError(c, "Internal server error")
	}
}
