package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/repository"
	"github.com/yukikurage/timetrack-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrAssigneeRequired    = errors.New("assigned_to_id is required")
	ErrTaskProjectRequired = errors.New("project is required")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	notifier    *NotificationService
	now         func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, notifier *NotificationService) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		now:         time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	ProjectID    *uint64
	AssignedToID *uint64
	Completed    *bool
	Priority     *models.TaskPriority
	Pagination   utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID    uint64
	AssignedToID *uint64
	Title        string
	Description  *string
	Priority     models.TaskPriority
	DueDate      *time.Time
	Completed    bool
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	ProjectID        *uint64
	AssignedToID     *uint64
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *models.TaskPriority
	DueDate          *time.Time
	ClearDueDate     bool
	Completed        *bool
}

// ListTasks returns active tasks matching the filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		ProjectID:    input.ProjectID,
		AssignedToID: input.AssignedToID,
		Completed:    input.Completed,
		Priority:     input.Priority,
		Pagination:   input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns an active task with its assignee
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "AssignedTo")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// CreateTask creates a task for an explicitly named assignee
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if input.ProjectID == 0 {
		return nil, ErrTaskProjectRequired
	}
	if input.AssignedToID == nil {
		return nil, ErrAssigneeRequired
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		ProjectID:    input.ProjectID,
		AssignedToID: *input.AssignedToID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Priority:     input.Priority,
		DueDate:      normalizeDate(input.DueDate),
		Completed:    input.Completed,
	}
	if err := task.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.resolveRelations(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.afterSave(ctx, task)

	return task, nil
}

// UpdateTask updates an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(taskID)
	if err != nil {
		return nil, err
	}

	if input.ProjectID != nil {
		task.ProjectID = *input.ProjectID
	}
	if input.AssignedToID != nil {
		task.AssignedToID = *input.AssignedToID
	}
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.ClearDescription {
		task.Description = nil
	} else if input.Description != nil {
		task.Description = input.Description
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = normalizeDate(input.DueDate)
	}
	if input.Completed != nil {
		task.Completed = *input.Completed
	}

	if err := task.Validate(s.now()); err != nil {
		return nil, err
	}

	if err := s.resolveRelations(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.afterSave(ctx, task)

	return task, nil
}

// DeleteTask soft-deletes a task
func (s *TaskService) DeleteTask(taskID uint64) error {
	if err := s.taskRepo.SoftDelete(taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// resolveRelations loads the referenced project and assignee onto the task.
func (s *TaskService) resolveRelations(task *models.Task) error {
	project, err := resolveProject(s.projectRepo, "project", task.ProjectID)
	if err != nil {
		return err
	}

	users, err := resolveUsers(s.userRepo, "assigned_to_id", []uint64{task.AssignedToID})
	if err != nil {
		return err
	}

	task.Project = *project
	task.AssignedTo = users[0]
	return nil
}

// afterSave runs the side effects of a stored task. A completed task notifies
// its assignee on every save.
func (s *TaskService) afterSave(ctx context.Context, task *models.Task) {
	if task.Completed && s.notifier != nil {
		s.notifier.TaskCompleted(ctx, task)
	}
}

func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := models.DateOf(*t)
	return &d
}
