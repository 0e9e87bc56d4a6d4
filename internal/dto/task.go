package dto

import (
	"time"

	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description *string             `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *Date               `json:"due_date"`
	Completed   bool                `json:"completed"`
	Project     uint64              `json:"project"`
	AssignedTo  UserDTO             `json:"assigned_to"`
	CreatedAt   time.Time           `json:"created_at"`
}

// SuggestedTaskDTO represents an AI task proposal; nothing is stored for it
type SuggestedTaskDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *Date               `json:"due_date"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		DueDate:     toDatePtr(task.DueDate),
		Completed:   task.Completed,
		Project:     task.ProjectID,
		AssignedTo:  ToUserDTO(task.AssignedTo),
		CreatedAt:   task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = ToTaskDTO(t)
	}
	return dtos
}

// ToSuggestedTaskDTOs converts AI suggestions
func ToSuggestedTaskDTOs(tasks []services.SuggestedTask) []SuggestedTaskDTO {
	dtos := make([]SuggestedTaskDTO, len(tasks))
	for i, t := range tasks {
		dtos[i] = SuggestedTaskDTO{
			Title:       t.Title,
			Description: t.Description,
			Priority:    t.Priority,
			DueDate:     toDatePtr(t.DueDate),
		}
	}
	return dtos
}
