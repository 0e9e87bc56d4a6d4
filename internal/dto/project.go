package dto

import (
	"time"

	"github.com/yukikurage/timetrack-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	Name        string               `json:"name"`
	Description *string              `json:"description"`
	Owner       UserDTO              `json:"owner"`
	Members     []UserDTO            `json:"members"`
	Status      models.ProjectStatus `json:"status"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO.
// Owner and Memberships.User are expected to be preloaded.
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Owner:       ToUserDTO(project.Owner),
		Members:     ToUserDTOs(project.Members()),
		Status:      project.Status,
		CreatedAt:   project.CreatedAt,
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	dtos := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		dtos[i] = ToProjectDTO(p)
	}
	return dtos
}
