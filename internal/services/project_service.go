package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/timetrack-api/internal/constants"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/repository"
	"github.com/yukikurage/timetrack-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound        = errors.New("project not found")
	ErrProjectNameTaken       = errors.New("project with this name already exists")
	ErrNotProjectOwner        = errors.New("only the project owner can perform this action")
	ErrNotProjectMember       = errors.New("user is not a member of the project")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskSuggester proposes tasks for a project from free text.
type TaskSuggester interface {
	SuggestTasks(ctx context.Context, project *models.Project, text string) ([]SuggestedTask, error)
}

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	suggester   TaskSuggester
}

// NewProjectService creates a new ProjectService. suggester may be nil.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, suggester TaskSuggester) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		suggester:   suggester,
	}
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	Status     *models.ProjectStatus
	OwnerID    *uint64
	Pagination utils.PaginationParams
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description *string
	Status      models.ProjectStatus
	OwnerID     uint64
	MemberIDs   []uint64
}

// UpdateProjectInput represents input for updating a project.
// A nil MemberIDs keeps the current roster.
type UpdateProjectInput struct {
	ActorID          uint64
	Name             *string
	Description      *string
	ClearDescription bool
	Status           *models.ProjectStatus
	MemberIDs        []uint64
}

// ListProjects returns every active project matching the filters
func (s *ProjectService) ListProjects(input ListProjectsInput) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(repository.ProjectFilter{
		Status:     input.Status,
		OwnerID:    input.OwnerID,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns an active project with owner and members
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Owner", "Memberships.User")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// CreateProject creates a project owned by the caller
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}

	project := &models.Project{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		OwnerID:     input.OwnerID,
		Status:      input.Status,
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	members, err := resolveUsers(s.userRepo, "members_ids", input.MemberIDs)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(project, userIDs(members)); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetProject(project.ID)
}

// UpdateProject applies the changes when the actor owns the project
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.ownedProject(projectID, input.ActorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		project.Name = strings.TrimSpace(*input.Name)
	}
	if input.ClearDescription {
		project.Description = nil
	} else if input.Description != nil {
		project.Description = input.Description
	}
	if input.Status != nil {
		project.Status = *input.Status
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}

	var memberIDs []uint64
	if input.MemberIDs != nil {
		members, err := resolveUsers(s.userRepo, "members_ids", input.MemberIDs)
		if err != nil {
			return nil, err
		}
		memberIDs = userIDs(members)
	}

	if err := s.projectRepo.Update(project, memberIDs); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrProjectNameTaken
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return s.GetProject(project.ID)
}

// ChangeStatus switches the project status. An unknown status is ignored and
// the unchanged project is returned without touching storage.
func (s *ProjectService) ChangeStatus(projectID, actorID uint64, status models.ProjectStatus) (*models.Project, error) {
	project, err := s.ownedProject(projectID, actorID, "Owner", "Memberships.User")
	if err != nil {
		return nil, err
	}

	if !project.ChangeStatus(status) {
		return project, nil
	}

	if err := s.projectRepo.UpdateStatus(project.ID, project.Status); err != nil {
		return nil, fmt.Errorf("failed to change status: %w", err)
	}

	return project, nil
}

// DeleteProject soft-deletes the project when the actor owns it
func (s *ProjectService) DeleteProject(projectID, actorID uint64) error {
	if _, err := s.ownedProject(projectID, actorID); err != nil {
		return err
	}

	if err := s.projectRepo.SoftDelete(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// SuggestTasksInput represents input for AI task suggestions
type SuggestTasksInput struct {
	ProjectID uint64
	ActorID   uint64
	Text      string
}

// SuggestTasks asks the configured suggester for tasks fitting the project.
// Nothing is stored; callers create the tasks they keep.
func (s *ProjectService) SuggestTasks(ctx context.Context, input SuggestTasksInput) ([]SuggestedTask, error) {
	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}

	project, err := s.GetProject(input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(input.ActorID) {
		return nil, ErrNotProjectMember
	}

	suggestions, err := s.suggester.SuggestTasks(ctx, project, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest tasks: %w", err)
	}
	if len(suggestions) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(suggestions) > constants.MaxAISuggestedTasks {
		suggestions = suggestions[:constants.MaxAISuggestedTasks]
	}

	today := models.DateOf(time.Now())
	valid := make([]SuggestedTask, 0, len(suggestions))
	for _, suggestion := range suggestions {
		suggestion.Title = strings.TrimSpace(suggestion.Title)
		if suggestion.Title == "" {
			continue
		}
		if !suggestion.Priority.Valid() {
			suggestion.Priority = models.TaskPriorityMedium
		}
		if suggestion.DueDate != nil && models.DateOf(*suggestion.DueDate).Before(today) {
			suggestion.DueDate = nil
		}
		valid = append(valid, suggestion)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTasks
	}

	return valid, nil
}

// ownedProject loads an active project and checks the actor is its owner.
func (s *ProjectService) ownedProject(projectID, actorID uint64, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if project.OwnerID != actorID {
		return nil, ErrNotProjectOwner
	}

	return project, nil
}

func userIDs(users []models.User) []uint64 {
	ids := make([]uint64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
