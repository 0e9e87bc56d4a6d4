package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/repository"
	"gorm.io/gorm"
)

// ReferenceNotFoundError reports a write that points at a record that does not exist.
type ReferenceNotFoundError struct {
	Field string
	ID    uint64
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("invalid pk \"%d\" - object does not exist", e.ID)
}

// resolveUsers loads the users behind ids, failing on the first unknown one.
func resolveUsers(userRepo repository.UserRepository, field string, ids []uint64) ([]models.User, error) {
	ids = uniqueUint64(ids)
	users, err := userRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify users: %w", err)
	}

	found := make(map[uint64]models.User, len(users))
	for _, u := range users {
		found[u.ID] = u
	}

	ordered := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := found[id]
		if !ok {
			return nil, &ReferenceNotFoundError{Field: field, ID: id}
		}
		ordered = append(ordered, u)
	}
	return ordered, nil
}

// resolveProject loads a referenced project. Soft-deleted projects still resolve.
func resolveProject(projectRepo repository.ProjectRepository, field string, id uint64) (*models.Project, error) {
	project, err := projectRepo.FindAnyByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ReferenceNotFoundError{Field: field, ID: id}
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
