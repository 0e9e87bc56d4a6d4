package repository

import (
	"time"

	"github.com/yukikurage/timetrack-api/internal/database"
	"github.com/yukikurage/timetrack-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a project and its memberships in one transaction
func (r *GormProjectRepository) Create(project *models.Project, memberIDs []uint64) error {
	project.IsActive = true
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}
		return setMembers(tx, project.ID, memberIDs)
	})
}

// FindByID finds an active project with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.Scopes(database.Active("projects"))

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// FindAnyByID finds a project regardless of its active flag
func (r *GormProjectRepository) FindAnyByID(id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves active projects with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	query := r.db.Model(&models.Project{}).Scopes(database.Active("projects"))

	if filter.Status != nil {
		query = query.Where("projects.status = ?", *filter.Status)
	}
	if filter.OwnerID != nil {
		query = query.Where("projects.owner_id = ?", *filter.OwnerID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := query.Order("projects.id ASC").
		Scopes(database.Paginate(filter.Pagination)).
		Preload("Owner").
		Preload("Memberships.User").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update saves the project; a non-nil memberIDs replaces the roster
func (r *GormProjectRepository) Update(project *models.Project, memberIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(project).Error; err != nil {
			return err
		}
		if memberIDs == nil {
			return nil
		}
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		return setMembers(tx, project.ID, memberIDs)
	})
}

// UpdateStatus persists only the status column
func (r *GormProjectRepository) UpdateStatus(id uint64, status models.ProjectStatus) error {
	return r.db.Model(&models.Project{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("status", status).Error
}

// SoftDelete marks the project inactive
func (r *GormProjectRepository) SoftDelete(id uint64) error {
	return softDelete(r.db, &models.Project{}, id)
}

// Purge permanently removes the project with its timesheets, tasks and memberships
func (r *GormProjectRepository) Purge(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return purgeProjects(tx, []uint64{id})
	})
}

func setMembers(tx *gorm.DB, projectID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	now := time.Now()
	members := make([]models.ProjectMember, len(userIDs))
	for i, userID := range userIDs {
		members[i] = models.ProjectMember{
			ProjectID: projectID,
			UserID:    userID,
			JoinedAt:  now,
		}
	}

	return tx.Omit(clause.Associations).Create(&members).Error
}

// purgeProjects deletes projects and every row that references them.
func purgeProjects(tx *gorm.DB, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}

	if err := tx.Where("project_id IN ?", ids).Delete(&models.Timesheet{}).Error; err != nil {
		return err
	}

	if err := tx.Where("project_id IN ?", ids).Delete(&models.Task{}).Error; err != nil {
		return err
	}

	if err := tx.Where("project_id IN ?", ids).Delete(&models.ProjectMember{}).Error; err != nil {
		return err
	}

	return tx.Where("id IN ?", ids).Delete(&models.Project{}).Error
}
