package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/timetrack-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every record type in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Timesheet{},
		&models.Task{},
	}
}

func Migrate() error {
	return MigrateDatabase(DB)
}

// MigrateDatabase runs all database migrations
func MigrateDatabase(db *gorm.DB) error {
	log.Println("Running database migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	log.Println("Database migrations completed")
	return nil
}

// AddIndexes adds the composite indexes used by list filters
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Active-record listings
		{"projects", "idx_projects_active_status", "is_active, status"},
		{"tasks", "idx_tasks_active_project", "is_active, project_id"},
		{"tasks", "idx_tasks_active_assignee", "is_active, assigned_to_id"},

		// Caller-scoped timesheet listing ordered by date
		{"timesheets", "idx_timesheets_user_active_date", "user_id, is_active, date"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
