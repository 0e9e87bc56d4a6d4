package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timetrack-api/internal/constants"
	"github.com/yukikurage/timetrack-api/internal/database"
	"github.com/yukikurage/timetrack-api/internal/mail"
	"github.com/yukikurage/timetrack-api/internal/models"
	"github.com/yukikurage/timetrack-api/internal/repository"
	"github.com/yukikurage/timetrack-api/internal/security"
	"github.com/yukikurage/timetrack-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type countingSender struct {
	sent int
}

func (s *countingSender) Send(context.Context, mail.Message) error {
	s.sent++
	return nil
}

type testEnv struct {
	db          *gorm.DB
	authService *services.AuthService
	tokens      *security.TokenManager
	mailer      *countingSender
	auth        *AuthHandler
	users       *UserHandler
	projects    *ProjectHandler
	timesheets  *TimesheetHandler
	tasks       *TaskHandler
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.MigrateDatabase(db))

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	mailer := &countingSender{}
	authService := services.NewAuthService(userRepo)
	tokens := security.NewTokenManager("test-secret", time.Hour)

	return testEnv{
		db:          db,
		authService: authService,
		tokens:      tokens,
		mailer:      mailer,
		auth:        NewAuthHandler(authService, tokens),
		users:       NewUserHandler(services.NewUserService(userRepo)),
		projects:    NewProjectHandler(services.NewProjectService(projectRepo, userRepo, nil)),
		timesheets:  NewTimesheetHandler(services.NewTimesheetService(repository.NewTimesheetRepository(db), projectRepo)),
		tasks: NewTaskHandler(services.NewTaskService(
			repository.NewTaskRepository(db),
			projectRepo,
			userRepo,
			services.NewNotificationService(mailer, "no-reply@example.com"),
		)),
	}
}

func (env testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := env.authService.Register(services.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

func (env testEnv) createProject(t *testing.T, name string, ownerID uint64, memberIDs ...uint64) *models.Project {
	t.Helper()
	project := &models.Project{Name: name, OwnerID: ownerID, Status: models.ProjectStatusActive}
	require.NoError(t, repository.NewProjectRepository(env.db).Create(project, memberIDs))
	return project
}

// newContext builds a test context for the authenticated caller with an optional JSON body.
func newContext(t *testing.T, userID uint64, method, path string, body interface{}, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	if userID != 0 {
		c.Set(constants.ContextKeyUserID, userID)
	}
	return c, w
}

func idParam(id uint64) gin.Param {
	return gin.Param{Key: "id", Value: strconv.FormatUint(id, 10)}
}

func idString(id uint64) string {
	return strconv.FormatUint(id, 10)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

type errorBody struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details"`
}
