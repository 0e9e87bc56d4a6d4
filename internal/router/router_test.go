package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/timetrack-api/internal/config"
	"github.com/yukikurage/timetrack-api/internal/database"
	"github.com/yukikurage/timetrack-api/internal/mail"
	"github.com/yukikurage/timetrack-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func (m *capturingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

func (m *capturingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// RouterTestSuite drives the full HTTP stack against an in-memory database
type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	mailer *capturingMailer
	router *gin.Engine
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(database.MigrateDatabase(db))
	s.db = db

	s.mailer = &capturingMailer{}
	s.router = New(Deps{
		DB: db,
		Config: &config.Config{
			JWTSecret:     "test-jwt-secret",
			JWTTTL:        time.Hour,
			MailFrom:      "no-reply@example.com",
			AuthRateLimit: 100,
			AuthRateBurst: 100,
		},
		SessionStore: cookie.NewStore([]byte("secret")),
		Mailer:       s.mailer,
	})
}

func (s *RouterTestSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

type client struct {
	cookies []*http.Cookie
	token   string
}

func (s *RouterTestSuite) do(cl *client, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cl != nil {
		for _, ck := range cl.cookies {
			req.AddCookie(ck)
		}
		if cl.token != "" {
			req.Header.Set("Authorization", "Bearer "+cl.token)
		}
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterTestSuite) decode(w *httptest.ResponseRecorder, out interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

// signUp registers and logs in a user, returning a client holding the session cookie.
func (s *RouterTestSuite) signUp(username string) (*client, uint64) {
	w := s.do(nil, http.MethodPost, "/api/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var user struct {
		ID uint64 `json:"id"`
	}
	s.decode(w, &user)

	w = s.do(nil, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": "correct-horse",
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	cookies := w.Result().Cookies()
	s.Require().NotEmpty(cookies)

	return &client{cookies: cookies}, user.ID
}

func (s *RouterTestSuite) createProject(cl *client, name string, members ...uint64) uint64 {
	if members == nil {
		members = []uint64{}
	}
	w := s.do(cl, http.MethodPost, "/api/projects", map[string]interface{}{
		"name":        name,
		"members_ids": members,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var project struct {
		ID uint64 `json:"id"`
	}
	s.decode(w, &project)
	return project.ID
}

func (s *RouterTestSuite) TestHealth() {
	w := s.do(nil, http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(w.Header().Get("X-Request-Id"))
}

func (s *RouterTestSuite) TestResourcesRequireAuth() {
	for _, path := range []string{"/api/projects", "/api/timesheets", "/api/tasks", "/api/users", "/api/auth/me"} {
		w := s.do(nil, http.MethodGet, path, nil)
		s.Equal(http.StatusUnauthorized, w.Code, path)
	}

	w := s.do(nil, http.MethodPost, "/api/projects", map[string]string{"name": "Apollo"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(int64(0), s.count(&models.Project{}))
}

func (s *RouterTestSuite) TestRegister() {
	w := s.do(nil, http.MethodPost, "/api/register", map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	s.Require().Equal(http.StatusCreated, w.Code)

	var body map[string]interface{}
	s.decode(w, &body)
	s.Len(body, 3)
	s.Equal("alice", body["username"])
	s.Equal("alice@example.com", body["email"])
	s.NotContains(w.Body.String(), "password")

	w = s.do(nil, http.MethodPost, "/api/register", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "correct-horse",
	})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal(int64(1), s.count(&models.User{}))
}

func (s *RouterTestSuite) TestBearerToken() {
	_, userID := s.signUp("alice")

	w := s.do(nil, http.MethodPost, "/api/auth/jwt/create", map[string]string{
		"username": "alice",
		"password": "correct-horse",
	})
	s.Require().Equal(http.StatusOK, w.Code)
	var token struct {
		Access string `json:"access"`
	}
	s.decode(w, &token)
	s.Require().NotEmpty(token.Access)

	w = s.do(&client{token: token.Access}, http.MethodGet, "/api/auth/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me struct {
		ID uint64 `json:"id"`
	}
	s.decode(w, &me)
	s.Equal(userID, me.ID)

	w = s.do(nil, http.MethodPost, "/api/auth/jwt/create", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) TestProjectLifecycle() {
	owner, _ := s.signUp("owner")
	member, memberID := s.signUp("member")

	projectID := s.createProject(owner, "Apollo", memberID)
	path := fmt.Sprintf("/api/projects/%d", projectID)

	w := s.do(member, http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var project map[string]interface{}
	s.decode(w, &project)
	s.Equal("active", project["status"])
	s.Equal("owner", project["owner"].(map[string]interface{})["username"])
	s.Len(project["members"], 1)
	s.NotContains(project, "members_ids")

	// only the owner may change the project
	w = s.do(member, http.MethodPatch, path, map[string]string{"name": "Hijacked"})
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(owner, http.MethodPost, path+"/status", map[string]string{"status": "bogus"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &project)
	s.Equal("active", project["status"])

	w = s.do(owner, http.MethodPost, path+"/status", map[string]string{"status": "completed"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &project)
	s.Equal("completed", project["status"])

	w = s.do(owner, http.MethodPost, "/api/projects", map[string]interface{}{"name": "Gemini", "members_ids": []uint64{9999}})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "NOT_FOUND")
	s.Contains(w.Body.String(), "members_ids")

	w = s.do(owner, http.MethodPost, "/api/projects", map[string]string{"name": "Apollo"})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(owner, http.MethodDelete, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(owner, http.MethodGet, "/api/projects", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())

	w = s.do(owner, http.MethodGet, path, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestTimesheets() {
	alice, _ := s.signUp("alice")
	bob, _ := s.signUp("bob")
	projectID := s.createProject(alice, "Apollo")

	w := s.do(alice, http.MethodPost, "/api/timesheets", map[string]interface{}{
		"project": projectID,
		"date":    "2024-04-01",
		"hours":   8.5,
		"user":    9999,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var entry map[string]interface{}
	s.decode(w, &entry)
	s.Equal("8.50", entry["hours"])
	s.Equal("2024-04-01", entry["date"])
	s.Equal("alice", entry["user"].(map[string]interface{})["username"])
	entryPath := fmt.Sprintf("/api/timesheets/%v", entry["id"])

	w = s.do(alice, http.MethodPost, "/api/timesheets", map[string]interface{}{
		"project": projectID,
		"date":    "2024-04-01",
		"hours":   "1.00",
	})
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(alice, http.MethodPost, "/api/timesheets", map[string]interface{}{
		"project": projectID,
		"date":    "2024-04-02",
		"hours":   -1,
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "hours must not be negative")

	w = s.do(alice, http.MethodPost, "/api/timesheets", map[string]interface{}{"project": projectID, "date": "2024-04-02"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "hours")

	w = s.do(bob, http.MethodGet, entryPath, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(bob, http.MethodGet, "/api/timesheets", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())

	w = s.do(alice, http.MethodPatch, entryPath, map[string]interface{}{"hours": "0", "notes": "planning"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.decode(w, &entry)
	s.Equal("0.00", entry["hours"])
	s.Equal("planning", entry["notes"])

	w = s.do(alice, http.MethodGet, "/api/timesheets?page=1&limit=10", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Results    []map[string]interface{} `json:"results"`
		Pagination struct {
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	s.decode(w, &page)
	s.Len(page.Results, 1)
	s.Equal(int64(1), page.Pagination.Total)
	s.Equal(10, page.Pagination.Limit)

	w = s.do(alice, http.MethodDelete, entryPath, nil)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(alice, http.MethodGet, entryPath, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestTasksNotifyOnCompletion() {
	owner, _ := s.signUp("owner")
	_, assigneeID := s.signUp("assignee")
	projectID := s.createProject(owner, "Apollo", assigneeID)

	w := s.do(owner, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":   "Unassigned",
		"project": projectID,
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "assigned_to_id")

	w = s.do(owner, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":          "Past due",
		"project":        projectID,
		"assigned_to_id": assigneeID,
		"due_date":       "2000-01-01",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(w.Body.String(), "due_date")

	w = s.do(owner, http.MethodPost, "/api/tasks", map[string]interface{}{
		"title":          "Launch",
		"project":        projectID,
		"assigned_to_id": assigneeID,
		"due_date":       time.Now().UTC().Format("2006-01-02"),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task map[string]interface{}
	s.decode(w, &task)
	s.Equal("medium", task["priority"])
	s.Equal(false, task["completed"])
	s.Equal("assignee", task["assigned_to"].(map[string]interface{})["username"])
	s.Equal(0, s.mailer.count())

	taskPath := fmt.Sprintf("/api/tasks/%v", task["id"])
	w = s.do(owner, http.MethodPatch, taskPath, map[string]interface{}{"completed": true})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(1, s.mailer.count())

	w = s.do(owner, http.MethodGet, "/api/tasks?completed=true", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var tasks []map[string]interface{}
	s.decode(w, &tasks)
	s.Len(tasks, 1)

	w = s.do(owner, http.MethodDelete, taskPath, nil)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(owner, http.MethodGet, taskPath, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestUsersAreReadOnly() {
	alice, aliceID := s.signUp("alice")

	w := s.do(alice, http.MethodGet, "/api/users", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var users []map[string]interface{}
	s.decode(w, &users)
	s.Len(users, 1)

	w = s.do(alice, http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.do(alice, http.MethodDelete, fmt.Sprintf("/api/users/%d", aliceID), nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestSuggestTasksWithoutAI() {
	owner, _ := s.signUp("owner")
	projectID := s.createProject(owner, "Apollo")

	w := s.do(owner, http.MethodPost, fmt.Sprintf("/api/projects/%d/suggest-tasks", projectID), map[string]string{"text": "plan launch"})
	s.Equal(http.StatusServiceUnavailable, w.Code)
}

func (s *RouterTestSuite) TestLogout() {
	alice, _ := s.signUp("alice")

	w := s.do(alice, http.MethodPost, "/api/auth/logout", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	loggedOut := &client{cookies: w.Result().Cookies()}
	w = s.do(loggedOut, http.MethodGet, "/api/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) count(model interface{}) int64 {
	var n int64
	s.Require().NoError(s.db.Model(model).Count(&n).Error)
	return n
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
