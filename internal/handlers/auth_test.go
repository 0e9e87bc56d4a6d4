package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/timetrack-api/internal/constants"
	"github.com/yukikurage/timetrack-api/internal/dto"
	"github.com/yukikurage/timetrack-api/internal/models"
)

func TestAuthHandler_Register(t *testing.T) {
	env := setupTestEnv(t)

	c, w := newContext(t, 0, http.MethodPost, "/api/register", map[string]string{
		"username": "newuser",
		"email":    "newuser@example.com",
		"password": "supersecret",
	})
	env.auth.Register(c)

	require.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	decodeBody(t, w, &response)
	assert.Equal(t, "newuser", response["username"])
	assert.Equal(t, "newuser@example.com", response["email"])
	assert.NotContains(t, response, "password")
	assert.NotContains(t, response, "password_hash")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "existing")

	c, w := newContext(t, 0, http.MethodPost, "/api/register", map[string]string{
		"username": "another",
		"email":    "existing@example.com",
		"password": "supersecret",
	})
	env.auth.Register(c)

	require.Equal(t, http.StatusConflict, w.Code)
	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestAuthHandler_Register_InvalidInput(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		body map[string]string
		code int
	}{
		{"missing email", map[string]string{"username": "u", "password": "supersecret"}, http.StatusBadRequest},
		{"malformed email", map[string]string{"username": "u", "email": "nope", "password": "supersecret"}, http.StatusBadRequest},
		{"short password", map[string]string{"username": "u", "email": "u@example.com", "password": "short"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newContext(t, 0, http.MethodPost, "/api/register", tt.body)
			env.auth.Register(c)
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "existing")

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))
	r.POST("/api/auth/login", env.auth.Login)

	payload := map[string]string{
		"username": "existing",
		"password": "supersecret",
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, payload["username"], response.Username)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "expected session cookie to be set")
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	env := setupTestEnv(t)
	env.createUser(t, "existing")

	c, w := newContext(t, 0, http.MethodPost, "/api/auth/jwt/create", map[string]string{
		"username": "existing",
		"password": "not-the-password",
	})
	env.auth.CreateToken(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body errorBody
	decodeBody(t, w, &body)
	assert.Equal(t, "INVALID_CREDENTIALS", body.Code)
}

func TestAuthHandler_CreateToken(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "existing")

	c, w := newContext(t, 0, http.MethodPost, "/api/auth/jwt/create", map[string]string{
		"username": "existing",
		"password": "supersecret",
	})
	env.auth.CreateToken(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Access    string `json:"access"`
		ExpiresAt string `json:"expires_at"`
	}
	decodeBody(t, w, &body)
	assert.NotEmpty(t, body.ExpiresAt)

	userID, err := env.tokens.Parse(body.Access)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestAuthHandler_GetCurrentUser(t *testing.T) {
	env := setupTestEnv(t)
	user := env.createUser(t, "current-user")

	c, w := newContext(t, user.ID, http.MethodGet, "/api/auth/me", nil)
	env.auth.GetCurrentUser(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.Username, response.Username)

	c, w = newContext(t, 0, http.MethodGet, "/api/auth/me", nil)
	env.auth.GetCurrentUser(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
