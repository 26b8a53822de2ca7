package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/novelhub-dev/novelhub/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Database: config.DatabaseConfig{URL: filepath.Join(dir, "test.sqlite")},
		HTTP:     config.HTTPConfig{ListenAddr: "127.0.0.1:0", CORSOrigins: []string{"http://localhost:5173"}},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		Uploads:  config.UploadsConfig{Dir: filepath.Join(dir, "uploads")},
	}

	s, err := New(cfg, zerolog.Nop(), "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func doJSON(t *testing.T, s *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func registerAndLogin(t *testing.T, s *Server, username string) string {
	t.Helper()

	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": username,
		"password": "secret1",
		"email":    username + "@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "online", decode(t, w)["status"])
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"username": "alice",
		"password": "secret1",
		"email":    "alice@example.com",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "User registered successfully", decode(t, w)["message"])

	t.Run("duplicate username", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "alice",
			"password": "secret1",
			"email":    "other@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Username already exists", decode(t, w)["error"])
	})

	t.Run("duplicate email", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "alice2",
			"password": "secret1",
			"email":    "alice@example.com",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email already exists", decode(t, w)["error"])
	})

	t.Run("invalid fields", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "al",
			"password": "123",
			"email":    "nope",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		msg, _ := decode(t, w)["error"].(string)
		assert.Contains(t, msg, "username must be at least 3 characters")
		assert.Contains(t, msg, "password must be at least 6 characters")
		assert.Contains(t, msg, "email must be a valid email address")
	})

	t.Run("bad username characters", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
			"username": "bob smith",
			"password": "secret1",
			"email":    "bob@example.com",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	registerAndLogin(t, s, "alice")

	tests := []struct {
		name     string
		body     map[string]string
		wantCode int
	}{
		{"wrong password", map[string]string{"username": "alice", "password": "wrong!!"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "nobody", "password": "secret1"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "alice"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}

	t.Run("success returns user", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "secret1"})
		require.Equal(t, http.StatusOK, w.Code)

		user, _ := decode(t, w)["user"].(map[string]any)
		assert.Equal(t, "alice", user["username"])
		assert.Equal(t, "alice@example.com", user["email"])
		assert.NotEmpty(t, user["id"])
	})
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/user/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.NotEmpty(t, decode(t, w)["error"])
		})
	}

	t.Run("token for deleted user", func(t *testing.T) {
		token, err := s.signer.GenerateToken("01NOSUCHUSER0000000000000")
		require.NoError(t, err)

		w := doJSON(t, s, http.MethodGet, "/api/v1/user/profile", token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "User not found", decode(t, w)["error"])
	})
}

func TestProfile_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alice")
	registerAndLogin(t, s, "bob")

	w := doJSON(t, s, http.MethodGet, "/api/v1/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "", profile["bio"])

	w = doJSON(t, s, http.MethodPut, "/api/v1/user/profile", token, map[string]string{"bio": "writes fantasy"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "User updated successfully", decode(t, w)["message"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/user/profile", token, nil)
	profile = decode(t, w)
	assert.Equal(t, "writes fantasy", profile["bio"])
	assert.Equal(t, "alice", profile["username"], "fields not sent are kept")

	t.Run("conflicting username", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPut, "/api/v1/user/profile", token, map[string]string{"username": "bob"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("own username is not a conflict", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPut, "/api/v1/user/profile", token, map[string]string{"username": "alice"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("empty update", func(t *testing.T) {
		w := doJSON(t, s, http.MethodPut, "/api/v1/user/profile", token, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdatePassword(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alice")

	w := doJSON(t, s, http.MethodPut, "/api/v1/user/password", token, map[string]string{
		"old_password": "wrong!!",
		"new_password": "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid old password", decode(t, w)["error"])

	w = doJSON(t, s, http.MethodPut, "/api/v1/user/password", token, map[string]string{
		"old_password": "secret1",
		"new_password": "secret2",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "secret2"})
	assert.Equal(t, http.StatusOK, w.Code)

	// The token issued before the change still works
	w = doJSON(t, s, http.MethodGet, "/api/v1/user/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func avatarRequest(t *testing.T, token, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/user/avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestUploadAvatar(t *testing.T) {
	s := newTestServer(t)
	token := registerAndLogin(t, s, "alice")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, avatarRequest(t, token, "me.png", []byte("\x89PNG fake")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	url, _ := resp["avatar_url"].(string)
	assert.True(t, strings.HasPrefix(url, "/uploads/avatars/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	// Stored on disk and served statically
	_, err := os.Stat(filepath.Join(s.config.Uploads.Dir, "avatars", filepath.Base(url)))
	require.NoError(t, err)

	w = doJSON(t, s, http.MethodGet, url, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "\x89PNG fake", w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/api/v1/user/profile", token, nil)
	assert.Equal(t, url, decode(t, w)["avatar"])

	t.Run("rejects unsupported type", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, avatarRequest(t, token, "me.exe", []byte("MZ")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, avatarRequest(t, token, "big.png", make([]byte, maxAvatarSize+1)))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
