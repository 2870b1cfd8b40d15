package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tickbug-backend/internal/activity"
	"tickbug-backend/internal/auth"
	"tickbug-backend/internal/config"
	"tickbug-backend/internal/database/databasetest"
	"tickbug-backend/internal/handlers"
	"tickbug-backend/internal/mailer"
	"tickbug-backend/internal/notify"
	"tickbug-backend/internal/services"
	"tickbug-backend/internal/storage"
)

type client struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := databasetest.Open(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{
		BaseURL:          "http://tickbug.test",
		TokenTTL:         time.Hour,
		PasswordResetTTL: time.Hour,
		UploadDir:        t.TempDir(),
		MaxUploadBytes:   1 << 20,
	}
	store, err := storage.NewLocalStore(cfg.UploadDir)
	require.NoError(t, err)
	tokens := auth.NewIssuer("handler-test-secret", cfg.TokenTTL)

	svc := services.New(services.Deps{
		DB:       db,
		Config:   cfg,
		Activity: activity.NewRecorder(true),
		Notifier: notify.New(db, mailer.NewLogTransport(logger), cfg.BaseURL, false, logger),
		Files:    store,
		Tokens:   tokens,
		Logger:   logger,
	})
	router := handlers.NewRouter(handlers.RouterConfig{
		Services:       svc,
		Tokens:         tokens,
		DB:             db,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})
	return &client{t: t, router: router}
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

// call sends a JSON request and decodes the envelope.
func (c *client) call(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req, _ := http.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := c.send(req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w.Code, out
}

// ok asserts a successful envelope and returns it.
func (c *client) ok(method, path string, body any) map[string]any {
	c.t.Helper()
	code, out := c.call(method, path, body)
	require.Equal(c.t, http.StatusOK, code)
	require.Equal(c.t, true, out["success"], "%s %s: %v", method, path, out["message"])
	return out
}

func id(m map[string]any, key string) int64 {
	return int64(m[key].(map[string]any)["id"].(float64))
}

func (c *client) login(email, password string) {
	c.t.Helper()
	c.ok("POST", "/api/v1/auth/register", map[string]string{"email": email, "password": password, "first_name": "Ada"})
	out := c.ok("POST", "/api/v1/auth/login", map[string]string{"email": email, "password": password})
	c.token = out["token"].(string)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	c := newClient(t)

	code, out := c.call("GET", "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, out["success"])

	code, _ = c.call("GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestFailuresUseEnvelopeWithStatus200(t *testing.T) {
	c := newClient(t)

	code, out := c.call("POST", "/api/v1/auth/login", map[string]string{"email": "nobody@example.com", "password": "whatever1"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "invalid email or password", out["message"])

	c.login("ada@example.com", "long enough")
	code, out = c.call("GET", "/api/v1/projects/9999", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, out["success"])
	assert.Equal(t, "project not found", out["message"])
}

func TestMutationsArePostOnly(t *testing.T) {
	c := newClient(t)
	c.login("ada@example.com", "long enough")
	p := c.ok("POST", "/api/v1/projects", map[string]string{"name": "Launch"})
	path := fmt.Sprintf("/api/v1/projects/%d/delete", id(p, "project"))

	for _, method := range []string{"GET", "DELETE", "PUT"} {
		code, _ := c.call(method, path, nil)
		assert.Equal(t, http.StatusNotFound, code, method)
	}
	c.ok("GET", fmt.Sprintf("/api/v1/projects/%d", id(p, "project")), nil)
}

func TestTicketFlowOverHTTP(t *testing.T) {
	c := newClient(t)
	c.login("ada@example.com", "long enough")

	p := c.ok("POST", "/api/v1/projects", map[string]string{"name": "Launch", "theme_color": "not-a-colour"})
	projectID := id(p, "project")
	assert.Equal(t, "3b82f6", p["project"].(map[string]any)["theme_color"])

	d := c.ok("POST", fmt.Sprintf("/api/v1/projects/%d/deliverables", projectID), map[string]string{"name": "MVP"})
	deliverableID := id(d, "deliverable")

	tk := c.ok("POST", fmt.Sprintf("/api/v1/deliverables/%d/tickets", deliverableID), map[string]any{
		"title":    "Fix login",
		"priority": "Critical",
	})
	ticketID := id(tk, "ticket")
	assert.Equal(t, "New", tk["ticket"].(map[string]any)["status"])
	assert.Equal(t, "Critical", tk["ticket"].(map[string]any)["priority"])

	st := c.ok("POST", fmt.Sprintf("/api/v1/tickets/%d/status", ticketID), map[string]string{"status": "In progress"})
	assert.Equal(t, "In progress", st["ticket"].(map[string]any)["status"])

	c.ok("POST", fmt.Sprintf("/api/v1/tickets/%d/comments", ticketID), map[string]string{"description": "on it"})

	// Upload and download an attachment.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	jpeg := append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0x01}, 64)...)
	_, err = fw.Write(jpeg)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", fmt.Sprintf("/api/v1/tickets/%d/files", ticketID), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := c.send(req)
	require.Equal(t, http.StatusOK, w.Code)
	var up map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &up))
	require.Equal(t, true, up["success"], up["message"])
	fileID := id(up, "file")

	req, _ = http.NewRequest("GET", fmt.Sprintf("/api/v1/files/%d", fileID), nil)
	w = c.send(req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename=photo.jpg`)
	assert.Equal(t, jpeg, w.Body.Bytes())

	detail := c.ok("GET", fmt.Sprintf("/api/v1/tickets/%d", ticketID), nil)
	assert.Len(t, detail["comments"], 1)
	assert.Len(t, detail["files"], 1)

	summary := c.ok("GET", fmt.Sprintf("/api/v1/projects/%d/reports/summary", projectID), nil)
	assert.EqualValues(t, 1, summary["report"].(map[string]any)["total_tickets"])

	c.ok("POST", fmt.Sprintf("/api/v1/projects/%d/delete", projectID), nil)
	list := c.ok("GET", "/api/v1/projects?archived=true", nil)
	assert.Empty(t, list["projects"])
}
