package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/PixelBoard/app/models"
	"github.com/ManuelReschke/PixelBoard/app/repository"
	"github.com/ManuelReschke/PixelBoard/docs"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/config"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/storage"
	"github.com/ManuelReschke/PixelBoard/internal/pkg/testutil"
)

type testServer struct {
	t     *testing.T
	app   *fiber.App
	fs    afero.Fs
	repos *repository.Repositories
}

type imageJSON struct {
	ID         uint     `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	IsPublic   bool     `json:"is_public"`
	Captions   []string `json:"captions"`
	UploadedBy *uint    `json:"uploaded_by"`
}

type reportJSON struct {
	ID               uint    `json:"id"`
	ImageID          uint    `json:"image_id"`
	ImageTitle       *string `json:"image_title"`
	ImageMissing     bool    `json:"image_missing"`
	ReporterUsername *string `json:"reporter_username"`
	Status           string  `json:"status"`
}

type pageJSON[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	fs := testutil.NewFs()
	repos := repository.NewRepositories(db)

	cfg := &config.Config{
		App:            config.App{Env: "dev"},
		JWT:            config.JWT{Secret: "test-secret", Issuer: "pixelboard", TTL: time.Hour},
		RateLimit:      config.RateLimit{Max: 10000, Expiration: time.Minute},
		MaxUploadBytes: 10 * 1024 * 1024,
	}
	app, err := New(Options{
		Config:       cfg,
		DB:           db,
		Repositories: repos,
		ContentDir:   storage.NewContentDirFs(fs, "mem"),
	})
	require.NoError(t, err)

	return &testServer{t: t, app: app, fs: fs, repos: repos}
}

func (s *testServer) do(req *http.Request, token string, out any) int {
	s.t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil {
		body, err := io.ReadAll(resp.Body)
		require.NoError(s.t, err)
		require.NoError(s.t, json.Unmarshal(body, out), string(body))
	}
	return resp.StatusCode
}

func (s *testServer) json(method, path, token string, body any, out any) int {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return s.do(req, token, out)
}

func (s *testServer) upload(token, filename string, content []byte, fields map[string]string, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	for k, v := range fields {
		require.NoError(s.t, w.WriteField(k, v))
	}
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/images/", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return s.do(req, token, out)
}

// login registers a user, optionally promotes it and returns a token.
func (s *testServer) login(username, role string) string {
	s.t.Helper()
	var user struct {
		ID uint `json:"id"`
	}
	status := s.json(fiber.MethodPost, "/api/auth/register", "", fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "password123",
	}, &user)
	require.Equal(s.t, fiber.StatusCreated, status)
	if role == models.ROLE_ADMIN {
		require.NoError(s.t, s.repos.User.UpdateFields(user.ID, map[string]any{"role": role}))
	}

	var res struct {
		Token string `json:"token"`
	}
	status = s.json(fiber.MethodPost, "/api/auth/login", "", fiber.Map{
		"username": username,
		"password": "password123",
	}, &res)
	require.Equal(s.t, fiber.StatusOK, status)
	require.NotEmpty(s.t, res.Token)
	return res.Token
}

func (s *testServer) fileCount() int {
	s.t.Helper()
	infos, err := afero.ReadDir(s.fs, "/")
	require.NoError(s.t, err)
	return len(infos)
}

func TestEndToEnd_ReportReviewDelete(t *testing.T) {
	s := newTestServer(t)
	u1 := s.login("uploader", models.ROLE_USER)
	u2 := s.login("viewer", models.ROLE_USER)
	admin := s.login("moderator", models.ROLE_ADMIN)

	// U1 uploads a public image
	var img imageJSON
	status := s.upload(u1, "cat.png", testutil.PNG, map[string]string{"title": "cat", "is_public": "true"}, &img)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, "cat", img.Title)
	assert.True(t, img.IsPublic)
	require.NotNil(t, img.UploadedBy)

	// U2 finds it in the public listing and can fetch the file
	var public pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/", u2, nil, &public))
	require.Len(t, public.Items, 1)
	assert.Equal(t, img.ID, public.Items[0].ID)

	resp, err := s.app.Test(httptest.NewRequest(fiber.MethodGet, img.URL, nil), -1)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get(fiber.HeaderContentType))
	assert.Equal(t, testutil.PNG, body)

	// U2 cannot modify U1's image
	assert.Equal(t, fiber.StatusForbidden, s.json(fiber.MethodPut, fmt.Sprintf("/api/images/%d", img.ID), u2, fiber.Map{"title": "mine"}, nil))
	assert.Equal(t, fiber.StatusForbidden, s.json(fiber.MethodPost, fmt.Sprintf("/api/images/%d/caption", img.ID), u2, fiber.Map{"caption": "mine"}, nil))
	assert.Equal(t, fiber.StatusForbidden, s.json(fiber.MethodDelete, fmt.Sprintf("/api/images/%d", img.ID), u2, nil, nil))

	// U2 reports it
	assert.Equal(t, fiber.StatusCreated, s.json(fiber.MethodPost, fmt.Sprintf("/api/images/%d/report", img.ID), u2, fiber.Map{"reason": "spam"}, nil))

	// non-admins never reach the admin surface
	assert.Equal(t, fiber.StatusUnauthorized, s.json(fiber.MethodGet, "/api/admin/reports", "", nil, nil))
	assert.Equal(t, fiber.StatusForbidden, s.json(fiber.MethodGet, "/api/admin/reports", u2, nil, nil))

	// admin finds the pending report with resolved references
	var reports pageJSON[reportJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/admin/reports?status=pending", admin, nil, &reports))
	require.Len(t, reports.Items, 1)
	report := reports.Items[0]
	require.NotNil(t, report.ImageTitle)
	require.NotNil(t, report.ReporterUsername)
	assert.Equal(t, "cat", *report.ImageTitle)
	assert.Equal(t, "viewer", *report.ReporterUsername)

	// admin resolves it and deletes the image
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodPut, fmt.Sprintf("/api/admin/reports/%d", report.ID), admin, fiber.Map{"status": "resolved"}, nil))
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodDelete, fmt.Sprintf("/api/admin/images/%d", img.ID), admin, nil, nil))

	public = pageJSON[imageJSON]{}
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/", "", nil, &public))
	assert.Empty(t, public.Items)
	assert.Equal(t, 0, s.fileCount())

	// the report survives and points at a missing image
	reports = pageJSON[reportJSON]{}
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/admin/reports", admin, nil, &reports))
	require.Len(t, reports.Items, 1)
	assert.Equal(t, "resolved", reports.Items[0].Status)
	assert.True(t, reports.Items[0].ImageMissing)
	assert.Nil(t, reports.Items[0].ImageTitle)
	assert.Equal(t, img.ID, reports.Items[0].ImageID)

	// a second delete is a plain not found
	assert.Equal(t, fiber.StatusNotFound, s.json(fiber.MethodDelete, fmt.Sprintf("/api/admin/images/%d", img.ID), admin, nil, nil))
	resp, err = s.app.Test(httptest.NewRequest(fiber.MethodGet, img.URL, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUpload_RejectedTypeLeavesNothing(t *testing.T) {
	s := newTestServer(t)
	token := s.login("uploader", models.ROLE_USER)

	var errBody map[string]string
	status := s.upload(token, "evil.html", []byte("<html></html>"), map[string]string{"title": "x"}, &errBody)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "bad_request", errBody["error"])
	assert.Equal(t, 0, s.fileCount())

	var mine pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/my-images", token, nil, &mine))
	assert.Zero(t, mine.Total)

	assert.Equal(t, fiber.StatusUnauthorized, s.upload("", "cat.png", testutil.PNG, nil, nil))
}

func TestUpload_DefaultsAndOwnerListing(t *testing.T) {
	s := newTestServer(t)
	token := s.login("uploader", models.ROLE_USER)

	var img imageJSON
	require.Equal(t, fiber.StatusCreated, s.upload(token, "cat.png", testutil.PNG, nil, &img))
	assert.Equal(t, "Untitled", img.Title)
	assert.True(t, img.IsPublic)

	var hidden imageJSON
	require.Equal(t, fiber.StatusCreated, s.upload(token, "cat.png", testutil.PNG, map[string]string{"is_public": "False"}, &hidden))
	assert.False(t, hidden.IsPublic)
	assert.NotEqual(t, img.URL, hidden.URL)

	var public pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/", "", nil, &public))
	assert.Equal(t, int64(1), public.Total)

	var mine pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/my-images?per_page=1&page=2", token, nil, &mine))
	assert.Equal(t, int64(2), mine.Total)
	assert.Equal(t, 2, mine.Pages)
	assert.Equal(t, 2, mine.Page)
	assert.Len(t, mine.Items, 1)

	var far pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/my-images?page=9223372036854775807", token, nil, &far))
	assert.Empty(t, far.Items)
	assert.Equal(t, int64(2), far.Total)

	var clamped pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/images/my-images?per_page=500", token, nil, &clamped))
	assert.Equal(t, 100, clamped.PerPage)

	var captioned imageJSON
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodPost, fmt.Sprintf("/api/images/%d/caption", img.ID), token, fiber.Map{"caption": "hello"}, &captioned))
	assert.Equal(t, []string{"hello"}, captioned.Captions)
	assert.Equal(t, fiber.StatusBadRequest, s.json(fiber.MethodPost, fmt.Sprintf("/api/images/%d/caption", img.ID), token, fiber.Map{}, nil))
}

func TestAdminUsersAndStats(t *testing.T) {
	s := newTestServer(t)
	user := s.login("someone", models.ROLE_USER)
	admin := s.login("moderator", models.ROLE_ADMIN)
	require.Equal(t, fiber.StatusCreated, s.upload(user, "cat.png", testutil.PNG, nil, nil))

	var users pageJSON[map[string]any]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/admin/users", admin, nil, &users))
	require.Len(t, users.Items, 2)
	for _, u := range users.Items {
		assert.NotContains(t, u, "password")
	}

	var someoneID uint
	for _, u := range users.Items {
		if u["username"] == "someone" {
			someoneID = uint(u["id"].(float64))
		}
	}
	require.NotZero(t, someoneID)

	// non-admin attempts change nothing
	assert.Equal(t, fiber.StatusForbidden, s.json(fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", someoneID), user, fiber.Map{"role": "admin"}, nil))
	stored, err := s.repos.User.GetByID(someoneID)
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_USER, stored.Role)

	var updated map[string]any
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", someoneID), admin, fiber.Map{"email": "new@example.com", "password": "ignored"}, &updated))
	assert.Equal(t, "new@example.com", updated["email"])
	assert.Equal(t, fiber.StatusBadRequest, s.json(fiber.MethodPut, fmt.Sprintf("/api/admin/users/%d", someoneID), admin, fiber.Map{"role": "root"}, nil))

	var stats models.Stats
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/admin/stats", admin, nil, &stats))
	assert.Equal(t, models.Stats{Users: 2, Images: 1, PublicImages: 1, PendingReports: 0}, stats)

	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", someoneID), admin, nil, nil))
	assert.Equal(t, fiber.StatusNotFound, s.json(fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", someoneID), admin, nil, nil))
	// the deleted user's token no longer authenticates
	assert.Equal(t, fiber.StatusUnauthorized, s.json(fiber.MethodGet, "/api/images/my-images", user, nil, nil))

	var images pageJSON[imageJSON]
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/api/admin/images", admin, nil, &images))
	require.Len(t, images.Items, 1)
	assert.Nil(t, images.Items[0].UploadedBy, "owner is gone")
}

func TestAdminRoutes_NonAdminChangesNothing(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("uploader", models.ROLE_USER)
	reporter := s.login("viewer", models.ROLE_USER)
	s.login("moderator", models.ROLE_ADMIN)

	var img imageJSON
	require.Equal(t, fiber.StatusCreated, s.upload(owner, "cat.png", testutil.PNG, map[string]string{"title": "cat"}, &img))
	var report reportJSON
	require.Equal(t, fiber.StatusCreated, s.json(fiber.MethodPost, fmt.Sprintf("/api/images/%d/report", img.ID), reporter, fiber.Map{"reason": "spam"}, &report))

	target, err := s.repos.User.GetByUsername("moderator")
	require.NoError(t, err)

	attempts := []struct {
		method, path string
		body         any
	}{
		{fiber.MethodDelete, fmt.Sprintf("/api/admin/users/%d", target.ID), nil},
		{fiber.MethodDelete, fmt.Sprintf("/api/admin/images/%d", img.ID), nil},
		{fiber.MethodPut, fmt.Sprintf("/api/admin/reports/%d", report.ID), fiber.Map{"status": "dismissed"}},
	}
	for _, token := range []string{owner, reporter} {
		for _, a := range attempts {
			assert.Equal(t, fiber.StatusForbidden, s.json(a.method, a.path, token, a.body, nil), "%s %s", a.method, a.path)
		}
	}
	for _, a := range attempts {
		assert.Equal(t, fiber.StatusUnauthorized, s.json(a.method, a.path, "", a.body, nil), "%s %s", a.method, a.path)
	}

	user, err := s.repos.User.GetByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ROLE_ADMIN, user.Role)

	stored, err := s.repos.Image.GetByID(img.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat", stored.Title)
	assert.Equal(t, 1, s.fileCount())

	r, err := s.repos.Report.GetByID(report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusPending, r.Status)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	var res struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.Equal(t, fiber.StatusOK, s.json(fiber.MethodGet, "/healthz", "", nil, &res))
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, "ok", res.Checks["database"])
	assert.Equal(t, "ok", res.Checks["content_dir"])
}

func TestOpenAPI_DocumentsEveryRoute(t *testing.T) {
	s := newTestServer(t)
	doc, err := docs.Load(context.Background())
	require.NoError(t, err)

	replacer := strings.NewReplacer(":id", "{id}", ":filename", "{filename}")
	checked := 0
	for _, route := range s.app.GetRoutes(true) {
		switch route.Method {
		case fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete:
		default:
			continue
		}
		path := strings.TrimSuffix(route.Path, "/")
		if path == "/api" || !(strings.HasPrefix(path, "/api/") || path == "/healthz") {
			continue
		}
		path = replacer.Replace(path)
		item := doc.Paths.Value(path)
		if assert.NotNil(t, item, "undocumented path %s", path) {
			assert.NotNil(t, item.GetOperation(route.Method), "undocumented %s %s", route.Method, path)
		}
		checked++
	}
	assert.Greater(t, checked, 15)
}

func TestOpenAPI_ServesDocs(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(fiber.MethodGet, "/docs/api/v1", nil)
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
