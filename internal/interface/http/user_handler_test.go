package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	userapp "github.com/oksasatya/user-management-api/internal/application"
	"github.com/oksasatya/user-management-api/internal/domain/entity"
	repo "github.com/oksasatya/user-management-api/internal/domain/repository"
	"github.com/oksasatya/user-management-api/internal/infrastructure/imagehost"
	"github.com/oksasatya/user-management-api/internal/interface/middleware"
	"github.com/oksasatya/user-management-api/pkg/helpers"
	"github.com/oksasatya/user-management-api/pkg/validation"
)

// --- fakes ---

type memRepo struct {
	users  map[int64]*entity.User
	nextID int64
}

func newMemRepo() *memRepo { return &memRepo{users: map[int64]*entity.User{}, nextID: 1} }

func (m *memRepo) Create(ctx context.Context, u *entity.User) error {
	u.ID = m.nextID
	m.nextID++
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memRepo) GetAll(ctx context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memRepo) Update(ctx context.Context, u *entity.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return repo.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username != nil && *u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type memImageHost struct{}

func (memImageHost) Upload(ctx context.Context, r io.Reader, size int64, filename, folder, contentType string) (*imagehost.UploadResult, error) {
	return &imagehost.UploadResult{FileID: folder + "/" + filename, URL: "https://img.example.com/" + filename, Name: filename}, nil
}

func (memImageHost) Delete(ctx context.Context, fileID string) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := userapp.NewService(newMemRepo(), jwt, memImageHost{}, "user-profiles", nil, nil, nil, "", nil, "testapp")

	r := gin.New()
	api := r.Group("/api")
	authH := NewAuthHandler(svc, nil)
	userH := NewUserHandler(svc, nil, 1<<20)

	api.POST("/auth/signup", authH.Signup)
	api.POST("/auth/login", authH.Login)
	users := api.Group("/users")
	users.Use(middleware.Auth(jwt))
	users.GET("", userH.List)
	users.GET("/:id", userH.Get)
	users.PUT("/:id", userH.Update)
	users.POST("/:id/profile-picture", userH.UploadPicture)
	users.DELETE("/:id", userH.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signup(t *testing.T, r *gin.Engine, email string) (userResponse, string) {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email":     email,
		"password":  "secret1",
		"firstName": "A",
		"lastName":  "B",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "Bearer", resp.Type)
	require.NotEmpty(t, resp.Token)
	return resp.User, resp.Token
}

// --- tests ---

func TestSignupEndpoint(t *testing.T) {
	r := newTestRouter(t)

	u, _ := signup(t, r, "a@x.com")
	require.NotZero(t, u.ID)
	require.True(t, u.IsActive)

	// The raw body must never contain a password field.
	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "b@x.com", "password": "secret1", "firstName": "A", "lastName": "B",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotContains(t, strings.ToLower(w.Body.String()), "password")
}

func TestSignupEndpoint_Validation(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "not-an-email", "password": "short", "firstName": "", "lastName": "B",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Status int               `json:"status"`
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, http.StatusBadRequest, body.Status)
	require.Contains(t, body.Errors, "email")
	require.Contains(t, body.Errors, "password")
	require.Contains(t, body.Errors, "firstName")
}

func TestSignupEndpoint_Duplicate(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "a@x.com")

	w := doJSON(r, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"email": "a@x.com", "password": "secret1", "firstName": "A", "lastName": "B",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginEndpoint(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "a@x.com")

	w := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "a@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "a@x.com", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Unknown email returns the same status and message as a wrong password.
	w2 := doJSON(r, http.MethodPost, "/api/auth/login", "", map[string]any{
		"email": "nobody@x.com", "password": "secret1",
	})
	require.Equal(t, http.StatusUnauthorized, w2.Code)
	require.JSONEq(t, stripTimestamps(t, w.Body.Bytes()), stripTimestamps(t, w2.Body.Bytes()))
}

func stripTimestamps(t *testing.T, b []byte) string {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	delete(m, "timestamp")
	delete(m, "request_id")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}

func TestGetUsersEndpoint(t *testing.T) {
	r := newTestRouter(t)
	u, token := signup(t, r, "a@x.com")
	signup(t, r, "b@x.com")

	// No token
	w := doJSON(r, http.MethodGet, "/api/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)

	w = doJSON(r, http.MethodGet, "/api/users/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, u.Email, got.Email)

	w = doJSON(r, http.MethodGet, "/api/users/999", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateEndpoint(t *testing.T) {
	r := newTestRouter(t)
	u, token := signup(t, r, "a@x.com")
	signup(t, r, "b@x.com")

	w := doJSON(r, http.MethodPut, "/api/users/1", token, map[string]any{"firstName": "New"})
	require.Equal(t, http.StatusOK, w.Code)
	var got userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "New", got.FirstName)
	require.Equal(t, u.LastName, got.LastName)

	// Updating another user's record is rejected.
	w = doJSON(r, http.MethodPut, "/api/users/2", token, map[string]any{"firstName": "Nope"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func multipartBody(t *testing.T, field, filename, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadPictureEndpoint(t *testing.T) {
	r := newTestRouter(t)
	_, token := signup(t, r, "a@x.com")

	body, ct := multipartBody(t, "file", "avatar.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/users/1/profile-picture", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var got userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.NotNil(t, got.ProfilePictureURL)
}

func TestUploadPictureEndpoint_NotAnImage(t *testing.T) {
	r := newTestRouter(t)
	_, token := signup(t, r, "a@x.com")

	body, ct := multipartBody(t, "file", "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/users/1/profile-picture", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadPictureEndpoint_TooLarge(t *testing.T) {
	r := newTestRouter(t)
	_, token := signup(t, r, "a@x.com")

	big := bytes.Repeat([]byte("x"), 1<<20+1)
	body, ct := multipartBody(t, "file", "big.png", "image/png", big)
	req := httptest.NewRequest(http.MethodPost, "/api/users/1/profile-picture", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDeleteEndpoint(t *testing.T) {
	r := newTestRouter(t)
	_, token := signup(t, r, "a@x.com")
	signup(t, r, "b@x.com")

	// Deleting someone else's account is rejected.
	w := doJSON(r, http.MethodDelete, "/api/users/2", token, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodDelete, "/api/users/1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	require.NotEmpty(t, msg.Message)

	w = doJSON(r, http.MethodGet, "/api/users/1", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
