package controllers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/artemcheb722/MANProject/middleware"
	"github.com/artemcheb722/MANProject/models"
)

func newProjectRouter(db *gorm.DB, uploader *memoryUploader) *gin.Engine {
	pc := NewProjectController(db, uploader)
	r := gin.New()
	g := r.Group("/api/projects")
	g.GET("", pc.List)
	g.GET("/by_category", pc.ByCategory)
	g.GET("/comments/:project_id", pc.ListComments)
	g.GET("/:pk", pc.Get)
	g.POST("/create", middleware.AuthRequired(), pc.Create)
	g.POST("/create_comments", middleware.AuthRequired(), pc.CreateComment)
	g.DELETE("/:pk", middleware.AuthRequired(), pc.Delete)
	return r
}

func TestCreateProjectMultipart(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	uploader := &memoryUploader{}
	r := newProjectRouter(db, uploader)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Demo"))
	require.NoError(t, mw.WriteField("category", "web"))
	require.NoError(t, mw.WriteField("description", "short"))
	require.NoError(t, mw.WriteField("technologies", "Go, Redis"))
	require.NoError(t, mw.WriteField("detailed_description", "long text"))
	fw, err := mw.CreateFormFile("main_image", "cover.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	fw, err = mw.CreateFormFile("images", "extra.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("more-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/projects/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearerFor(t, owner))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, uploader.keys, 2)

	var project models.Project
	require.NoError(t, db.First(&project, "name = ?", "Demo").Error)
	assert.Equal(t, "https://cdn.test/"+uploader.keys[0], project.MainImage)
	require.NotNil(t, project.UserID)
	assert.Equal(t, owner.ID, *project.UserID)
	assert.Len(t, project.ImageList(), 1)
}

func TestCreateProjectRequiresMainImage(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	r := newProjectRouter(db, &memoryUploader{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Demo"))
	require.NoError(t, mw.WriteField("description", "short"))
	require.NoError(t, mw.WriteField("technologies", "Go"))
	require.NoError(t, mw.WriteField("detailed_description", "long"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/projects/create", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearerFor(t, owner))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var count int64
	db.Model(&models.Project{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestGetProjectDetail(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	project := seedProjects(t, db, owner, 1)[0]
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodGet, "/api/projects/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	code, data := decodeEnvelope(t, w)
	assert.Equal(t, 0, code)
	assert.Equal(t, project.Name, data["name"])
	author, ok := data["author"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Tester", author["name"])
}

func TestGetProjectNotFound(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodGet, "/api/projects/99", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "project with pk #99 not found")
}

func TestListProjectsPaginates(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	seedProjects(t, db, owner, 12)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodGet, "/api/projects?page=2&limit=5", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	_, data := decodeEnvelope(t, w)
	assert.EqualValues(t, 12, data["total"])
	assert.EqualValues(t, 3, data["pages"])
	items := data["items"].([]interface{})
	assert.Len(t, items, 5)
}

func TestListProjectsRejectsBadLimit(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodGet, "/api/projects?limit=500", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/projects?page=0", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestByCategoryExactOnly(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	seedProjects(t, db, owner, 2)
	other := models.Project{UserID: &owner.ID, Name: "Mobile thing", Category: "mobile", Description: "d", Technologies: "Go", DetailedDescription: "x"}
	require.NoError(t, db.Create(&other).Error)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodGet, "/api/projects/by_category?category=web", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	assert.EqualValues(t, 2, data["total"])
}

func TestCreateCommentMissingProject(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "user@example.com", false)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodPost, "/api/projects/create_comments",
		gin.H{"project_id": 42, "feedback": "great"}, bearerFor(t, user))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Проєкт не знайдено")

	var count int64
	db.Model(&models.ProjectComment{}).Count(&count)
	assert.EqualValues(t, 0, count, "no comment row may be written for a missing parent")
}

func TestCreateAndListComments(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "user@example.com", false)
	project := seedProjects(t, db, user, 1)[0]
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodPost, "/api/projects/create_comments",
		gin.H{"project_id": project.ID, "feedback": "well done"}, bearerFor(t, user))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodGet, "/api/projects/comments/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	_, data := decodeEnvelope(t, w)
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	first := items[0].(map[string]interface{})
	assert.Equal(t, "well done", first["text"])
	assert.Equal(t, "Tester", first["author"])
}

func TestDeleteProjectCascades(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	project := seedProjects(t, db, owner, 1)[0]
	comment := models.ProjectComment{UserID: owner.ID, ProjectID: project.ID, Feedback: "hi"}
	require.NoError(t, db.Create(&comment).Error)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodDelete, "/api/projects/1", nil, bearerFor(t, owner))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var projects, comments int64
	db.Model(&models.Project{}).Count(&projects)
	db.Model(&models.ProjectComment{}).Count(&comments)
	assert.EqualValues(t, 0, projects)
	assert.EqualValues(t, 0, comments)
}

func TestDeleteProjectForbiddenForStranger(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	stranger := createTestUser(t, db, "other@example.com", false)
	seedProjects(t, db, owner, 1)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodDelete, "/api/projects/1", nil, bearerFor(t, stranger))
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	db.Model(&models.Project{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestDeleteProjectAllowedForAdmin(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	owner := createTestUser(t, db, "owner@example.com", false)
	admin := createTestUser(t, db, "admin@example.com", true)
	seedProjects(t, db, owner, 1)
	r := newProjectRouter(db, &memoryUploader{})

	w := doJSON(t, r, http.MethodDelete, "/api/projects/1", nil, bearerFor(t, admin))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
