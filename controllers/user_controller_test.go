package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/artemcheb722/MANProject/middleware"
	"github.com/artemcheb722/MANProject/models"
	"github.com/artemcheb722/MANProject/utils"
)

func newUserRouter(db *gorm.DB) *gin.Engine {
	uc := NewUserController(db, &memoryUploader{})
	ac := NewAuthController(db)
	r := gin.New()
	g := r.Group("/api")
	g.POST("/users/create", uc.Create)
	g.GET("/users/verify/:uuid", uc.Verify)
	g.GET("/users/:id", uc.GetPublic)
	g.PATCH("/users/profile", middleware.AuthRequired(), uc.UpdateProfile)
	g.PATCH("/users/add_comment", middleware.AuthRequired(), uc.AddComment)
	g.POST("/auth/login", ac.Login)
	g.GET("/auth/me", middleware.AuthRequired(), ac.Me)
	return r
}

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)
	mr := newTestRedis(t)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodPost, "/api/users/create",
		gin.H{"name": "Artem", "email": "artem@example.com", "password": "longenough"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "artem@example.com").Error)
	assert.NotEmpty(t, user.UUID)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "longenough", user.PasswordHash)

	// The verification job lands on the queue shortly after the response.
	require.Eventually(t, func() bool {
		n, err := mr.List(utils.VerificationQueueKey)
		return err == nil && len(n) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	r := newUserRouter(db)

	payload := gin.H{"name": "Artem", "email": "artem@example.com", "password": "longenough"}
	w := doJSON(t, r, http.MethodPost, "/api/users/create", payload, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/users/create", payload, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Already exists")

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateUserPasswordPolicy(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	r := newUserRouter(db)

	cases := []struct {
		name     string
		password string
	}{
		{"too short", "short"},
		{"contains space", "has space inside"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/users/create",
				gin.H{"name": "A", "email": "a@example.com", "password": tc.password}, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestVerifyUser(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "pending@example.com", false)
	require.NoError(t, db.Model(&user).Update("is_verified", false).Error)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodGet, "/api/users/verify/"+user.UUID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "activated")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.True(t, reloaded.IsVerified)

	// Repeating the link stays successful.
	w = doJSON(t, r, http.MethodGet, "/api/users/verify/"+user.UUID, nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyUnknownUUID(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodGet, "/api/users/verify/not-a-real-uuid", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPublicProfileHidesEmail(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "secret@example.com", false)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodGet, "/api/users/1", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), user.Email)
	assert.Contains(t, w.Body.String(), user.Name)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "me@example.com", false)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodPatch, "/api/users/profile",
		gin.H{"description": "new bio"}, bearerFor(t, user))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.Equal(t, "new bio", reloaded.Description)
	assert.Equal(t, user.Name, reloaded.Name, "untouched fields keep their value")
	assert.Equal(t, user.Email, reloaded.Email)
}

func TestUpdateProfileInvalidatesOwnCacheOnly(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "me@example.com", false)
	r := newUserRouter(db)

	utils.CacheSetBytes("cache:user:public:1", []byte("stale"), time.Minute)
	utils.CacheSetBytes("cache:user:public:10", []byte("other"), time.Minute)

	w := doJSON(t, r, http.MethodPatch, "/api/users/profile",
		gin.H{"description": "fresh bio"}, bearerFor(t, user))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, ok := utils.CacheGetBytes("cache:user:public:1")
	assert.False(t, ok, "own profile cache is dropped")
	_, ok = utils.CacheGetBytes("cache:user:public:10")
	assert.True(t, ok, "other users' cached profiles stay")
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "me@example.com", false)
	createTestUser(t, db, "taken@example.com", false)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodPatch, "/api/users/profile",
		gin.H{"email": "taken@example.com"}, bearerFor(t, user))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAddLegacyComment(t *testing.T) {
	db := newTestDB(t)
	newTestRedis(t)
	user := createTestUser(t, db, "me@example.com", false)
	r := newUserRouter(db)

	w := doJSON(t, r, http.MethodPatch, "/api/users/add_comment",
		gin.H{"restaurant_id": 7, "text": "smachno", "author_name": "Artem"}, bearerFor(t, user))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	comments, err := reloaded.EmbeddedComments()
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.EqualValues(t, 7, comments[0].RestaurantID)
	assert.Equal(t, "smachno", comments[0].Text)
}
