package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/artemcheb722/MANProject/config"
	"github.com/artemcheb722/MANProject/models"
	"github.com/artemcheb722/MANProject/storage"
	"github.com/artemcheb722/MANProject/utils"
)

// UserController manages registration, verification and profile updates.
type UserController struct {
	db       *gorm.DB
	uploader storage.Uploader
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB, uploader storage.Uploader) *UserController {
	return &UserController{db: db, uploader: uploader}
}

// Create registers a new account and enqueues the verification email.
// The database unique index on email is authoritative for duplicates.
func (u *UserController) Create(ctx *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
		return
	}
	email := strings.TrimSpace(req.Email)

	// Fast path for a friendly message; the unique index still decides races.
	var existing models.User
	if err := u.db.Where("email = ?", email).First(&existing).Error; err == nil {
		utils.Error(ctx, http.StatusConflict, 40901, "Already exists")
		return
	}

	hash, err := utils.HashPassword(strings.TrimSpace(req.Password))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	if err := u.db.Create(&user).Error; err != nil {
		if isDuplicateErr(err) {
			utils.Error(ctx, http.StatusConflict, 40901, "Already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	verifyURL := strings.TrimSuffix(config.Get().PublicBaseURL, "/") + "/api/users/verify/" + user.UUID
	go func() {
		if err := utils.EnqueueVerificationEmail(utils.VerificationJob{
			Name:      user.Name,
			Email:     user.Email,
			VerifyURL: verifyURL,
		}); err != nil && utils.Sugar != nil {
			utils.Sugar.Warnf("failed to enqueue verification mail for %s: %v", user.Email, err)
		}
	}()

	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

// Verify activates an account by its verification UUID. Idempotent.
func (u *UserController) Verify(ctx *gin.Context) {
	userUUID := strings.TrimSpace(ctx.Param("uuid"))
	if userUUID == "" {
		utils.Error(ctx, http.StatusBadRequest, 40004, "missing verification token")
		return
	}

	var user models.User
	if err := u.db.Where("uuid = ?", userUUID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40412, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50003, "failed to load user")
		return
	}

	if !user.IsVerified {
		user.IsVerified = true
		if err := u.db.Save(&user).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50004, "failed to activate account")
			return
		}
	}

	utils.Success(ctx, gin.H{"status": "activated"})
}

// GetPublic returns the public profile of a user by numeric id.
func (u *UserController) GetPublic(ctx *gin.Context) {
	idStr := strings.TrimSpace(ctx.Param("id"))
	if _, err := strconv.Atoi(idStr); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid user id")
		return
	}

	if b, ok := utils.CacheGetBytes("cache:user:public:" + idStr); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var user models.User
	if err := u.db.First(&user, idStr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to get user")
		return
	}

	payload := publicUserResponse(user)
	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: payload}
	utils.CacheSetJSON("cache:user:public:"+idStr, wrapper, time.Hour)
	utils.Success(ctx, payload)
}

// UpdateProfile applies a partial profile update. Only supplied fields change;
// an uploaded avatar file is pushed to object storage first.
func (u *UserController) UpdateProfile(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if strings.HasPrefix(ctx.ContentType(), "multipart/") {
		form, err := ctx.MultipartForm()
		if err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40005, "invalid multipart payload")
			return
		}
		if vals, ok := form.Value["name"]; ok && len(vals) > 0 {
			user.Name = strings.TrimSpace(vals[0])
		}
		if vals, ok := form.Value["description"]; ok && len(vals) > 0 {
			user.Description = utils.Sanitize(strings.TrimSpace(vals[0]))
		}
		if vals, ok := form.Value["email"]; ok && len(vals) > 0 {
			user.Email = strings.TrimSpace(vals[0])
		}
		if files := form.File["avatar"]; len(files) > 0 {
			url, err := uploadFormFile(ctx, u.uploader, user.UUID, files[0])
			if err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to upload avatar: "+err.Error())
				return
			}
			user.AvatarURL = url
		}
	} else {
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Email       *string `json:"email"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40005, "invalid request payload")
			return
		}
		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			user.Description = utils.Sanitize(strings.TrimSpace(*req.Description))
		}
		if req.Email != nil {
			user.Email = strings.TrimSpace(*req.Email)
		}
	}

	if user.Name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "name cannot be empty")
		return
	}
	if user.Email == "" {
		utils.Error(ctx, http.StatusBadRequest, 40006, "email cannot be empty")
		return
	}

	if err := u.db.Save(&user).Error; err != nil {
		if isDuplicateErr(err) {
			utils.Error(ctx, http.StatusConflict, 40901, "Already exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50005, "failed to update profile")
		return
	}

	// Exact key delete so that invalidating user 1 never touches user 10.
	utils.CacheDelete("cache:user:public:" + strconv.Itoa(int(user.ID)))
	utils.Success(ctx, selfUserResponse(user))
}

// AddComment appends one record to the embedded legacy comment list.
func (u *UserController) AddComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		Text         string `json:"text" binding:"required"`
		AuthorName   string `json:"author_name"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40007, "invalid request payload")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}

	if err := user.AppendEmbeddedComment(models.LegacyComment{
		RestaurantID: req.RestaurantID,
		Text:         utils.Sanitize(req.Text),
		AuthorName:   strings.TrimSpace(req.AuthorName),
	}); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50006, "failed to append comment")
		return
	}

	if err := u.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50007, "failed to save comment")
		return
	}

	comments, _ := user.EmbeddedComments()
	utils.Success(ctx, gin.H{"status": "ok", "comments": comments})
}

// publicUserResponse hides credentials and email from public profile reads.
func publicUserResponse(user models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"name":          user.Name,
		"avatar_url":    user.AvatarURL,
		"description":   user.Description,
		"followers":     user.Followers,
		"subscriptions": user.Subscriptions,
	}
}
