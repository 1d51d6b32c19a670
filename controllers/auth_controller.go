package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/artemcheb722/MANProject/models"
	"github.com/artemcheb722/MANProject/utils"
)

const tokenLifetime = 72 * time.Hour

// AuthController issues and inspects bearer tokens.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Login verifies email + password and issues a JWT.
// Accepts both JSON and form-encoded bodies; the form field is named
// "username" for compatibility with the old password-grant style frontend.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" json:"username"`
		Email    string `form:"email" json:"email"`
		Password string `form:"password" json:"password" binding:"required"`
	}

	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = strings.TrimSpace(req.Username)
	}
	if email == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "email is required")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to load user")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40106, "invalid email or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Email, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         selfUserResponse(user),
	})
}

// Me returns the authenticated user's own profile.
func (a *AuthController) Me(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var user models.User
	if err := a.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load user")
		return
	}

	utils.Success(ctx, selfUserResponse(user))
}

// selfUserResponse is the profile shape returned to the account owner.
func selfUserResponse(user models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"uuid":          user.UUID,
		"name":          user.Name,
		"email":         user.Email,
		"avatar_url":    user.AvatarURL,
		"description":   user.Description,
		"followers":     user.Followers,
		"subscriptions": user.Subscriptions,
		"is_admin":      user.IsAdmin,
		"is_verified":   user.IsVerified,
		"created_at":    user.CreatedAt,
	}
}
