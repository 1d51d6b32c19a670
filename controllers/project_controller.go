package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/artemcheb722/MANProject/models"
	"github.com/artemcheb722/MANProject/search"
	"github.com/artemcheb722/MANProject/storage"
	"github.com/artemcheb722/MANProject/utils"
)

// projectSearchColumns are the columns matched by the listing query.
var projectSearchColumns = []string{"name", "description"}

// ProjectController serves the portfolio project endpoints.
type ProjectController struct {
	db       *gorm.DB
	uploader storage.Uploader
}

// NewProjectController creates a ProjectController.
func NewProjectController(db *gorm.DB, uploader storage.Uploader) *ProjectController {
	return &ProjectController{db: db, uploader: uploader}
}

// Create accepts a multipart form with the project fields, one required main
// image and any number of gallery images. Files are uploaded before the row is
// written so a failed upload never leaves a half-filled project behind.
func (p *ProjectController) Create(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	category := strings.TrimSpace(ctx.PostForm("category"))
	description := strings.TrimSpace(ctx.PostForm("description"))
	technologies := strings.TrimSpace(ctx.PostForm("technologies"))
	detailed := strings.TrimSpace(ctx.PostForm("detailed_description"))

	if name == "" || description == "" || technologies == "" || detailed == "" {
		utils.Error(ctx, http.StatusBadRequest, 40020, "name, description, technologies and detailed_description are required")
		return
	}

	mainHeader, err := ctx.FormFile("main_image")
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40021, "main_image file is required")
		return
	}

	projectUUID := uuid.NewString()

	mainURL, err := uploadFormFile(ctx, p.uploader, projectUUID, mainHeader)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to upload main image: "+err.Error())
		return
	}

	var imageURLs []string
	if form, err := ctx.MultipartForm(); err == nil {
		for _, header := range form.File["images"] {
			url, err := uploadFormFile(ctx, p.uploader, projectUUID, header)
			if err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to upload image: "+err.Error())
				return
			}
			imageURLs = append(imageURLs, url)
		}
	}

	project := models.Project{
		UUID:                projectUUID,
		UserID:              &userID,
		Name:                name,
		Category:            category,
		Description:         utils.Sanitize(description),
		Technologies:        technologies,
		DetailedDescription: utils.Sanitize(detailed),
		MainImage:           mainURL,
	}
	if err := project.SetImageList(imageURLs); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50022, "failed to encode image list")
		return
	}

	if err := p.db.Create(&project).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to create project")
		return
	}

	utils.InvalidateByPrefix("cache:project:")
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"id":         project.ID,
		"uuid":       project.UUID,
		"name":       project.Name,
		"main_image": project.MainImage,
	})
}

// List returns a paginated project listing filtered by the search query.
func (p *ProjectController) List(ctx *gin.Context) {
	params, ok := parseListParams(ctx)
	if !ok {
		return
	}

	result, err := search.Run[models.Project](p.db, projectSearchColumns, params)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to list projects")
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for _, project := range result.Items {
		items = append(items, projectSummary(project))
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"total": result.Total,
		"page":  result.Page,
		"limit": result.Limit,
		"pages": result.Pages,
	})
}

// ByCategory returns every project whose category matches exactly.
func (p *ProjectController) ByCategory(ctx *gin.Context) {
	category := strings.TrimSpace(ctx.Query("category"))
	if category == "" {
		utils.Error(ctx, http.StatusBadRequest, 40022, "category is required")
		return
	}

	var projects []models.Project
	if err := p.db.Where("category = ?", category).Order("id DESC").Find(&projects).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to list projects")
		return
	}

	items := make([]gin.H, 0, len(projects))
	for _, project := range projects {
		items = append(items, projectSummary(project))
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// Get returns the full detail view of one project, author included.
func (p *ProjectController) Get(ctx *gin.Context) {
	pk := strings.TrimSpace(ctx.Param("pk"))

	cacheKey := "cache:project:detail:" + pk
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	var project models.Project
	if err := p.db.Preload("User").First(&project, "id = ?", pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, fmt.Sprintf("project with pk #%s not found", pk))
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load project")
		return
	}

	detail := projectSummary(project)
	detail["detailed_description"] = project.DetailedDescription
	detail["images"] = project.ImageList()
	if project.User != nil {
		detail["author"] = gin.H{
			"id":            project.User.ID,
			"name":          project.User.Name,
			"email":         project.User.Email,
			"followers":     project.User.Followers,
			"description":   project.User.Description,
			"subscriptions": project.User.Subscriptions,
			"avatar":        project.User.AvatarURL,
		}
	}

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: detail}
	utils.CacheSetJSON(cacheKey, wrapper, 10*time.Minute)
	utils.Success(ctx, detail)
}

// CreateComment attaches an authenticated comment to a project.
func (p *ProjectController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		ProjectID uint   `json:"project_id" binding:"required"`
		Feedback  string `json:"feedback" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid request payload")
		return
	}

	// The parent must exist before anything is written.
	var project models.Project
	if err := p.db.First(&project, req.ProjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40421, "Проєкт не знайдено")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load project")
		return
	}

	comment := models.ProjectComment{
		UserID:    userID,
		ProjectID: req.ProjectID,
		Feedback:  utils.Sanitize(strings.TrimSpace(req.Feedback)),
	}
	if err := p.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to create comment")
		return
	}

	var author models.User
	authorName := ""
	if err := p.db.First(&author, userID).Error; err == nil {
		authorName = author.Name
	}

	utils.InvalidateByPrefix("cache:project:detail:")
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"id":         comment.ID,
		"text":       comment.Feedback,
		"author":     authorName,
		"created_at": comment.CreatedAt,
	})
}

type commentRow struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// ListComments returns the comments of one project joined with author names.
func (p *ProjectController) ListComments(ctx *gin.Context) {
	pk := strings.TrimSpace(ctx.Param("project_id"))

	var exists int64
	if err := p.db.Model(&models.Project{}).Where("id = ?", pk).Count(&exists).Error; err != nil || exists == 0 {
		utils.Error(ctx, http.StatusNotFound, 40421, "Проєкт не знайдено")
		return
	}

	var rows []commentRow
	err := p.db.Model(&models.ProjectComment{}).
		Select("project_comments.feedback AS text, users.name AS author, project_comments.created_at").
		Joins("JOIN users ON users.id = project_comments.user_id").
		Where("project_comments.project_id = ?", pk).
		Order("project_comments.id ASC").
		Scan(&rows).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50029, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{"items": rows, "total": len(rows)})
}

// Delete removes a project together with its comments. Only the owner or an
// administrator may delete.
func (p *ProjectController) Delete(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	pk := strings.TrimSpace(ctx.Param("pk"))
	var project models.Project
	if err := p.db.First(&project, "id = ?", pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40420, fmt.Sprintf("project with pk #%s not found", pk))
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to load project")
		return
	}

	var caller models.User
	if err := p.db.First(&caller, userID).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	owner := project.UserID != nil && *project.UserID == userID
	if !owner && !caller.IsAdmin {
		utils.Error(ctx, http.StatusForbidden, 40301, "not allowed to delete this project")
		return
	}

	if err := p.db.Select(clause.Associations).Delete(&project).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to delete project")
		return
	}

	utils.InvalidateByPrefix("cache:project:")
	utils.Success(ctx, gin.H{"status": "deleted", "id": project.ID})
}

func projectSummary(project models.Project) gin.H {
	return gin.H{
		"id":           project.ID,
		"uuid":         project.UUID,
		"name":         project.Name,
		"category":     project.Category,
		"description":  project.Description,
		"technologies": project.Technologies,
		"main_image":   project.MainImage,
		"likes":        project.Likes,
		"created_at":   project.CreatedAt,
	}
}
