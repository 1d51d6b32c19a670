package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/artemcheb722/MANProject/models"
	"github.com/artemcheb722/MANProject/search"
	"github.com/artemcheb722/MANProject/storage"
	"github.com/artemcheb722/MANProject/utils"
)

var restaurantSearchColumns = []string{"name", "description"}

// RestaurantController serves the legacy restaurant endpoints, including the
// per-user favourites list.
type RestaurantController struct {
	db       *gorm.DB
	uploader storage.Uploader
}

// NewRestaurantController creates a RestaurantController.
func NewRestaurantController(db *gorm.DB, uploader storage.Uploader) *RestaurantController {
	return &RestaurantController{db: db, uploader: uploader}
}

// Create accepts a multipart form with the restaurant fields and images.
func (r *RestaurantController) Create(ctx *gin.Context) {
	if _, ok := getUserID(ctx); !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	name := strings.TrimSpace(ctx.PostForm("name"))
	city := strings.TrimSpace(ctx.PostForm("city"))
	description := strings.TrimSpace(ctx.PostForm("description"))
	menu := strings.TrimSpace(ctx.PostForm("menu"))
	detailed := strings.TrimSpace(ctx.PostForm("detailed_description"))

	if name == "" || description == "" {
		utils.Error(ctx, http.StatusBadRequest, 40030, "name and description are required")
		return
	}

	restaurantUUID := uuid.NewString()

	mainURL := ""
	if header, err := ctx.FormFile("main_image"); err == nil {
		url, err := uploadFormFile(ctx, r.uploader, restaurantUUID, header)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to upload main image: "+err.Error())
			return
		}
		mainURL = url
	}

	var imageURLs []string
	if form, err := ctx.MultipartForm(); err == nil {
		for _, header := range form.File["images"] {
			url, err := uploadFormFile(ctx, r.uploader, restaurantUUID, header)
			if err != nil {
				utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to upload image: "+err.Error())
				return
			}
			imageURLs = append(imageURLs, url)
		}
	}

	restaurant := models.Restaurant{
		UUID:                restaurantUUID,
		Name:                name,
		City:                city,
		Description:         utils.Sanitize(description),
		Menu:                utils.Sanitize(menu),
		DetailedDescription: utils.Sanitize(detailed),
		MainImage:           mainURL,
	}
	if err := restaurant.SetImageList(imageURLs); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to encode image list")
		return
	}

	if err := r.db.Create(&restaurant).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to create restaurant")
		return
	}

	utils.InvalidateByPrefix("cache:restaurant:")
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"id":   restaurant.ID,
		"uuid": restaurant.UUID,
		"name": restaurant.Name,
	})
}

// List returns a paginated restaurant listing filtered by the search query.
func (r *RestaurantController) List(ctx *gin.Context) {
	params, ok := parseListParams(ctx)
	if !ok {
		return
	}

	result, err := search.Run[models.Restaurant](r.db, restaurantSearchColumns, params)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to list restaurants")
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for _, restaurant := range result.Items {
		items = append(items, restaurantSummary(restaurant))
	}

	utils.Success(ctx, gin.H{
		"items": items,
		"total": result.Total,
		"page":  result.Page,
		"limit": result.Limit,
		"pages": result.Pages,
	})
}

// ByCity returns every restaurant whose city matches exactly.
func (r *RestaurantController) ByCity(ctx *gin.Context) {
	city := strings.TrimSpace(ctx.Query("city"))
	if city == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "city is required")
		return
	}

	var restaurants []models.Restaurant
	if err := r.db.Where("city = ?", city).Order("id DESC").Find(&restaurants).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50045, "failed to list restaurants")
		return
	}

	items := make([]gin.H, 0, len(restaurants))
	for _, restaurant := range restaurants {
		items = append(items, restaurantSummary(restaurant))
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

// Get returns the full detail view of one restaurant.
func (r *RestaurantController) Get(ctx *gin.Context) {
	pk := strings.TrimSpace(ctx.Param("pk"))

	cacheKey := "cache:restaurant:detail:" + pk
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	restaurant, ok := r.loadRestaurant(ctx, pk)
	if !ok {
		return
	}

	detail := restaurantSummary(restaurant)
	detail["menu"] = restaurant.Menu
	detail["detailed_description"] = restaurant.DetailedDescription
	detail["images"] = restaurant.ImageList()

	wrapper := utils.JSONResponse{Code: 0, Message: "success", Data: detail}
	utils.CacheSetJSON(cacheKey, wrapper, 10*time.Minute)
	utils.Success(ctx, detail)
}

// CreateComment attaches an authenticated comment to a restaurant.
func (r *RestaurantController) CreateComment(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var req struct {
		RestaurantID uint   `json:"restaurant_id" binding:"required"`
		Feedback     string `json:"feedback" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}

	var restaurant models.Restaurant
	if err := r.db.First(&restaurant, req.RestaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "Ресторан не знайдено")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to load restaurant")
		return
	}

	comment := models.RestaurantComment{
		UserID:       userID,
		RestaurantID: req.RestaurantID,
		Feedback:     utils.Sanitize(strings.TrimSpace(req.Feedback)),
	}
	if err := r.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50047, "failed to create comment")
		return
	}

	var author models.User
	authorName := ""
	if err := r.db.First(&author, userID).Error; err == nil {
		authorName = author.Name
	}

	utils.InvalidateByPrefix("cache:restaurant:detail:")
	utils.Respond(ctx, http.StatusCreated, 0, "success", gin.H{
		"id":         comment.ID,
		"text":       comment.Feedback,
		"author":     authorName,
		"created_at": comment.CreatedAt,
	})
}

// ListComments returns the comments of one restaurant joined with author names.
func (r *RestaurantController) ListComments(ctx *gin.Context) {
	pk := strings.TrimSpace(ctx.Param("restaurant_id"))

	var exists int64
	if err := r.db.Model(&models.Restaurant{}).Where("id = ?", pk).Count(&exists).Error; err != nil || exists == 0 {
		utils.Error(ctx, http.StatusNotFound, 40430, "Ресторан не знайдено")
		return
	}

	var rows []commentRow
	err := r.db.Model(&models.RestaurantComment{}).
		Select("restaurant_comments.feedback AS text, users.name AS author, restaurant_comments.created_at").
		Joins("JOIN users ON users.id = restaurant_comments.user_id").
		Where("restaurant_comments.restaurant_id = ?", pk).
		Order("restaurant_comments.id ASC").
		Scan(&rows).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50048, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{"items": rows, "total": len(rows)})
}

// AddFavourite marks a restaurant as favourited by the caller. Idempotent: the
// unique (user, restaurant) index absorbs repeats.
func (r *RestaurantController) AddFavourite(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	restaurant, ok := r.loadRestaurant(ctx, strings.TrimSpace(ctx.Param("id")))
	if !ok {
		return
	}

	fav := models.Favourite{UserID: userID, RestaurantID: restaurant.ID}
	if err := r.db.Create(&fav).Error; err != nil && !isDuplicateErr(err) {
		utils.Error(ctx, http.StatusInternalServerError, 50049, "failed to add favourite")
		return
	}

	utils.Success(ctx, gin.H{"status": "ok"})
}

// RemoveFavourite unmarks a favourited restaurant.
func (r *RestaurantController) RemoveFavourite(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	restaurant, ok := r.loadRestaurant(ctx, strings.TrimSpace(ctx.Param("id")))
	if !ok {
		return
	}

	res := r.db.Where("user_id = ? AND restaurant_id = ?", userID, restaurant.ID).Delete(&models.Favourite{})
	if res.Error != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to remove favourite")
		return
	}
	if res.RowsAffected == 0 {
		utils.Error(ctx, http.StatusNotFound, 40431, "Ресторан не у списку улюблених")
		return
	}

	utils.Success(ctx, gin.H{"status": "ok"})
}

// CheckFavourite confirms the restaurant is on the caller's favourites list.
// A restaurant that is not favourited answers 404, mirroring RemoveFavourite.
func (r *RestaurantController) CheckFavourite(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	restaurant, ok := r.loadRestaurant(ctx, strings.TrimSpace(ctx.Param("id")))
	if !ok {
		return
	}

	var count int64
	if err := r.db.Model(&models.Favourite{}).
		Where("user_id = ? AND restaurant_id = ?", userID, restaurant.ID).
		Count(&count).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to check favourite")
		return
	}
	if count == 0 {
		utils.Error(ctx, http.StatusNotFound, 40431, "Ресторан не у списку улюблених")
		return
	}

	utils.Success(ctx, gin.H{"is_favourite": true})
}

// ListFavourites returns the caller's favourited restaurants.
func (r *RestaurantController) ListFavourites(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var restaurants []models.Restaurant
	err := r.db.
		Joins("JOIN favourites ON favourites.restaurant_id = restaurants.id").
		Where("favourites.user_id = ?", userID).
		Order("favourites.id DESC").
		Find(&restaurants).Error
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50053, "failed to list favourites")
		return
	}

	items := make([]gin.H, 0, len(restaurants))
	for _, restaurant := range restaurants {
		items = append(items, restaurantSummary(restaurant))
	}

	utils.Success(ctx, gin.H{"items": items, "total": len(items)})
}

func (r *RestaurantController) loadRestaurant(ctx *gin.Context, pk string) (models.Restaurant, bool) {
	var restaurant models.Restaurant
	if err := r.db.First(&restaurant, "id = ?", pk).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, 40430, "Ресторан не знайдено")
			return restaurant, false
		}
		utils.Error(ctx, http.StatusInternalServerError, 50046, "failed to load restaurant")
		return restaurant, false
	}
	return restaurant, true
}

func restaurantSummary(restaurant models.Restaurant) gin.H {
	return gin.H{
		"id":          restaurant.ID,
		"uuid":        restaurant.UUID,
		"name":        restaurant.Name,
		"city":        restaurant.City,
		"description": restaurant.Description,
		"main_image":  restaurant.MainImage,
		"created_at":  restaurant.CreatedAt,
	}
}
