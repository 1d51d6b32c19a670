package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/artemcheb722/MANProject/config"
	"github.com/artemcheb722/MANProject/controllers"
	"github.com/artemcheb722/MANProject/middleware"
	"github.com/artemcheb722/MANProject/storage"
	"github.com/artemcheb722/MANProject/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, uploader storage.Uploader) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Locally stored uploads are served straight from disk.
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	userController := controllers.NewUserController(db, uploader)
	projectController := controllers.NewProjectController(db, uploader)
	restaurantController := controllers.NewRestaurantController(db, uploader)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	usersGroup := api.Group("/users")
	usersGroup.POST("/create", middleware.RateLimitMiddleware(), userController.Create)
	usersGroup.GET("/verify/:uuid", userController.Verify)
	usersGroup.GET("/:id", userController.GetPublic)
	usersGroup.PATCH("/profile", middleware.AuthRequired(), userController.UpdateProfile)
	usersGroup.PATCH("/add_comment", middleware.AuthRequired(), userController.AddComment)

	projectsGroup := api.Group("/projects")
	projectsGroup.GET("", projectController.List)
	projectsGroup.GET("/by_category", projectController.ByCategory)
	projectsGroup.GET("/comments/:project_id", projectController.ListComments)
	projectsGroup.GET("/:pk", projectController.Get)
	projectsGroup.POST("/create", middleware.AuthRequired(), projectController.Create)
	projectsGroup.POST("/create_comments", middleware.AuthRequired(), projectController.CreateComment)
	projectsGroup.DELETE("/:pk", middleware.AuthRequired(), projectController.Delete)

	restaurantsGroup := api.Group("/restaurants")
	restaurantsGroup.GET("", restaurantController.List)
	restaurantsGroup.GET("/by_city", restaurantController.ByCity)
	restaurantsGroup.GET("/comments/:restaurant_id", restaurantController.ListComments)
	restaurantsGroup.GET("/favourites", middleware.AuthRequired(), restaurantController.ListFavourites)
	restaurantsGroup.GET("/:pk", restaurantController.Get)
	restaurantsGroup.POST("/create", middleware.AuthRequired(), restaurantController.Create)
	restaurantsGroup.POST("/create_comments", middleware.AuthRequired(), restaurantController.CreateComment)
	restaurantsGroup.GET("/favourite/check/:id", middleware.AuthRequired(), restaurantController.CheckFavourite)
	restaurantsGroup.POST("/favourite/:id", middleware.AuthRequired(), restaurantController.AddFavourite)
	restaurantsGroup.DELETE("/favourite/:id", middleware.AuthRequired(), restaurantController.RemoveFavourite)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
