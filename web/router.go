package web

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/artemcheb722/MANProject/config"
	"github.com/artemcheb722/MANProject/utils"
)

// SetupRouter wires the frontend pages onto a gin engine.
func SetupRouter(cfg config.AppConfig) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	r.LoadHTMLGlob("web/templates/*.html")
	r.Static("/assets", "./web/assets")

	srv := NewServer(NewClient(cfg.BackendAPIURL))

	r.GET("/", srv.Index)
	r.GET("/projects/:pk", srv.ProjectDetail)
	r.POST("/projects/:pk/comments", srv.PostProjectComment)

	r.GET("/restaurants", srv.Restaurants)
	r.GET("/restaurants/:pk", srv.RestaurantDetail)
	r.POST("/restaurants/:pk/comments", srv.PostRestaurantComment)
	r.POST("/restaurants/:pk/favourite", srv.Favourite)
	r.POST("/restaurants/:pk/unfavourite", srv.Unfavourite)

	r.GET("/login", srv.LoginForm)
	r.POST("/login", srv.Login)
	r.GET("/register", srv.RegisterForm)
	r.POST("/register", srv.Register)
	r.GET("/logout", srv.Logout)

	return r
}
