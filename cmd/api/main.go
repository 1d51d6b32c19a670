package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/artemcheb722/MANProject/config"
	"github.com/artemcheb722/MANProject/models"
	"github.com/artemcheb722/MANProject/routes"
	"github.com/artemcheb722/MANProject/storage"
	"github.com/artemcheb722/MANProject/utils"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Project{},
		&models.ProjectComment{},
		&models.Restaurant{},
		&models.RestaurantComment{},
		&models.Favourite{},
	)

	uploader, err := storage.New(context.Background(), cfg)
	if err != nil {
		utils.Sugar.Fatalf("storage init failed: %v", err)
	}

	// Background consumer for queued verification emails.
	workerCtx, cancelWorker := context.WithCancel(context.Background())
	defer cancelWorker()
	utils.StartVerificationWorker(workerCtx)

	r := routes.SetupRouter(db, uploader)

	utils.Sugar.Infof("Starting API server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
