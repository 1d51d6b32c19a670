package main

import (
	"github.com/joho/godotenv"

	"github.com/artemcheb722/MANProject/config"
	"github.com/artemcheb722/MANProject/utils"
	"github.com/artemcheb722/MANProject/web"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	r := web.SetupRouter(cfg)

	utils.Sugar.Infof("Starting web frontend on port %s (graceful)", cfg.WebPort)
	if err := utils.GraceServer(":"+cfg.WebPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
