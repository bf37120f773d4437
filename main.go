package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/linkfolio/linkfolio-backend/config"
	"github.com/linkfolio/linkfolio-backend/routes"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := config.InitConfig(); err != nil {
		logger.Sugar().Fatalf("failed to load config: %s", err.Error())
	}

	DB := config.InitDB()
	mig := gormigrate.New(DB, gormigrate.DefaultOptions, config.GetMigrations())
	if err := mig.Migrate(); err != nil {
		logger.Sugar().Fatalf("❌ Migration Failed: %s", err.Error())
	}

	rdb := config.InitRedis()

	router := gin.Default()

	routes.RegisterRoutes(router, DB, rdb, logger)

	addr := viper.GetString("server.addr")
	if err := router.Run(addr); err != nil {
		logger.Sugar().Fatalf("server stopped: %s", err.Error())
	}
}
