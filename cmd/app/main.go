package main

import (
	"innkeep/config"
	"innkeep/di"
	"innkeep/shared/logger"
)

func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	service := di.InitializeService()
	service.Run()
}
