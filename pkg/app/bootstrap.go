package app

import (
	"log"

	"github.com/Ahnabu/evo-tech-sub001/config"
	"github.com/Ahnabu/evo-tech-sub001/pkg/logger"
)

func BootstrapApp() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := logger.InitLogger(&cfg.Logger); err != nil {
		log.Fatalf("logger init failed: %v", err)
	}

	logger.Info("Application bootstrapped successfully")

	return cfg
}
