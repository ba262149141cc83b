package main

import (
	"context"
	"log"

	"github.com/gustav-de-Mando/KuratorV1/internal/app"
	"github.com/gustav-de-Mando/KuratorV1/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	a, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := a.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
