package main

import (
	"context"
	"log"

	"github.com/gridmesh/authcore/internal/logging"
	"github.com/gridmesh/authcore/internal/server"
	"github.com/gridmesh/authcore/internal/server/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewDefault()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
