package main

import (
	"context"
	"log"

	"github.com/gridmesh/authcore/internal/device"
	"github.com/gridmesh/authcore/internal/logging"
)

func main() {
	ctx := context.Background()
	cfg := device.LoadConfig()
	logger := logging.NewDefault()

	app, err := device.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
