package main

import (
	"context"
	"log"

	"github.com/roamsync/roamsync/internal/server"
	"github.com/roamsync/roamsync/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.MustLoad()

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
