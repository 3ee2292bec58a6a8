package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/secondmind/internal/server"
	"github.com/dmitrijs2005/secondmind/internal/server/config"
	"github.com/joho/godotenv"
)

func main() {

	// a missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
