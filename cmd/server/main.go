package main

import (
	"log"

	"github.com/unhinged-listings/listing-service/internal/app"
	"github.com/unhinged-listings/listing-service/internal/config"
)

func main() {
	cfg := config.MustLoad()

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	application.Run()
}
