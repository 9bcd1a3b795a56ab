package main

import (
	"context"
	"log"
	"time"

	"bizdir/internal/config"
	"bizdir/internal/database"
	"bizdir/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	n, err := repository.NewLikeRepository(db).DeleteOrphans(ctx)
	if err != nil {
		log.Fatalf("cleanup likes failed: %v", err)
	}

	log.Printf("likes cleanup completed: orphaned=%d", n)
}
