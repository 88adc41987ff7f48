package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"workflow_api/internal/db"
	"workflow_api/internal/logger"

	"github.com/joho/godotenv"
)

// Lists the embedded migrations, or applies them with -apply.
func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()
	_ = godotenv.Load()
	logger.Init(os.Getenv("LOG_LEVEL"), false)

	names, err := db.Migrations()
	if err != nil {
		logger.Fatal("list migrations", "error", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Fatal("DATABASE_URL not set")
	}
	pool := db.Connect(dsn)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := db.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", "error", err)
	}
	fmt.Printf("applied %d migrations\n", len(names))
}
