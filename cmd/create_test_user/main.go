package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"workflow_api/internal/config"
	"workflow_api/internal/db"
	"workflow_api/internal/logger"
	"workflow_api/internal/repository"
	"workflow_api/internal/service"

	"golang.org/x/crypto/bcrypt"
)

// Creates (or logs in) a user and prints a bearer token for manual testing.
func main() {
	username := flag.String("username", "testuser", "username")
	password := flag.String("password", "testpass", "password")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	pool := db.Connect(cfg.DatabaseURL)
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	auth := service.NewAuthService(
		repository.NewUserRepository(pool),
		service.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL),
		service.PasswordHasher{Cost: bcrypt.DefaultCost},
	)

	token, u, err := auth.Register(ctx, *username, *password)
	if errors.Is(err, service.ErrUsernameTaken) {
		token, u, err = auth.Login(ctx, *username, *password)
	}
	if err != nil {
		logger.Fatal("create user failed", "error", err)
	}

	logger.Info("user ready", "id", u.ID, "username", u.Username)
	fmt.Println(token)
}
