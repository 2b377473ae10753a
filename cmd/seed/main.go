package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-todo-session/config"
	"github.com/oksasatya/go-todo-session/internal/domain/entity"
	"github.com/oksasatya/go-todo-session/internal/domain/repository"
	"github.com/oksasatya/go-todo-session/internal/infrastructure/postgres"
	"github.com/oksasatya/go-todo-session/pkg/helpers"
)

var demoTodos = []string{
	"buy milk",
	"water the plants",
	"book dentist appointment",
	"renew library card",
	"call grandma",
	"clean the garage",
	"write weekly report",
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.PostgresDSN(), 2, 1, time.Minute)
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := postgres.NewUserRepository(db)
	todos := postgres.NewTodoRepository(db)

	const (
		email    = "demo@example.com"
		username = "demo"
		password = "password123"
	)

	u, err := users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		fmt.Printf("user %s already seeded (id=%s)\n", username, u.ID)
	case errors.Is(err, repository.ErrNotFound):
		hash, err := helpers.HashPassword(password, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		u = &entity.User{Name: "Demo User", Email: email, Username: username, Password: hash}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("failed to seed user: %v", err)
		}
		fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, email, username, password)
	default:
		log.Fatalf("failed to look up user: %v", err)
	}

	existing, err := todos.ListByUsername(ctx, username, 0, 0)
	if err != nil {
		log.Fatalf("failed to list todos: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d todos already present, skipping\n", len(existing))
		return
	}
	for _, text := range demoTodos {
		if err := todos.Create(ctx, &entity.Todo{Todo: text, Username: username}); err != nil {
			log.Fatalf("failed to seed todo %q: %v", text, err)
		}
	}
	fmt.Printf("seeded %d todos for %s\n", len(demoTodos), username)
}
