package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/user-accounts/config"
	"github.com/oksasatya/user-accounts/internal/application"
	"github.com/oksasatya/user-accounts/internal/domain/entity"
	pginfra "github.com/oksasatya/user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/user-accounts/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, pginfra.PoolOptions{DSN: cfg.PostgresDSN(), MaxConns: 2, MinConns: 1})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	svc := application.NewService(pginfra.NewAccountRepository(pool), nil, nil, logger)
	validator := application.NewValidator(nil)

	phone := "(11) 91234-5678"
	in := application.CreatePayload{
		Name:      "Demo User",
		Email:     "demo@example.com",
		Password:  "password123",
		BirthDate: entity.NewDate(1990, time.May, 20),
		Phone:     &phone,
	}
	if fields := validator.ValidateCreate(in); len(fields) > 0 {
		log.Fatalf("seed payload invalid: %v", (&application.ValidationError{Fields: fields}).Error())
	}

	taken, err := svc.EmailRegistered(ctx, in.Email)
	if err != nil {
		log.Fatalf("failed to check email: %v", err)
	}
	if taken {
		fmt.Printf("seed skipped: %s already registered\n", in.Email)
		return
	}

	view, err := svc.Create(ctx, in)
	if err != nil {
		log.Fatalf("failed to seed account: %v", err)
	}
	fmt.Printf("seeded account: id=%d email=%s name=%s\n", view.ID, view.Email, view.Name)
}
