// Command stub-api runs a stand-in for the remote user service so the
// terminal can be developed and demoed without the real backend.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pos-backoffice/internal/config"
	"github.com/iliyamo/pos-backoffice/internal/model"
	"github.com/iliyamo/pos-backoffice/internal/stubapi"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
	cfg := config.LoadStubConfig()

	users := stubapi.NewUserRepo(cfg.BcryptCost)
	if cfg.AdminPassword != "" {
		admin := model.User{Name: "Administrador", Username: cfg.AdminUser, Role: model.RoleAdmin, Active: true}
		if _, err := users.Create(admin, cfg.AdminPassword); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		log.Printf("seeded admin account %q", cfg.AdminUser)
	} else {
		log.Println("SEED_ADMIN_PASSWORD not set; directory starts empty")
	}

	e := echo.New()
	e.HideBanner = true
	stubapi.New(stubapi.Config{
		Secret:      cfg.JWTSecret,
		TokenTTL:    cfg.TokenTTL,
		IssueTokens: cfg.IssueTokens,
	}, users).Register(e)

	go func() {
		log.Printf("stub user service listening on :%s (tokens=%v)", cfg.Port, cfg.IssueTokens)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
}
