package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/AmrAnter44/sys-body-sub000/internal/models"
	"github.com/AmrAnter44/sys-body-sub000/internal/service"
	"github.com/AmrAnter44/sys-body-sub000/pkg/config"
	"github.com/AmrAnter44/sys-body-sub000/pkg/logger"
)

// issue-token mints an operator token with the server's JWT settings. Operators are
// provisioned outside the back office, so this is how desks and dashboards get one.
func main() {
	var (
		name   string
		role   string
		userID string
		ttl    time.Duration
	)
	flag.StringVar(&name, "name", "", "Operator display name (written to attended_by and receipts)")
	flag.StringVar(&role, "role", string(models.RoleReception), "ADMIN, RECEPTION or COACH")
	flag.StringVar(&userID, "user-id", "", "Operator id (random when empty)")
	flag.DurationVar(&ttl, "ttl", 0, "Token lifetime (JWT_EXPIRATION when zero)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	auth := service.NewAuthService(nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	token, err := auth.IssueToken(service.IssueTokenRequest{
		UserID: userID,
		Name:   name,
		Role:   models.OperatorRole(role),
		TTL:    ttl,
	})
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(token); err != nil {
		log.Fatalf("failed to write token: %v", err)
	}
}
