package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/model"
	"github.com/civicreport/civicreport/internal/repository"
)

const minPasswordLen = 6

type output struct {
	UserID  string     `json:"user_id"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role"`
	Created bool       `json:"created"`
	Token   string     `json:"token"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		jwtSecret   = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Token signing secret (must match the API)")
		name        = flag.String("name", "Administrator", "Admin display name")
		email       = flag.String("email", "admin@civicreport.local", "Admin email")
		password    = flag.String("password", os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"), "Admin password (only used when creating)")
		ttl         = flag.Duration("ttl", auth.DefaultTokenTTL, "Token lifetime")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(*jwtSecret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, created, err := ensureAdmin(ctx, repo, *name, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	token, err := tokens.Issue(user)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}

	out := output{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    user.Role,
		Created: created,
		Token:   token,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// ensureAdmin returns the admin registered under email, creating it when absent.
func ensureAdmin(ctx context.Context, repo *repository.Repository, name, email, password string) (*model.User, bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := repo.FindUserByEmail(ctx, email, false)
	if err == nil {
		if existing.Role != model.RoleAdmin {
			return nil, false, fmt.Errorf("user %s exists with role %s", email, existing.Role)
		}
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("look up user: %w", err)
	}

	if len(password) < minPasswordLen {
		return nil, false, fmt.Errorf("a password of at least %d characters is required to create the admin", minPasswordLen)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}

	user.PasswordHash = ""
	return user, true, nil
}
