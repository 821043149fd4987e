package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/civicreport/civicreport/internal/auth"
	"github.com/civicreport/civicreport/internal/metrics"
	"github.com/civicreport/civicreport/internal/model"
	"github.com/civicreport/civicreport/internal/repository"
	"github.com/oklog/ulid/v2"
)

// UserStore is the persistence required by AuthService.
// *repository.Repository satisfies it.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	FindUserByEmail(ctx context.Context, email string, includeSecret bool) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// TokenIssuer signs session tokens. *auth.TokenManager satisfies it.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name     string     `json:"name" validate:"required,max=100"`
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     model.Role `json:"role" validate:"omitempty,user_role"`
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string
	User  *model.User
}

var registerMessages = map[string]string{
	"name.required":     "Please add a name",
	"name.max":          "Name cannot be more than 100 characters",
	"email.required":    "Please add an email",
	"email.email":       "Please add a valid email",
	"password.required": "Please add a password",
	"password.min":      "Password must be at least 6 characters",
	"role.user_role":    "Role must be citizen or admin",
}

// AuthService registers users, verifies credentials and issues session tokens.
type AuthService struct {
	users     UserStore
	tokens    TokenIssuer
	logger    *slog.Logger
	metrics   metrics.Recorder
	validator *inputValidator
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, tokens TokenIssuer, logger *slog.Logger, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:     users,
		tokens:    tokens,
		logger:    logger,
		metrics:   recorder,
		validator: newInputValidator(registerMessages),
		now:       time.Now,
	}
}

// Register creates a citizen (or admin, when requested) and logs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)

	if err := s.validator.check(input); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = model.RoleCitizen
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, newValidationError("Email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncUserRegistered()
	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	user.PasswordHash = ""
	return &AuthResult{Token: token, User: user}, nil
}

// Login verifies an email/password pair and issues a token.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return nil, newValidationError("Please provide an email and password")
	}

	user, err := s.users.FindUserByEmail(ctx, email, true)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		// Spend the same work as a real verification.
		auth.VerifyDummy(input.Password)
		return nil, s.loginFailed()
	}

	ok, err := auth.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		// A corrupt stored hash is an operator problem, not a client one.
		s.logger.Error("stored password hash is unreadable",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, s.loginFailed()
	}
	if !ok {
		return nil, s.loginFailed()
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.LoginSuccess)
	user.PasswordHash = ""
	return &AuthResult{Token: token, User: user}, nil
}

// CurrentUser loads the authenticated user without the password hash.
func (s *AuthService) CurrentUser(ctx context.Context, identity *model.Identity) (*model.User, error) {
	if identity == nil {
		return nil, ErrUserNotFound
	}

	user, err := s.users.GetUserByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) loginFailed() error {
	s.metrics.IncLogin(metrics.LoginFailure)
	s.logger.Warn("login failed")
	return ErrInvalidCredentials
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
