// Package auth handles email and password accounts and the bearer tokens
// that authenticate API calls.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/elee1766/naochat/src/storage"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at sign up.
const MinPasswordLength = 8

// DefaultTokenTTL is used when no token lifetime is configured.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	ErrNoSecret           = errors.New("jwt secret is required")
	ErrEmailTaken         = errors.New("email is already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidInput       = errors.New("invalid input")
)

// Claims are carried by session tokens.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Session is a signed-in user with their token.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      *storage.User `json:"user"`
}

// Service signs users up and in. New accounts join the default project;
// the first account ever created becomes its admin.
type Service struct {
	db       *sql.DB
	secret   []byte
	ttl      time.Duration
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// New creates the auth service.
func New(db *sql.DB, secret string, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:       db,
		secret:   []byte(secret),
		ttl:      ttl,
		validate: validator.New(),
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

type signUpInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type createUserInput struct {
	Name  string `validate:"required,min=2,max=100"`
	Email string `validate:"required,email"`
}

type renameInput struct {
	Name string `validate:"required,max=100"`
}

// GeneratedPasswordLength is the length of passwords handed out by CreateUser.
const GeneratedPasswordLength = 16

const passwordAlphabet = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword returns a random password drawn from an alphabet without
// look-alike characters.
func GeneratePassword() (string, error) {
	max := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, GeneratedPasswordLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b), nil
}

// CreatedUser is an account created by an admin, with its one-time password.
type CreatedUser struct {
	User     *storage.User `json:"user"`
	Password string        `json:"password"`
}

// SignUp registers an account and signs it in.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*Session, error) {
	in := signUpInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(password) < MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}

	user, err := s.createAccount(ctx, in.Name, in.Email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", "user_id", user.ID)
	return s.session(user)
}

// CreateUser registers an account on behalf of an admin and returns the
// generated password. The password is not stored in clear and cannot be
// recovered later.
func (s *Service) CreateUser(ctx context.Context, name, email string) (*CreatedUser, error) {
	in := createUserInput{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email)}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	password, err := GeneratePassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	user, err := s.createAccount(ctx, in.Name, in.Email, password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", "user_id", user.ID)
	return &CreatedUser{User: user, Password: password}, nil
}

func (s *Service) createAccount(ctx context.Context, name, email, password string) (*storage.User, error) {
	existing, err := storage.GetUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &storage.User{Name: name, Email: email, PasswordHash: hash}
	if err := storage.CreateUser(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := s.join(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Rename changes a user's display name.
func (s *Service) Rename(ctx context.Context, userID, name string) (*storage.User, error) {
	in := renameInput{Name: strings.TrimSpace(name)}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := storage.UpdateUserName(ctx, s.db, userID, in.Name); err != nil {
		return nil, fmt.Errorf("failed to rename user: %w", err)
	}
	user, err := storage.GetUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

// join adds a new user to the default project. Projects without an admin
// get the first registered user.
func (s *Service) join(ctx context.Context, user *storage.User) error {
	if _, err := storage.AssignAdminToOrphanedProject(ctx, s.db); err != nil {
		return err
	}
	project, err := storage.GetDefaultProject(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to load default project: %w", err)
	}
	if project == nil {
		return nil
	}
	return storage.AddProjectMember(ctx, s.db, &storage.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		Role:      storage.RoleUser,
	})
}

// SignIn checks credentials and issues a token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := storage.GetUserByEmail(ctx, s.db, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.session(user)
}

func (s *Service) session(user *storage.User) (*Session, error) {
	token, expires, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// IssueToken signs a token for user.
func (s *Service) IssueToken(user *storage.User) (string, time.Time, error) {
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, claims.ExpiresAt.Time, nil
}

// VerifyToken parses and validates a token.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate resolves a token to its user. A token whose user is gone is
// invalid.
func (s *Service) Authenticate(ctx context.Context, token string) (*storage.User, error) {
	claims, err := s.VerifyToken(token)
	if err != nil {
		return nil, err
	}
	user, err := storage.GetUserByID(ctx, s.db, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}
