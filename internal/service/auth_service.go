package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"spaceship-manager/internal/model"
)

type storedUser struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// AuthService authenticates users from a JSON file of bcrypt hashes and
// issues HS256 tokens carrying the role used by the write-path middleware.
type AuthService struct {
	usersFile string
	jwtSecret []byte
	tokenTTL  time.Duration

	mu    sync.RWMutex
	users map[string]storedUser
}

func NewAuthService(usersFile string, jwtSecret string, tokenTTL time.Duration, adminPassword string) (*AuthService, error) {
	s := &AuthService{
		usersFile: usersFile,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		users:     map[string]storedUser{},
	}

	if err := s.loadUsers(adminPassword); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *AuthService) loadUsers(adminPassword string) error {
	raw, err := os.ReadFile(s.usersFile)
	if errors.Is(err, os.ErrNotExist) {
		if adminPassword == "" {
			return fmt.Errorf("users file %s does not exist and ADMIN_PASSWORD is not set", s.usersFile)
		}
		return s.bootstrapAdmin(adminPassword)
	}
	if err != nil {
		return fmt.Errorf("read users file: %w", err)
	}

	var users []storedUser
	if err := json.Unmarshal(raw, &users); err != nil {
		return fmt.Errorf("parse users file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.users[strings.ToLower(u.Username)] = u
	}

	slog.Info("users loaded", "count", len(users))
	return nil
}

func (s *AuthService) bootstrapAdmin(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := storedUser{
		ID:           uuid.NewString(),
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         "admin",
	}

	if err := os.MkdirAll(filepath.Dir(s.usersFile), 0o755); err != nil {
		return fmt.Errorf("create users dir: %w", err)
	}

	raw, err := json.MarshalIndent([]storedUser{admin}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.usersFile, raw, 0o600); err != nil {
		return fmt.Errorf("write users file: %w", err)
	}

	s.mu.Lock()
	s.users[admin.Username] = admin
	s.mu.Unlock()

	slog.Info("bootstrapped admin user", "users_file", s.usersFile)
	return nil
}

func (s *AuthService) Login(username string, password string) (model.TokenResponse, error) {
	s.mu.RLock()
	user, exists := s.users[strings.ToLower(strings.TrimSpace(username))]
	s.mu.RUnlock()
	if !exists {
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.TokenResponse{}, model.ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user storedUser) (model.TokenResponse, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return model.TokenResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return model.TokenResponse{Token: token, ExpiresIn: int64(s.tokenTTL.Seconds())}, nil
}

func (s *AuthService) ValidateToken(tokenString string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, model.ErrTokenExpired
	}
	if err != nil || !parsed.Valid {
		return nil, model.ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, model.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || role == "" {
		return nil, model.ErrUnauthorized
	}

	return &model.AuthClaims{UserID: sub, Username: username, Role: role}, nil
}
