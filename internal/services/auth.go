package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront_back_end/internal/models"
	"storefront_back_end/internal/store"
	"storefront_back_end/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email, provider string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindOrCreateOAuth(ctx context.Context, provider, providerID, email, name string) (*models.User, error)
}

// TokenRevoker : blacklist des tokens et notification des onglets ouverts.
type TokenRevoker interface {
	BlacklistToken(ctx context.Context, tokenID string, ttl time.Duration) error
	Publish(ctx context.Context, channel, message string) error
}

// AuthResult : utilisateur authentifié et son token d'accès.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthService struct {
	users  UserRepository
	tokens TokenRevoker
	secret string
	ttl    time.Duration
	log    *zap.Logger
}

func NewAuthService(users UserRepository, tokens TokenRevoker, secret string, ttl time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, secret: secret, ttl: ttl, log: log}
}

// Register crée un compte local.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: hash,
		Provider: store.ProviderLocal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.issue(user)
}

// Login vérifie le mot de passe d'un compte local.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, email, store.ProviderLocal)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := utils.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

// LoginOAuth retrouve ou crée le compte lié au provider.
func (s *AuthService) LoginOAuth(ctx context.Context, provider, providerID, email, name string) (*AuthResult, error) {
	if providerID == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.FindOrCreateOAuth(ctx, provider, providerID, email, name)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

// Logout révoque le token jusqu'à son expiration et prévient les autres
// onglets de l'utilisateur.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil {
		return ErrUnauthenticated
	}
	if err := s.tokens.BlacklistToken(ctx, claims.ID, claims.Remaining(time.Now())); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	channel := store.StorageKey(store.UserOwner(claims.UserID), store.KeySession)
	if err := s.tokens.Publish(ctx, channel, store.EventSignedOut); err != nil {
		s.log.Warn("⚠️ signed_out publish failed", zap.String("user_id", claims.UserID), zap.Error(err))
	}
	return nil
}

// Me retourne le compte courant.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, err := utils.GenerateJWT(*user, s.secret, s.ttl)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}
