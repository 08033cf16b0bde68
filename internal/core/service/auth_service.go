package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/lendingledger/ledger-service/internal/core/domain"
	"github.com/lendingledger/ledger-service/internal/core/ports"
	"github.com/lendingledger/ledger-service/internal/pkg/metrics"
)

// AuthService implements registration, login and self-profile lookup.
type AuthService struct {
	repo   ports.UserRepository
	tokens *TokenManager
	log    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, tokens *TokenManager, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	if in.Email == "" {
		return "", domain.Invalid("email", "is required")
	}
	if in.Password == "" {
		return "", domain.Invalid("password", "is required")
	}

	// The unique index on email is authoritative; this only avoids hashing
	// for an obvious duplicate.
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return "", domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		Profile:      in.Profile,
		CreatedAt:    time.Now().UTC(),
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("user_id", id).Msg("user registered")
	return id, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthFailuresTotal.WithLabelValues("unknown_user").Inc()
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	return &ports.LoginResult{UserID: user.ID, Token: token}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID, requesterID string) (*domain.PublicProfile, error) {
	if !domain.IsValidID(userID) {
		return nil, domain.ErrInvalidUserID
	}
	if userID != requesterID {
		metrics.AuthFailuresTotal.WithLabelValues("not_owner").Inc()
		return nil, domain.ErrForbidden
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.PublicProfile{ID: user.ID, Email: user.Email}, nil
}
