package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clubsite-be/internal/logger"
	"clubsite-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	Login(ctx context.Context, in LoginInput) (string, *User, error)
	ParseToken(token string) (*CustomClaims, error)
	List(ctx context.Context) ([]User, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo   Repository
	secret string
}

func NewService(repo Repository, jwtSecret string) Service {
	return &service{repo: repo, secret: jwtSecret}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	log := logger.FromCtx(ctx).With(zap.String("username", in.Username))

	if err := utils.Validate(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u, err := s.repo.Create(ctx, User{
		Username:     in.Username,
		PasswordHash: hashed,
		Role:         in.Role,
		Permissions:  in.Permissions,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if !errors.Is(err, ErrUsernameTaken) {
			log.Error("failed to create user", zap.Error(err))
		}
		return nil, err
	}

	log.Info("register service completed", zap.String("user_id", u.ID))
	return u, nil
}

func (s *service) Login(ctx context.Context, in LoginInput) (string, *User, error) {
	log := logger.FromCtx(ctx).With(zap.String("username", in.Username))

	u, err := s.repo.GetByUsername(ctx, in.Username)
	if errors.Is(err, ErrUserNotFound) {
		log.Warn("login for unknown user")
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	if !CheckPasswordHash(in.Password, u.PasswordHash) {
		log.Warn("password does not match")
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(s.secret, *u)
	if err != nil {
		log.Error("failed to generate jwt", zap.Error(err))
		return "", nil, err
	}
	return token, u, nil
}

func (s *service) ParseToken(token string) (*CustomClaims, error) {
	return ParseJWT(s.secret, token)
}

func (s *service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logger.FromCtx(ctx).Info("user deleted", zap.String("user_id", id))
	return nil
}
