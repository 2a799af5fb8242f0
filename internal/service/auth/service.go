package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/repository"
	"github.com/ocupmed/queue-api/pkg/auth"
	"github.com/ocupmed/queue-api/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	operators repository.OperatorRepository
	jwtSvc    auth.JWTService
	hasher    security.PasswordHasher
}

func NewService(operators repository.OperatorRepository, jwtSvc auth.JWTService) *Service {
	return &Service{
		operators: operators,
		jwtSvc:    jwtSvc,
		hasher:    security.NewBcryptHasher(bcrypt.DefaultCost),
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	operator, err := s.operators.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(operator.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtSvc.GenerateToken(operator)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &model.LoginResponse{Token: token, Operator: operator}, nil
}

// Register creates a clinic operator with a hashed password.
func (s *Service) Register(ctx context.Context, req *model.CreateOperatorRequest) (*model.Operator, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	operator := &model.Operator{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		AccessLevel:  req.AccessLevel,
	}
	if err := s.operators.Create(ctx, operator); err != nil {
		return nil, fmt.Errorf("failed to create operator: %w", err)
	}
	return operator, nil
}

// ValidateToken resolves a bearer token into the explicit actor context
// every core operation receives.
func (s *Service) ValidateToken(ctx context.Context, token string) (*model.Actor, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return &model.Actor{
		OperatorID:  claims.OperatorID,
		Name:        claims.Name,
		AccessLevel: claims.AccessLevel,
	}, nil
}
