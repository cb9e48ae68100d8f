package service

import (
	"errors"
	"fmt"
	"time"

	"auren-studio/internal/domain"
	"auren-studio/internal/repository"
	"auren-studio/pkg/hash"
	"auren-studio/pkg/jwt"

	"github.com/google/uuid"
)

type AuthService struct {
	userRepo      repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExp time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExp,
	}
}

func (s *AuthService) Register(req *domain.RegisterRequest) error {
	exists, err := s.userRepo.EmailExists(req.Email)
	if err != nil {
		return fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return fmt.Errorf("email already registered")
	}

	hashedPassword, err := hash.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleEditor
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (s *AuthService) Login(req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials")
		}
		return nil, err
	}

	if err := hash.Compare(user.Password, req.Password); err != nil {
		return nil, fmt.Errorf("invalid credentials")
	}

	// A requested role is honored only if the account actually holds it;
	// otherwise the account's role wins.
	role := user.Role
	if req.Role != "" && req.Role == user.Role {
		role = req.Role
	}

	token, err := jwt.GenerateToken(user.ID, string(role), s.jwtExpiration, s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &domain.LoginResponse{Token: token, Role: role}, nil
}
