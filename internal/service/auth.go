package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
	"github.com/flicky/go-bookstore-api/internal/session"
)

type AuthService struct {
	clientRepo repository.ClientRepository
	blockRepo  repository.BlockRepository
	identities *IdentityResolver
	carts      session.CartStore
	jwtSecret  []byte
	jwtExpiry  time.Duration
}

func NewAuthService(
	clientRepo repository.ClientRepository,
	blockRepo repository.BlockRepository,
	identities *IdentityResolver,
	carts session.CartStore,
	jwtSecret string,
	jwtExpiry time.Duration,
) *AuthService {
	return &AuthService{
		clientRepo: clientRepo,
		blockRepo:  blockRepo,
		identities: identities,
		carts:      carts,
		jwtSecret:  []byte(jwtSecret),
		jwtExpiry:  jwtExpiry,
	}
}

// Register creates a client. Emails are unique across clients and employees.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	existing, err := s.identities.Resolve(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing.Kind != IdentityUnknown {
		return nil, ErrUserAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	client := &model.Client{User: model.User{Name: req.Name, Email: req.Email, Password: string(hashed)}}
	if err := s.clientRepo.Create(ctx, client); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	return s.issue(client.Email, model.RoleClient)
}

// Login authenticates a client or an employee and opens a new session.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	identity, err := s.identities.Resolve(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var hash string
	switch identity.Kind {
	case IdentityClient:
		hash = identity.Client.Password
	case IdentityEmployee:
		hash = identity.Employee.Password
	default:
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if identity.Kind == IdentityClient {
		status, err := s.blockRepo.Get(ctx, req.Email)
		if err != nil {
			return nil, fmt.Errorf("get block status: %w", err)
		}
		if status != nil && status.Blocked {
			return nil, ErrClientBlocked
		}
	}

	return s.issue(req.Email, identity.Role())
}

// Logout drops the session cart.
func (s *AuthService) Logout(ctx context.Context, caller model.Caller) error {
	if caller.SessionID == "" {
		return nil
	}
	return s.carts.Delete(ctx, caller.SessionID)
}

func (s *AuthService) issue(email string, role model.Role) (*dto.AuthResponse, error) {
	token, err := s.generateToken(email, role, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &dto.AuthResponse{Token: token, Email: email, Role: string(role)}, nil
}

func (s *AuthService) generateToken(email string, role model.Role, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  email,
		"role": string(role),
		"sid":  sessionID,
		"exp":  time.Now().Add(s.jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
