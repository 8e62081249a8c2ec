package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
)

type ProfileService struct {
	clientRepo   repository.ClientRepository
	employeeRepo repository.EmployeeRepository
	identities   *IdentityResolver
}

func NewProfileService(clientRepo repository.ClientRepository, employeeRepo repository.EmployeeRepository, identities *IdentityResolver) *ProfileService {
	return &ProfileService{clientRepo: clientRepo, employeeRepo: employeeRepo, identities: identities}
}

func (s *ProfileService) Get(ctx context.Context, caller model.Caller) (Identity, error) {
	if err := Authorize(caller, ActionViewProfile, caller.Email); err != nil {
		return Identity{}, err
	}
	return s.resolveSelf(ctx, caller)
}

// Update changes the caller's name, password or, for employees, phone.
func (s *ProfileService) Update(ctx context.Context, caller model.Caller, req dto.UpdateProfileRequest) (Identity, error) {
	if err := Authorize(caller, ActionEditProfile, caller.Email); err != nil {
		return Identity{}, err
	}
	identity, err := s.resolveSelf(ctx, caller)
	if err != nil {
		return Identity{}, err
	}

	var hash string
	if req.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return Identity{}, fmt.Errorf("hash password: %w", err)
		}
		hash = string(hashed)
	}

	switch identity.Kind {
	case IdentityClient:
		c := identity.Client
		applyUserChanges(&c.User, req.Name, hash)
		err = s.clientRepo.Update(ctx, c)
	case IdentityEmployee:
		e := identity.Employee
		applyUserChanges(&e.User, req.Name, hash)
		if req.Phone != nil {
			e.Phone = *req.Phone
		}
		err = s.employeeRepo.Update(ctx, e)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrUserNotFound
		}
		return Identity{}, fmt.Errorf("update profile: %w", err)
	}
	return identity, nil
}

// TopUp adds a positive amount to the calling client's balance.
func (s *ProfileService) TopUp(ctx context.Context, caller model.Caller, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := Authorize(caller, ActionTopUpBalance, ""); err != nil {
		return decimal.Zero, err
	}
	if !amount.IsPositive() || !isCents(amount) {
		return decimal.Zero, ErrBadAmount
	}
	balance, err := s.clientRepo.AddBalance(ctx, caller.Email, amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, ErrClientNotFound
		}
		return decimal.Zero, fmt.Errorf("top up balance: %w", err)
	}
	return balance, nil
}

func (s *ProfileService) resolveSelf(ctx context.Context, caller model.Caller) (Identity, error) {
	identity, err := s.identities.Resolve(ctx, caller.Email)
	if err != nil {
		return Identity{}, err
	}
	if identity.Kind == IdentityUnknown || identity.Role() != caller.Role {
		return Identity{}, ErrUserNotFound
	}
	return identity, nil
}

func applyUserChanges(u *model.User, name *string, passwordHash string) {
	if name != nil {
		u.Name = *name
	}
	if passwordHash != "" {
		u.Password = passwordHash
	}
}
