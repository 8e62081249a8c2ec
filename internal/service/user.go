package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/go-bookstore-api/internal/dto"
	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
)

// ClientView is a client together with its independent block status.
type ClientView struct {
	Client  model.Client
	Blocked bool
}

// UserService is the employee-facing administration of clients and
// employees.
type UserService struct {
	clientRepo   repository.ClientRepository
	employeeRepo repository.EmployeeRepository
	blockRepo    repository.BlockRepository
	identities   *IdentityResolver
}

func NewUserService(
	clientRepo repository.ClientRepository,
	employeeRepo repository.EmployeeRepository,
	blockRepo repository.BlockRepository,
	identities *IdentityResolver,
) *UserService {
	return &UserService{clientRepo: clientRepo, employeeRepo: employeeRepo, blockRepo: blockRepo, identities: identities}
}

func (s *UserService) ListClients(ctx context.Context, caller model.Caller, search string, page model.PageRequest) (*model.Page[ClientView], error) {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return nil, err
	}
	page = normalizePage(page, "id", model.SortAsc)
	clients, total, err := s.clientRepo.List(ctx, search, page)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	views := make([]ClientView, 0, len(clients))
	for _, c := range clients {
		blocked, err := s.isBlocked(ctx, c.Email)
		if err != nil {
			return nil, err
		}
		views = append(views, ClientView{Client: c, Blocked: blocked})
	}
	return newPage(views, total, page), nil
}

func (s *UserService) GetClient(ctx context.Context, caller model.Caller, email string) (*ClientView, error) {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return nil, err
	}
	client, err := s.clientRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	if client == nil {
		return nil, ErrClientNotFound
	}
	blocked, err := s.isBlocked(ctx, email)
	if err != nil {
		return nil, err
	}
	return &ClientView{Client: *client, Blocked: blocked}, nil
}

func (s *UserService) DeleteClient(ctx context.Context, caller model.Caller, email string) error {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrClientNotFound
		}
		return fmt.Errorf("delete client: %w", err)
	}
	// A client registering later under the same email starts unblocked.
	if err := s.blockRepo.Delete(ctx, email); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	return nil
}

// SetBlocked blocks or unblocks login for an existing client.
func (s *UserService) SetBlocked(ctx context.Context, caller model.Caller, email string, blocked bool) error {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return err
	}
	exists, err := s.clientRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check client: %w", err)
	}
	if !exists {
		return ErrClientNotFound
	}
	return s.blockRepo.Set(ctx, email, blocked)
}

func (s *UserService) ListEmployees(ctx context.Context, caller model.Caller, page model.PageRequest) (*model.Page[model.Employee], error) {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return nil, err
	}
	page = normalizePage(page, "id", model.SortAsc)
	employees, total, err := s.employeeRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return newPage(employees, total, page), nil
}

func (s *UserService) CreateEmployee(ctx context.Context, caller model.Caller, req dto.CreateEmployeeRequest) (*model.Employee, error) {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return nil, err
	}
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
	employee := &model.Employee{
		User:      model.User{Name: req.Name, Email: req.Email, Password: string(hashed)},
		Phone:     req.Phone,
		BirthDate: req.BirthDate.Time,
	}
	if err := s.employeeRepo.Create(ctx, employee); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create employee: %w", err)
	}
	return employee, nil
}

func (s *UserService) DeleteEmployee(ctx context.Context, caller model.Caller, email string) error {
	if err := Authorize(caller, ActionManageUsers, ""); err != nil {
		return err
	}
	if err := s.employeeRepo.Delete(ctx, email); err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return ErrEmployeeNotFound
		case errors.Is(err, repository.ErrMissingReference):
			return ErrEmployeeInUse
		}
		return fmt.Errorf("delete employee: %w", err)
	}
	return nil
}

func (s *UserService) isBlocked(ctx context.Context, email string) (bool, error) {
	status, err := s.blockRepo.Get(ctx, email)
	if err != nil {
		return false, fmt.Errorf("get block status: %w", err)
	}
	return status != nil && status.Blocked, nil
}
