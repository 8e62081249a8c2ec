package service

import (
	"context"
	"fmt"

	"github.com/flicky/go-bookstore-api/internal/model"
	"github.com/flicky/go-bookstore-api/internal/repository"
)

type IdentityKind int

const (
	IdentityUnknown IdentityKind = iota
	IdentityClient
	IdentityEmployee
)

// Identity is the result of looking an email up in both user directories.
// Exactly one of Client and Employee is set unless Kind is IdentityUnknown.
type Identity struct {
	Kind     IdentityKind
	Client   *model.Client
	Employee *model.Employee
}

func (i Identity) Role() model.Role {
	switch i.Kind {
	case IdentityClient:
		return model.RoleClient
	case IdentityEmployee:
		return model.RoleEmployee
	}
	return ""
}

type IdentityResolver struct {
	clients   repository.ClientRepository
	employees repository.EmployeeRepository
}

func NewIdentityResolver(clients repository.ClientRepository, employees repository.EmployeeRepository) *IdentityResolver {
	return &IdentityResolver{clients: clients, employees: employees}
}

// Resolve checks clients first and falls back to employees.
func (r *IdentityResolver) Resolve(ctx context.Context, email string) (Identity, error) {
	client, err := r.clients.GetByEmail(ctx, email)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve client: %w", err)
	}
	if client != nil {
		return Identity{Kind: IdentityClient, Client: client}, nil
	}

	employee, err := r.employees.GetByEmail(ctx, email)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve employee: %w", err)
	}
	if employee != nil {
		return Identity{Kind: IdentityEmployee, Employee: employee}, nil
	}
	return Identity{Kind: IdentityUnknown}, nil
}
