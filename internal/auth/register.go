package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/brewlinehq/brewline-backend/internal/branches"
	"github.com/brewlinehq/brewline-backend/internal/users"
	"github.com/brewlinehq/brewline-backend/pkg/config"
	"github.com/brewlinehq/brewline-backend/pkg/db"
	"github.com/brewlinehq/brewline-backend/pkg/db/models"
	"github.com/brewlinehq/brewline-backend/pkg/enums"
	pkgerrors "github.com/brewlinehq/brewline-backend/pkg/errors"
	"github.com/brewlinehq/brewline-backend/pkg/security"
)

// RegisterService handles account provisioning.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserResponse, error)
	CreateStaff(ctx context.Context, req CreateStaffRequest) (*users.UserResponse, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

// Register creates a customer account.
func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserResponse, error) {
	return s.createUser(ctx, users.CreateUserDTO{
		Email: req.Email,
		Name:  req.Name,
		Role:  enums.UserRoleCustomer,
	}, req.Password)
}

// CreateStaff provisions staff, manager and delivery accounts. Callers gate
// this behind the admin role.
func (s *registerService) CreateStaff(ctx context.Context, req CreateStaffRequest) (*users.UserResponse, error) {
	if !req.Role.IsValid() || req.Role == enums.UserRoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid staff role")
	}
	if req.Role.RequiresBranch() && req.BranchID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch_id is required for this role")
	}
	if !req.Role.RequiresBranch() && req.BranchID != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "branch_id is not allowed for this role")
	}
	return s.createUser(ctx, users.CreateUserDTO{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		BranchID: req.BranchID,
	}, req.Password)
}

func (s *registerService) createUser(ctx context.Context, dto users.CreateUserDTO, password string) (*users.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	dto.Email = email

	passwordHash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	dto.PasswordHash = passwordHash

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		if dto.BranchID != nil {
			branch, err := branches.NewRepository(tx).FindByID(ctx, *dto.BranchID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "branch not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check branch")
			}
			if !branch.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "branch is not active")
			}
		}

		user, err := userRepo.Create(ctx, dto)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := users.FromModel(created)
	return &resp, nil
}
