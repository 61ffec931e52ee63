package services

import (
	"errors"

	"github.com/shashiranjanraj/vyapar/app/models"
	"github.com/shashiranjanraj/vyapar/app/repositories"
	"github.com/shashiranjanraj/vyapar/pkg/apperr"
	"github.com/shashiranjanraj/vyapar/pkg/auth"
	"github.com/shashiranjanraj/vyapar/pkg/logger"
	"gorm.io/gorm"
)

// AccountService covers registration, login, and the single-row account
// mutations. Deliberately thin; the interesting invariants live in the
// order and catalog services.
type AccountService struct {
	db       *gorm.DB
	accounts *repositories.AccountRepository
}

func NewAccountService(db *gorm.DB) *AccountService {
	return &AccountService{
		db:       db,
		accounts: repositories.NewAccountRepository(),
	}
}

// RegisterInput is the request shape for Register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Address  string `json:"address" validate:"nullable,max=500"`
}

// Register creates a customer account with a hashed password.
func (s *AccountService) Register(in RegisterInput) (uint, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, apperr.Persistencef(err, "hash password")
	}

	account := models.Account{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Role:     auth.RoleCustomer,
		Address:  in.Address,
	}
	if err := s.accounts.Create(s.db, &account); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, apperr.Conflictf("email", "already registered")
		}
		return 0, apperr.Persistencef(err, "insert account")
	}

	logger.Info("account registered", "account_id", account.ID)
	return account.ID, nil
}

// Login checks the credentials and issues a signed token.
func (s *AccountService) Login(email, password string) (string, error) {
	account, err := s.accounts.FindByEmail(s.db, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return "", apperr.Persistencef(err, "load account")
	}

	if !auth.CheckPassword(account.Password, password) {
		return "", apperr.Unauthorized("invalid credentials")
	}

	return auth.GenerateToken(account.ID, account.Role)
}

// Me returns the principal's own account.
func (s *AccountService) Me(principal auth.Principal) (models.Account, error) {
	account, err := s.accounts.FindByID(s.db, principal.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Account{}, apperr.NotFoundf("account %d not found", principal.ID)
	}
	if err != nil {
		return models.Account{}, apperr.Persistencef(err, "load account %d", principal.ID)
	}
	return account, nil
}

// ChangePassword verifies the old password before storing a new hash.
func (s *AccountService) ChangePassword(principal auth.Principal, oldPassword, newPassword string) error {
	account, err := s.accounts.FindByID(s.db, principal.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFoundf("account %d not found", principal.ID)
	}
	if err != nil {
		return apperr.Persistencef(err, "load account %d", principal.ID)
	}

	if !auth.CheckPassword(account.Password, oldPassword) {
		return apperr.Unauthorized("incorrect password")
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.Persistencef(err, "hash password")
	}

	if err := s.accounts.UpdateFields(s.db, principal.ID, map[string]interface{}{"password": hash}); err != nil {
		return apperr.Persistencef(err, "update password")
	}
	return nil
}

// UpdateAddress changes the principal's own shipping address.
func (s *AccountService) UpdateAddress(principal auth.Principal, address string) error {
	if err := s.accounts.UpdateFields(s.db, principal.ID, map[string]interface{}{"address": address}); err != nil {
		return apperr.Persistencef(err, "update address")
	}
	return nil
}

// UpdateRole changes another account's role. Admin only.
func (s *AccountService) UpdateRole(principal auth.Principal, accountID uint, role string) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}
	if role != auth.RoleCustomer && role != auth.RoleAdmin {
		return apperr.Validationf("role", "unknown role %q", role)
	}

	if _, err := s.accounts.FindByID(s.db, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("account %d not found", accountID)
		}
		return apperr.Persistencef(err, "load account %d", accountID)
	}

	if err := s.accounts.UpdateFields(s.db, accountID, map[string]interface{}{"role": role}); err != nil {
		return apperr.Persistencef(err, "update role")
	}
	return nil
}

// Delete removes an account. Admin only.
func (s *AccountService) Delete(principal auth.Principal, accountID uint) error {
	if !principal.IsAdmin() {
		return apperr.Unauthorized("admin role required")
	}

	if _, err := s.accounts.FindByID(s.db, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("account %d not found", accountID)
		}
		return apperr.Persistencef(err, "load account %d", accountID)
	}

	if err := s.accounts.Delete(s.db, accountID); err != nil {
		return apperr.Persistencef(err, "delete account %d", accountID)
	}
	return nil
}
